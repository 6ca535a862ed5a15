package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/models"
	"github.com/panelcast/panelcast/internal/services"
)

func newErrorApp(failWith error) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.NewDevelopment()),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return failWith
	})
	return app
}

func errorRequest(t *testing.T, app *fiber.App) (int, models.ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return resp.StatusCode, body
}

func TestErrorHandler_ServiceError(t *testing.T) {
	svcErr := services.NewServiceErrorWithDetails(
		services.CodeInsufficientData, "entity too short",
		map[string]interface{}{"entity": "a"},
	)
	app := newErrorApp(svcErr)

	status, body := errorRequest(t, app)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	if body.Error.Code != services.CodeInsufficientData {
		t.Errorf("expected code %s, got %s", services.CodeInsufficientData, body.Error.Code)
	}
	if body.Error.Message != "entity too short" {
		t.Errorf("unexpected message %q", body.Error.Message)
	}
	if body.Error.Details["entity"] != "a" {
		t.Errorf("details not carried through: %v", body.Error.Details)
	}
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		name     string
		err      *fiber.Error
		status   int
		wantCode string
	}{
		{"bad request", fiber.ErrBadRequest, fiber.StatusBadRequest, services.CodeInvalidRequest},
		{"not found", fiber.ErrNotFound, fiber.StatusNotFound, services.CodeNotFound},
		{"unauthorized", fiber.ErrUnauthorized, fiber.StatusUnauthorized, services.CodeUnauthorized},
		{"method not allowed", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, "ERROR"},
		{"bad gateway", fiber.ErrBadGateway, fiber.StatusBadGateway, services.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorRequest(t, newErrorApp(tt.err))
			if status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, status)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Error.Code)
			}
		})
	}
}

func TestErrorHandler_GenericError(t *testing.T) {
	app := newErrorApp(errors.New("database exploded"))

	status, body := errorRequest(t, app)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body.Error.Code != services.CodeInternal {
		t.Errorf("expected code %s, got %s", services.CodeInternal, body.Error.Code)
	}
	// Untyped errors must not leak internals to the client.
	if body.Error.Message != "Internal Server Error" {
		t.Errorf("unexpected message %q", body.Error.Message)
	}
}

func TestErrorHandler_WrappedServiceError(t *testing.T) {
	err := fmt.Errorf("loading artifact: %w",
		services.NewServiceError(services.CodeNotFound, "model not found"))

	status, body := errorRequest(t, newErrorApp(err))
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body.Error.Code != services.CodeNotFound {
		t.Errorf("expected code %s, got %s", services.CodeNotFound, body.Error.Code)
	}
}
