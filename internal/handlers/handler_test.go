package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/artifacts"
	"github.com/panelcast/panelcast/internal/config"
	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/models"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := artifacts.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return New(logging.NewDevelopment(), store, nil, config.EngineConfig{
		Strategy:  "recursive",
		Horizon:   3,
		Lags:      []int{1, 2, 3},
		Frequency: "1i",
	})
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	app := fiber.New()
	app.Get("/health", h.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var health models.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", health.Status)
	}
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(t)
	app := fiber.New()
	app.Use(h.NotFound)

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if errResp.Error.Path != "/nope" {
		t.Errorf("expected path /nope, got %q", errResp.Error.Path)
	}
}

func TestForecastRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(t)
	app := fiber.New()
	app.Post("/v1/forecast", h.Forecast)

	req := httptest.NewRequest("POST", "/v1/forecast", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
