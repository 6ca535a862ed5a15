package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/models"
	"github.com/panelcast/panelcast/internal/services"
)

func newAuthApp(keys []string, enabled bool) *fiber.App {
	app := fiber.New()
	app.Use(APIKeyAuth(logging.NewDevelopment(), keys, enabled))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func authRequest(t *testing.T, app *fiber.App, header, value string) (int, models.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest("GET", "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body models.ErrorResponse
	if resp.StatusCode != fiber.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decoding error body: %v", err)
		}
	}
	return resp.StatusCode, body
}

func TestAPIKeyAuth_DisabledAllowsAll(t *testing.T) {
	app := newAuthApp(nil, false)

	status, _ := authRequest(t, app, "", "")
	if status != fiber.StatusOK {
		t.Errorf("expected 200 with auth disabled, got %d", status)
	}
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	app := newAuthApp([]string{"secret-key"}, true)

	status, body := authRequest(t, app, "", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if body.Error.Code != services.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", services.CodeUnauthorized, body.Error.Code)
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	app := newAuthApp([]string{"secret-key"}, true)

	status, body := authRequest(t, app, "X-API-Key", "wrong-key")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if body.Error.Code != services.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", services.CodeUnauthorized, body.Error.Code)
	}
}

func TestAPIKeyAuth_HeaderFormats(t *testing.T) {
	app := newAuthApp([]string{"secret-key"}, true)

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"x-api-key", "X-API-Key", "secret-key"},
		{"bearer", "Authorization", "Bearer secret-key"},
		{"plain authorization", "Authorization", "secret-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := authRequest(t, app, tt.header, tt.value)
			if status != fiber.StatusOK {
				t.Errorf("expected 200, got %d", status)
			}
		})
	}
}

func TestAPIKeyAuth_NoKeysConfiguredRejectsAll(t *testing.T) {
	app := newAuthApp([]string{"", ""}, true)

	status, _ := authRequest(t, app, "X-API-Key", "anything")
	if status != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"secret-key", "secr****"},
		{"abcd", "****"},
		{"", "****"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
