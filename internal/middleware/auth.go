package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/models"
	"github.com/panelcast/panelcast/internal/services"
)

// APIKeyAuth guards routes with a static API key set. Clients send the key
// via X-API-Key or as an Authorization header, bare or Bearer-prefixed.
func APIKeyAuth(logger *logging.Logger, apiKeys []string, enabled bool) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keys := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		if key != "" {
			keys[key] = struct{}{}
		}
	}
	if len(keys) == 0 {
		logger.Error("API key auth enabled with no keys configured, all requests will be rejected")
	}

	return func(c *fiber.Ctx) error {
		key := clientKey(c)
		if key == "" {
			return unauthorized(c, "API key is required. Provide it via X-API-Key header or Authorization header.")
		}
		if _, ok := keys[key]; !ok {
			logger.Warn("Invalid API key",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
				"key_prefix", maskKey(key),
			)
			return unauthorized(c, "Invalid API key.")
		}
		return c.Next()
	}
}

// clientKey extracts the API key from the request headers.
func clientKey(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}
	auth := c.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeUnauthorized,
			Message: message,
		},
	})
}

// maskKey keeps only a short prefix for logs.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
