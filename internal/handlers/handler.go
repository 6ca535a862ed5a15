package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/artifacts"
	"github.com/panelcast/panelcast/internal/config"
	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/models"
	"github.com/panelcast/panelcast/internal/queue"
	"github.com/panelcast/panelcast/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	forecastService *services.ForecastService
}

// New creates a new handler instance
func New(logger *logging.Logger, store *artifacts.Store,
	publisher queue.Publisher, engineDefaults config.EngineConfig,
) *Handler {
	return &Handler{
		logger:          logger,
		forecastService: services.NewForecastService(logger, store, publisher, engineDefaults),
	}
}

// respondError writes a service error (or any error) as a JSON error body.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = services.NewServiceError(services.CodeInternal, err.Error())
	}

	status := svcErr.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Path(), "code", svcErr.Code, "error", err)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Details: svcErr.Details,
		},
	})
}

// badRequest writes a 400 with the given message.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInvalidRequest,
			Message: message,
		},
	})
}
