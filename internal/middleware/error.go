package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/models"
	"github.com/panelcast/panelcast/internal/services"
)

// ErrorHandler folds errors escaping the handlers into the service error
// envelope. Service errors keep their code and status; fiber's own errors
// keep their status and get a code derived from it.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		svcErr, status := classify(err)

		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		} else {
			logger.Warn("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		}

		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}
}

func classify(err error) (*services.ServiceError, int) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, svcErr.HTTPStatus()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return services.NewServiceError(codeForStatus(fiberErr.Code), fiberErr.Message), fiberErr.Code
	}
	return services.NewServiceError(services.CodeInternal, "Internal Server Error"), fiber.StatusInternalServerError
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusBadRequest:
		return services.CodeInvalidRequest
	case status == fiber.StatusUnauthorized:
		return services.CodeUnauthorized
	case status == fiber.StatusNotFound:
		return services.CodeNotFound
	case status == fiber.StatusUnprocessableEntity:
		return services.CodeInsufficientData
	case status >= fiber.StatusInternalServerError:
		return services.CodeInternal
	default:
		return "ERROR"
	}
}
