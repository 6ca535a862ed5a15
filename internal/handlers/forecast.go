package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/models"
)

// Forecast handles POST /v1/forecast: fit on the supplied panel and
// forecast in one call, persisting nothing.
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if len(req.Panel.Columns) == 0 || len(req.Panel.Records) == 0 {
		return badRequest(c, "panel with columns and records is required")
	}
	if req.Horizon < 1 {
		return badRequest(c, "horizon must be >= 1")
	}

	resp, err := h.forecastService.Forecast(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// Evaluate handles POST /v1/evaluate: score a forecast against actuals.
func (h *Handler) Evaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if req.Metric == "" {
		return badRequest(c, "metric is required")
	}

	resp, err := h.forecastService.Evaluate(&req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}
