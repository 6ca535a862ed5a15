package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/panelcast/panelcast/internal/models"
)

// FitModel handles POST /v1/models: fit and persist a model artifact.
func (h *Handler) FitModel(c *fiber.Ctx) error {
	var req models.FitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if len(req.Panel.Columns) == 0 || len(req.Panel.Records) == 0 {
		return badRequest(c, "panel with columns and records is required")
	}

	resp, err := h.forecastService.FitModel(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	resp, err := h.forecastService.ListModels()
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetModel handles GET /v1/models/:model_id.
func (h *Handler) GetModel(c *fiber.Ctx) error {
	resp, err := h.forecastService.DescribeModel(c.Params("model_id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// Predict handles POST /v1/models/:model_id/predict.
func (h *Handler) Predict(c *fiber.Ctx) error {
	var req models.PredictRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if req.Horizon < 1 {
		return badRequest(c, "horizon must be >= 1")
	}

	resp, err := h.forecastService.Predict(c.UserContext(), c.Params("model_id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// DeleteModel handles DELETE /v1/models/:model_id.
func (h *Handler) DeleteModel(c *fiber.Ctx) error {
	if err := h.forecastService.DeleteModel(c.Params("model_id")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
