package rest

import (
	"github.com/AzielCF/az-adlib/domains/health"
	"github.com/AzielCF/az-adlib/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}
	app.Get("/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	report := h.Service.Check(c.UserContext())
	if !report.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: utils.StatusError,
			Data:   report,
		})
	}
	return c.JSON(HealthResponse{
		Status: utils.StatusSuccess,
		Data:   report,
	})
}
