package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tenant"
)

type TariffHandler struct {
	service ports.TariffService
	log     *zap.Logger
}

func NewTariffHandler(service ports.TariffService, log *zap.Logger) *TariffHandler {
	return &TariffHandler{service: service, log: log}
}

func (h *TariffHandler) List(c *fiber.Ctx) error {
	tariffs, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tariffs)
}

func (h *TariffHandler) Get(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tariff not found"})
	}
	return c.JSON(t)
}

func (h *TariffHandler) Save(c *fiber.Ctx) error {
	tenantID, _ := tenant.FromContext(c.UserContext())

	var t domain.Tariff
	if err := c.BodyParser(&t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	t.TenantID = tenantID

	if err := h.service.Save(c.UserContext(), &t); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}
