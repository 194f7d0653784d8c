package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

// TenantHandler exposes tenant administration (spec §4.1). All of its
// routes, Create/List included, are mounted behind both AuthRequired and
// the tenant-resolution middleware; no role check restricts them to
// operators (RBAC is out of this handler's concern per spec §9).
type TenantHandler struct {
	service ports.TenantService
	log     *zap.Logger
}

func NewTenantHandler(service ports.TenantService, log *zap.Logger) *TenantHandler {
	return &TenantHandler{service: service, log: log}
}

func (h *TenantHandler) Create(c *fiber.Ctx) error {
	var t domain.Tenant
	if err := c.BodyParser(&t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Create(c.UserContext(), &t); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TenantHandler) Get(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tenant not found"})
	}
	return c.JSON(t)
}

func (h *TenantHandler) List(c *fiber.Ctx) error {
	tenants, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tenants)
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (h *TenantHandler) Suspend(c *fiber.Ctx) error {
	var req suspendRequest
	_ = c.BodyParser(&req)
	if err := h.service.Suspend(c.UserContext(), c.Params("id"), req.Reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TenantHandler) Reactivate(c *fiber.Ctx) error {
	if err := h.service.Reactivate(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
