package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
	tariffs  ports.TariffService
	log      *zap.Logger
}

func NewSessionHandler(sessions ports.SessionService, tariffs ports.TariffService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, tariffs: tariffs, log: log}
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.UserContext(), c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	return c.JSON(sess)
}

func (h *SessionHandler) ListByUser(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	sessions, err := h.sessions.ListByUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sessions)
}

// Statistics implements the GET /api/v1/sessions/statistics endpoint named
// in SPEC_FULL §7.
func (h *SessionHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.sessions.Statistics(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

// EstimateCost recomputes a session's cost against the current tariff
// engine, without requiring the session to have stopped.
func (h *SessionHandler) EstimateCost(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.UserContext(), c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}

	result, err := h.tariffs.ComputeCost(c.UserContext(), sess)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
