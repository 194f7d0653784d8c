package reservation

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/csms-go/csms/internal/ports"
)

// Handler exposes the reservation lifecycle over the Fiber HTTP edge
// (SPEC_FULL §7 supplemented feature).
type Handler struct {
	service ports.ReservationService
}

func NewHandler(service ports.ReservationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/reservations", h.Create)
	router.Get("/reservations/:id", h.Get)
	router.Delete("/reservations/:id", h.Cancel)
	router.Get("/stations/:stationId/connectors/:connectorId/reservations", h.ListByConnector)
}

type createReservationRequest struct {
	StationID        string `json:"station_id"`
	ConnectorID      int    `json:"connector_id"`
	IdTag            string `json:"id_tag"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req createReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ExpiresInMinutes <= 0 {
		req.ExpiresInMinutes = 15
	}

	res, err := h.service.ReserveNow(c.Context(), req.StationID, req.ConnectorID, req.IdTag, userID,
		time.Now().Add(time.Duration(req.ExpiresInMinutes)*time.Minute))
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	res, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if res == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "reservation not found"})
	}
	return c.JSON(res)
}

func (h *Handler) Cancel(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.Cancel(c.Context(), c.Params("id"), userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListByConnector(c *fiber.Ctx) error {
	connectorID, err := c.ParamsInt("connectorId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid connector id"})
	}
	reservations, err := h.service.ListByStationConnector(c.Context(), c.Params("stationId"), connectorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(reservations)
}
