package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tenant"
)

type StationHandler struct {
	service ports.StationService
	log     *zap.Logger
}

func NewStationHandler(service ports.StationService, log *zap.Logger) *StationHandler {
	return &StationHandler{service: service, log: log}
}

func (h *StationHandler) List(c *fiber.Ctx) error {
	stations, err := h.service.List(c.UserContext(), nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stations)
}

func (h *StationHandler) Get(c *fiber.Ctx) error {
	station, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if station == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "station not found"})
	}
	return c.JSON(station)
}

func (h *StationHandler) Search(c *fiber.Ctx) error {
	stations, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stations)
}

func (h *StationHandler) Nearby(c *fiber.Ctx) error {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat/lon are required"})
	}
	radiusKm, err := strconv.ParseFloat(c.Query("radius_km", "10"), 64)
	if err != nil {
		radiusKm = 10
	}

	stations, err := h.service.Nearby(c.UserContext(), lat, lon, radiusKm)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stations)
}

func (h *StationHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

func (h *StationHandler) Register(c *fiber.Ctx) error {
	tenantID, _ := tenant.FromContext(c.UserContext())

	var station domain.ChargingStation
	if err := c.BodyParser(&station); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	station.TenantID = tenantID

	if err := h.service.Register(c.UserContext(), &station); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}

type maintenanceRequest struct {
	Reason string `json:"reason"`
}

func (h *StationHandler) StartMaintenance(c *fiber.Ctx) error {
	var req maintenanceRequest
	_ = c.BodyParser(&req)
	if err := h.service.StartMaintenance(c.UserContext(), c.Params("id"), req.Reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *StationHandler) EndMaintenance(c *fiber.Ctx) error {
	if err := h.service.EndMaintenance(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type remoteStartRequest struct {
	ConnectorID int    `json:"connector_id"`
	IdTag       string `json:"id_tag"`
}

// RemoteStart synthesises the operator RemoteStartTransaction/
// RequestStartTransaction CALL of spec §4.7.
func (h *StationHandler) RemoteStart(c *fiber.Ctx) error {
	var req remoteStartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	accepted, err := h.service.RemoteStart(c.UserContext(), c.Params("id"), req.ConnectorID, req.IdTag)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"accepted": accepted})
}

type remoteStopRequest struct {
	TransactionID int64 `json:"transaction_id"`
}

func (h *StationHandler) RemoteStop(c *fiber.Ctx) error {
	var req remoteStopRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	accepted, err := h.service.RemoteStop(c.UserContext(), c.Params("id"), req.TransactionID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"accepted": accepted})
}
