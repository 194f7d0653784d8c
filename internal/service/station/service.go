package station

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ocpp/router"
	"github.com/csms-go/csms/internal/ocpp/session"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tenant"
)

var ErrStationOffline = errors.New("station has no active session")

const remoteCommandTimeout = 30 * time.Second

// Service administers stations/connectors and synthesises the operator
// remote-command CALLs of spec §4.7 over the shared router/session stack.
type Service struct {
	stations   ports.StationRepository
	connectors ports.ConnectorRepository
	sessions   *session.Manager
	router     *router.Router
	log        *zap.Logger
}

func NewService(stations ports.StationRepository, connectors ports.ConnectorRepository, sessions *session.Manager, rt *router.Router, log *zap.Logger) ports.StationService {
	return &Service{stations: stations, connectors: connectors, sessions: sessions, router: rt, log: log}
}

func (s *Service) Register(ctx context.Context, st *domain.ChargingStation) error {
	now := time.Now()
	st.Audit.CreatedAt = now
	st.Audit.UpdatedAt = now
	if st.HeartbeatIntervalSeconds == 0 {
		st.HeartbeatIntervalSeconds = domain.DefaultHeartbeatIntervalSeconds
	}
	return s.stations.Save(ctx, st)
}

func (s *Service) Get(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	st, err := s.stations.FindByStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if st != nil {
		connectors, err := s.connectors.FindByStation(ctx, stationID)
		if err == nil {
			st.Connectors = connectors
		}
	}
	return st, nil
}

func (s *Service) List(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error) {
	return s.stations.FindAll(ctx, filter)
}

func (s *Service) Search(ctx context.Context, query string) ([]domain.ChargingStation, error) {
	all, err := s.stations.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	var matches []domain.ChargingStation
	for _, st := range all {
		if containsFold(st.StationID, query) || containsFold(st.Vendor, query) || containsFold(st.Model, query) {
			matches = append(matches, st)
		}
	}
	return matches, nil
}

func (s *Service) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error) {
	return s.stations.FindNearby(ctx, lat, lon, radiusKm)
}

func (s *Service) Statistics(ctx context.Context) (map[string]interface{}, error) {
	stations, err := s.stations.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	total := len(stations)
	connected := 0
	maintenance := 0
	var energy float64
	for _, st := range stations {
		if st.Connected {
			connected++
		}
		if st.Maintenance {
			maintenance++
		}
		energy += st.Stats.CumulativeEnergyKwh
	}
	return map[string]interface{}{
		"total_stations":      total,
		"connected_stations":  connected,
		"maintenance_stations": maintenance,
		"cumulative_energy_kwh": energy,
	}, nil
}

func (s *Service) StartMaintenance(ctx context.Context, stationID, reason string) error {
	st, err := s.stations.FindByStationID(ctx, stationID)
	if err != nil {
		return err
	}
	if st == nil {
		return ErrStationOffline
	}
	st.Maintenance = true
	st.MaintenanceReason = reason
	st.Audit.UpdatedAt = time.Now()
	return s.stations.Save(ctx, st)
}

func (s *Service) EndMaintenance(ctx context.Context, stationID string) error {
	st, err := s.stations.FindByStationID(ctx, stationID)
	if err != nil {
		return err
	}
	if st == nil {
		return ErrStationOffline
	}
	st.Maintenance = false
	st.MaintenanceReason = ""
	st.Audit.UpdatedAt = time.Now()
	return s.stations.Save(ctx, st)
}

type remoteStartPayload struct {
	ConnectorId int    `json:"connectorId"`
	IdTag       string `json:"idTag"`
}

type remoteStartResult struct {
	Status string `json:"status"`
}

func (s *Service) RemoteStart(ctx context.Context, stationID string, connectorID int, idTag string) (bool, error) {
	tenantID, _ := tenant.FromContext(ctx)
	sess, ok := s.sessions.ByStation(tenantID, stationID)
	if !ok {
		return false, ErrStationOffline
	}

	ctx, cancel := context.WithTimeout(ctx, remoteCommandTimeout)
	defer cancel()

	action := "RemoteStartTransaction"
	if sess.OcppVersion == "2.0.1" {
		action = "RequestStartTransaction"
	}

	raw, err := s.router.SendCall(ctx, sess, s.sessions.NextMessageId, action, remoteStartPayload{ConnectorId: connectorID, IdTag: idTag})
	if err != nil {
		return false, err
	}
	var result remoteStartResult
	if err := unmarshal(raw, &result); err != nil {
		return false, err
	}
	return result.Status == "Accepted", nil
}

type remoteStopPayload struct {
	TransactionId int64 `json:"transactionId"`
}

func (s *Service) RemoteStop(ctx context.Context, stationID string, transactionID int64) (bool, error) {
	tenantID, _ := tenant.FromContext(ctx)
	sess, ok := s.sessions.ByStation(tenantID, stationID)
	if !ok {
		return false, ErrStationOffline
	}

	ctx, cancel := context.WithTimeout(ctx, remoteCommandTimeout)
	defer cancel()

	action := "RemoteStopTransaction"
	if sess.OcppVersion == "2.0.1" {
		action = "RequestStopTransaction"
	}

	raw, err := s.router.SendCall(ctx, sess, s.sessions.NextMessageId, action, remoteStopPayload{TransactionId: transactionID})
	if err != nil {
		return false, err
	}
	var result remoteStartResult
	if err := unmarshal(raw, &result); err != nil {
		return false, err
	}
	return result.Status == "Accepted", nil
}
