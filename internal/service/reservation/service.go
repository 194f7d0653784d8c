package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

var (
	ErrConnectorUnavailable = errors.New("connector is not available for reservation")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrNotOwner             = errors.New("reservation does not belong to this user")
)

// Service implements the ReserveNow/CancelReservation lifecycle of spec §3's
// Connector.Reservation sub-record, grounded on the teacher's reservation
// vertical but trimmed to what the connector invariants actually require:
// no wallet/fee processing, no time-slot planner.
type Service struct {
	reservations ports.ReservationRepository
	connectors   ports.ConnectorRepository
	log          *zap.Logger
}

func NewService(reservations ports.ReservationRepository, connectors ports.ConnectorRepository, log *zap.Logger) ports.ReservationService {
	return &Service{reservations: reservations, connectors: connectors, log: log}
}

func (s *Service) ReserveNow(ctx context.Context, stationID string, connectorID int, idTag string, userID string, expiresAt time.Time) (*domain.Reservation, error) {
	connector, err := s.connectors.FindByStationAndConnector(ctx, stationID, connectorID)
	if err != nil {
		return nil, err
	}
	if connector == nil || connector.Status != domain.ConnectorStatusAvailable {
		return nil, ErrConnectorUnavailable
	}

	now := time.Now()
	res := &domain.Reservation{
		ID:          uuid.New().String(),
		UserID:      userID,
		IdTag:       idTag,
		StationID:   stationID,
		ConnectorID: connectorID,
		Status:      domain.ReservationStatusConfirmed,
		StartTime:   now,
		EndTime:     expiresAt,
	}
	res.Audit.CreatedAt = now
	res.Audit.UpdatedAt = now

	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, err
	}

	connector.Status = domain.ConnectorStatusReserved
	connector.Reservation = domain.ConnectorReservation{
		ReservationID: res.ID,
		IdTag:         idTag,
		ExpiresAt:     &expiresAt,
	}
	connector.Audit.UpdatedAt = now
	if err := s.connectors.Save(ctx, connector); err != nil {
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("station_id", stationID),
		zap.Int("connector_id", connectorID),
	)
	return res, nil
}

func (s *Service) Cancel(ctx context.Context, id, userID string) error {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrReservationNotFound
	}
	if res.UserID != "" && res.UserID != userID {
		return ErrNotOwner
	}
	if !res.CanBeCancelled() {
		return nil
	}

	res.Status = domain.ReservationStatusCancelled
	res.Audit.UpdatedAt = time.Now()
	if err := s.reservations.Save(ctx, res); err != nil {
		return err
	}

	return s.releaseConnector(ctx, res.StationID, res.ConnectorID, res.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.reservations.FindByID(ctx, id)
}

func (s *Service) ListByStationConnector(ctx context.Context, stationID string, connectorID int) ([]domain.Reservation, error) {
	return s.reservations.FindByStationAndConnector(ctx, stationID, connectorID)
}

func (s *Service) ListActiveByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return s.reservations.FindActiveByUser(ctx, userID)
}

// SweepExpired is run by its own ticker in cmd/server (cfg.Reaper.SweepInterval,
// separate from the session reaper): reservations past EndTime+gracePeriod
// are expired and their connector released back to AVAILABLE.
func (s *Service) SweepExpired(ctx context.Context, gracePeriod time.Duration) (int, error) {
	expired, err := s.reservations.FindPendingExpired(ctx, gracePeriod)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		r := &expired[i]
		r.Status = domain.ReservationStatusExpired
		r.Audit.UpdatedAt = time.Now()
		if err := s.reservations.Save(ctx, r); err != nil {
			s.log.Error("failed to expire reservation", zap.String("reservation_id", r.ID), zap.Error(err))
			continue
		}
		if err := s.releaseConnector(ctx, r.StationID, r.ConnectorID, r.ID); err != nil {
			s.log.Error("failed to release connector after expiry", zap.String("reservation_id", r.ID), zap.Error(err))
		}
		count++
	}

	if count > 0 {
		s.log.Info("reservation sweep expired reservations", zap.Int("count", count))
	}
	return count, nil
}

func (s *Service) releaseConnector(ctx context.Context, stationID string, connectorID int, reservationID string) error {
	connector, err := s.connectors.FindByStationAndConnector(ctx, stationID, connectorID)
	if err != nil {
		return err
	}
	if connector == nil || connector.Reservation.ReservationID != reservationID {
		return nil
	}
	connector.ReleaseReservation()
	if connector.Status == domain.ConnectorStatusReserved {
		connector.Status = domain.ConnectorStatusAvailable
	}
	connector.Audit.UpdatedAt = time.Now()
	return s.connectors.Save(ctx, connector)
}
