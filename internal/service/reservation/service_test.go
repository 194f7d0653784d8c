package reservation

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestReserveNowRejectsUnavailableConnector(t *testing.T) {
	connectors := &mocks.MockConnectorRepository{
		FindByStationAndConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
			return &domain.Connector{StationID: stationID, ConnectorID: connectorID, Status: domain.ConnectorStatusOccupied}, nil
		},
	}
	svc := NewService(&mocks.MockReservationRepository{}, connectors, newTestLogger())

	_, err := svc.ReserveNow(context.Background(), "CP001", 1, "TAG1", "user-1", time.Now().Add(15*time.Minute))
	if err != ErrConnectorUnavailable {
		t.Fatalf("expected ErrConnectorUnavailable, got %v", err)
	}
}

func TestReserveNowMarksConnectorReserved(t *testing.T) {
	var savedReservation *domain.Reservation
	var savedConnector *domain.Connector

	connectors := &mocks.MockConnectorRepository{
		FindByStationAndConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
			return &domain.Connector{StationID: stationID, ConnectorID: connectorID, Status: domain.ConnectorStatusAvailable}, nil
		},
		SaveFunc: func(ctx context.Context, c *domain.Connector) error {
			savedConnector = c
			return nil
		},
	}
	reservations := &mocks.MockReservationRepository{
		SaveFunc: func(ctx context.Context, r *domain.Reservation) error {
			savedReservation = r
			return nil
		},
	}
	svc := NewService(reservations, connectors, newTestLogger())

	expiresAt := time.Now().Add(15 * time.Minute)
	res, err := svc.ReserveNow(context.Background(), "CP001", 1, "TAG1", "user-1", expiresAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.ReservationStatusConfirmed {
		t.Errorf("expected status confirmed, got %s", res.Status)
	}
	if savedReservation == nil || savedConnector == nil {
		t.Fatal("expected both reservation and connector to be saved")
	}
	if savedConnector.Status != domain.ConnectorStatusReserved {
		t.Errorf("expected connector status reserved, got %s", savedConnector.Status)
	}
	if savedConnector.Reservation.ReservationID != res.ID {
		t.Errorf("expected connector reservation id %s, got %s", res.ID, savedConnector.Reservation.ReservationID)
	}
}

func TestCancelRejectsNonOwner(t *testing.T) {
	reservations := &mocks.MockReservationRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Reservation, error) {
			return &domain.Reservation{ID: id, UserID: "user-1", Status: domain.ReservationStatusConfirmed}, nil
		},
	}
	svc := NewService(reservations, &mocks.MockConnectorRepository{}, newTestLogger())

	err := svc.Cancel(context.Background(), "res-1", "user-2")
	if err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCancelReleasesConnector(t *testing.T) {
	expiresAt := time.Now().Add(15 * time.Minute)
	reservations := &mocks.MockReservationRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Reservation, error) {
			return &domain.Reservation{ID: id, UserID: "user-1", StationID: "CP001", ConnectorID: 1, Status: domain.ReservationStatusConfirmed}, nil
		},
		SaveFunc: func(ctx context.Context, r *domain.Reservation) error { return nil },
	}
	var savedConnector *domain.Connector
	connectors := &mocks.MockConnectorRepository{
		FindByStationAndConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
			return &domain.Connector{
				StationID: stationID, ConnectorID: connectorID, Status: domain.ConnectorStatusReserved,
				Reservation: domain.ConnectorReservation{ReservationID: "res-1", IdTag: "TAG1", ExpiresAt: &expiresAt},
			}, nil
		},
		SaveFunc: func(ctx context.Context, c *domain.Connector) error {
			savedConnector = c
			return nil
		},
	}
	svc := NewService(reservations, connectors, newTestLogger())

	if err := svc.Cancel(context.Background(), "res-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedConnector == nil {
		t.Fatal("expected connector to be released")
	}
	if savedConnector.Status != domain.ConnectorStatusAvailable {
		t.Errorf("expected connector status available, got %s", savedConnector.Status)
	}
	if savedConnector.Reservation.ReservationID != "" {
		t.Errorf("expected reservation cleared, got %+v", savedConnector.Reservation)
	}
}

func TestSweepExpiredReleasesConnectorsAndCountsExpired(t *testing.T) {
	expired := []domain.Reservation{
		{ID: "res-1", StationID: "CP001", ConnectorID: 1, Status: domain.ReservationStatusConfirmed},
		{ID: "res-2", StationID: "CP002", ConnectorID: 1, Status: domain.ReservationStatusConfirmed},
	}
	savedCount := 0
	reservations := &mocks.MockReservationRepository{
		FindPendingExpiredFunc: func(ctx context.Context, gracePeriod time.Duration) ([]domain.Reservation, error) {
			return expired, nil
		},
		SaveFunc: func(ctx context.Context, r *domain.Reservation) error {
			savedCount++
			if r.Status != domain.ReservationStatusExpired {
				t.Errorf("expected reservation %s marked expired, got %s", r.ID, r.Status)
			}
			return nil
		},
	}
	connectors := &mocks.MockConnectorRepository{
		FindByStationAndConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
			return &domain.Connector{
				StationID: stationID, ConnectorID: connectorID, Status: domain.ConnectorStatusReserved,
				Reservation: domain.ConnectorReservation{ReservationID: map[string]string{"CP001": "res-1", "CP002": "res-2"}[stationID]},
			}, nil
		},
		SaveFunc: func(ctx context.Context, c *domain.Connector) error { return nil },
	}
	svc := NewService(reservations, connectors, newTestLogger())

	count, err := svc.SweepExpired(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 expired, got %d", count)
	}
	if savedCount != 2 {
		t.Errorf("expected 2 reservations saved, got %d", savedCount)
	}
}
