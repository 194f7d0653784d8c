package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
)

func newTestEvents() (*Events, *mocks.MockSessionRepository, *mocks.MockConnectorRepository, *mocks.MockAuthTokenRepository, *mocks.MockTariffRepository, *mocks.MockReservationRepository) {
	sessions := &mocks.MockSessionRepository{}
	connectors := &mocks.MockConnectorRepository{}
	tokens := &mocks.MockAuthTokenRepository{}
	tariffs := &mocks.MockTariffRepository{}
	reservations := &mocks.MockReservationRepository{}
	e := NewEvents(sessions, connectors, tokens, tariffs, reservations, zap.NewNop())
	return e, sessions, connectors, tokens, tariffs, reservations
}

func validToken(idTag string) *domain.AuthToken {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)
	return &domain.AuthToken{
		TokenValue: idTag,
		Active:     true,
		ValidFrom:  &past,
		ValidUntil: &future,
	}
}

func TestAuthorizeAccepted(t *testing.T) {
	e, _, _, tokens, _, _ := newTestEvents()
	tokens.FindByValueFunc = func(ctx context.Context, value string) (*domain.AuthToken, error) {
		return validToken(value), nil
	}

	got, err := e.Authorize(context.Background(), "tenant-1", "TAG1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != "Accepted" {
		t.Fatalf("expected Accepted, got %s", got.Status)
	}
}

func TestAuthorizeInvalidWhenTokenMissing(t *testing.T) {
	e, _, _, tokens, _, _ := newTestEvents()
	tokens.FindByValueFunc = func(ctx context.Context, value string) (*domain.AuthToken, error) {
		return nil, nil
	}

	got, _ := e.Authorize(context.Background(), "tenant-1", "MISSING")
	if got.Status != "Invalid" {
		t.Fatalf("expected Invalid, got %s", got.Status)
	}
}

func TestAuthorizeBlocked(t *testing.T) {
	e, _, _, tokens, _, _ := newTestEvents()
	tokens.FindByValueFunc = func(ctx context.Context, value string) (*domain.AuthToken, error) {
		tok := validToken(value)
		tok.Blocked = true
		return tok, nil
	}

	got, _ := e.Authorize(context.Background(), "tenant-1", "TAG1")
	if got.Status != "Blocked" {
		t.Fatalf("expected Blocked, got %s", got.Status)
	}
}

func TestAuthorizeExpired(t *testing.T) {
	e, _, _, tokens, _, _ := newTestEvents()
	tokens.FindByValueFunc = func(ctx context.Context, value string) (*domain.AuthToken, error) {
		past := time.Now().Add(-48 * time.Hour)
		expired := time.Now().Add(-24 * time.Hour)
		return &domain.AuthToken{
			TokenValue: value,
			Active:     true,
			ValidFrom:  &past,
			ValidUntil: &expired,
		}, nil
	}

	got, _ := e.Authorize(context.Background(), "tenant-1", "TAG1")
	if got.Status != "Expired" {
		t.Fatalf("expected Expired, got %s", got.Status)
	}
}

func TestStartTransactionHappyPath(t *testing.T) {
	e, sessions, connectors, tokens, _, _ := newTestEvents()
	tokens.FindByValueFunc = func(ctx context.Context, value string) (*domain.AuthToken, error) {
		return validToken(value), nil
	}
	var saved *domain.ChargingSession
	sessions.SaveFunc = func(ctx context.Context, s *domain.ChargingSession) error {
		saved = s
		return nil
	}
	connectors.FindByStationAndConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
		return &domain.Connector{StationID: stationID, ConnectorID: connectorID}, nil
	}
	var savedConnector *domain.Connector
	connectors.SaveFunc = func(ctx context.Context, c *domain.Connector) error {
		savedConnector = c
		return nil
	}

	now := time.Now()
	res, err := e.StartTransaction(context.Background(), "tenant-1", "STATION1", 1, "TAG1", 1000, now, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IdTagStatus != "Accepted" {
		t.Fatalf("expected Accepted, got %s", res.IdTagStatus)
	}
	if res.TransactionID != 1 {
		t.Fatalf("expected transaction id 1, got %d", res.TransactionID)
	}
	if saved == nil || saved.Status != domain.SessionCharging {
		t.Fatalf("expected saved session in Charging state, got %+v", saved)
	}
	if savedConnector == nil || !savedConnector.IsOccupiedByTransaction() {
		t.Fatalf("expected connector marked occupied by transaction")
	}
}

func TestStartTransactionConsumesReservation(t *testing.T) {
	e, _, connectors, tokens, _, reservations := newTestEvents()
	tokens.FindByValueFunc = func(ctx context.Context, value string) (*domain.AuthToken, error) {
		return validToken(value), nil
	}
	connectors.FindByStationAndConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
		return &domain.Connector{
			StationID:   stationID,
			ConnectorID: connectorID,
			Reservation: domain.ConnectorReservation{ReservationID: "RES1", IdTag: "TAG1"},
		}, nil
	}
	var savedReservation *domain.Reservation
	reservations.FindByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
		return &domain.Reservation{ID: id, Status: domain.ReservationStatusConfirmed}, nil
	}
	reservations.SaveFunc = func(ctx context.Context, r *domain.Reservation) error {
		savedReservation = r
		return nil
	}

	now := time.Now()
	_, err := e.StartTransaction(context.Background(), "tenant-1", "STATION1", 1, "TAG1", 1000, now, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedReservation == nil || savedReservation.Status != domain.ReservationStatusActive {
		t.Fatalf("expected reservation marked active, got %+v", savedReservation)
	}
}

func TestMeterValuesProjectsUnitsAndTracksPower(t *testing.T) {
	e, sessions, _, _, _, _ := newTestEvents()
	active := &domain.ChargingSession{SessionUUID: "sess-1"}
	sessions.FindActiveByConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error) {
		return active, nil
	}
	var appended []*domain.MeterValue
	sessions.AppendMeterValueFunc = func(ctx context.Context, mv *domain.MeterValue) error {
		appended = append(appended, mv)
		return nil
	}
	sessions.SaveFunc = func(ctx context.Context, s *domain.ChargingSession) error { return nil }

	err := e.MeterValues(context.Background(), "STATION1", 1, nil, time.Now(), []SampledValue{
		{Measurand: domain.MeasurandEnergyActiveImportRegister, Value: 5000, Unit: "Wh"},
		{Measurand: domain.MeasurandPowerActiveImport, Value: 7000, Unit: "W"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appended) != 2 {
		t.Fatalf("expected 2 appended meter values, got %d", len(appended))
	}
	if appended[0].EnergyKwh == nil || *appended[0].EnergyKwh != 5.0 {
		t.Fatalf("expected 5000Wh -> 5.0kWh, got %+v", appended[0].EnergyKwh)
	}
	if appended[1].PowerKw == nil || *appended[1].PowerKw != 7.0 {
		t.Fatalf("expected 7000W -> 7.0kW, got %+v", appended[1].PowerKw)
	}
	if active.MaxPowerKw != 7.0 {
		t.Fatalf("expected max power 7.0, got %v", active.MaxPowerKw)
	}
}

func TestStatusNotificationTransitionsToSuspendedEV(t *testing.T) {
	e, sessions, connectors, _, _, _ := newTestEvents()
	connectors.FindByStationAndConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
		return &domain.Connector{StationID: stationID, ConnectorID: connectorID}, nil
	}
	connectors.SaveFunc = func(ctx context.Context, c *domain.Connector) error { return nil }

	active := &domain.ChargingSession{Status: domain.SessionCharging}
	sessions.FindActiveByConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error) {
		return active, nil
	}
	var saved *domain.ChargingSession
	sessions.SaveFunc = func(ctx context.Context, s *domain.ChargingSession) error {
		saved = s
		return nil
	}

	err := e.StatusNotification(context.Background(), "STATION1", 1, domain.ConnectorStatusOccupied, "SuspendedEV", domain.ConnectorErrorNone, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || saved.Status != domain.SessionSuspendedEV {
		t.Fatalf("expected session in SuspendedEV, got %+v", saved)
	}
}

func TestStatusNotificationInvalidTransitionLeavesSessionUntouched(t *testing.T) {
	e, sessions, connectors, _, _, _ := newTestEvents()
	connectors.FindByStationAndConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
		return &domain.Connector{StationID: stationID, ConnectorID: connectorID}, nil
	}
	connectors.SaveFunc = func(ctx context.Context, c *domain.Connector) error { return nil }

	active := &domain.ChargingSession{Status: domain.SessionPending}
	sessions.FindActiveByConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error) {
		return active, nil
	}
	saveCalled := false
	sessions.SaveFunc = func(ctx context.Context, s *domain.ChargingSession) error {
		saveCalled = true
		return nil
	}

	err := e.StatusNotification(context.Background(), "STATION1", 1, domain.ConnectorStatusOccupied, "SuspendedEV", domain.ConnectorErrorNone, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saveCalled {
		t.Fatalf("expected session not saved on invalid transition")
	}
	if active.Status != domain.SessionPending {
		t.Fatalf("expected session status unchanged, got %s", active.Status)
	}
}

func TestStopTransactionHappyPath(t *testing.T) {
	e, sessions, connectors, _, tariffs, _ := newTestEvents()
	start := time.Now().Add(-30 * time.Minute)
	existing := &domain.ChargingSession{
		SessionUUID:  "sess-1",
		Status:       domain.SessionCharging,
		OcppIdTag:    "TAG1",
		MeterStartWh: 0,
		StartTime:    &start,
	}
	txnID := int64(1)
	existing.OcppTransactionID = &txnID

	sessions.FindByTransactionIDFunc = func(ctx context.Context, transactionID int64) (*domain.ChargingSession, error) {
		return existing, nil
	}
	var saved *domain.ChargingSession
	sessions.SaveFunc = func(ctx context.Context, s *domain.ChargingSession) error {
		saved = s
		return nil
	}
	tariffs.FindDefaultForTenantFunc = func(ctx context.Context, tenantID string) (*domain.Tariff, error) {
		return nil, nil
	}
	connectors.FindByStationAndConnectorFunc = func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
		return &domain.Connector{StationID: stationID, ConnectorID: connectorID}, nil
	}
	connectors.SaveFunc = func(ctx context.Context, c *domain.Connector) error { return nil }

	stop := start.Add(30 * time.Minute)
	res, err := e.StopTransaction(context.Background(), 1, "TAG1", 18000, stop, "Local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IdTagStatus != "Accepted" {
		t.Fatalf("expected Accepted, got %s", res.IdTagStatus)
	}
	if saved == nil || saved.Status != domain.SessionCompleted {
		t.Fatalf("expected session Completed, got %+v", saved)
	}
	if saved.TotalCost != 6.00 {
		t.Fatalf("expected total cost 6.00 (default tariff, 18kWh/30min), got %v", saved.TotalCost)
	}
}

func TestStopTransactionWrongIdTagRejected(t *testing.T) {
	e, sessions, _, _, _, _ := newTestEvents()
	existing := &domain.ChargingSession{
		SessionUUID: "sess-1",
		Status:      domain.SessionCharging,
		OcppIdTag:   "TAG1",
	}
	sessions.FindByTransactionIDFunc = func(ctx context.Context, transactionID int64) (*domain.ChargingSession, error) {
		return existing, nil
	}
	saveCalled := false
	sessions.SaveFunc = func(ctx context.Context, s *domain.ChargingSession) error {
		saveCalled = true
		return nil
	}

	res, err := e.StopTransaction(context.Background(), 1, "WRONGTAG", 1000, time.Now(), "Local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IdTagStatus != "Invalid" || res.StatusReason != "InvalidToken" {
		t.Fatalf("expected Invalid/InvalidToken, got %+v", res)
	}
	if saveCalled {
		t.Fatalf("expected session untouched on idTag mismatch")
	}
	if existing.Status != domain.SessionCharging {
		t.Fatalf("expected session status unchanged, got %s", existing.Status)
	}
}

func TestStopTransactionUnknownTransaction(t *testing.T) {
	e, sessions, _, _, _, _ := newTestEvents()
	sessions.FindByTransactionIDFunc = func(ctx context.Context, transactionID int64) (*domain.ChargingSession, error) {
		return nil, nil
	}

	res, err := e.StopTransaction(context.Background(), 999, "TAG1", 1000, time.Now(), "Local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IdTagStatus != "Invalid" || res.StatusReason != "UnknownTransaction" {
		t.Fatalf("expected Invalid/UnknownTransaction, got %+v", res)
	}
}
