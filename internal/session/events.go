package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tariff"
)

// Events implements the OCPP-driven side of spec §4.5: Authorize,
// StartTransaction, MeterValues, StatusNotification, and StopTransaction,
// each validating, transitioning the state machine, and persisting.
type Events struct {
	sessions     ports.SessionRepository
	connectors   ports.ConnectorRepository
	tokens       ports.AuthTokenRepository
	tariffs      ports.TariffRepository
	reservations ports.ReservationRepository
	log          *zap.Logger
}

func NewEvents(
	sessions ports.SessionRepository,
	connectors ports.ConnectorRepository,
	tokens ports.AuthTokenRepository,
	tariffs ports.TariffRepository,
	reservations ports.ReservationRepository,
	log *zap.Logger,
) *Events {
	return &Events{
		sessions:     sessions,
		connectors:   connectors,
		tokens:       tokens,
		tariffs:      tariffs,
		reservations: reservations,
		log:          log,
	}
}

// AuthorizeResult carries the outcome of an Authorize event.
type AuthorizeResult struct {
	Status string // Accepted, Invalid, Blocked, Expired
}

// Authorize implements spec §4.5 Authorize(idTag): validate the idTag
// against AuthToken, never itself creating or mutating a session.
func (e *Events) Authorize(ctx context.Context, tenantID, idTag string) (AuthorizeResult, error) {
	token, err := e.tokens.FindByValue(ctx, idTag)
	if err != nil || token == nil {
		return AuthorizeResult{Status: "Invalid"}, nil
	}
	now := time.Now()
	if token.Blocked {
		return AuthorizeResult{Status: "Blocked"}, nil
	}
	if !token.IsValid(now) {
		if token.ValidUntil != nil && now.After(*token.ValidUntil) {
			return AuthorizeResult{Status: "Expired"}, nil
		}
		return AuthorizeResult{Status: "Invalid"}, nil
	}
	return AuthorizeResult{Status: "Accepted"}, nil
}

// StartTransactionResult carries the outcome of a StartTransaction event.
type StartTransactionResult struct {
	TransactionID int64
	IdTagStatus   string
	Session       *domain.ChargingSession
}

// StartTransaction implements spec §4.5: find/create the session and
// transition P -> Az -> A -> STARTING -> CHARGING, binding a fresh,
// tenant-unique ocppTransactionId.
//
// explicitTxnID lets OCPP 2.0.1 bind the session to a pre-computed id
// (a tenant-mixed hash of the station's own string transactionId, see
// v201's transactionIDHash) instead of allocating a fresh sequence value;
// pass nil for OCPP 1.6, where the CSMS is the one assigning the id.
func (e *Events) StartTransaction(ctx context.Context, tenantID, stationID string, connectorID int, idTag string, meterStartWh float64, timestamp time.Time, reservationID *string, explicitTxnID *int64) (StartTransactionResult, error) {
	auth, err := e.Authorize(ctx, tenantID, idTag)
	if err != nil {
		return StartTransactionResult{}, err
	}
	if auth.Status != "Accepted" {
		return StartTransactionResult{IdTagStatus: auth.Status}, nil
	}

	var txnID int64
	if explicitTxnID != nil {
		txnID = *explicitTxnID
	} else {
		txnID, err = e.sessions.NextTransactionID(ctx)
		if err != nil {
			return StartTransactionResult{}, fmt.Errorf("session: allocate transaction id: %w", err)
		}
	}

	s := &domain.ChargingSession{
		SessionUUID:       uuid.NewString(),
		TenantID:          tenantID,
		StationID:         stationID,
		ConnectorNumber:   connectorID,
		Status:            domain.SessionPending,
		OcppTransactionID: &txnID,
		OcppIdTag:         idTag,
		MeterStartWh:      meterStartWh,
		StartTime:         &timestamp,
		ReservationID:     reservationID,
	}

	for _, to := range []domain.ChargingSessionStatus{
		domain.SessionAuthorizing,
		domain.SessionAuthorized,
		domain.SessionStarting,
		domain.SessionCharging,
	} {
		if err := Transition(s, to, "StartTransaction", timestamp); err != nil {
			return StartTransactionResult{}, err
		}
	}

	if err := e.sessions.Save(ctx, s); err != nil {
		return StartTransactionResult{}, fmt.Errorf("session: save: %w", err)
	}

	if connector, err := e.connectors.FindByStationAndConnector(ctx, stationID, connectorID); err == nil && connector != nil {
		connector.StartSession(txnID, idTag, meterStartWh, timestamp)
		_ = e.connectors.Save(ctx, connector)

		reservationMatches := connector.Reservation.ReservationID != "" &&
			connector.Reservation.IdTag == idTag &&
			(reservationID == nil || *reservationID == connector.Reservation.ReservationID)
		if reservationMatches {
			if res, err := e.reservations.FindByID(ctx, connector.Reservation.ReservationID); err == nil && res != nil {
				res.Status = domain.ReservationStatusActive
				res.SessionUUID = s.SessionUUID
				_ = e.reservations.Save(ctx, res)
			}
			connector.ReleaseReservation()
			_ = e.connectors.Save(ctx, connector)
		}
	}

	return StartTransactionResult{TransactionID: txnID, IdTagStatus: "Accepted", Session: s}, nil
}

// SampledValue is the codec-agnostic shape of one MeterValues sample,
// populated by the version-specific handler before calling into MeterValues.
type SampledValue struct {
	Measurand domain.Measurand
	Value     float64
	Unit      string
}

// MeterValues implements spec §4.5: append each sample, project it to its
// typed field, and update the session's maxPowerKw / averagePowerKw.
func (e *Events) MeterValues(ctx context.Context, stationID string, connectorID int, transactionID *int64, timestamp time.Time, values []SampledValue) error {
	var s *domain.ChargingSession
	var err error
	if transactionID != nil {
		s, err = e.sessions.FindByTransactionID(ctx, *transactionID)
	} else {
		s, err = e.sessions.FindActiveByConnector(ctx, stationID, connectorID)
	}
	if err != nil || s == nil {
		return nil // no active session: nothing to attribute the sample to
	}

	for _, v := range values {
		mv := &domain.MeterValue{
			ID:        uuid.NewString(),
			SessionID: s.SessionUUID,
			Timestamp: timestamp,
			Measurand: v.Measurand,
			Unit:      v.Unit,
		}
		projectMeterValue(mv, v)
		if err := e.sessions.AppendMeterValue(ctx, mv); err != nil {
			return fmt.Errorf("session: append meter value: %w", err)
		}
		if mv.PowerKw != nil {
			s.RecordPowerSample(*mv.PowerKw)
		}
	}

	return e.sessions.Save(ctx, s)
}

// projectMeterValue implements the unit-conversion table of spec §4.5.
func projectMeterValue(mv *domain.MeterValue, v SampledValue) {
	switch v.Measurand {
	case domain.MeasurandEnergyActiveImportRegister, domain.MeasurandEnergyActiveExportRegister:
		kwh := v.Value / 1000
		mv.EnergyKwh = &kwh
	case domain.MeasurandPowerActiveImport, domain.MeasurandPowerActiveExport:
		kw := v.Value / 1000
		mv.PowerKw = &kw
	case domain.MeasurandCurrentImport, domain.MeasurandCurrentExport:
		a := v.Value
		mv.CurrentA = &a
	case domain.MeasurandVoltage:
		volt := v.Value
		mv.VoltageV = &volt
	case domain.MeasurandSoC:
		pct := v.Value
		mv.SocPercent = &pct
	case domain.MeasurandTemperature:
		temp := v.Value
		mv.TemperatureC = &temp
	}
}

// StatusNotification implements spec §4.5: update connector status, and if
// a session is active, fold a SuspendedEV/SuspendedEVSE/Finishing report
// into the state machine. rawOcppStatus is the station's untranslated
// status string (e.g. "SuspendedEV"), since ConnectorStatus itself has no
// suspended variant — suspension is a session-level, not connector-level,
// concept (spec §3).
func (e *Events) StatusNotification(ctx context.Context, stationID string, connectorID int, status domain.ConnectorStatus, rawOcppStatus string, errorCode domain.ConnectorErrorCode, timestamp time.Time) error {
	connector, err := e.connectors.FindByStationAndConnector(ctx, stationID, connectorID)
	if err != nil || connector == nil {
		return nil
	}
	connector.Status = status
	connector.ErrorCode = errorCode
	if err := e.connectors.Save(ctx, connector); err != nil {
		return fmt.Errorf("session: save connector status: %w", err)
	}

	active, err := e.sessions.FindActiveByConnector(ctx, stationID, connectorID)
	if err != nil || active == nil {
		return nil
	}

	var to domain.ChargingSessionStatus
	switch strings.ToLower(rawOcppStatus) {
	case "suspendedev":
		to = domain.SessionSuspendedEV
	case "suspendedevse":
		to = domain.SessionSuspendedEVSE
	case "finishing":
		to = domain.SessionFinishing
	case "charging":
		to = domain.SessionCharging
	default:
		return nil
	}

	if err := Transition(active, to, "StatusNotification", timestamp); err != nil {
		return nil // invalid transition for the current state: leave session untouched
	}
	return e.sessions.Save(ctx, active)
}

// StopTransactionResult carries the outcome of a StopTransaction event.
type StopTransactionResult struct {
	IdTagStatus   string
	StatusReason  string
	Session       *domain.ChargingSession
}

// StopTransaction implements spec §4.5: resolve by transactionId, validate
// idTag, transition FINISHING -> COMPLETED, compute duration/energy/stop
// reason, release the connector, and invoke the tariff engine.
func (e *Events) StopTransaction(ctx context.Context, transactionID int64, idTag string, meterStopWh float64, timestamp time.Time, reasonRaw string) (StopTransactionResult, error) {
	s, err := e.sessions.FindByTransactionID(ctx, transactionID)
	if err != nil || s == nil {
		return StopTransactionResult{IdTagStatus: "Invalid", StatusReason: "UnknownTransaction"}, nil
	}

	if idTag != "" && s.OcppIdTag != "" && idTag != s.OcppIdTag {
		return StopTransactionResult{IdTagStatus: "Invalid", StatusReason: "InvalidToken"}, nil
	}

	// A session the station already reported as Finishing goes straight on
	// to COMPLETED; any other state must reach FINISHING via the table.
	if s.Status != domain.SessionFinishing {
		if err := Transition(s, domain.SessionFinishing, "StopTransaction", timestamp); err != nil {
			return StopTransactionResult{}, err
		}
	}
	if err := Transition(s, domain.SessionCompleted, "StopTransaction", timestamp); err != nil {
		return StopTransactionResult{}, err
	}

	s.EndTime = &timestamp
	s.MeterStopWh = meterStopWh
	if s.StartTime != nil {
		s.DurationMinutes = int(timestamp.Sub(*s.StartTime).Seconds() / 60)
	}
	s.EnergyDeliveredKwh = roundHalfUp3((meterStopWh-s.MeterStartWh)/1000)
	if s.DurationMinutes > 0 {
		s.AveragePowerKw = s.EnergyDeliveredKwh * 60 / float64(s.DurationMinutes)
	}
	s.StopReason = parseStopReason(reasonRaw)

	tf, err := e.resolveTariff(ctx, s)
	if err != nil {
		e.log.Warn("session: tariff resolution failed, using default", zap.Error(err))
		tf = tariff.DefaultTariff()
	}
	computed := tariff.Compute(tf, s)
	s.EnergyCost = computed.EnergyCost
	s.TimeCost = computed.TimeCost
	s.SessionCost = computed.SessionCost
	s.TotalCost = computed.TotalCost
	s.Pricing = computed.Pricing

	if err := e.sessions.Save(ctx, s); err != nil {
		return StopTransactionResult{}, fmt.Errorf("session: save: %w", err)
	}

	if connector, err := e.connectors.FindByStationAndConnector(ctx, s.StationID, s.ConnectorNumber); err == nil && connector != nil {
		connector.ReleaseSession()
		_ = e.connectors.Save(ctx, connector)
	}

	return StopTransactionResult{IdTagStatus: "Accepted", Session: s}, nil
}

func (e *Events) resolveTariff(ctx context.Context, s *domain.ChargingSession) (*domain.Tariff, error) {
	if s.TariffID != nil {
		if tf, err := e.tariffs.FindByID(ctx, *s.TariffID); err == nil && tf != nil {
			return tf, nil
		}
	}
	if tf, err := e.tariffs.FindDefaultForTenant(ctx, s.TenantID); err == nil && tf != nil {
		return tf, nil
	}
	return tariff.DefaultTariff(), nil
}

func roundHalfUp3(v float64) float64 {
	scaled := v * 1000
	if scaled >= 0 {
		return float64(int64(scaled+0.5)) / 1000
	}
	return float64(int64(scaled-0.5)) / 1000
}

// parseStopReason implements spec §4.5's stop-reason mapping: 1.6 direct,
// 2.0.1 case-insensitive with a default of OTHER.
func parseStopReason(raw string) domain.StopReason {
	switch strings.ToLower(raw) {
	case "local":
		return domain.StopReasonLocal
	case "evdisconnected", "ev_disconnected":
		return domain.StopReasonEVDisconnected
	case "hardreset", "hard_reset":
		return domain.StopReasonHardReset
	case "softreset", "soft_reset":
		return domain.StopReasonSoftReset
	case "powerloss", "power_loss":
		return domain.StopReasonPowerLoss
	case "remote":
		return domain.StopReasonRemote
	case "deauthorized", "de_authorized":
		return domain.StopReasonDeAuthorized
	case "emergencystop", "emergency_stop":
		return domain.StopReasonEmergencyStop
	default:
		return domain.StopReasonOther
	}
}
