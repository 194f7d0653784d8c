package v16

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ocpp/ocpperr"
	"github.com/csms-go/csms/internal/ocpp/router"
	sessionrpc "github.com/csms-go/csms/internal/ocpp/session"
	sessionevt "github.com/csms-go/csms/internal/session"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tenant"
)

// RegisterHandlers binds every OCPP 1.6 action this CSMS supports onto rt,
// following the teacher's per-action decode/validate/respond shape but
// delegating all state to the shared session.Events engine.
func RegisterHandlers(rt *router.Router, stations ports.StationRepository, events *sessionevt.Events) {
	rt.Register("1.6", "BootNotification", bootNotificationHandler(stations))
	rt.Register("1.6", "Heartbeat", heartbeatHandler())
	rt.Register("1.6", "Authorize", authorizeHandler(events))
	rt.Register("1.6", "StartTransaction", startTransactionHandler(events))
	rt.Register("1.6", "StopTransaction", stopTransactionHandler(events))
	rt.Register("1.6", "MeterValues", meterValuesHandler(events))
	rt.Register("1.6", "StatusNotification", statusNotificationHandler(stations, events))
}

type bootNotificationReq struct {
	ChargePointVendor string `json:"chargePointVendor"`
	ChargePointModel  string `json:"chargePointModel"`
	ChargePointSerial string `json:"chargePointSerialNumber,omitempty"`
	FirmwareVersion   string `json:"firmwareVersion,omitempty"`
}

type bootNotificationResp struct {
	Status      string `json:"status"`
	CurrentTime string `json:"currentTime"`
	Interval    int    `json:"interval"`
}

// defaultHeartbeatIntervalSeconds applies only when the station record has
// no configured HeartbeatIntervalSeconds yet (e.g. first-ever boot).
const defaultHeartbeatIntervalSeconds = 300

func bootNotificationHandler(stations ports.StationRepository) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req bootNotificationReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormationViolation, "invalid BootNotification: %v", err))
		}

		interval := defaultHeartbeatIntervalSeconds
		if station, err := stations.FindByStationID(ctx, sess.StationID); err == nil && station != nil {
			station.Vendor = req.ChargePointVendor
			station.Model = req.ChargePointModel
			if req.ChargePointSerial != "" {
				station.SerialNumber = req.ChargePointSerial
			}
			if req.FirmwareVersion != "" {
				station.FirmwareVersion = req.FirmwareVersion
			}
			if station.HeartbeatIntervalSeconds > 0 {
				interval = station.HeartbeatIntervalSeconds
			}
			_ = stations.UpdateHeartbeat(ctx, sess.StationID, time.Now())
			_ = stations.SetConnected(ctx, sess.StationID, true)
			_ = stations.Save(ctx, station)
		}

		sess.SetBootNotificationStatus("Accepted")
		return ocpperr.Ok(bootNotificationResp{
			Status:      "Accepted",
			CurrentTime: time.Now().UTC().Format(time.RFC3339),
			Interval:    interval,
		})
	}
}

type heartbeatResp struct {
	CurrentTime string `json:"currentTime"`
}

func heartbeatHandler() router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		return ocpperr.Ok(heartbeatResp{CurrentTime: time.Now().UTC().Format(time.RFC3339)})
	}
}

type authorizeReq struct {
	IdTag string `json:"idTag"`
}

type idTagInfo struct {
	Status string `json:"status"`
}

type authorizeResp struct {
	IdTagInfo idTagInfo `json:"idTagInfo"`
}

func authorizeHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req authorizeReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormationViolation, "invalid Authorize: %v", err))
		}
		tenantID, _ := tenant.FromContext(ctx)
		result, err := events.Authorize(ctx, tenantID, req.IdTag)
		if err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "authorize: %v", err))
		}
		return ocpperr.Ok(authorizeResp{IdTagInfo: idTagInfo{Status: result.Status}})
	}
}

type startTransactionReq struct {
	ConnectorId   int    `json:"connectorId"`
	IdTag         string `json:"idTag"`
	MeterStart    int    `json:"meterStart"`
	Timestamp     string `json:"timestamp"`
	ReservationId *int   `json:"reservationId,omitempty"`
}

type startTransactionResp struct {
	TransactionId int       `json:"transactionId"`
	IdTagInfo     idTagInfo `json:"idTagInfo"`
}

func startTransactionHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req startTransactionReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormationViolation, "invalid StartTransaction: %v", err))
		}
		ts := parseTimestamp(req.Timestamp)
		tenantID, _ := tenant.FromContext(ctx)

		var reservationID *string
		if req.ReservationId != nil {
			s := itoa(*req.ReservationId)
			reservationID = &s
		}

		result, err := events.StartTransaction(ctx, tenantID, sess.StationID, req.ConnectorId, req.IdTag, float64(req.MeterStart), ts, reservationID, nil)
		if err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "start transaction: %v", err))
		}
		return ocpperr.Ok(startTransactionResp{
			TransactionId: int(result.TransactionID),
			IdTagInfo:     idTagInfo{Status: result.IdTagStatus},
		})
	}
}

type stopTransactionReq struct {
	TransactionId   int              `json:"transactionId"`
	MeterStop       int              `json:"meterStop"`
	Timestamp       string           `json:"timestamp"`
	IdTag           string           `json:"idTag,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	TransactionData []meterValueWire `json:"transactionData,omitempty"`
}

type stopTransactionResp struct {
	IdTagInfo idTagInfo `json:"idTagInfo"`
}

func stopTransactionHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req stopTransactionReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormationViolation, "invalid StopTransaction: %v", err))
		}
		ts := parseTimestamp(req.Timestamp)
		txnID := int64(req.TransactionId)

		// transactionData carries the meter readings taken across the
		// transaction's lifetime (SAMPLE_PERIODIC, at the OUTLET), sent
		// only in StopTransaction.req rather than as separate MeterValues
		// calls; project them the same way a standalone MeterValues would.
		for _, mv := range req.TransactionData {
			mvts := parseTimestamp(mv.Timestamp)
			values := make([]sessionevt.SampledValue, 0, len(mv.SampledValue))
			for _, sv := range mv.SampledValue {
				values = append(values, sessionevt.SampledValue{
					Measurand: measurandFromWire(sv.Measurand),
					Value:     parseFloat(sv.Value),
					Unit:      sv.Unit,
				})
			}
			// StopTransaction.req carries no connectorId; transactionId alone
			// resolves the session inside MeterValues.
			if err := events.MeterValues(ctx, sess.StationID, 0, &txnID, mvts, values); err != nil {
				return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "transaction data: %v", err))
			}
		}

		result, err := events.StopTransaction(ctx, txnID, req.IdTag, float64(req.MeterStop), ts, req.Reason)
		if err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "stop transaction: %v", err))
		}
		return ocpperr.Ok(stopTransactionResp{IdTagInfo: idTagInfo{Status: result.IdTagStatus}})
	}
}

type meterValueWire struct {
	Timestamp    string             `json:"timestamp"`
	SampledValue []sampledValueWire `json:"sampledValue"`
}

type sampledValueWire struct {
	Value     string `json:"value"`
	Measurand string `json:"measurand,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

type meterValuesReq struct {
	ConnectorId   int              `json:"connectorId"`
	TransactionId *int             `json:"transactionId,omitempty"`
	MeterValue    []meterValueWire `json:"meterValue"`
}

func meterValuesHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req meterValuesReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormationViolation, "invalid MeterValues: %v", err))
		}

		var txnID *int64
		if req.TransactionId != nil {
			id := int64(*req.TransactionId)
			txnID = &id
		}

		for _, mv := range req.MeterValue {
			ts := parseTimestamp(mv.Timestamp)
			values := make([]sessionevt.SampledValue, 0, len(mv.SampledValue))
			for _, sv := range mv.SampledValue {
				values = append(values, sessionevt.SampledValue{
					Measurand: measurandFromWire(sv.Measurand),
					Value:     parseFloat(sv.Value),
					Unit:      sv.Unit,
				})
			}
			if err := events.MeterValues(ctx, sess.StationID, req.ConnectorId, txnID, ts, values); err != nil {
				return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "meter values: %v", err))
			}
		}

		return ocpperr.Ok(map[string]interface{}{})
	}
}

type statusNotificationReq struct {
	ConnectorId     int    `json:"connectorId"`
	ErrorCode       string `json:"errorCode"`
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp,omitempty"`
	VendorErrorCode string `json:"vendorErrorCode,omitempty"`
}

func statusNotificationHandler(stations ports.StationRepository, events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req statusNotificationReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormationViolation, "invalid StatusNotification: %v", err))
		}

		ts := parseTimestamp(req.Timestamp)
		status, errCode := connectorStatusFromWire(req.Status, req.ErrorCode)

		if err := events.StatusNotification(ctx, sess.StationID, req.ConnectorId, status, req.Status, errCode, ts); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "status notification: %v", err))
		}

		return ocpperr.Ok(map[string]interface{}{})
	}
}

func connectorStatusFromWire(status, errorCode string) (domain.ConnectorStatus, domain.ConnectorErrorCode) {
	var s domain.ConnectorStatus
	switch status {
	case "Available":
		s = domain.ConnectorStatusAvailable
	case "Occupied", "Charging", "SuspendedEV", "SuspendedEVSE", "Finishing", "Preparing":
		s = domain.ConnectorStatusOccupied
	case "Reserved":
		s = domain.ConnectorStatusReserved
	case "Unavailable":
		s = domain.ConnectorStatusUnavailable
	case "Faulted":
		s = domain.ConnectorStatusFaulted
	default:
		s = domain.ConnectorStatusAvailable
	}
	return s, domain.ConnectorErrorCode(errorCode)
}

func measurandFromWire(m string) domain.Measurand {
	if m == "" {
		return domain.MeasurandEnergyActiveImportRegister
	}
	return domain.Measurand(m)
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Now().UTC()
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
