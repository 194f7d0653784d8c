package v201

import (
	"context"
	"encoding/json"
	"hash/fnv"
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

// transactionIDHash folds a 2.0.1 station's own string transactionId,
// mixed with the tenant id, into the int64 key session.Events binds
// sessions to (spec's Open Question on the 2.0.1 string/int64 mismatch:
// hash rather than widen the column). Deterministic, so "Started" and
// "Ended" for the same station-issued id always resolve to the same row.
func transactionIDHash(tenantID, stationTxnID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tenantID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(stationTxnID))
	return int64(h.Sum64())
}

// RegisterHandlers binds the OCPP 2.0.1 actions this CSMS supports onto rt.
// TransactionEvent folds the teacher's three-way "Started/Updated/Ended"
// dispatch into the same session.Events calls the 1.6 handlers use, since
// spec §4.5's state machine and cost computation are dialect-independent.
func RegisterHandlers(rt *router.Router, stations ports.StationRepository, events *sessionevt.Events) {
	rt.Register("2.0.1", "BootNotification", bootNotificationHandler(stations))
	rt.Register("2.0.1", "Heartbeat", heartbeatHandler())
	rt.Register("2.0.1", "Authorize", authorizeHandler(events))
	rt.Register("2.0.1", "TransactionEvent", transactionEventHandler(events))
	rt.Register("2.0.1", "MeterValues", meterValuesHandler(events))
	rt.Register("2.0.1", "StatusNotification", statusNotificationHandler(stations, events))
}

type chargingStationWire struct {
	Model           string `json:"model"`
	VendorName      string `json:"vendorName"`
	SerialNumber    string `json:"serialNumber,omitempty"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
}

type bootNotificationReq struct {
	ChargingStation chargingStationWire `json:"chargingStation"`
	Reason          string              `json:"reason"`
}

type bootNotificationResp struct {
	CurrentTime string `json:"currentTime"`
	Interval    int    `json:"interval"`
	Status      string `json:"status"`
}

// defaultHeartbeatIntervalSeconds applies only when the station record has
// no configured HeartbeatIntervalSeconds yet (e.g. first-ever boot).
const defaultHeartbeatIntervalSeconds = 300

func bootNotificationHandler(stations ports.StationRepository) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req bootNotificationReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormatViolation, "invalid BootNotification: %v", err))
		}

		interval := defaultHeartbeatIntervalSeconds
		if station, err := stations.FindByStationID(ctx, sess.StationID); err == nil && station != nil {
			station.Vendor = req.ChargingStation.VendorName
			station.Model = req.ChargingStation.Model
			if req.ChargingStation.SerialNumber != "" {
				station.SerialNumber = req.ChargingStation.SerialNumber
			}
			if req.ChargingStation.FirmwareVersion != "" {
				station.FirmwareVersion = req.ChargingStation.FirmwareVersion
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
			CurrentTime: time.Now().UTC().Format(time.RFC3339),
			Interval:    interval,
			Status:      "Accepted",
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

type idTokenWire struct {
	IdToken string `json:"idToken"`
	Type    string `json:"type"`
}

type idTokenInfoWire struct {
	Status string `json:"status"`
}

type authorizeReq struct {
	IdToken idTokenWire `json:"idToken"`
}

type authorizeResp struct {
	IdTokenInfo idTokenInfoWire `json:"idTokenInfo"`
}

func authorizeHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req authorizeReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormatViolation, "invalid Authorize: %v", err))
		}
		tenantID, _ := tenant.FromContext(ctx)
		result, err := events.Authorize(ctx, tenantID, req.IdToken.IdToken)
		if err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "authorize: %v", err))
		}
		return ocpperr.Ok(authorizeResp{IdTokenInfo: idTokenInfoWire{Status: result.Status}})
	}
}

type evseWire struct {
	Id          int `json:"id"`
	ConnectorId int `json:"connectorId"`
}

type transactionInfoWire struct {
	TransactionId string `json:"transactionId"`
}

type sampledValueWire struct {
	Value     string `json:"value"`
	Context   string `json:"context,omitempty"`
	Measurand string `json:"measurand,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

type meterValueWire struct {
	Timestamp    string             `json:"timestamp"`
	SampledValue []sampledValueWire `json:"sampledValue"`
}

type transactionEventReq struct {
	EventType       string              `json:"eventType"` // Started, Updated, Ended
	Timestamp       string              `json:"timestamp"`
	TriggerReason   string              `json:"triggerReason"`
	SeqNo           int                 `json:"seqNo"`
	TransactionInfo transactionInfoWire `json:"transactionInfo"`
	IdToken         *idTokenWire        `json:"idToken,omitempty"`
	Evse            *evseWire           `json:"evse,omitempty"`
	MeterValue      []meterValueWire    `json:"meterValue,omitempty"`
	MeterStop       *int                `json:"meterStop,omitempty"` // SPEC_FULL supplement: carries the final register at Ended
	Reason          string              `json:"stoppedReason,omitempty"`
}

type transactionEventResp struct {
	IdTokenInfo *idTokenInfoWire `json:"idTokenInfo,omitempty"`
}

// transactionEventHandler folds the 2.0.1 unified TransactionEvent message
// into the dialect-independent StartTransaction/MeterValues/StopTransaction
// calls of session.Events, keyed on eventType.
func transactionEventHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req transactionEventReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormatViolation, "invalid TransactionEvent: %v", err))
		}
		ts := parseTimestamp(req.Timestamp)
		tenantID, _ := tenant.FromContext(ctx)

		connectorID := 1
		if req.Evse != nil {
			connectorID = req.Evse.ConnectorId
		}

		switch req.EventType {
		case "Started":
			idTag := ""
			if req.IdToken != nil {
				idTag = req.IdToken.IdToken
			}
			meterStart := sampledEnergyWh(req.MeterValue)
			txnID := transactionIDHash(tenantID, req.TransactionInfo.TransactionId)
			result, err := events.StartTransaction(ctx, tenantID, sess.StationID, connectorID, idTag, meterStart, ts, nil, &txnID)
			if err != nil {
				return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "start transaction: %v", err))
			}
			return ocpperr.Ok(transactionEventResp{IdTokenInfo: &idTokenInfoWire{Status: result.IdTagStatus}})

		case "Updated":
			if err := meterValues(ctx, events, sess.StationID, connectorID, nil, req.MeterValue, ts); err != nil {
				return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "meter values: %v", err))
			}
			return ocpperr.Ok(transactionEventResp{})

		case "Ended":
			txnID := transactionIDHash(tenantID, req.TransactionInfo.TransactionId)
			idTag := ""
			if req.IdToken != nil {
				idTag = req.IdToken.IdToken
			}
			meterStop := sampledEnergyWh(req.MeterValue)
			if req.MeterStop != nil {
				meterStop = float64(*req.MeterStop)
			}
			result, err := events.StopTransaction(ctx, txnID, idTag, meterStop, ts, req.Reason)
			if err != nil {
				return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "stop transaction: %v", err))
			}
			return ocpperr.Ok(transactionEventResp{IdTokenInfo: &idTokenInfoWire{Status: result.IdTagStatus}})

		default:
			return ocpperr.Fail(ocpperr.Newf(ocpperr.PropertyConstraintViolation, "unknown eventType %q", req.EventType))
		}
	}
}

// sampledEnergyWh extracts the energy register sample (in Wh) from a
// TransactionEvent's meterValue list, defaulting to 0 when absent.
func sampledEnergyWh(mvs []meterValueWire) float64 {
	for _, mv := range mvs {
		for _, sv := range mv.SampledValue {
			if sv.Measurand == "" || sv.Measurand == "Energy.Active.Import.Register" {
				v := parseFloat(sv.Value)
				if sv.Unit == "kWh" {
					v *= 1000
				}
				return v
			}
		}
	}
	return 0
}

type meterValuesReq struct {
	EvseId     int              `json:"evseId"`
	MeterValue []meterValueWire `json:"meterValue"`
}

func meterValuesHandler(events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req meterValuesReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormatViolation, "invalid MeterValues: %v", err))
		}
		if err := meterValues(ctx, events, sess.StationID, req.EvseId, nil, req.MeterValue, time.Now()); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "meter values: %v", err))
		}
		return ocpperr.Ok(map[string]interface{}{})
	}
}

func meterValues(ctx context.Context, events *sessionevt.Events, stationID string, connectorID int, txnID *int64, mvs []meterValueWire, fallback time.Time) error {
	for _, mv := range mvs {
		ts := parseTimestamp(mv.Timestamp)
		if ts.IsZero() {
			ts = fallback
		}
		values := make([]sessionevt.SampledValue, 0, len(mv.SampledValue))
		for _, sv := range mv.SampledValue {
			values = append(values, sessionevt.SampledValue{
				Measurand: measurandFromWire(sv.Measurand),
				Value:     unitAdjusted(parseFloat(sv.Value), sv.Unit),
				Unit:      sv.Unit,
			})
		}
		if err := events.MeterValues(ctx, stationID, connectorID, txnID, ts, values); err != nil {
			return err
		}
	}
	return nil
}

// unitAdjusted normalises a 2.0.1 "kWh"/"kW" sample to the Wh/W scale that
// session.Events.projectMeterValue expects, matching the wire units the
// teacher's 1.6 path already sends.
func unitAdjusted(v float64, unit string) float64 {
	switch unit {
	case "kWh", "kW":
		return v * 1000
	default:
		return v
	}
}

type statusNotificationReq struct {
	Timestamp       string `json:"timestamp"`
	ConnectorStatus string `json:"connectorStatus"`
	EvseId          int    `json:"evseId"`
	ConnectorId     int    `json:"connectorId"`
}

func statusNotificationHandler(stations ports.StationRepository, events *sessionevt.Events) router.HandlerFunc {
	return func(ctx context.Context, sess *sessionrpc.Session, payload json.RawMessage) ocpperr.HandlerResult {
		var req statusNotificationReq
		if err := json.Unmarshal(payload, &req); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.FormatViolation, "invalid StatusNotification: %v", err))
		}

		ts := parseTimestamp(req.Timestamp)
		status, errCode := connectorStatusFromWire(req.ConnectorStatus)

		if err := events.StatusNotification(ctx, sess.StationID, req.ConnectorId, status, req.ConnectorStatus, errCode, ts); err != nil {
			return ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "status notification: %v", err))
		}

		return ocpperr.Ok(map[string]interface{}{})
	}
}

func connectorStatusFromWire(status string) (domain.ConnectorStatus, domain.ConnectorErrorCode) {
	switch status {
	case "Available":
		return domain.ConnectorStatusAvailable, domain.ConnectorErrorNone
	case "Occupied":
		return domain.ConnectorStatusOccupied, domain.ConnectorErrorNone
	case "Reserved":
		return domain.ConnectorStatusReserved, domain.ConnectorErrorNone
	case "Unavailable":
		return domain.ConnectorStatusUnavailable, domain.ConnectorErrorNone
	case "Faulted":
		return domain.ConnectorStatusFaulted, domain.ConnectorErrorInternalError
	default:
		return domain.ConnectorStatusAvailable, domain.ConnectorErrorNone
	}
}

func measurandFromWire(m string) domain.Measurand {
	switch m {
	case "", "Energy.Active.Import.Register":
		return domain.MeasurandEnergyActiveImportRegister
	case "Power.Active.Import":
		return domain.MeasurandPowerActiveImport
	case "Current.Import":
		return domain.MeasurandCurrentImport
	case "Voltage":
		return domain.MeasurandVoltage
	case "SoC":
		return domain.MeasurandSoC
	case "Temperature":
		return domain.MeasurandTemperature
	default:
		return domain.Measurand(m)
	}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
