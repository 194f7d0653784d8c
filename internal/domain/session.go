package domain

import "time"

// ChargingSessionStatus is the state of the per-connector transaction
// lifecycle, per spec §3 / §4.5.
type ChargingSessionStatus string

const (
	SessionPending        ChargingSessionStatus = "PENDING"
	SessionAuthorizing     ChargingSessionStatus = "AUTHORIZING"
	SessionAuthorized      ChargingSessionStatus = "AUTHORIZED"
	SessionStarting        ChargingSessionStatus = "STARTING"
	SessionCharging         ChargingSessionStatus = "CHARGING"
	SessionSuspendedEV      ChargingSessionStatus = "SUSPENDED_EV"
	SessionSuspendedEVSE    ChargingSessionStatus = "SUSPENDED_EVSE"
	SessionFinishing        ChargingSessionStatus = "FINISHING"
	SessionCompleted        ChargingSessionStatus = "COMPLETED"
	SessionFailed           ChargingSessionStatus = "FAILED"
	SessionCancelled        ChargingSessionStatus = "CANCELLED"
)

// StopReason is the parsed reason a station gave for stopping a transaction.
type StopReason string

const (
	StopReasonLocal          StopReason = "LOCAL"
	StopReasonEVDisconnected StopReason = "EV_DISCONNECTED"
	StopReasonHardReset      StopReason = "HARD_RESET"
	StopReasonSoftReset      StopReason = "SOFT_RESET"
	StopReasonPowerLoss      StopReason = "POWER_LOSS"
	StopReasonRemote         StopReason = "REMOTE"
	StopReasonDeAuthorized   StopReason = "DE_AUTHORIZED"
	StopReasonEmergencyStop  StopReason = "EMERGENCY_STOP"
	StopReasonOther          StopReason = "OTHER"
)

// Measurand identifies what a MeterValue sample measures.
type Measurand string

const (
	MeasurandEnergyActiveImportRegister Measurand = "ENERGY_ACTIVE_IMPORT_REGISTER"
	MeasurandEnergyActiveExportRegister Measurand = "ENERGY_ACTIVE_EXPORT_REGISTER"
	MeasurandPowerActiveImport          Measurand = "POWER_ACTIVE_IMPORT"
	MeasurandPowerActiveExport          Measurand = "POWER_ACTIVE_EXPORT"
	MeasurandCurrentImport              Measurand = "CURRENT_IMPORT"
	MeasurandCurrentExport              Measurand = "CURRENT_EXPORT"
	MeasurandVoltage                    Measurand = "VOLTAGE"
	MeasurandSoC                        Measurand = "SOC"
	MeasurandTemperature                Measurand = "TEMPERATURE"
	MeasurandFrequency                  Measurand = "FREQUENCY"
)

// MeterValue is one sampled measurement appended to a session. Children hold
// the parent's opaque id; MeterValues are append-only (spec §3 invariant iv).
type MeterValue struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	SessionID   string    `json:"session_id" gorm:"index"`
	Timestamp   time.Time `json:"timestamp"`
	Measurand   Measurand `json:"measurand"`
	RawValue    string    `json:"raw_value"`
	Unit        string    `json:"unit,omitempty"`
	Context     string    `json:"context,omitempty"`
	Location    string    `json:"location,omitempty"`
	Phase       string    `json:"phase,omitempty"`

	// Derived, typed projections populated per the measurand table in §4.5.
	EnergyKwh      *float64 `json:"energy_kwh,omitempty"`
	PowerKw        *float64 `json:"power_kw,omitempty"`
	CurrentA       *float64 `json:"current_a,omitempty"`
	VoltageV       *float64 `json:"voltage_v,omitempty"`
	SocPercent     *float64 `json:"soc_percent,omitempty"`
	TemperatureC   *float64 `json:"temperature_c,omitempty"`
}

// StatusHistoryEntry is one append-only transition record.
type StatusHistoryEntry struct {
	ID         string                `json:"id" gorm:"primaryKey"`
	SessionID  string                `json:"session_id" gorm:"index"`
	FromStatus ChargingSessionStatus `json:"from_status"`
	ToStatus   ChargingSessionStatus `json:"to_status"`
	Timestamp  time.Time             `json:"timestamp"`
	Reason     string                `json:"reason,omitempty"`
}

// PricingSnapshot freezes the tariff terms applied at stop time.
type PricingSnapshot struct {
	Currency       string  `json:"currency,omitempty"`
	PricePerKwh    float64 `json:"price_per_kwh,omitempty"`
	PricePerMinute float64 `json:"price_per_minute,omitempty"`
}

// ChargingSession is the transaction-scoped record of one charging event on
// one connector. sessionUuid is globally unique; the record is tenant-scoped.
type ChargingSession struct {
	SessionUUID string                `json:"session_uuid" gorm:"primaryKey"`
	TenantID    string                `json:"tenant_id" gorm:"index"`

	StationID   string `json:"station_id" gorm:"index"`
	ConnectorID string `json:"connector_id" gorm:"index"`
	ConnectorNumber int `json:"connector_number"`

	Status ChargingSessionStatus `json:"status"`

	// OcppTransactionID is the server-allocated integer binding, immutable
	// once set and unique per tenant (spec §3 invariant iii). For OCPP 2.0.1
	// the station's string transactionId is hashed into this integer key —
	// see the Open Question in spec §9, carried here unresolved by design.
	OcppTransactionID *int64 `json:"ocpp_transaction_id,omitempty" gorm:"uniqueIndex:idx_tenant_txn"`
	OcppIdTag         string `json:"ocpp_id_tag,omitempty"`

	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	AuthorizationTime *time.Time `json:"authorization_time,omitempty"`

	MeterStartWh float64 `json:"meter_start_wh"`
	MeterStopWh  float64 `json:"meter_stop_wh"`

	EnergyDeliveredKwh float64 `json:"energy_delivered_kwh"`
	DurationMinutes    int     `json:"duration_minutes"`
	MaxPowerKw         float64 `json:"max_power_kw"`
	AveragePowerKw     float64 `json:"average_power_kw"`

	StopReason StopReason `json:"stop_reason,omitempty"`

	TariffID *string         `json:"tariff_id,omitempty"`
	Pricing  PricingSnapshot `json:"pricing" gorm:"embedded;embeddedPrefix:pricing_"`

	EnergyCost  float64 `json:"energy_cost"`
	TimeCost    float64 `json:"time_cost"`
	ServiceFee  float64 `json:"service_fee"`
	SessionCost float64 `json:"session_cost"`
	TotalCost   float64 `json:"total_cost"`

	VehicleID     string  `json:"vehicle_id,omitempty"`
	ReservationID *string `json:"reservation_id,omitempty"`
	RoamingID     string  `json:"roaming_id,omitempty"`

	MeterValues   []MeterValue         `json:"meter_values,omitempty" gorm:"-"`
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty" gorm:"-"`

	// rollingPowerSum/rollingPowerSamples back the averagePowerKw projection
	// during an active session (§4.5 MeterValues handling); not persisted.
	rollingPowerSum     float64 `gorm:"-"`
	rollingPowerSamples int     `gorm:"-"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// IsActive reports whether the session occupies its connector, per spec §3
// invariant (i): "active" in {STARTING, CHARGING, SUSPENDED_EV, SUSPENDED_EVSE}.
func (s *ChargingSession) IsActive() bool {
	switch s.Status {
	case SessionStarting, SessionCharging, SessionSuspendedEV, SessionSuspendedEVSE:
		return true
	default:
		return false
	}
}

// RecordPowerSample folds a power-kW sample into the rolling average used to
// derive AveragePowerKw while charging, and updates MaxPowerKw.
func (s *ChargingSession) RecordPowerSample(powerKw float64) {
	if powerKw > s.MaxPowerKw {
		s.MaxPowerKw = powerKw
	}
	s.rollingPowerSum += powerKw
	s.rollingPowerSamples++
	if s.rollingPowerSamples > 0 {
		s.AveragePowerKw = s.rollingPowerSum / float64(s.rollingPowerSamples)
	}
}
