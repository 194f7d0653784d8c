package domain

import "time"

// OCPPVersion identifies the protocol dialect a station speaks.
type OCPPVersion string

const (
	OCPPVersion15   OCPPVersion = "1.5"
	OCPPVersion16   OCPPVersion = "1.6"
	OCPPVersion20   OCPPVersion = "2.0"
	OCPPVersion201  OCPPVersion = "2.0.1"
)

// ChargingStation is keyed by (StationID, TenantID). StationID is the
// operator-assigned identifier presented on the OCPP URL path.
type ChargingStation struct {
	ID              string      `json:"id" gorm:"primaryKey"`
	StationID       string      `json:"station_id" gorm:"uniqueIndex:idx_station_tenant;size:100"`
	TenantID        string      `json:"tenant_id" gorm:"uniqueIndex:idx_station_tenant;size:50;index"`
	Vendor          string      `json:"vendor"`
	Model           string      `json:"model"`
	SerialNumber    string      `json:"serial_number,omitempty"`
	FirmwareVersion string      `json:"firmware_version,omitempty"`
	OCPPVersion     OCPPVersion `json:"ocpp_version"`

	HeartbeatIntervalSeconds  int `json:"heartbeat_interval_seconds"`
	MeterSampleIntervalSeconds int `json:"meter_sample_interval_seconds"`
	ConnectionTimeoutSeconds  int `json:"connection_timeout_seconds"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	OperatorMetadata map[string]string `json:"operator_metadata" gorm:"-"`

	Maintenance       bool   `json:"maintenance"`
	MaintenanceReason string `json:"maintenance_reason,omitempty"`

	Stats StationStatistics `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`

	// Transient runtime attributes, not necessarily persisted per-write.
	Connected     bool       `json:"connected" gorm:"-"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty" gorm:"-"`
	LastBootAt    *time.Time `json:"last_boot_at,omitempty" gorm:"-"`

	Connectors []Connector `json:"connectors,omitempty" gorm:"-"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// StationStatistics accumulates lifetime counters for a station.
type StationStatistics struct {
	CumulativeEnergyKwh float64 `json:"cumulative_energy_kwh"`
	TotalSessions       int     `json:"total_sessions"`
	TotalRevenue        float64 `json:"total_revenue"`
}

// DefaultHeartbeatIntervalSeconds, per spec §3.
const (
	DefaultHeartbeatIntervalSeconds   = 300
	MinHeartbeatIntervalSeconds       = 30
	MaxHeartbeatIntervalSeconds       = 3600
	DefaultMeterSampleIntervalSeconds = 60
	MinMeterSampleIntervalSeconds     = 5
	MaxMeterSampleIntervalSeconds     = 3600
	DefaultConnectionTimeoutSeconds   = 60
	MinConnectionTimeoutSeconds       = 10
	MaxConnectionTimeoutSeconds       = 600
)

// IsOnline reports whether the station is connected and within its
// heartbeat+timeout window (spec §3).
func (s *ChargingStation) IsOnline(now time.Time) bool {
	if !s.Connected || s.LastHeartbeat == nil {
		return false
	}
	deadline := s.LastHeartbeat.Add(
		time.Duration(s.HeartbeatIntervalSeconds)*time.Second +
			time.Duration(s.ConnectionTimeoutSeconds)*time.Second,
	)
	return now.Before(deadline)
}

// ConnectorStatus mirrors the OCPP status enumeration 1:1.
type ConnectorStatus string

const (
	ConnectorStatusAvailable   ConnectorStatus = "AVAILABLE"
	ConnectorStatusOccupied    ConnectorStatus = "OCCUPIED"
	ConnectorStatusReserved    ConnectorStatus = "RESERVED"
	ConnectorStatusUnavailable ConnectorStatus = "UNAVAILABLE"
	ConnectorStatusFaulted     ConnectorStatus = "FAULTED"
)

// ConnectorErrorCode is the fixed OCPP error-code set reported alongside a
// status notification.
type ConnectorErrorCode string

const (
	ConnectorErrorNone                  ConnectorErrorCode = "NoError"
	ConnectorErrorConnectorLockFailure  ConnectorErrorCode = "ConnectorLockFailure"
	ConnectorErrorEVCommunicationError  ConnectorErrorCode = "EVCommunicationError"
	ConnectorErrorGroundFailure         ConnectorErrorCode = "GroundFailure"
	ConnectorErrorHighTemperature       ConnectorErrorCode = "HighTemperature"
	ConnectorErrorInternalError         ConnectorErrorCode = "InternalError"
	ConnectorErrorOverCurrentFailure    ConnectorErrorCode = "OverCurrentFailure"
	ConnectorErrorPowerMeterFailure     ConnectorErrorCode = "PowerMeterFailure"
	ConnectorErrorPowerSwitchFailure    ConnectorErrorCode = "PowerSwitchFailure"
	ConnectorErrorReaderFailure         ConnectorErrorCode = "ReaderFailure"
	ConnectorErrorResetFailure          ConnectorErrorCode = "ResetFailure"
	ConnectorErrorUnderVoltage          ConnectorErrorCode = "UnderVoltage"
	ConnectorErrorOverVoltage           ConnectorErrorCode = "OverVoltage"
	ConnectorErrorWeakSignal            ConnectorErrorCode = "WeakSignal"
	ConnectorErrorOther                 ConnectorErrorCode = "Other"
)

// PowerType of a connector.
type PowerType string

const (
	PowerTypeAC1Phase PowerType = "AC_1_PHASE"
	PowerTypeAC3Phase PowerType = "AC_3_PHASE"
	PowerTypeDC       PowerType = "DC"
)

// ConnectorFormat of the physical coupler.
type ConnectorFormat string

const (
	ConnectorFormatSocket ConnectorFormat = "SOCKET"
	ConnectorFormatCable  ConnectorFormat = "CABLE"
)

// ConnectorReservation holds the pending reservation on a connector.
type ConnectorReservation struct {
	ReservationID string     `json:"reservation_id,omitempty"`
	IdTag         string     `json:"id_tag,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Connector is a child of ChargingStation, keyed by (StationID, ConnectorID).
type Connector struct {
	ID          string `json:"id" gorm:"primaryKey"`
	StationID   string `json:"station_id" gorm:"uniqueIndex:idx_station_connector;size:100;index"`
	TenantID    string `json:"tenant_id" gorm:"size:50;index"`
	ConnectorID int    `json:"connector_id" gorm:"uniqueIndex:idx_station_connector"`

	Status    ConnectorStatus    `json:"status"`
	ErrorCode ConnectorErrorCode `json:"error_code"`

	Type           string          `json:"type,omitempty"`
	Standard       string          `json:"standard,omitempty"` // IEC_62196_T1, IEC_62196_T2, CHADEMO, ...
	Format         ConnectorFormat `json:"format,omitempty"`
	PowerType      PowerType       `json:"power_type,omitempty"`
	MaxVoltageV    float64         `json:"max_voltage_v,omitempty"`
	MaxAmperageA   float64         `json:"max_amperage_a,omitempty"`
	MaxElectricPowerKw float64     `json:"max_electric_power_kw,omitempty"`

	CurrentTransactionID  *int64  `json:"current_transaction_id,omitempty"`
	CurrentIdTag          string  `json:"current_id_tag,omitempty"`
	CurrentChargingPowerKw float64 `json:"current_charging_power_kw,omitempty"`
	CurrentEnergyKwh       float64 `json:"current_energy_kwh,omitempty"`
	SessionStart           *time.Time `json:"session_start,omitempty"`

	Reservation ConnectorReservation `json:"reservation" gorm:"embedded;embeddedPrefix:reservation_"`

	Maintenance bool `json:"maintenance"`

	Stats ConnectorStatistics `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// ConnectorStatistics accumulates lifetime counters for a connector.
type ConnectorStatistics struct {
	TotalSessions       int     `json:"total_sessions"`
	CumulativeEnergyKwh float64 `json:"cumulative_energy_kwh"`
}

// IsReservationExpired reports whether the current reservation, if any, has
// lapsed as of now (spec §3 invariant ii).
func (c *Connector) IsReservationExpired(now time.Time) bool {
	if c.Reservation.ReservationID == "" || c.Reservation.ExpiresAt == nil {
		return false
	}
	return now.After(*c.Reservation.ExpiresAt)
}

// ReleaseReservation clears a connector's reservation.
func (c *Connector) ReleaseReservation() {
	c.Reservation = ConnectorReservation{}
}

// IsOccupiedByTransaction reports invariant (i): a bound transaction implies
// an idTag and OCCUPIED status.
func (c *Connector) IsOccupiedByTransaction() bool {
	return c.CurrentTransactionID != nil && c.CurrentIdTag != "" && c.Status == ConnectorStatusOccupied
}

// StartSession binds a transaction onto the connector.
func (c *Connector) StartSession(transactionID int64, idTag string, meterStart float64, startedAt time.Time) {
	c.CurrentTransactionID = &transactionID
	c.CurrentIdTag = idTag
	c.CurrentEnergyKwh = 0
	c.SessionStart = &startedAt
	c.Status = ConnectorStatusOccupied
}

// ReleaseSession clears the active transaction and returns the connector to
// AVAILABLE, per spec §4.5 StopTransaction handling.
func (c *Connector) ReleaseSession() {
	c.CurrentTransactionID = nil
	c.CurrentIdTag = ""
	c.CurrentChargingPowerKw = 0
	c.CurrentEnergyKwh = 0
	c.SessionStart = nil
	c.Status = ConnectorStatusAvailable
}
