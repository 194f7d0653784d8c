package domain

import "time"

// ReservationStatus tracks the lifecycle of a connector reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusActive    ReservationStatus = "active" // consumed by a StartTransaction
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// Reservation reserves a connector for an idTag ahead of arrival. It
// references its station/connector by id only (spec §9: children hold the
// parent's opaque id, not a back-reference).
type Reservation struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	TenantID    string            `json:"tenant_id" gorm:"index"`
	UserID      string            `json:"user_id,omitempty" gorm:"index"`
	IdTag       string            `json:"id_tag"`
	StationID   string            `json:"station_id" gorm:"index"`
	ConnectorID int               `json:"connector_id"`
	Status      ReservationStatus `json:"status" gorm:"index"`
	StartTime   time.Time         `json:"start_time" gorm:"index"`
	EndTime     time.Time         `json:"end_time"`
	ActualArrival *time.Time      `json:"actual_arrival,omitempty"`
	SessionUUID string            `json:"session_uuid,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// IsActive reports whether the reservation has been consumed by a session.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// IsPending reports whether the reservation is awaiting arrival.
func (r *Reservation) IsPending() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}

// CanBeCancelled reports whether the reservation may still be cancelled.
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}

// IsExpired reports whether a pending reservation's grace window has lapsed,
// per the expiry sweep (SPEC_FULL §7 supplemented feature).
func (r *Reservation) IsExpired(now time.Time, gracePeriod time.Duration) bool {
	if r.Status != ReservationStatusConfirmed && r.Status != ReservationStatusPending {
		return false
	}
	return now.After(r.EndTime.Add(gracePeriod))
}
