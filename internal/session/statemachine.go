// Package session implements the charging-session state machine of spec
// §4.5: the transition-table guard over domain.ChargingSessionStatus and the
// append-only StatusHistory audit trail.
package session

import (
	"fmt"
	"time"

	"github.com/csms-go/csms/internal/domain"
)

// InvalidStateError is returned when a disallowed transition is attempted;
// the machine reports it and does not mutate (spec §4.5).
type InvalidStateError struct {
	From domain.ChargingSessionStatus
	To   domain.ChargingSessionStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session: invalid transition %s -> %s", e.From, e.To)
}

// transitions is the guard table of spec §4.5, keyed by (from, to).
var transitions = map[domain.ChargingSessionStatus]map[domain.ChargingSessionStatus]bool{
	domain.SessionPending: {
		domain.SessionAuthorizing: true,
		domain.SessionFailed:      true,
		domain.SessionCancelled:   true,
	},
	domain.SessionAuthorizing: {
		domain.SessionAuthorized: true,
		domain.SessionFailed:     true,
		domain.SessionCancelled:  true,
	},
	domain.SessionAuthorized: {
		domain.SessionStarting:  true,
		domain.SessionFailed:    true,
		domain.SessionCancelled: true,
	},
	domain.SessionStarting: {
		domain.SessionCharging:  true,
		domain.SessionFailed:    true,
		domain.SessionCancelled: true,
	},
	domain.SessionCharging: {
		domain.SessionSuspendedEV:   true,
		domain.SessionSuspendedEVSE: true,
		domain.SessionFinishing:     true,
		domain.SessionCompleted:     true,
		domain.SessionCancelled:     true,
	},
	domain.SessionSuspendedEV: {
		domain.SessionCharging:  true,
		domain.SessionFinishing: true,
		domain.SessionCompleted: true,
		domain.SessionFailed:    true,
	},
	domain.SessionSuspendedEVSE: {
		domain.SessionCharging:  true,
		domain.SessionFinishing: true,
		domain.SessionCompleted: true,
		domain.SessionFailed:    true,
	},
	domain.SessionFinishing: {
		domain.SessionCompleted: true,
		domain.SessionFailed:    true,
	},
}

// CanTransition reports whether from->to is an allowed edge in the table.
func CanTransition(from, to domain.ChargingSessionStatus) bool {
	edges, ok := transitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// Transition validates and applies from->to on s, appending a StatusHistory
// entry atomically with the status update. It mutates nothing on failure.
func Transition(s *domain.ChargingSession, to domain.ChargingSessionStatus, reason string, now time.Time) error {
	from := s.Status
	if !CanTransition(from, to) {
		return &InvalidStateError{From: from, To: to}
	}
	s.Status = to
	s.StatusHistory = append(s.StatusHistory, domain.StatusHistoryEntry{
		FromStatus: from,
		ToStatus:   to,
		Timestamp:  now,
		Reason:     reason,
	})
	return nil
}
