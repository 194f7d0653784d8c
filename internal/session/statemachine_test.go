package session

import (
	"testing"
	"time"

	"github.com/csms-go/csms/internal/domain"
)

func TestHappyPathTraversesCharging(t *testing.T) {
	s := &domain.ChargingSession{Status: domain.SessionPending}
	now := time.Now()

	steps := []domain.ChargingSessionStatus{
		domain.SessionAuthorizing,
		domain.SessionAuthorized,
		domain.SessionStarting,
		domain.SessionCharging,
		domain.SessionFinishing,
		domain.SessionCompleted,
	}
	for _, to := range steps {
		if err := Transition(s, to, "ocpp event", now); err != nil {
			t.Fatalf("unexpected error transitioning to %s: %v", to, err)
		}
	}
	if s.Status != domain.SessionCompleted {
		t.Fatalf("expected COMPLETED, got %s", s.Status)
	}
	if len(s.StatusHistory) != len(steps) {
		t.Fatalf("expected %d history entries, got %d", len(steps), len(s.StatusHistory))
	}
}

func TestDisallowedTransitionRejected(t *testing.T) {
	s := &domain.ChargingSession{Status: domain.SessionPending}
	err := Transition(s, domain.SessionCharging, "skip ahead", time.Now())
	if err == nil {
		t.Fatalf("expected InvalidStateError")
	}
	if s.Status != domain.SessionPending {
		t.Fatalf("expected no mutation on rejected transition, got %s", s.Status)
	}
	if len(s.StatusHistory) != 0 {
		t.Fatalf("expected no history entry on rejected transition")
	}
}

func TestSuspensionRejoinsCharging(t *testing.T) {
	s := &domain.ChargingSession{Status: domain.SessionCharging}
	if err := Transition(s, domain.SessionSuspendedEV, "ev suspended", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Transition(s, domain.SessionCharging, "resumed", time.Now()); err != nil {
		t.Fatalf("unexpected error resuming: %v", err)
	}
}

func TestFinishingCannotReturnToCharging(t *testing.T) {
	s := &domain.ChargingSession{Status: domain.SessionFinishing}
	if err := Transition(s, domain.SessionCharging, "nope", time.Now()); err == nil {
		t.Fatalf("expected rejection of FINISHING -> CHARGING")
	}
}
