package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

// Service answers charging-session queries for the HTTP edge. The state
// machine itself lives in internal/session.Events, driven directly by the
// OCPP handlers; this service is read-only.
type Service struct {
	sessions ports.SessionRepository
	log      *zap.Logger
}

func NewService(sessions ports.SessionRepository, log *zap.Logger) ports.SessionService {
	return &Service{sessions: sessions, log: log}
}

func (s *Service) Get(ctx context.Context, sessionUUID string) (*domain.ChargingSession, error) {
	return s.sessions.FindBySessionUUID(ctx, sessionUUID)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error) {
	return s.sessions.FindByUser(ctx, userID, limit, offset)
}

func (s *Service) Statistics(ctx context.Context) (map[string]interface{}, error) {
	return s.sessions.Statistics(ctx)
}
