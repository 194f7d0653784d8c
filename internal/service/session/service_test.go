package session

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestGetPassesThroughToRepository(t *testing.T) {
	var lookedUp string
	sessions := &mocks.MockSessionRepository{
		FindBySessionUUIDFunc: func(ctx context.Context, uuid string) (*domain.ChargingSession, error) {
			lookedUp = uuid
			return &domain.ChargingSession{SessionUUID: uuid}, nil
		},
	}
	svc := NewService(sessions, newTestLogger())

	got, err := svc.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookedUp != "session-1" || got.SessionUUID != "session-1" {
		t.Errorf("expected lookup for session-1, got %q / %+v", lookedUp, got)
	}
}

func TestListByUserPassesThroughToRepository(t *testing.T) {
	var gotUserID string
	var gotLimit, gotOffset int
	sessions := &mocks.MockSessionRepository{
		FindByUserFunc: func(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error) {
			gotUserID, gotLimit, gotOffset = userID, limit, offset
			return []domain.ChargingSession{{SessionUUID: "s1"}, {SessionUUID: "s2"}}, nil
		},
	}
	svc := NewService(sessions, newTestLogger())

	list, err := svc.ListByUser(context.Background(), "user-1", 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUserID != "user-1" || gotLimit != 10 || gotOffset != 20 {
		t.Errorf("expected pass-through args, got user=%s limit=%d offset=%d", gotUserID, gotLimit, gotOffset)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(list))
	}
}

func TestStatisticsPassesThroughToRepository(t *testing.T) {
	sessions := &mocks.MockSessionRepository{
		StatisticsFunc: func(ctx context.Context) (map[string]interface{}, error) {
			return map[string]interface{}{"active_sessions": 3}, nil
		},
	}
	svc := NewService(sessions, newTestLogger())

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats["active_sessions"] != 3 {
		t.Errorf("expected active_sessions 3, got %v", stats["active_sessions"])
	}
}
