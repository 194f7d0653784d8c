package tariff

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tariff"
)

// Service administers tariffs and exposes the cost engine to callers
// outside the OCPP StopTransaction path (e.g. a cost-estimate endpoint).
type Service struct {
	tariffs ports.TariffRepository
	log     *zap.Logger
}

func NewService(tariffs ports.TariffRepository, log *zap.Logger) ports.TariffService {
	return &Service{tariffs: tariffs, log: log}
}

func (s *Service) Save(ctx context.Context, t *domain.Tariff) error {
	now := time.Now()
	t.Audit.CreatedAt = now
	t.Audit.UpdatedAt = now
	return s.tariffs.Save(ctx, t)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Tariff, error) {
	return s.tariffs.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Tariff, error) {
	return s.tariffs.FindAll(ctx)
}

func (s *Service) ComputeCost(ctx context.Context, sess *domain.ChargingSession) (*domain.ChargingSession, error) {
	var t *domain.Tariff
	var err error
	if sess.TariffID != nil {
		t, err = s.tariffs.FindByID(ctx, *sess.TariffID)
		if err != nil {
			return nil, err
		}
	}
	if t == nil {
		t, err = s.tariffs.FindDefaultForTenant(ctx, sess.TenantID)
		if err != nil {
			return nil, err
		}
	}
	result := tariff.Compute(t, sess)
	return &result, nil
}
