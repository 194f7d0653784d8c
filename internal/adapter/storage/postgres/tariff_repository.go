package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

type TariffRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTariffRepository(db *gorm.DB, log *zap.Logger) ports.TariffRepository {
	return &TariffRepository{db: db, log: log}
}

func (r *TariffRepository) Save(ctx context.Context, t *domain.Tariff) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		r.log.Error("failed to save tariff", zap.String("tariff_id", t.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *TariffRepository) FindByID(ctx context.Context, id string) (*domain.Tariff, error) {
	var t domain.Tariff
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TariffRepository) FindDefaultForTenant(ctx context.Context, tenantID string) (*domain.Tariff, error) {
	var t domain.Tariff
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, "DEFAULT").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TariffRepository) FindAll(ctx context.Context) ([]domain.Tariff, error) {
	var tariffs []domain.Tariff
	err := r.db.WithContext(ctx).Find(&tariffs).Error
	return tariffs, err
}
