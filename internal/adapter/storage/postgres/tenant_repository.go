package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

type TenantRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTenantRepository(db *gorm.DB, log *zap.Logger) ports.TenantRepository {
	return &TenantRepository{db: db, log: log}
}

func (r *TenantRepository) Save(ctx context.Context, t *domain.Tenant) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		r.log.Error("failed to save tenant", zap.Error(err))
		return err
	}
	return nil
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) FindByCode(ctx context.Context, code string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.WithContext(ctx).First(&t, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) FindByCustomDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.WithContext(ctx).First(&t, "config_custom_domain = ?", domainName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) FindAll(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := r.db.WithContext(ctx).Find(&tenants).Error
	return tenants, err
}
