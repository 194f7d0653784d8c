package tenant

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

func TestNewServiceWarmsIndexFromRepository(t *testing.T) {
	repo := &mocks.MockTenantRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Tenant, error) {
			return []domain.Tenant{
				{ID: "tenant-1", Code: "acme"},
				{ID: "tenant-2", Code: "globex", Config: domain.TenantConfig{CustomDomain: "globex.example.com"}},
			}, nil
		},
	}
	svc := NewService(repo, newTestLogger())

	id, ok := svc.ResolveCode("acme")
	if !ok || id != "tenant-1" {
		t.Errorf("expected acme to resolve to tenant-1, got %s ok=%v", id, ok)
	}

	id, ok = svc.ResolveCustomDomain("globex.example.com")
	if !ok || id != "tenant-2" {
		t.Errorf("expected custom domain to resolve to tenant-2, got %s ok=%v", id, ok)
	}

	if _, ok := svc.ResolveCode("unknown"); ok {
		t.Error("expected unknown code to not resolve")
	}
}

func TestCreateIndexesNewTenant(t *testing.T) {
	repo := &mocks.MockTenantRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Tenant, error) { return nil, nil },
		SaveFunc:    func(ctx context.Context, t *domain.Tenant) error { return nil },
	}
	svc := NewService(repo, newTestLogger())

	newTenant := &domain.Tenant{ID: "tenant-3", Code: "initech"}
	if err := svc.Create(context.Background(), newTenant); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !newTenant.Active {
		t.Error("expected new tenant to be active")
	}

	id, ok := svc.ResolveCode("initech")
	if !ok || id != "tenant-3" {
		t.Errorf("expected initech to resolve to tenant-3, got %s ok=%v", id, ok)
	}
}

func TestGetReturnsErrTenantNotFound(t *testing.T) {
	repo := &mocks.MockTenantRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Tenant, error) { return nil, nil },
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tenant, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, newTestLogger())

	_, err := svc.Get(context.Background(), "does-not-exist")
	if err != ErrTenantNotFound {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestSuspendAndReactivate(t *testing.T) {
	existing := &domain.Tenant{ID: "tenant-1", Code: "acme", Active: true}
	repo := &mocks.MockTenantRepository{
		FindAllFunc:  func(ctx context.Context) ([]domain.Tenant, error) { return nil, nil },
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tenant, error) { return existing, nil },
		SaveFunc:     func(ctx context.Context, t *domain.Tenant) error { return nil },
	}
	svc := NewService(repo, newTestLogger())

	if err := svc.Suspend(context.Background(), "tenant-1", "non-payment"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if existing.Active {
		t.Error("expected tenant to be suspended")
	}
	if existing.SuspendReason != "non-payment" {
		t.Errorf("expected suspend reason recorded, got %q", existing.SuspendReason)
	}

	if err := svc.Reactivate(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !existing.Active {
		t.Error("expected tenant to be reactivated")
	}
}

func TestValidateCurrentRejectsSuspendedTenant(t *testing.T) {
	suspended := &domain.Tenant{ID: "tenant-1", Code: "acme", Active: false}
	repo := &mocks.MockTenantRepository{
		FindAllFunc:  func(ctx context.Context) ([]domain.Tenant, error) { return nil, nil },
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tenant, error) { return suspended, nil },
	}
	svc := NewService(repo, newTestLogger())

	if err := svc.ValidateCurrent(context.Background(), "tenant-1"); err != ErrInvalidTenant {
		t.Fatalf("expected ErrInvalidTenant, got %v", err)
	}
}
