package tariff

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

func TestComputeCostUsesSessionTariffWhenSet(t *testing.T) {
	tariffID := "tariff-1"
	price := 0.30
	var lookedUpID string
	tariffs := &mocks.MockTariffRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tariff, error) {
			lookedUpID = id
			return &domain.Tariff{ID: id, PricePerKwh: &price}, nil
		},
		FindDefaultForTenantFunc: func(ctx context.Context, tenantID string) (*domain.Tariff, error) {
			t.Fatal("expected default tariff lookup to be skipped when TariffID is set")
			return nil, nil
		},
	}
	svc := NewService(tariffs, newTestLogger())

	sess := &domain.ChargingSession{TenantID: "tenant-1", TariffID: &tariffID, EnergyDeliveredKwh: 10}
	got, err := svc.ComputeCost(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookedUpID != tariffID {
		t.Errorf("expected lookup for %s, got %s", tariffID, lookedUpID)
	}
	if got.TotalCost <= 0 {
		t.Errorf("expected positive total cost, got %v", got.TotalCost)
	}
}

func TestComputeCostFallsBackToDefaultTariff(t *testing.T) {
	var lookedUpTenant string
	price := 0.25
	tariffs := &mocks.MockTariffRepository{
		FindDefaultForTenantFunc: func(ctx context.Context, tenantID string) (*domain.Tariff, error) {
			lookedUpTenant = tenantID
			return &domain.Tariff{ID: "default", PricePerKwh: &price}, nil
		},
	}
	svc := NewService(tariffs, newTestLogger())

	sess := &domain.ChargingSession{TenantID: "tenant-2", EnergyDeliveredKwh: 10}
	got, err := svc.ComputeCost(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookedUpTenant != "tenant-2" {
		t.Errorf("expected default tariff lookup for tenant-2, got %s", lookedUpTenant)
	}
	if got.TotalCost <= 0 {
		t.Errorf("expected positive total cost, got %v", got.TotalCost)
	}
}

func TestSaveAndGetPassThrough(t *testing.T) {
	var saved *domain.Tariff
	tariffs := &mocks.MockTariffRepository{
		SaveFunc: func(ctx context.Context, tf *domain.Tariff) error {
			saved = tf
			return nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Tariff, error) {
			return &domain.Tariff{ID: id}, nil
		},
	}
	svc := NewService(tariffs, newTestLogger())

	tf := &domain.Tariff{ID: "tariff-3"}
	if err := svc.Save(context.Background(), tf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != tf {
		t.Error("expected Save to pass through to repository")
	}

	got, err := svc.Get(context.Background(), "tariff-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "tariff-3" {
		t.Errorf("expected tariff-3, got %s", got.ID)
	}
}

func TestListPassThrough(t *testing.T) {
	tariffs := &mocks.MockTariffRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Tariff, error) {
			return []domain.Tariff{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := NewService(tariffs, newTestLogger())

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 tariffs, got %d", len(list))
	}
}
