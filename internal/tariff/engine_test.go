package tariff

import (
	"testing"

	"github.com/csms-go/csms/internal/domain"
)

func TestHappyPathDefaultTariff(t *testing.T) {
	tf := DefaultTariff()
	s := &domain.ChargingSession{
		EnergyDeliveredKwh: 18.0,
		DurationMinutes:    30,
	}

	got := Compute(tf, s)

	if got.TotalCost != 6.00 {
		t.Fatalf("expected total cost 6.00, got %v", got.TotalCost)
	}
}

func TestPowerBandWithTax(t *testing.T) {
	slow, fast, rapid, perMinute, taxRate := 0.25, 0.35, 0.55, 0.01, 0.20
	tf := &domain.Tariff{
		PricePerKwSlow:  &slow,
		PricePerKwFast:  &fast,
		PricePerKwRapid: &rapid,
		PricePerMinute:  &perMinute,
		ServiceFee:      1.00,
		TaxRate:         &taxRate,
		TaxIncluded:     false,
	}
	s := &domain.ChargingSession{
		MaxPowerKw:         45,
		EnergyDeliveredKwh: 10,
		DurationMinutes:    12,
	}

	got := Compute(tf, s)

	if got.TotalCost != 5.54 {
		t.Fatalf("expected total cost 5.54, got %v", got.TotalCost)
	}
}

func TestComputeIsPure(t *testing.T) {
	tf := DefaultTariff()
	s := &domain.ChargingSession{EnergyDeliveredKwh: 18.0, DurationMinutes: 30}

	first := Compute(tf, s)
	second := Compute(tf, s)

	if first.TotalCost != second.TotalCost {
		t.Fatalf("expected idempotent computation, got %v then %v", first.TotalCost, second.TotalCost)
	}
}

func TestBillingIncrementRoundsUp(t *testing.T) {
	kwh := 0.30
	tf := &domain.Tariff{
		PricePerKwh:         &kwh,
		BillingIncrementKwh: 0.50,
	}
	s := &domain.ChargingSession{EnergyDeliveredKwh: 1.0}

	got := Compute(tf, s)
	// raw cost = 0.30, rounded up to next 0.50 multiple = 0.50
	if got.TotalCost != 0.50 {
		t.Fatalf("expected billing-increment rounded cost 0.50, got %v", got.TotalCost)
	}
}
