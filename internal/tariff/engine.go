// Package tariff implements the cost computation engine of spec §4.6: fixed
// point decimal arithmetic (scale 4 internally, half-up to scale 2 at the
// end) over power-banded energy pricing, time pricing, billing-increment
// rounding, and tax.
package tariff

import (
	"github.com/shopspring/decimal"

	"github.com/csms-go/csms/internal/domain"
)

const internalScale = 4
const finalScale = 2

// DefaultTariff is the built-in fallback of spec §4.6 when a session names
// no tariff and the tenant has no default: "0.30 €/kWh + 0.02 €/min + no fee".
func DefaultTariff() *domain.Tariff {
	kwh := 0.30
	perMin := 0.02
	return &domain.Tariff{
		Code:           "DEFAULT",
		Name:           "Default tariff",
		Currency:       "EUR",
		PricePerKwh:    &kwh,
		PricePerMinute: &perMin,
		Active:         true,
		IsDefault:      true,
	}
}

func init() {
	decimal.DivisionPrecision = internalScale + 2
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(internalScale)
}

func decPtr(f *float64) (decimal.Decimal, bool) {
	if f == nil {
		return decimal.Zero, false
	}
	return dec(*f), true
}

// energyPrice implements spec §4.6 step 2: pick by power band when the
// banded prices are populated and maxPowerKw is known; else flat
// pricePerKwh; else zero.
func energyPrice(t *domain.Tariff, maxPowerKw float64, hasMaxPower bool) decimal.Decimal {
	if hasMaxPower && (t.PricePerKwSlow != nil || t.PricePerKwFast != nil || t.PricePerKwRapid != nil) {
		band := domain.ClassifyPowerBand(maxPowerKw)
		var chosen *float64
		switch band {
		case domain.PowerBandRapid:
			chosen = t.PricePerKwRapid
		case domain.PowerBandFast:
			chosen = t.PricePerKwFast
		default:
			chosen = t.PricePerKwSlow
		}
		if chosen != nil {
			return dec(*chosen)
		}
	}
	if p, ok := decPtr(t.PricePerKwh); ok {
		return p
	}
	return decimal.Zero
}

// Compute applies spec §4.6's five steps to s using tariff t and returns the
// computed fields; it does not mutate s. Compute is pure: repeated
// evaluation on the same inputs yields the same output (spec §8 property 6).
func Compute(t *domain.Tariff, s *domain.ChargingSession) domain.ChargingSession {
	out := *s

	connectionFee := dec(t.ConnectionFee)
	serviceFee := dec(t.ServiceFee)
	cost := connectionFee.Add(serviceFee)

	energyKwh := dec(s.EnergyDeliveredKwh)
	price := energyPrice(t, s.MaxPowerKw, s.MaxPowerKw > 0)
	energyCost := energyKwh.Mul(price).Round(internalScale)
	cost = cost.Add(energyCost)

	durationMinutes := decimal.NewFromInt(int64(s.DurationMinutes))
	var timeCost decimal.Decimal
	switch {
	case t.PricePerHour != nil:
		perHour := dec(*t.PricePerHour)
		timeCost = durationMinutes.Mul(perHour).Div(decimal.NewFromInt(60)).Round(internalScale)
	case t.PricePerMinute != nil:
		perMinute := dec(*t.PricePerMinute)
		timeCost = durationMinutes.Mul(perMinute).Round(internalScale)
	default:
		timeCost = decimal.Zero
	}
	cost = cost.Add(timeCost)

	// Step 4: billing-increment rounding — round cost up to the next
	// multiple of billingIncrementKwh when configured.
	if t.BillingIncrementKwh > 0 {
		inc := dec(t.BillingIncrementKwh)
		units := cost.Div(inc).Ceil()
		cost = units.Mul(inc).Round(internalScale)
	}

	subtotal := cost

	// Step 5: tax. The tax amount itself carries full internal precision;
	// only the final total is rounded half-up to 2 decimals.
	var tax decimal.Decimal
	if t.TaxRate != nil && !t.TaxIncluded {
		rate := dec(*t.TaxRate)
		tax = cost.Mul(rate).Round(internalScale)
		cost = cost.Add(tax)
	}

	out.EnergyCost, _ = energyCost.Round(finalScale).Float64()
	out.TimeCost, _ = timeCost.Round(finalScale).Float64()
	out.ServiceFee = t.ServiceFee
	out.SessionCost, _ = subtotal.Round(finalScale).Float64()
	out.TotalCost, _ = cost.Round(finalScale).Float64()
	out.Pricing = domain.PricingSnapshot{
		Currency:       t.Currency,
		PricePerKwh:    firstFloat(t.PricePerKwh),
		PricePerMinute: firstFloat(t.PricePerMinute),
	}

	return out
}

func firstFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
