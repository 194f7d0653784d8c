package domain

import "time"

// TariffType classifies the pricing structure.
type TariffType string

const (
	TariffSimple    TariffType = "SIMPLE"
	TariffTimeBased TariffType = "TIME_BASED"
	TariffTiered    TariffType = "TIERED"
	TariffDynamic   TariffType = "DYNAMIC"
)

// PriceComponent is the billable dimension of a TariffElement.
type PriceComponent string

const (
	PriceComponentEnergy        PriceComponent = "ENERGY"
	PriceComponentTime          PriceComponent = "TIME"
	PriceComponentFlat          PriceComponent = "FLAT"
	PriceComponentParkingTime   PriceComponent = "PARKING_TIME"
	PriceComponentReservation   PriceComponent = "RESERVATION"
	PriceComponentTransaction   PriceComponent = "TRANSACTION"
)

// TariffElement is one priced restriction within a tariff.
type TariffElement struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	TariffID       string         `json:"tariff_id" gorm:"index"`
	PriceComponent PriceComponent `json:"price_component"`
	StepSize       float64        `json:"step_size,omitempty"`
	MinBand        *float64       `json:"min_band,omitempty"`
	MaxBand        *float64       `json:"max_band,omitempty"`
	DayMask        int            `json:"day_mask,omitempty"` // bitmask Mon=1<<0 ... Sun=1<<6
	TimeFrom       string         `json:"time_from,omitempty"` // "HH:MM"
	TimeUntil      string         `json:"time_until,omitempty"`
}

// Tariff is the pricing rule evaluated at transaction stop (spec §3, §4.6).
type Tariff struct {
	ID       string     `json:"id" gorm:"primaryKey"`
	TenantID string     `json:"tenant_id" gorm:"index"`
	Code     string     `json:"code" gorm:"index"`
	Name     string     `json:"name"`
	Type     TariffType `json:"type"`
	Currency string     `json:"currency"`

	PricePerKwh    *float64 `json:"price_per_kwh,omitempty"`
	PricePerMinute *float64 `json:"price_per_minute,omitempty"`
	PricePerHour   *float64 `json:"price_per_hour,omitempty"`

	ServiceFee    float64 `json:"service_fee,omitempty"`
	ConnectionFee float64 `json:"connection_fee,omitempty"`

	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`

	RestrictionDayMask int    `json:"restriction_day_mask,omitempty"`
	RestrictionFrom    string `json:"restriction_from,omitempty"`
	RestrictionUntil   string `json:"restriction_until,omitempty"`

	MinChargeAmount  *float64 `json:"min_charge_amount,omitempty"`
	MaxChargeAmount  *float64 `json:"max_charge_amount,omitempty"`
	MinDurationMins  *int     `json:"min_duration_minutes,omitempty"`
	MaxDurationMins  *int     `json:"max_duration_minutes,omitempty"`

	// Power-banded prices: slow <22kW, fast 22-50kW, rapid >=50kW.
	PricePerKwSlow  *float64 `json:"price_per_kw_slow,omitempty"`
	PricePerKwFast  *float64 `json:"price_per_kw_fast,omitempty"`
	PricePerKwRapid *float64 `json:"price_per_kw_rapid,omitempty"`

	BillingIncrementSeconds float64 `json:"billing_increment_seconds,omitempty"`
	BillingIncrementKwh     float64 `json:"billing_increment_kwh,omitempty"`

	TaxRate     *float64 `json:"tax_rate,omitempty"`
	TaxIncluded bool     `json:"tax_included,omitempty"`

	IsDefault bool `json:"is_default"`
	IsPublic  bool `json:"is_public"`
	Active    bool `json:"active"`

	Elements []TariffElement `json:"elements,omitempty" gorm:"-"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// IsCurrentlyValid reports whether the tariff is active and now falls
// within its validity window (spec §3).
func (t *Tariff) IsCurrentlyValid(now time.Time) bool {
	if !t.Active {
		return false
	}
	if t.ValidFrom != nil && now.Before(*t.ValidFrom) {
		return false
	}
	if t.ValidUntil != nil && now.After(*t.ValidUntil) {
		return false
	}
	return true
}

// PowerBand classifies a charging power level per spec §4.6.
type PowerBand string

const (
	PowerBandSlow  PowerBand = "SLOW"  // < 22kW
	PowerBandFast  PowerBand = "FAST"  // 22-50kW
	PowerBandRapid PowerBand = "RAPID" // >= 50kW
)

// ClassifyPowerBand buckets a maxPowerKw reading into a PowerBand.
func ClassifyPowerBand(maxPowerKw float64) PowerBand {
	switch {
	case maxPowerKw >= 50:
		return PowerBandRapid
	case maxPowerKw >= 22:
		return PowerBandFast
	default:
		return PowerBandSlow
	}
}
