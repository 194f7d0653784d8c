package domain

import "time"

// TenantType classifies the commercial role of a tenant.
type TenantType string

const (
	TenantTypeCPO        TenantType = "CPO"
	TenantTypeEMSP       TenantType = "EMSP"
	TenantTypeHub        TenantType = "HUB"
	TenantTypeEnterprise TenantType = "ENTERPRISE"
	TenantTypeDemo       TenantType = "DEMO"
	TenantTypeInternal   TenantType = "INTERNAL"
)

// TenantFeature is a flag a tenant may opt into.
type TenantFeature string

const (
	FeatureOCPP16        TenantFeature = "OCPP_1_6"
	FeatureOCPP201       TenantFeature = "OCPP_2_0_1"
	FeatureOCPI221       TenantFeature = "OCPI_2_2_1"
	FeatureSmartCharging TenantFeature = "SMART_CHARGING"
)

// TenantConfig holds per-tenant operational defaults.
type TenantConfig struct {
	Timezone        string        `json:"timezone"`
	Currency        string        `json:"currency"`
	MaxStations     int           `json:"max_stations"`
	MaxUsers        int           `json:"max_users"`
	ConnectTimeout  time.Duration `json:"connect_timeout"`
	WebhookURL      string        `json:"webhook_url,omitempty"`
	BrandingLogoURL string        `json:"branding_logo_url,omitempty"`
	BrandingColor   string        `json:"branding_color,omitempty"`
	CustomDomain    string        `json:"custom_domain,omitempty"`
}

// ContactInfo is the tenant's operational point of contact.
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// BillingInfo is the tenant's invoicing identity.
type BillingInfo struct {
	LegalName     string `json:"legal_name,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	BillingEmail  string `json:"billing_email,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// Tenant is the isolation boundary for every tenant-scoped entity in the
// system. Tenants are never deleted, only suspended.
type Tenant struct {
	ID            string                    `json:"id" gorm:"primaryKey"`
	Code          string                    `json:"code" gorm:"uniqueIndex;size:50"`
	Type          TenantType                `json:"type"`
	Active        bool                      `json:"active"`
	SuspendReason string                    `json:"suspend_reason,omitempty"`
	Config        TenantConfig              `json:"config" gorm:"embedded;embeddedPrefix:config_"`
	Contact       ContactInfo               `json:"contact" gorm:"embedded;embeddedPrefix:contact_"`
	Billing       BillingInfo               `json:"billing" gorm:"embedded;embeddedPrefix:billing_"`
	Features      map[TenantFeature]bool    `json:"features" gorm:"-"`
	Metadata      map[string]string         `json:"metadata" gorm:"-"`
	Audit         AuditRecord               `json:"audit" gorm:"embedded"`
}

// HasFeature reports whether a feature flag is enabled for the tenant.
func (t *Tenant) HasFeature(f TenantFeature) bool {
	if t.Features == nil {
		return false
	}
	return t.Features[f]
}

// IsUsable reports whether the tenant exists and is active, per the tenant
// kernel's validation helper (spec §4.1).
func (t *Tenant) IsUsable() bool {
	return t != nil && t.Active
}

// Suspend deactivates the tenant recording a reason. Tenants are never
// deleted.
func (t *Tenant) Suspend(reason string) {
	t.Active = false
	t.SuspendReason = reason
}

// Reactivate clears a suspension.
func (t *Tenant) Reactivate() {
	t.Active = true
	t.SuspendReason = ""
}
