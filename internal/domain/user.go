package domain

import "time"

// UserStatus mirrors the teacher's flat status string, made an explicit enum.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusBlocked  UserStatus = "BLOCKED"
)

// User is tenant-scoped; (username, tenantId) and (email, tenantId) are
// each unique.
type User struct {
	ID       string     `json:"id" gorm:"primaryKey"`
	TenantID string     `json:"tenant_id" gorm:"uniqueIndex:idx_user_tenant_username;uniqueIndex:idx_user_tenant_email;index"`
	Username string     `json:"username" gorm:"uniqueIndex:idx_user_tenant_username;size:100"`
	Email    string     `json:"email" gorm:"uniqueIndex:idx_user_tenant_email;size:255"`
	Name     string     `json:"name,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	PasswordHash string `json:"-"`
	Status   UserStatus `json:"status"`

	EmailVerified bool `json:"email_verified"`

	FailedLoginCount int        `json:"-"`
	LockedUntil      *time.Time `json:"-"`

	Preferences map[string]string `json:"preferences,omitempty" gorm:"-"`

	RoleIDs []string `json:"role_ids,omitempty" gorm:"-"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// IsLocked reports whether login is currently locked out.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Permission is a (resource, action) pair granted by a Role.
type Permission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// Role is a tenant-scoped named set of permissions.
type Role struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	TenantID    string       `json:"tenant_id" gorm:"index"`
	Name        string       `json:"name"`
	SystemRole  bool         `json:"system_role"`
	Permissions []Permission `json:"permissions" gorm:"-"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// TokenType is the credential medium of an AuthToken.
type TokenType string

const (
	TokenTypeRFID       TokenType = "RFID"
	TokenTypeNFC        TokenType = "NFC"
	TokenTypeMobileApp  TokenType = "MOBILE_APP"
	TokenTypeAPIKey     TokenType = "API_KEY"
	TokenTypeCreditCard TokenType = "CREDIT_CARD"
	TokenTypeBarcode    TokenType = "BARCODE"
	TokenTypeBiometric  TokenType = "BIOMETRIC"
	TokenTypeVehicleID  TokenType = "VEHICLE_ID"
	TokenTypeCustom     TokenType = "CUSTOM"
)

// AuthToken binds a physical/virtual credential (idTag) to a user.
type AuthToken struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	TenantID   string    `json:"tenant_id" gorm:"uniqueIndex:idx_token_tenant_value;index"`
	UserID     string    `json:"user_id" gorm:"index"`
	TokenType  TokenType `json:"token_type"`
	TokenValue string    `json:"token_value" gorm:"uniqueIndex:idx_token_tenant_value;size:100"`

	Active    bool       `json:"active"`
	Blocked   bool       `json:"blocked"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`

	Audit AuditRecord `json:"audit" gorm:"embedded"`
}

// IsValid reports whether the token may currently authorize a transaction
// (spec §3: active, not blocked, not deleted, within validity window).
func (t *AuthToken) IsValid(now time.Time) bool {
	if t == nil {
		return false
	}
	if !t.Active || t.Blocked || t.Audit.Deleted {
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
