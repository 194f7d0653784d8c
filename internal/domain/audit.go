package domain

import "time"

// AuditRecord is embedded (composition, not inheritance) into every
// tenant-scoped entity. It replaces the teacher's single-inheritance base
// entity with a plain value type a persistence adapter reads and writes.
type AuditRecord struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	Deleted   bool      `json:"deleted" gorm:"default:false"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy string    `json:"deleted_by,omitempty"`
	Version   int       `json:"version" gorm:"default:1"`
}

// Touch stamps the record for an update by actor.
func (a *AuditRecord) Touch(actor string) {
	a.UpdatedAt = time.Now().UTC()
	a.UpdatedBy = actor
	a.Version++
}

// Stamp initializes the record for creation by actor.
func (a *AuditRecord) Stamp(actor string) {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.CreatedBy = actor
	a.UpdatedAt = now
	a.UpdatedBy = actor
	a.Version = 1
}
