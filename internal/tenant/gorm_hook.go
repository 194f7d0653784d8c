package tenant

import (
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tenantScoped is implemented by any GORM model carrying a TenantID field,
// via reflection on the field name below — a small hand-written table in
// place of the teacher's ORM-level reflection-driven interceptor (spec §9:
// "runtime reflection ... becomes a small code-generated or hand-written
// table of tenant-aware statements").
const tenantFieldName = "TenantID"

// RegisterHooks installs GORM Before-Create/Before-Update/Before-Query
// callbacks that enforce spec §4.1's persistence invariants:
//   - on insert, a nil TenantID is set from the bound context; a non-nil
//     TenantID that disagrees fails with ErrTenantMismatch.
//   - on update, a non-empty TenantID that differs from the tenant bound
//     on the context fails with ErrTenantImmutable (the persisted row is
//     not read).
//   - on query, a `tenant_id = ?` clause is injected from the bound
//     context so no repository read method can return another tenant's
//     row, even one looked up by a non-tenant-scoped key (spec's Testable
//     Property 1: "No query in any tenant context ever returns a row of a
//     different tenant").
func RegisterHooks(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("tenant:bind_on_create", beforeCreate); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant:guard_on_update", beforeUpdate); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("tenant:scope_on_query", beforeQuery); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant:scope_on_row", beforeQuery); err != nil {
		return err
	}
	return nil
}

func beforeCreate(tx *gorm.DB) {
	if tx.Statement.Schema == nil || tx.Statement.ReflectValue.Kind() != reflect.Struct {
		return
	}
	field := tx.Statement.Schema.LookUpField(tenantFieldName)
	if field == nil {
		return
	}

	boundID, ok := FromContext(tx.Statement.Context)
	current, _ := field.ValueOf(tx.Statement.Context, tx.Statement.ReflectValue)
	currentStr, _ := current.(string)

	switch {
	case currentStr == "" && ok:
		_ = field.Set(tx.Statement.Context, tx.Statement.ReflectValue, boundID)
	case currentStr != "" && ok && currentStr != boundID:
		tx.AddError(ErrTenantMismatch)
	}
}

func beforeUpdate(tx *gorm.DB) {
	if tx.Statement.Schema == nil || tx.Statement.ReflectValue.Kind() != reflect.Struct {
		return
	}
	field := tx.Statement.Schema.LookUpField(tenantFieldName)
	if field == nil {
		return
	}

	newVal, _ := field.ValueOf(tx.Statement.Context, tx.Statement.ReflectValue)
	newStr, _ := newVal.(string)
	if newStr == "" {
		return
	}

	boundID, ok := FromContext(tx.Statement.Context)
	if !ok {
		return
	}
	if newStr != boundID {
		tx.AddError(ErrTenantImmutable)
	}
}

// beforeQuery injects a tenant_id = ? clause for every SELECT/scan against
// a tenant-scoped model, using the tenant bound on the query's context.
// Repository methods that look up a row by a non-tenant-scoped key (e.g.
// station id, session UUID) still only ever see their own tenant's rows.
func beforeQuery(tx *gorm.DB) {
	if tx.Statement.Schema == nil {
		return
	}
	field := tx.Statement.Schema.LookUpField(tenantFieldName)
	if field == nil {
		return
	}

	boundID, ok := FromContext(tx.Statement.Context)
	if !ok {
		return
	}

	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName}, Value: boundID},
	}})
}
