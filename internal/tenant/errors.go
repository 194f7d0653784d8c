package tenant

import "errors"

// Sentinel errors surfaced by the kernel; HTTP controllers and OCPP
// handlers map these to their respective wire-level error taxonomies
// (spec §7).
var (
	// ErrTenantRequired is returned when no resolution step found a tenant
	// and the path is not on the unauthenticated allowlist.
	ErrTenantRequired = errors.New("tenant identification required")

	// ErrTenantMismatch is returned by the persistence hook when an insert
	// names a tenant id that disagrees with the bound context.
	ErrTenantMismatch = errors.New("tenant mismatch")

	// ErrTenantImmutable is returned by the persistence hook when an update
	// attempts to change an entity's tenant id.
	ErrTenantImmutable = errors.New("tenant immutable")

	// ErrInvalidTenant is returned when the bound tenant does not exist or
	// is not active.
	ErrInvalidTenant = errors.New("invalid or inactive tenant")
)
