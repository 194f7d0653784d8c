// Package tenant implements the isolation kernel: binding exactly one
// tenant to every unit of work (an HTTP request, an OCPP frame, a scheduled
// task) and enforcing that bound tenant at the persistence boundary.
//
// The bound tenant travels as an explicit context.Context value, never as
// ambient global or thread-local state, so it is captured correctly by any
// goroutine spawned from the unit of work (spec §9).
package tenant

import "context"

type ctxKey struct{}

// WithTenant returns a derived context carrying the bound tenant id.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// FromContext returns the tenant id bound to ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// MustFromContext returns the bound tenant id or panics. Reserved for code
// paths that are only ever reached after tenant binding has already been
// enforced by middleware (e.g. inside a repository call).
func MustFromContext(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant bound to context")
	}
	return id
}
