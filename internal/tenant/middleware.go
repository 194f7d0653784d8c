package tenant

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AuthenticatedTenantLocalsKey is the fiber.Locals key the auth middleware
// stamps with the tenant id carried by an already-validated bearer token,
// for clients (mobile/API) that authenticate with a token alone and send
// no explicit tenant header/query/subdomain. Middleware must run after
// auth for this resolution step to see anything.
const AuthenticatedTenantLocalsKey = "authenticated_tenant_id"

// Registry resolves a tenant code/subdomain/custom-domain to the canonical
// tenant id used to bind the context, and reports whether a tenant code is
// known and active. Implemented by the tenant service.
type Registry interface {
	// ResolveCode maps a tenant code (header/query/subdomain/path value) to
	// its canonical tenant id. ok is false if the code is unknown.
	ResolveCode(code string) (id string, ok bool)
	// ResolveCustomDomain maps a fully-qualified host to a tenant id via
	// tenant metadata, per spec §4.1 step 4.
	ResolveCustomDomain(host string) (id string, ok bool)
}

// unauthenticatedAllowlist lists path prefixes that never require a bound
// tenant (spec §4.1).
var unauthenticatedAllowlist = []string{
	"/actuator", "/health", "/metrics", "/swagger", "/v3/api-docs",
	"/auth/login", "/auth/register", "/public",
}

func isAllowlisted(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range unauthenticatedAllowlist {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware implements the HTTP tenant resolution order of spec §4.1:
// header, query param, subdomain, custom domain, JWT claim, path segment.
func Middleware(reg Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		if id, ok := resolveHTTP(c, reg); ok {
			c.Locals("tenant_id", id)
			ctx := WithTenant(c.UserContext(), id)
			c.SetUserContext(ctx)
			return c.Next()
		}

		if isAllowlisted(path) {
			return c.Next()
		}

		return fiber.NewError(fiber.StatusBadRequest, ErrTenantRequired.Error())
	}
}

func resolveHTTP(c *fiber.Ctx, reg Registry) (string, bool) {
	// 1. X-Tenant-ID header.
	if h := c.Get("X-Tenant-ID"); h != "" {
		return h, true
	}

	// 2. tenantId query parameter.
	if q := c.Query("tenantId"); q != "" {
		return q, true
	}

	// 3. Subdomain, excluding www/api.
	host := c.Hostname()
	if sub := subdomainOf(host); sub != "" && sub != "www" && sub != "api" && reg != nil {
		if id, ok := reg.ResolveCode(sub); ok {
			return id, true
		}
	}

	// 4. Custom-domain mapping via tenant metadata.
	if reg != nil {
		if id, ok := reg.ResolveCustomDomain(host); ok {
			return id, true
		}
	}

	// 5. tenantId carried by an already-validated bearer token, stamped
	// into locals by the auth middleware. Only populated when auth runs
	// ahead of this middleware on the route.
	if id, ok := c.Locals(AuthenticatedTenantLocalsKey).(string); ok && id != "" {
		return id, true
	}

	// 6. Path /api/tenants/{code}/...
	path := c.Path()
	const prefix = "/api/tenants/"
	if strings.HasPrefix(path, prefix) {
		rest := strings.TrimPrefix(path, prefix)
		if idx := strings.Index(rest, "/"); idx > 0 {
			code := rest[:idx]
			if reg != nil {
				if id, ok := reg.ResolveCode(code); ok {
					return id, true
				}
			}
			return code, true
		}
	}

	return "", false
}

func subdomainOf(host string) string {
	host = strings.Split(host, ":")[0]
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[0]
}

// ResolveHandshake implements the OCPP handshake resolution order of
// spec §4.1: header, query param, subdomain (only, no JWT/path since the
// handshake precedes any application-level auth decision).
func ResolveHandshake(headerTenant, queryTenant, host string, reg Registry) (string, bool) {
	if headerTenant != "" {
		return headerTenant, true
	}
	if queryTenant != "" {
		return queryTenant, true
	}
	if sub := subdomainOf(host); sub != "" && sub != "www" && sub != "api" && reg != nil {
		if id, ok := reg.ResolveCode(sub); ok {
			return id, true
		}
	}
	return "", false
}
