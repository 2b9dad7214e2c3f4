package scopeguard

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/pkg/jwt"
)

// Reasons reported in Decision.Reason.
const (
	ReasonSkipTenantScope = "skip_tenant_scope"
	ReasonPublic          = "public"
	ReasonAnonymous       = "anonymous access denied"
	ReasonSuperAdmin      = "super_admin"
	ReasonCrossTenant     = "cross-tenant access denied"
	ReasonNoTenantClaim   = "tenant claim required"
	ReasonAllowed         = "allowed"
)

// Decision is the outcome of a guard evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

// Decide evaluates route for one request. principal is nil for anonymous
// requests and requestTenant is uuid.Nil when no tenant was resolved.
//
// The rules run in a fixed order and the first match wins: the public check
// precedes tenant matching so anonymous storefront traffic is never rejected
// for lacking a tenant claim. Authenticated routes of a resolved tenant do
// require one from everyone but super admins.
func Decide(route Route, principal *jwt.Principal, requestTenant uuid.UUID) Decision {
	if route.SkipTenantScope {
		return Decision{Allowed: true, Reason: ReasonSkipTenantScope}
	}

	if principal == nil {
		if route.AllowsAnonymous() {
			return Decision{Allowed: true, Reason: ReasonPublic}
		}
		return Decision{Allowed: false, Reason: ReasonAnonymous}
	}

	if principal.IsSuperAdmin() {
		return Decision{Allowed: true, Reason: ReasonSuperAdmin}
	}

	if route.RequiresAuth && principal.TenantID == uuid.Nil && requestTenant != uuid.Nil {
		return Decision{Allowed: false, Reason: ReasonNoTenantClaim}
	}

	if principal.TenantID != uuid.Nil && requestTenant != uuid.Nil && principal.TenantID != requestTenant {
		return Decision{Allowed: false, Reason: ReasonCrossTenant}
	}

	return Decision{Allowed: true, Reason: ReasonAllowed}
}
