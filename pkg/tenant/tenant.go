package tenant

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a tenant.
type Status string

const (
	StatusProvisioning Status = "provisioning"
	StatusActive       Status = "active"
	StatusSuspended    Status = "suspended"
	// StatusFailed is terminal and never persisted: a failed provisioning run
	// rolls back its row.
	StatusFailed Status = "failed"
)

// Plan is the subscription tier of a tenant.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Tenant is one store on the platform as recorded in the global directory.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	Plan      Plan      `json:"plan"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the tenant may serve requests.
func (t *Tenant) Active() bool {
	return t != nil && t.Status == StatusActive
}

// Provider looks tenants up in the global directory.
type Provider interface {
	// GetBySubdomain returns the tenant registered under subdomain.
	// Soft-deleted tenants are treated as missing: ErrTenantNotFound.
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, subdomain string) (*Tenant, error)

func (f ProviderFunc) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	return f(ctx, subdomain)
}

var candidatePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}[a-z0-9]$`)

// ValidCandidate reports whether s has the shape of a subdomain that may be
// looked up. Provisioning applies stricter rules on top of it.
func ValidCandidate(s string) bool {
	return candidatePattern.MatchString(s)
}
