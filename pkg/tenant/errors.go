package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no live tenant matches.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidSubdomain is returned when a candidate does not have the shape of a subdomain.
	ErrInvalidSubdomain = errors.New("invalid tenant subdomain")

	// ErrInactiveTenant is returned when the tenant exists but is not active.
	ErrInactiveTenant = errors.New("tenant is not active")

	// ErrLookupFailed wraps infrastructure failures of the directory lookup.
	ErrLookupFailed = errors.New("tenant lookup failed")

	// ErrResolveFailed wraps failures while extracting a candidate from the request.
	ErrResolveFailed = errors.New("tenant resolution failed")

	// ErrNoTenantInContext is returned when no tenant scope is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrNoDatabase is returned when the scope carries no database handle.
	ErrNoDatabase = errors.New("tenant scope has no database handle")

	// ErrStatusConflict is returned when a status update lost a race.
	ErrStatusConflict = errors.New("tenant status changed concurrently")
)

// Reason maps a resolution error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSubdomain):
		return "malformed_subdomain"
	case errors.Is(err, ErrTenantNotFound):
		return "not_found"
	case errors.Is(err, ErrInactiveTenant):
		return "inactive"
	case errors.Is(err, ErrResolveFailed):
		return "resolver_error"
	default:
		return "lookup_failed"
	}
}
