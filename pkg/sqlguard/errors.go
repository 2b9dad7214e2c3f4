package sqlguard

import "errors"

var (
	// ErrRejected wraps every validation failure.
	ErrRejected = errors.New("sqlguard: statement rejected")

	// ErrInvalidSchema means the expected schema itself is malformed.
	ErrInvalidSchema = errors.New("sqlguard: expected schema is malformed")

	// ErrCrossTenant means the statement references another tenant schema.
	ErrCrossTenant = errors.New("sqlguard: cross-tenant reference")

	// ErrUnvettedTable means the statement references a table outside the whitelist.
	ErrUnvettedTable = errors.New("sqlguard: unvetted table access")

	// ErrCatalogAccess means the statement reaches a shared schema or a system catalog.
	ErrCatalogAccess = errors.New("sqlguard: shared schema or catalog access")

	// ErrSessionState means the statement changes the search path or session role.
	ErrSessionState = errors.New("sqlguard: session state change")

	// ErrObfuscated means the statement could not be read reliably:
	// unicode escapes or an unterminated literal, identifier or comment.
	ErrObfuscated = errors.New("sqlguard: unreadable statement")
)

// Reason returns a short label for a rejection, suitable for metrics and logs.
// It returns an empty string for errors not produced by this package.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSchema):
		return "invalid_schema"
	case errors.Is(err, ErrCrossTenant):
		return "cross_tenant"
	case errors.Is(err, ErrUnvettedTable):
		return "unvetted_table"
	case errors.Is(err, ErrCatalogAccess):
		return "catalog_access"
	case errors.Is(err, ErrSessionState):
		return "session_state"
	case errors.Is(err, ErrObfuscated):
		return "obfuscated"
	default:
		return ""
	}
}
