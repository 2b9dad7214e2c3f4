package schema

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Prefix is prepended to every tenant schema name.
const Prefix = "tenant_"

// namePattern is the only accepted shape of a tenant schema name.
var namePattern = regexp.MustCompile(`^tenant_[0-9a-f]{8}_[0-9a-f]{4}_[0-9a-f]{4}_[0-9a-f]{4}_[0-9a-f]{12}$`)

// Name is a validated tenant schema name such as
// tenant_11111111_1111_1111_1111_111111111111.
// The zero value is not a valid name.
type Name string

// FromTenantID derives the canonical schema name for a tenant.
// Every component that creates or looks up a schema must go through it.
func FromTenantID(id uuid.UUID) Name {
	return Name(Prefix + strings.ReplaceAll(id.String(), "-", "_"))
}

// Parse validates raw against the schema grammar.
func Parse(raw string) (Name, error) {
	if !namePattern.MatchString(raw) {
		return "", ErrInvalidName
	}
	return Name(raw), nil
}

// Valid reports whether raw is a well-formed tenant schema name.
func Valid(raw string) bool {
	return namePattern.MatchString(raw)
}

// String returns the raw schema name.
func (n Name) String() string { return string(n) }

// Valid reports whether n matches the schema grammar.
func (n Name) Valid() bool { return namePattern.MatchString(string(n)) }

// TenantID recovers the tenant identifier encoded in the name.
func (n Name) TenantID() (uuid.UUID, error) {
	if !n.Valid() {
		return uuid.Nil, ErrInvalidName
	}
	raw := strings.ReplaceAll(strings.TrimPrefix(string(n), Prefix), "_", "-")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidName
	}
	return id, nil
}

// Quoted returns the name as a quoted SQL identifier.
func (n Name) Quoted() string {
	return QuoteIdent(string(n))
}

// QuoteIdent quotes an arbitrary identifier for interpolation into DDL or
// session commands. Embedded quotes are doubled and NUL bytes are dropped.
func QuoteIdent(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// Qualify returns a schema-qualified, quoted table reference.
func Qualify(n Name, table string) string {
	return pgx.Identifier{string(n), table}.Sanitize()
}
