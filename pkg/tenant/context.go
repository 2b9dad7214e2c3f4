package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/pkg/schema"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

// Scope is the tenant context of a single request. It is built once by the
// middleware from the directory record and never modified afterwards; the
// tenant ID and schema come from the directory, never from client input.
type Scope struct {
	tenant Tenant
	schema schema.Name
	db     *tenantdb.Conn
}

// NewScope builds a scope for t. db may be nil when the request has no
// database access.
func NewScope(t Tenant, db *tenantdb.Conn) Scope {
	return Scope{tenant: t, schema: schema.FromTenantID(t.ID), db: db}
}

func (s Scope) TenantID() uuid.UUID { return s.tenant.ID }
func (s Scope) Subdomain() string   { return s.tenant.Subdomain }
func (s Scope) Plan() Plan          { return s.tenant.Plan }
func (s Scope) Schema() schema.Name { return s.schema }
func (s Scope) Tenant() Tenant      { return s.tenant }
func (s Scope) DB() *tenantdb.Conn  { return s.db }
func (s Scope) IsZero() bool        { return s.tenant.ID == uuid.Nil }

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithScope adds a tenant scope to the context.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's tenant scope.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(contextKey{}).(Scope)
	if !ok || s.IsZero() {
		return Scope{}, false
	}
	return s, true
}

// IDFromContext returns just the tenant ID.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return s.TenantID(), true
}

// MustFromContext panics when no scope is present. Use it only in handlers
// mounted behind RequireTenant.
func MustFromContext(ctx context.Context) Scope {
	s, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return s
}

// DB returns the request's scoped database handle.
func DB(ctx context.Context) (*tenantdb.Conn, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantInContext
	}
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return s.db, nil
}

// LoggerExtractor returns a logger.ContextExtractor that adds the tenant ID.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
