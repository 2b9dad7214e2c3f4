package scopeguard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/dmitrymomot/storekit/pkg/jwt"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

// ErrorCode is the only error body clients see for a denied request.
const ErrorCode = "access_denied"

// Guard enforces a route table at the handler boundary.
type Guard struct {
	table      *Table
	logger     *slog.Logger
	denyHooks  []func(route, reason string)
	denyWriter http.HandlerFunc
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger used for denials.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithDenyHook registers a callback invoked for every denial.
func WithDenyHook(h func(route, reason string)) Option {
	return func(g *Guard) {
		if h != nil {
			g.denyHooks = append(g.denyHooks, h)
		}
	}
}

// New creates a guard over table.
func New(table *Table, opts ...Option) *Guard {
	g := &Guard{
		table:      table,
		logger:     slog.New(slog.DiscardHandler),
		denyWriter: Deny,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware enforces the rules of the named route. It panics if the route
// is not in the table, so a handler can never be mounted unguarded by typo.
func (g *Guard) Middleware(routeName string) func(http.Handler) http.Handler {
	route, ok := g.table.Lookup(routeName)
	if !ok {
		panic(fmt.Sprintf("scopeguard: unknown route %q", routeName))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var principal *jwt.Principal
			if p, ok := jwt.PrincipalFromContext(ctx); ok {
				principal = &p
			}
			requestTenant, _ := tenant.IDFromContext(ctx)

			d := Decide(route, principal, requestTenant)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			attrs := []any{logger.Route(route.Name), logger.Reason(d.Reason)}
			if principal != nil {
				attrs = append(attrs,
					logger.UserID(principal.UserID.String()),
					logger.Role(string(principal.Role)),
					slog.String("principal_tenant_id", principal.TenantID.String()),
				)
			}
			g.logger.WarnContext(ctx, "access denied", attrs...)
			for _, h := range g.denyHooks {
				h(route.Name, d.Reason)
			}
			g.denyWriter(w, r)
		})
	}
}

// RequireRole admits only principals holding one of roles.
func (g *Guard) RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := jwt.PrincipalFromContext(r.Context())
			if !ok || !slices.Contains(roles, p.Role) {
				g.logger.WarnContext(r.Context(), "access denied", logger.Reason("role_required"))
				for _, h := range g.denyHooks {
					h("", "role_required")
				}
				g.denyWriter(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deny writes the uniform 403 response.
func Deny(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrorCode})
}
