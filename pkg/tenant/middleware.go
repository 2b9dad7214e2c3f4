package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/schema"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

// Middleware resolves the request's tenant and stores its Scope in the
// request context.
//
// Requests with no candidate pass through without a scope. Malformed, unknown
// and inactive tenants, as well as lookup failures, are all rejected the same
// way; the distinction only shows up in logs.
func Middleware(resolver Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler: DefaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	reject := func(w http.ResponseWriter, r *http.Request, candidate string, err error) {
		reason := Reason(err)
		level := slog.LevelWarn
		if reason == "lookup_failed" || reason == "resolver_error" {
			level = slog.LevelError
		}
		cfg.logger.Log(r.Context(), level, "tenant resolution rejected",
			logger.Subdomain(candidate),
			logger.Reason(reason),
			logger.Error(err),
		)
		for _, h := range cfg.rejectHooks {
			h(reason)
		}
		cfg.errorHandler(w, r, err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || cfg.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			candidate, err := resolver.Resolve(r)
			if err != nil {
				reject(w, r, candidate, errors.Join(ErrResolveFailed, err))
				return
			}
			if candidate == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !ValidCandidate(candidate) {
				reject(w, r, candidate, ErrInvalidSubdomain)
				return
			}

			t, err := provider.GetBySubdomain(r.Context(), candidate)
			if err != nil {
				if !errors.Is(err, ErrTenantNotFound) && !errors.Is(err, ErrLookupFailed) {
					err = errors.Join(ErrLookupFailed, err)
				}
				reject(w, r, candidate, err)
				return
			}
			if t == nil {
				reject(w, r, candidate, ErrTenantNotFound)
				return
			}
			if !t.Active() {
				reject(w, r, candidate, ErrInactiveTenant)
				return
			}

			ctx := r.Context()
			if cfg.pool == nil {
				next.ServeHTTP(w, r.WithContext(WithScope(ctx, NewScope(*t, nil))))
				return
			}

			conn := tenantdb.New(cfg.pool, schema.FromTenantID(t.ID), cfg.connOpts...)
			scope := NewScope(*t, conn)

			stop := conn.ReleaseOnDone(ctx)
			defer func() {
				stop()
				conn.Release(ctx)
			}()

			next.ServeHTTP(w, r.WithContext(WithScope(ctx, scope)))
		})
	}
}

// RequireTenant rejects requests that reach it without a resolved tenant.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// skip matches whole path segments: "/health" covers "/health" and
// "/health/live" but not "/healthz".
func (c *config) skip(path string) bool {
	for _, p := range c.skipPaths {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
