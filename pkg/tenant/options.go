package tenant

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

// ErrorHandler renders a resolution failure. err carries the internal cause;
// implementations must not expose it to the client.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
	pool         tenantdb.Pool
	connOpts     []tenantdb.Option
	rejectHooks  []func(reason string)
}

// Option configures the middleware.
type Option func(*config)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithScopedPool attaches a lazily acquired, schema-scoped connection to
// every resolved request. It is released when the handler returns, panics
// or the client goes away.
func WithScopedPool(pool tenantdb.Pool, opts ...tenantdb.Option) Option {
	return func(c *config) {
		c.pool = pool
		c.connOpts = append(c.connOpts, opts...)
	}
}

// WithRejectHook registers a callback invoked with the internal reason for
// every rejected request.
func WithRejectHook(h func(reason string)) Option {
	return func(c *config) {
		if h != nil {
			c.rejectHooks = append(c.rejectHooks, h)
		}
	}
}

// ErrorCode is the only error body clients see for a resolution failure.
const ErrorCode = "tenant_context_error"

// DefaultErrorHandler answers every resolution failure with the same 403.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrorCode})
}
