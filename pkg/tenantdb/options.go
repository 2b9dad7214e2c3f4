package tenantdb

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/storekit/pkg/sqlguard"
)

type config struct {
	validator      *sqlguard.Validator
	logger         *slog.Logger
	acquireTimeout time.Duration
	releaseTimeout time.Duration
	acquireHooks   []func()
	releaseHooks   []func(discarded bool)
	rejectHooks    []func(reason string)
}

func (c *config) onAcquire() {
	for _, h := range c.acquireHooks {
		h()
	}
}

func (c *config) onRelease(discarded bool) {
	for _, h := range c.releaseHooks {
		h(discarded)
	}
}

func (c *config) onReject(reason string) {
	for _, h := range c.rejectHooks {
		h(reason)
	}
}

// Option configures a Conn.
type Option func(*config)

// WithValidator replaces the default SQL validator.
func WithValidator(v *sqlguard.Validator) Option {
	return func(c *config) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithLogger sets the logger used for rejections and release failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAcquireTimeout bounds the wait for a pooled connection.
func WithAcquireTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.acquireTimeout = d
		}
	}
}

// WithReleaseTimeout bounds the search path reset on release.
func WithReleaseTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.releaseTimeout = d
		}
	}
}

// WithAcquireHook registers a callback run after a connection is scoped.
func WithAcquireHook(h func()) Option {
	return func(c *config) {
		if h != nil {
			c.acquireHooks = append(c.acquireHooks, h)
		}
	}
}

// WithReleaseHook registers a callback run after the connection leaves the
// request, with discarded set when it was closed instead of pooled.
func WithReleaseHook(h func(discarded bool)) Option {
	return func(c *config) {
		if h != nil {
			c.releaseHooks = append(c.releaseHooks, h)
		}
	}
}

// WithRejectHook registers a callback run for every rejected statement.
func WithRejectHook(h func(reason string)) Option {
	return func(c *config) {
		if h != nil {
			c.rejectHooks = append(c.rejectHooks, h)
		}
	}
}
