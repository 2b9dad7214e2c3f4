package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Store consumes tokens from the bucket stored under key. A negative
// remaining means the request is refused and the bucket is left untouched.
type Store interface {
	Consume(ctx context.Context, key string, n int, cfg Config) (remaining int, resetAt time.Time, err error)
}

// Result describes a single check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request may proceed.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next token, or 0.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Limiter applies one bucket configuration over a Store.
type Limiter struct {
	store      Store
	cfg        Config
	logger     *slog.Logger
	limitHooks []func()
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger used for store failures and refusals.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithLimitHook registers fn to run on every refused request.
func WithLimitHook(fn func()) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.limitHooks = append(l.limitHooks, fn)
		}
	}
}

// New validates cfg and creates a Limiter.
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{store: store, cfg: cfg, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Component("ratelimiter"))
	return l, nil
}

// Allow takes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, ErrInvalidTokenCount
	}
	remaining, resetAt, err := l.store.Consume(ctx, key, n, l.cfg)
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	return Result{Limit: l.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}
