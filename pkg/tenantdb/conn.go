package tenantdb

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/schema"
	"github.com/dmitrymomot/storekit/pkg/sqlguard"
)

const (
	resetStatement = "RESET search_path"

	defaultAcquireTimeout = 5 * time.Second
	defaultReleaseTimeout = 3 * time.Second
)

// Conn is a lazily acquired connection pinned to one tenant schema.
// It belongs to exactly one request. Statements are validated with sqlguard
// before they reach the database and are serialized because a single
// PostgreSQL connection cannot run statements concurrently. Waiting for the
// connection is bounded by the statement context and the acquire timeout.
//
// Rows returned by Query hold the connection until they are closed or fully
// iterated.
type Conn struct {
	pool   Pool
	schema schema.Name
	cfg    *config

	// sem is a one-slot semaphore guarding conn.
	sem      chan struct{}
	conn     PooledConn
	held     atomic.Bool
	released atomic.Bool
}

// New returns a Conn for the given schema. No connection is taken from the
// pool until the first statement runs.
func New(pool Pool, name schema.Name, opts ...Option) *Conn {
	cfg := &config{
		validator:      sqlguard.New(),
		logger:         slog.New(slog.DiscardHandler),
		acquireTimeout: defaultAcquireTimeout,
		releaseTimeout: defaultReleaseTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Conn{pool: pool, schema: name, cfg: cfg, sem: make(chan struct{}, 1)}
}

// Schema returns the schema the connection is bound to.
func (c *Conn) Schema() schema.Name { return c.schema }

// Acquired reports whether a pooled connection is currently held.
func (c *Conn) Acquired() bool { return c.held.Load() }

// Querier acquires and scopes the connection if that has not happened yet
// and returns the guarded handle. Later calls return the same handle.
func (c *Conn) Querier(ctx context.Context) (Querier, error) {
	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.unlock(ctx)
	if _, err := c.ensure(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Exec validates and runs a statement.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := c.validate(ctx, sql); err != nil {
		return pgconn.CommandTag{}, err
	}

	if err := c.lock(ctx); err != nil {
		return pgconn.CommandTag{}, err
	}
	defer c.unlock(ctx)

	conn, err := c.ensure(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return conn.Exec(ctx, sql, args...)
}

// Query validates and runs a query. The connection stays locked until the
// returned rows are closed or exhausted; other statements on the same Conn
// wait for that and fail with ErrBusy once their context or the acquire
// timeout expires.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if err := c.validate(ctx, sql); err != nil {
		return nil, err
	}

	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	conn, err := c.ensure(ctx)
	if err != nil {
		c.unlock(ctx)
		return nil, err
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		c.unlock(ctx)
		return nil, err
	}
	return &lockedRows{Rows: rows, unlock: func() { c.unlock(ctx) }}, nil
}

// QueryRow validates and runs a single-row query. The connection stays
// locked until Scan is called on the returned row.
func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if err := c.validate(ctx, sql); err != nil {
		return errRow{err: err}
	}

	if err := c.lock(ctx); err != nil {
		return errRow{err: err}
	}
	conn, err := c.ensure(ctx)
	if err != nil {
		c.unlock(ctx)
		return errRow{err: err}
	}
	return &lockedRow{row: conn.QueryRow(ctx, sql, args...), unlock: func() { c.unlock(ctx) }}
}

// Release resets the session search path and gives the connection back to
// the pool. It is safe to call any number of times from any goroutine; only
// the first call has an effect. If the reset fails the connection is closed
// rather than returned, so a tenant binding never reaches the next borrower.
//
// When rows are still open, Release waits up to the release timeout. After
// that the connection is returned by whoever closes the rows.
func (c *Conn) Release(ctx context.Context) {
	if !c.released.CompareAndSwap(false, true) {
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.releaseTimeout)
	defer cancel()

	select {
	case c.sem <- struct{}{}:
		c.unlock(ctx)
	case <-wctx.Done():
		c.cfg.logger.WarnContext(ctx, "connection busy on release, deferred until rows are closed",
			logger.Schema(c.schema.String()),
		)
	}
}

// ReleaseOnDone releases the connection as soon as ctx is done, covering
// clients that disconnect mid-request. The returned function unregisters
// the callback.
func (c *Conn) ReleaseOnDone(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		c.Release(context.WithoutCancel(ctx))
	})
}

func (c *Conn) lock(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(c.cfg.acquireTimeout)
	defer timer.Stop()

	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrUnavailable, ErrBusy, ctx.Err())
	case <-timer.C:
		return errors.Join(ErrUnavailable, ErrBusy)
	}
}

// unlock frees the semaphore. A Conn released while locked hands its
// pooled connection back here.
func (c *Conn) unlock(ctx context.Context) {
	if c.released.Load() {
		c.finish(ctx)
	}
	<-c.sem
}

// finish must be called with the semaphore held.
func (c *Conn) finish(ctx context.Context) {
	conn := c.conn
	c.conn = nil
	if conn == nil {
		return
	}
	c.held.Store(false)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.releaseTimeout)
	defer cancel()

	if _, err := conn.Exec(ctx, resetStatement); err != nil {
		c.cfg.logger.ErrorContext(ctx, "failed to reset search path, discarding connection",
			logger.Schema(c.schema.String()),
			logger.Error(err),
		)
		conn.Discard(ctx)
		c.cfg.onRelease(true)
		return
	}

	conn.Release()
	c.cfg.onRelease(false)
}

// ensure must be called with the semaphore held.
func (c *Conn) ensure(ctx context.Context) (PooledConn, error) {
	if c.released.Load() {
		return nil, ErrReleased
	}
	if c.conn != nil {
		return c.conn, nil
	}
	if !c.schema.Valid() {
		return nil, errors.Join(ErrUnavailable, schema.ErrInvalidName)
	}

	actx, cancel := context.WithTimeout(ctx, c.cfg.acquireTimeout)
	defer cancel()

	conn, err := c.pool.Acquire(actx)
	if err != nil {
		c.cfg.logger.WarnContext(ctx, "failed to acquire connection",
			logger.Schema(c.schema.String()),
			logger.Error(err),
		)
		return nil, errors.Join(ErrUnavailable, err)
	}

	if _, err := conn.Exec(actx, "SET search_path TO "+c.schema.Quoted()); err != nil {
		c.cfg.logger.ErrorContext(ctx, "failed to scope connection",
			logger.Schema(c.schema.String()),
			logger.Error(err),
		)
		dctx, dcancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.releaseTimeout)
		conn.Discard(dctx)
		dcancel()
		return nil, errors.Join(ErrUnavailable, err)
	}

	c.conn = conn
	c.held.Store(true)
	c.cfg.onAcquire()
	return conn, nil
}

func (c *Conn) validate(ctx context.Context, sql string) error {
	err := c.cfg.validator.Validate(sql, c.schema)
	if err == nil {
		return nil
	}

	reason := sqlguard.Reason(err)
	c.cfg.logger.ErrorContext(ctx, "sql statement rejected",
		logger.Schema(c.schema.String()),
		logger.Reason(reason),
		logger.SQL(sql),
		logger.Error(err),
	)
	c.cfg.onReject(reason)
	return err
}

type lockedRows struct {
	pgx.Rows
	once   sync.Once
	unlock func()
}

func (r *lockedRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.once.Do(r.unlock)
	return false
}

func (r *lockedRows) Close() {
	r.Rows.Close()
	r.once.Do(r.unlock)
}

type lockedRow struct {
	row    pgx.Row
	once   sync.Once
	unlock func()
}

func (r *lockedRow) Scan(dest ...any) error {
	defer r.once.Do(r.unlock)
	return r.row.Scan(dest...)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }
