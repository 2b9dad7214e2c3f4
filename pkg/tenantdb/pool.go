package tenantdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface tenant-scoped code works with.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PooledConn is a single connection borrowed from a Pool.
type PooledConn interface {
	Querier
	// Release returns the connection to the pool.
	Release()
	// Discard closes the connection instead of returning it to the pool.
	Discard(ctx context.Context)
}

// Pool hands out connections.
type Pool interface {
	Acquire(ctx context.Context) (PooledConn, error)
}

// FromPgxPool adapts a pgx pool to Pool.
func FromPgxPool(pool *pgxpool.Pool) Pool {
	return pgxPool{pool: pool}
}

type pgxPool struct {
	pool *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (PooledConn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return pgxConn{Conn: conn}, nil
}

type pgxConn struct {
	*pgxpool.Conn
}

// Discard takes the connection out of the pool's control and closes it.
func (c pgxConn) Discard(ctx context.Context) {
	_ = c.Hijack().Close(ctx)
}
