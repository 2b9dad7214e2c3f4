package api_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/storekit/pkg/provisioning"
	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

// fakePool serves canned rows per schema. The schema is taken from the
// search_path a connection was bound to, so a query only ever sees the
// rows of the tenant it was scoped for.
type fakePool struct {
	mu         sync.Mutex
	rows       map[string]map[string][][]any
	acquired   int
	released   int
	acquireErr error
	queries    []string
}

func newFakePool() *fakePool {
	return &fakePool{rows: map[string]map[string][][]any{}}
}

func (p *fakePool) seed(schemaName, table string, rows ...[]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rows[schemaName] == nil {
		p.rows[schemaName] = map[string][][]any{}
	}
	p.rows[schemaName][table] = append(p.rows[schemaName][table], rows...)
}

func (p *fakePool) Acquire(context.Context) (tenantdb.PooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return &fakeConn{pool: p}, nil
}

func (p *fakePool) stats() (acquired, released int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired, p.released
}

type fakeConn struct {
	pool       *fakePool
	searchPath string
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.HasPrefix(sql, "SET search_path TO "):
		c.searchPath = strings.Trim(strings.TrimPrefix(sql, "SET search_path TO "), `"`)
	case strings.HasPrefix(sql, "RESET search_path"):
		c.searchPath = ""
	}
	return pgconn.NewCommandTag("SET"), nil
}

func (c *fakeConn) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.pool.queries = append(c.pool.queries, sql)

	tables := c.pool.rows[c.searchPath]
	for _, table := range []string{"products", "settings", "orders"} {
		if strings.Contains(sql, "FROM "+table) {
			return &fakeRows{data: tables[table]}, nil
		}
	}
	return nil, errors.New("unexpected query")
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (c *fakeConn) Release() {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.pool.released++
}

func (c *fakeConn) Discard(context.Context) { c.Release() }

type fakeRows struct {
	pgx.Rows
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.data[r.pos-1][i]))
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

type directory map[string]*tenant.Tenant

func (d directory) GetBySubdomain(_ context.Context, subdomain string) (*tenant.Tenant, error) {
	if t, ok := d[subdomain]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

type provisionerStub struct {
	res *provisioning.Result
	err error
}

func (p provisionerStub) Provision(context.Context, provisioning.Request) (*provisioning.Result, error) {
	return p.res, p.err
}

type lifecycleStub struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (l *lifecycleStub) record(op string, id uuid.UUID) (*tenant.Tenant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, op+":"+id.String())
	if l.err != nil {
		return nil, l.err
	}
	status := tenant.StatusSuspended
	if op == "reinstate" {
		status = tenant.StatusActive
	}
	return &tenant.Tenant{ID: id, Subdomain: "shop1", Status: status}, nil
}

func (l *lifecycleStub) Suspend(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return l.record("suspend", id)
}

func (l *lifecycleStub) Reinstate(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return l.record("reinstate", id)
}
