package provisioning_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type tenantRow struct {
	id      uuid.UUID
	status  string
	contact []byte
}

type failure struct {
	match string
	code  string
}

// fakeDB keeps committed state and hands out transactions that stage their
// writes until Commit. Advisory locks are per-key mutexes held until the
// transaction ends.
type fakeDB struct {
	mu           sync.Mutex
	locks        map[int64]*sync.Mutex
	tenants      map[string]tenantRow
	schemas      map[string]bool
	users        int
	fail         failure
	hideExisting bool
	begun        int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		locks:   make(map[int64]*sync.Mutex),
		tenants: make(map[string]tenantRow),
		schemas: make(map[string]bool),
	}
}

func (db *fakeDB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	db.begun++
	db.mu.Unlock()
	return &fakeTx{db: db, tenants: make(map[string]tenantRow)}, nil
}

func (db *fakeDB) failWith(match, code string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.fail = failure{match: match, code: code}
}

func (db *fakeDB) lock(key int64) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	m, ok := db.locks[key]
	if !ok {
		m = &sync.Mutex{}
		db.locks[key] = m
	}
	return m
}

func (db *fakeDB) committed(subdomain string) (tenantRow, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.tenants[subdomain]
	return r, ok
}

func (db *fakeDB) counts() (tenants, schemas, users int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tenants), len(db.schemas), db.users
}

type fakeTx struct {
	pgx.Tx
	db      *fakeDB
	held    *sync.Mutex
	tenants map[string]tenantRow
	schemas []string
	users   int
	closed  bool
	stmts   []string
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.stmts = append(tx.stmts, sql)

	tx.db.mu.Lock()
	fail := tx.db.fail
	tx.db.mu.Unlock()
	if fail.match != "" && strings.Contains(sql, fail.match) {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: fail.code, Message: "injected failure"}
	}

	switch {
	case strings.Contains(sql, "pg_advisory_xact_lock"):
		m := tx.db.lock(args[0].(int64))
		m.Lock()
		tx.held = m
	case strings.HasPrefix(sql, "INSERT INTO public.tenants"):
		sub := args[1].(string)
		if _, ok := tx.db.committed(sub); ok {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505", ConstraintName: "tenants_subdomain_key"}
		}
		tx.tenants[sub] = tenantRow{id: args[0].(uuid.UUID), status: args[4].(string), contact: args[5].([]byte)}
	case strings.HasPrefix(sql, "CREATE SCHEMA"):
		tx.schemas = append(tx.schemas, strings.TrimPrefix(sql, "CREATE SCHEMA "))
	case strings.HasPrefix(sql, "UPDATE public.tenants"):
		id := args[0].(uuid.UUID)
		for sub, r := range tx.tenants {
			if r.id == id && r.status == args[1].(string) {
				r.status = args[2].(string)
				tx.tenants[sub] = r
				return pgconn.NewCommandTag("UPDATE 1"), nil
			}
		}
		return pgconn.NewCommandTag("UPDATE 0"), nil
	case strings.HasPrefix(sql, "INSERT INTO public.users"):
		tx.users++
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (tx *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "SELECT EXISTS") {
		_, ok := tx.db.committed(args[0].(string))
		tx.db.mu.Lock()
		hide := tx.db.hideExisting
		tx.db.mu.Unlock()
		return boolRow(ok && !hide)
	}
	return boolRow(false)
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.db.mu.Lock()
	for sub, r := range tx.tenants {
		tx.db.tenants[sub] = r
	}
	for _, s := range tx.schemas {
		tx.db.schemas[s] = true
	}
	tx.db.users += tx.users
	tx.db.mu.Unlock()
	tx.end()
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.end()
	return nil
}

func (tx *fakeTx) end() {
	tx.closed = true
	if tx.held != nil {
		tx.held.Unlock()
		tx.held = nil
	}
}

type boolRow bool

func (r boolRow) Scan(dest ...any) error {
	*dest[0].(*bool) = bool(r)
	return nil
}
