package storefront_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/internal/storefront"
	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

// fakeRows replays fixed rows, assigning values to scan targets by
// reflection.
type fakeRows struct {
	pgx.Rows
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     {}

type fakeQuerier struct {
	rows    *fakeRows
	err     error
	queries []string
	args    [][]any
}

func (q *fakeQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, sql)
	q.args = append(q.args, args)
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func catalogWith(q *fakeQuerier) *storefront.Catalog {
	return storefront.NewCatalog(func(context.Context) (tenantdb.Querier, error) { return q, nil })
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	t.Run("scans rows", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		q := &fakeQuerier{rows: &fakeRows{data: [][]any{
			{id, (*uuid.UUID)(nil), "Mug", "mug", "", int64(1200), "USD", 3},
		}}}

		got, err := catalogWith(q).ListProducts(context.Background(), 0, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, storefront.Product{ID: id, Name: "Mug", Slug: "mug", PriceCents: 1200, Currency: "USD", Stock: 3}, got[0])

		assert.NotContains(t, q.queries[0], "tenant_")
		assert.Equal(t, storefront.DefaultLimit, q.args[0][0])
	})

	t.Run("limit is clamped", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{rows: &fakeRows{}}
		got, err := catalogWith(q).ListProducts(context.Background(), 1000, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
		assert.Equal(t, storefront.MaxLimit, q.args[0][0])
	})

	t.Run("scoping failure is passed through", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{err: errors.Join(tenantdb.ErrUnavailable, errors.New("pool exhausted"))}
		_, err := catalogWith(q).ListProducts(context.Background(), 10, nil)
		assert.ErrorIs(t, err, tenantdb.ErrUnavailable)
		assert.NotErrorIs(t, err, storefront.ErrQueryFailed)
	})

	t.Run("database error", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{rows: &fakeRows{err: errors.New("conn reset")}}
		_, err := catalogWith(q).ListProducts(context.Background(), 10, nil)
		assert.ErrorIs(t, err, storefront.ErrQueryFailed)
	})
}

func TestSettings(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{"currency", "USD"},
		{"store_name", "Shop One"},
	}}}

	got, err := catalogWith(q).Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"currency": "USD", "store_name": "Shop One"}, got)
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{id, "buyer@example.com", "paid", int64(4500), "USD", 2, created},
	}}}

	got, err := catalogWith(q).ListOrders(context.Background(), 5, "paid")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, storefront.Order{
		ID: id, Email: "buyer@example.com", Status: "paid", TotalCents: 4500, Currency: "USD", Items: 2, CreatedAt: created,
	}, got[0])
	assert.Equal(t, []any{5, "paid"}, q.args[0])
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	_, err := storefront.FromRequest(context.Background())
	assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)

	ctx := tenant.WithScope(context.Background(), tenant.NewScope(tenant.Tenant{ID: uuid.New(), Subdomain: "shop1"}, nil))
	_, err = storefront.FromRequest(ctx)
	assert.ErrorIs(t, err, tenant.ErrNoDatabase)
}
