package tenant_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/tenant"
)

func TestDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newDir := func(p tenant.Provider) *tenant.Directory {
		c := tenant.NewInMemoryCache(100)
		t.Cleanup(func() { _ = c.Close() })
		return tenant.NewDirectory(p, tenant.WithDirectoryCache(c, time.Minute))
	}

	t.Run("caches active tenants", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider()
		want := createTestTenant("acme", tenant.StatusActive)
		p.addTenant(want)
		d := newDir(p)

		for range 3 {
			got, err := d.GetBySubdomain(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, want.ID, got.ID)
		}
		assert.Equal(t, 1, p.getCalls())
	})

	t.Run("does not cache inactive tenants", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider()
		p.addTenant(createTestTenant("frozen", tenant.StatusSuspended))
		d := newDir(p)

		for range 2 {
			got, err := d.GetBySubdomain(ctx, "frozen")
			require.NoError(t, err)
			assert.Equal(t, tenant.StatusSuspended, got.Status)
		}
		assert.Equal(t, 2, p.getCalls())
	})

	t.Run("invalidate makes a suspension visible", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider()
		p.addTenant(createTestTenant("acme", tenant.StatusActive))
		d := newDir(p)

		_, err := d.GetBySubdomain(ctx, "acme")
		require.NoError(t, err)

		p.setStatus("acme", tenant.StatusSuspended)
		got, err := d.GetBySubdomain(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusActive, got.Status, "served from cache")

		d.Invalidate(ctx, "acme")
		got, err = d.GetBySubdomain(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusSuspended, got.Status)
	})

	t.Run("not found passes through", func(t *testing.T) {
		t.Parallel()

		d := newDir(newMockProvider())
		_, err := d.GetBySubdomain(ctx, "ghost")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.NotErrorIs(t, err, tenant.ErrLookupFailed)
	})

	t.Run("nil tenant is not found", func(t *testing.T) {
		t.Parallel()

		d := tenant.NewDirectory(tenant.ProviderFunc(func(context.Context, string) (*tenant.Tenant, error) {
			return nil, nil
		}))
		_, err := d.GetBySubdomain(ctx, "ghost")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("infrastructure errors are wrapped", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider()
		p.err = errors.New("connection reset")
		d := newDir(p)

		_, err := d.GetBySubdomain(ctx, "acme")
		require.ErrorIs(t, err, tenant.ErrLookupFailed)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("concurrent misses share one lookup", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider()
		p.delay = 50 * time.Millisecond
		p.addTenant(createTestTenant("acme", tenant.StatusActive))
		d := tenant.NewDirectory(p)

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := d.GetBySubdomain(ctx, "acme")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Less(t, p.getCalls(), 20)
	})

	t.Run("lookup survives caller cancellation", func(t *testing.T) {
		t.Parallel()

		var sawCanceled bool
		d := tenant.NewDirectory(tenant.ProviderFunc(func(lctx context.Context, sub string) (*tenant.Tenant, error) {
			sawCanceled = lctx.Err() != nil
			return createTestTenant(sub, tenant.StatusActive), nil
		}))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := d.GetBySubdomain(cctx, "acme")
		require.NoError(t, err)
		assert.False(t, sawCanceled)
	})

	t.Run("lookup timeout", func(t *testing.T) {
		t.Parallel()

		d := tenant.NewDirectory(tenant.ProviderFunc(func(lctx context.Context, _ string) (*tenant.Tenant, error) {
			<-lctx.Done()
			return nil, lctx.Err()
		}), tenant.WithLookupTimeout(10*time.Millisecond))

		_, err := d.GetBySubdomain(ctx, "acme")
		require.ErrorIs(t, err, tenant.ErrLookupFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
