package tenant_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

// recordingPool hands out a single connection and records the statements
// issued on it.
type recordingPool struct {
	mu         sync.Mutex
	acquired   int
	released   int
	searchPath string
	statements []string
}

func (p *recordingPool) Acquire(context.Context) (tenantdb.PooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired++
	return &recordingConn{pool: p}, nil
}

func (p *recordingPool) snapshot() (acquired, released int, searchPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired, p.released, p.searchPath
}

type recordingConn struct {
	pool *recordingPool
}

func (c *recordingConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.pool.statements = append(c.pool.statements, sql)
	switch {
	case strings.HasPrefix(sql, "SET search_path TO "):
		c.pool.searchPath = strings.TrimPrefix(sql, "SET search_path TO ")
	case sql == "RESET search_path":
		c.pool.searchPath = ""
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (c *recordingConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *recordingConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (c *recordingConn) Release() {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.pool.released++
}

func (c *recordingConn) Discard(context.Context) {}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func failHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver(testConfig)

	t.Run("adds scope to context", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		acme := createTestTenant("acme", tenant.StatusActive)
		provider.addTenant(acme)

		handler := tenant.Middleware(resolver, provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := tenant.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, acme.ID, scope.TenantID())
			assert.Equal(t, "acme", scope.Subdomain())
			assert.Equal(t, tenant.PlanPro, scope.Plan())
			assert.Equal(t, "tenant_"+strings.ReplaceAll(acme.ID.String(), "-", "_"), scope.Schema().String())
			assert.Nil(t, scope.DB())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/storefront/products", nil)
		req.Host = "acme.platform.example"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no candidate passes through without scope", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		handler := tenant.Middleware(resolver, provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = "platform.example"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, provider.getCalls())
	})

	t.Run("every failure looks the same", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		provider.addTenant(createTestTenant("frozen", tenant.StatusSuspended))
		provider.addTenant(createTestTenant("pending", tenant.StatusProvisioning))

		broken := newMockProvider()
		broken.err = errors.New("db down")

		cases := []struct {
			name      string
			provider  tenant.Provider
			candidate string
			reason    string
		}{
			{"malformed", provider, "bad_name!", "malformed_subdomain"},
			{"unknown", provider, "ghost", "not_found"},
			{"suspended", provider, "frozen", "inactive"},
			{"provisioning", provider, "pending", "inactive"},
			{"lookup error", broken, "acme", "lookup_failed"},
		}

		var bodies []string
		for _, c := range cases {
			var buf bytes.Buffer
			var reasons []string
			mw := tenant.Middleware(resolver, c.provider,
				tenant.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
				tenant.WithRejectHook(func(reason string) { reasons = append(reasons, reason) }),
			)

			req := httptest.NewRequest(http.MethodGet, "/api/storefront/products", nil)
			req.Header.Set(tenant.DefaultHeader, c.candidate)
			w := httptest.NewRecorder()

			mw(failHandler(t)).ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code, c.name)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"), c.name)
			assert.Equal(t, []string{c.reason}, reasons, c.name)
			assert.Contains(t, buf.String(), "reason="+c.reason, c.name)
			bodies = append(bodies, w.Body.String())
		}

		for _, b := range bodies {
			assert.JSONEq(t, `{"error":"tenant_context_error"}`, b)
		}
	})

	t.Run("resolver error is rejected", func(t *testing.T) {
		t.Parallel()

		failing := tenant.ResolverFunc(func(*http.Request) (string, error) {
			return "", errors.New("bad header")
		})
		w := httptest.NewRecorder()
		tenant.Middleware(failing, newMockProvider())(failHandler(t)).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"tenant_context_error"}`, w.Body.String())
	})

	t.Run("skip paths and preflight bypass resolution", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		mw := tenant.Middleware(resolver, provider, tenant.WithSkipPaths("/health", "/provisioning"))

		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/health", nil),
			httptest.NewRequest(http.MethodPost, "/provisioning/tenants", nil),
			httptest.NewRequest(http.MethodOptions, "/api/storefront/products", nil),
		} {
			req.Header.Set(tenant.DefaultHeader, "ghost")
			w := httptest.NewRecorder()
			mw(okHandler(t)).ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, req.URL.Path)
		}
		assert.Zero(t, provider.getCalls())
	})

	t.Run("skip paths match whole segments", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		mw := tenant.Middleware(resolver, provider, tenant.WithSkipPaths("/health", "/provisioning", "/super-admin/"))

		tests := []struct {
			path    string
			skipped bool
		}{
			{"/health", true},
			{"/health/live", true},
			{"/super-admin", false},
			{"/super-admin/tenants", true},
			{"/healthz", false},
			{"/provisioningX", false},
			{"/super-adminfoo", false},
			{"/api/health", false},
		}

		for _, tt := range tests {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(tenant.DefaultHeader, "ghost")
			w := httptest.NewRecorder()
			mw(okHandler(t)).ServeHTTP(w, req)

			if tt.skipped {
				assert.Equal(t, http.StatusOK, w.Code, tt.path)
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code, tt.path)
			}
		}
		assert.Equal(t, 5, provider.getCalls())
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		var got error
		mw := tenant.Middleware(resolver, newMockProvider(), tenant.WithErrorHandler(
			func(w http.ResponseWriter, r *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusTeapot)
			},
		))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.DefaultHeader, "ghost")
		w := httptest.NewRecorder()
		mw(failHandler(t)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.ErrorIs(t, got, tenant.ErrTenantNotFound)
	})

	t.Run("suspension takes effect after invalidation", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		provider.addTenant(createTestTenant("acme", tenant.StatusActive))
		cache := tenant.NewInMemoryCache(10)
		defer cache.Close()
		dir := tenant.NewDirectory(provider, tenant.WithDirectoryCache(cache, time.Minute))
		handler := tenant.Middleware(resolver, dir)(okHandler(t))

		serve := func() int {
			req := httptest.NewRequest(http.MethodGet, "/api/storefront/products", nil)
			req.Host = "acme.platform.example"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, serve())

		provider.setStatus("acme", tenant.StatusSuspended)
		dir.Invalidate(context.Background(), "acme")

		assert.Equal(t, http.StatusForbidden, serve())
	})
}

func TestMiddleware_ScopedPool(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver(testConfig)

	t.Run("unused connection is never acquired", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		provider.addTenant(createTestTenant("acme", tenant.StatusActive))
		pool := &recordingPool{}

		handler := tenant.Middleware(resolver, provider, tenant.WithScopedPool(pool))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := tenant.DB(r.Context())
				require.NoError(t, err)
				assert.False(t, conn.Acquired())
				w.WriteHeader(http.StatusOK)
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.DefaultHeader, "acme")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		acquired, released, _ := pool.snapshot()
		assert.Zero(t, acquired)
		assert.Zero(t, released)
	})

	t.Run("scoped connection is reset and released", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		acme := createTestTenant("acme", tenant.StatusActive)
		provider.addTenant(acme)
		pool := &recordingPool{}

		handler := tenant.Middleware(resolver, provider, tenant.WithScopedPool(pool))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := tenant.DB(r.Context())
				require.NoError(t, err)
				_, err = conn.Exec(r.Context(), "UPDATE products SET price = price")
				require.NoError(t, err)

				_, _, searchPath := pool.snapshot()
				scope, _ := tenant.FromContext(r.Context())
				assert.Equal(t, scope.Schema().Quoted(), searchPath)
				w.WriteHeader(http.StatusOK)
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.DefaultHeader, "acme")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		acquired, released, searchPath := pool.snapshot()
		assert.Equal(t, 1, acquired)
		assert.Equal(t, 1, released)
		assert.Empty(t, searchPath)
	})

	t.Run("released when the handler panics", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		provider.addTenant(createTestTenant("acme", tenant.StatusActive))
		pool := &recordingPool{}

		handler := tenant.Middleware(resolver, provider, tenant.WithScopedPool(pool))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, _ := tenant.DB(r.Context())
				_, _ = conn.Exec(r.Context(), "SELECT 1")
				panic("boom")
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.DefaultHeader, "acme")
		assert.Panics(t, func() { handler.ServeHTTP(httptest.NewRecorder(), req) })

		_, released, searchPath := pool.snapshot()
		assert.Equal(t, 1, released)
		assert.Empty(t, searchPath)
	})

	t.Run("released when the client goes away", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		provider.addTenant(createTestTenant("acme", tenant.StatusActive))
		pool := &recordingPool{}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		handler := tenant.Middleware(resolver, provider, tenant.WithScopedPool(pool))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, _ := tenant.DB(r.Context())
				_, _ = conn.Exec(r.Context(), "SELECT 1")
				cancel()
				assert.Eventually(t, func() bool {
					_, released, _ := pool.snapshot()
					return released == 1
				}, time.Second, 5*time.Millisecond)
				close(done)
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		req.Header.Set(tenant.DefaultHeader, "acme")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		<-done

		_, released, _ := pool.snapshot()
		assert.Equal(t, 1, released, "release is idempotent")
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without scope", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		tenant.RequireTenant(nil)(failHandler(t)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"tenant_context_error"}`, w.Body.String())
	})

	t.Run("passes scoped requests", func(t *testing.T) {
		t.Parallel()

		scope := tenant.NewScope(*createTestTenant("acme", tenant.StatusActive), nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(tenant.WithScope(req.Context(), scope))

		w := httptest.NewRecorder()
		tenant.RequireTenant(nil)(okHandler(t)).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
