// Package api assembles the HTTP surface: middleware chain, route guard and
// the handlers for provisioning, platform administration and the
// tenant-scoped storefront and merchant endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/handler"
	"github.com/dmitrymomot/storekit/internal/storefront"
	"github.com/dmitrymomot/storekit/pkg/clientip"
	"github.com/dmitrymomot/storekit/pkg/jwt"
	"github.com/dmitrymomot/storekit/pkg/provisioning"
	"github.com/dmitrymomot/storekit/pkg/ratelimiter"
	"github.com/dmitrymomot/storekit/pkg/requestid"
	"github.com/dmitrymomot/storekit/pkg/scopeguard"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

// Provisioner creates stores. *provisioning.Service satisfies it.
type Provisioner interface {
	Provision(ctx context.Context, req provisioning.Request) (*provisioning.Result, error)
}

// Lifecycle changes the status of existing stores. *provisioning.Lifecycle
// satisfies it.
type Lifecycle interface {
	Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	Reinstate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
}

// Catalog serves tenant-scoped reads. *storefront.Catalog satisfies it.
type Catalog interface {
	ListProducts(ctx context.Context, limit int, category *uuid.UUID) ([]storefront.Product, error)
	Settings(ctx context.Context) (map[string]string, error)
	ListOrders(ctx context.Context, limit int, status string) ([]storefront.Order, error)
}

// Deps are the collaborators NewRouter wires together. Health, Metrics and
// ProvisionLimit are optional.
type Deps struct {
	Logger *slog.Logger

	Resolver      tenant.Resolver
	Directory     tenant.Provider
	TenantOptions []tenant.Option

	Auth  *jwt.Service
	Guard *scopeguard.Guard

	Provisioner    Provisioner
	ProvisionLimit *ratelimiter.Limiter
	Lifecycle      Lifecycle
	Catalog        Catalog

	Health  http.Handler
	Metrics http.Handler
}

// NewRouter builds the application router. Middleware runs in this order:
// request ID, client IP, panic recovery, tenant resolution, token
// authentication, then the per-route scope guard.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	errs := handler.NewErrorHandler(log, mapError)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(Recover(log))
	r.Use(tenant.Middleware(d.Resolver, d.Directory, d.TenantOptions...))
	r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{Service: d.Auth, Logger: log}))

	if d.Health != nil {
		r.Get("/health", d.Health.ServeHTTP)
	}
	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics.ServeHTTP)
	}

	provision := []func(http.Handler) http.Handler{d.Guard.Middleware(RouteProvision)}
	if d.ProvisionLimit != nil {
		provision = append(provision, d.ProvisionLimit.Middleware(ratelimiter.ByClientIP))
	}
	r.With(provision...).
		Post("/provisioning/tenants", handler.Wrap(provisionHandler(d.Provisioner),
			handler.WithBinders[handler.Context, provisioning.Request](binderJSON),
			handler.WithErrorHandler[handler.Context, provisioning.Request](errs),
		))

	r.Route("/super-admin/tenants/{id}", func(r chi.Router) {
		r.Use(d.Guard.Middleware(RouteSuperAdminTenants))
		r.Use(d.Guard.RequireRole(jwt.RoleSuperAdmin))

		opts := []handler.WrapOption[handler.Context, tenantRequest]{
			handler.WithBinders[handler.Context, tenantRequest](binderPath),
			handler.WithErrorHandler[handler.Context, tenantRequest](errs),
		}
		r.Post("/suspend", handler.Wrap(statusHandler(d.Lifecycle.Suspend), opts...))
		r.Post("/reinstate", handler.Wrap(statusHandler(d.Lifecycle.Reinstate), opts...))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(tenant.RequireTenant(nil))

		r.With(d.Guard.Middleware(RouteStorefrontProducts)).
			Get("/storefront/products", handler.Wrap(productsHandler(d.Catalog),
				handler.WithBinders[handler.Context, productsRequest](binderQuery),
				handler.WithErrorHandler[handler.Context, productsRequest](errs),
			))
		r.With(d.Guard.Middleware(RouteStorefrontSettings)).
			Get("/storefront/settings", handler.Wrap(settingsHandler(d.Catalog),
				handler.WithErrorHandler[handler.Context, struct{}](errs),
			))
		r.With(d.Guard.Middleware(RouteMerchantOrders)).
			Get("/merchant/orders", handler.Wrap(ordersHandler(d.Catalog),
				handler.WithBinders[handler.Context, ordersRequest](binderQuery),
				handler.WithErrorHandler[handler.Context, ordersRequest](errs),
			))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, handler.ErrNotFound)
	})

	return r
}
