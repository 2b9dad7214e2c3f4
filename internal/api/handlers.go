package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/handler"
	"github.com/dmitrymomot/storekit/pkg/binder"
	"github.com/dmitrymomot/storekit/pkg/provisioning"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

var (
	binderJSON  = binder.JSON()
	binderPath  = binder.Path(chi.URLParam)
	binderQuery = binder.Query()
)

type provisionResponse struct {
	Tenant  *tenant.Tenant `json:"tenant"`
	OwnerID uuid.UUID      `json:"owner_id"`
}

func provisionHandler(p Provisioner) handler.HandlerFunc[handler.Context, provisioning.Request] {
	return func(ctx handler.Context, req provisioning.Request) handler.Response {
		res, err := p.Provision(ctx, req)
		if err != nil {
			return handler.Fail(err)
		}
		out := provisionResponse{Tenant: res.Tenant}
		if res.Owner != nil {
			out.OwnerID = res.Owner.ID
		}
		return handler.JSON(out, handler.WithJSONStatus(http.StatusCreated))
	}
}

type tenantRequest struct {
	ID string `path:"id"`
}

func statusHandler(change func(context.Context, uuid.UUID) (*tenant.Tenant, error)) handler.HandlerFunc[handler.Context, tenantRequest] {
	return func(ctx handler.Context, req tenantRequest) handler.Response {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return handler.Fail(errInvalidTenantID)
		}
		t, err := change(ctx, id)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(t)
	}
}

type productsRequest struct {
	Limit    int    `query:"limit"`
	Category string `query:"category"`
}

func productsHandler(c Catalog) handler.HandlerFunc[handler.Context, productsRequest] {
	return func(ctx handler.Context, req productsRequest) handler.Response {
		var category *uuid.UUID
		if req.Category != "" {
			id, err := uuid.Parse(req.Category)
			if err != nil {
				return handler.Fail(handler.ErrBadRequest)
			}
			category = &id
		}
		products, err := c.ListProducts(ctx, req.Limit, category)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(products)
	}
}

func settingsHandler(c Catalog) handler.HandlerFunc[handler.Context, struct{}] {
	return func(ctx handler.Context, _ struct{}) handler.Response {
		settings, err := c.Settings(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(settings)
	}
}

type ordersRequest struct {
	Limit  int    `query:"limit"`
	Status string `query:"status"`
}

func ordersHandler(c Catalog) handler.HandlerFunc[handler.Context, ordersRequest] {
	return func(ctx handler.Context, req ordersRequest) handler.Response {
		orders, err := c.ListOrders(ctx, req.Limit, req.Status)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(orders)
	}
}
