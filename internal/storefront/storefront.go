// Package storefront serves the per-store read models behind the storefront
// and merchant APIs. Every query is written against unqualified table names
// and runs on the request's schema-scoped connection.
package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrQueryFailed wraps database errors that are not scoping failures.
var ErrQueryFailed = errors.New("storefront: query failed")

// Source returns the querier bound to the current request's tenant.
type Source func(ctx context.Context) (tenantdb.Querier, error)

// FromRequest is the default Source: the scoped connection attached by
// tenant.Middleware.
func FromRequest(ctx context.Context) (tenantdb.Querier, error) {
	conn, err := tenant.DB(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type Product struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	PriceCents  int64      `json:"price_cents"`
	Currency    string     `json:"currency"`
	Stock       int        `json:"stock"`
}

type Order struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	Items      int       `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// Catalog runs the storefront and merchant read queries.
type Catalog struct {
	source Source
}

// NewCatalog creates a Catalog. A nil source selects FromRequest.
func NewCatalog(source Source) *Catalog {
	if source == nil {
		source = FromRequest
	}
	return &Catalog{source: source}
}

// ListProducts returns active products, newest first. category narrows the
// result when non-nil.
func (c *Catalog) ListProducts(ctx context.Context, limit int, category *uuid.UUID) ([]Product, error) {
	db, err := c.source(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx,
		`SELECT id, category_id, name, slug, description, price_cents, currency, stock
		FROM products
		WHERE active AND ($2::uuid IS NULL OR category_id = $2)
		ORDER BY created_at DESC
		LIMIT $1`,
		clampLimit(limit), category,
	)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.Currency, &p.Stock); err != nil {
			return nil, wrap(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return products, nil
}

// Settings returns the store settings as a key/value map.
func (c *Catalog) Settings(ctx context.Context) (map[string]string, error) {
	db, err := c.source(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, wrap(err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return settings, nil
}

// ListOrders returns the most recent orders with their line item counts.
// status filters by order status when not empty.
func (c *Catalog) ListOrders(ctx context.Context, limit int, status string) ([]Order, error) {
	db, err := c.source(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx,
		`SELECT o.id, o.email, o.status, o.total_cents, o.currency, count(i.id), o.created_at
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE $2 = '' OR o.status = $2
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $1`,
		clampLimit(limit), status,
	)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Email, &o.Status, &o.TotalCents, &o.Currency, &o.Items, &o.CreatedAt); err != nil {
			return nil, wrap(err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return orders, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// wrap keeps scoping and validation errors intact for the HTTP layer and
// tags everything else as a query failure.
func wrap(err error) error {
	if errors.Is(err, tenantdb.ErrUnavailable) || errors.Is(err, tenantdb.ErrReleased) {
		return err
	}
	return errors.Join(ErrQueryFailed, err)
}
