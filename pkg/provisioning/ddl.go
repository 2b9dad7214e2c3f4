package provisioning

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/storekit/pkg/schema"
)

// Table definitions. %[1]s is the quoted schema name.
var tableDDL = map[string]string{
	schema.TableCategories: `CREATE TABLE %[1]s.categories (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		parent_id  UUID REFERENCES %[1]s.categories (id) ON DELETE SET NULL,
		name       TEXT NOT NULL,
		slug       TEXT NOT NULL UNIQUE,
		position   INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	schema.TableProducts: `CREATE TABLE %[1]s.products (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		category_id UUID REFERENCES %[1]s.categories (id) ON DELETE SET NULL,
		name        TEXT NOT NULL,
		slug        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
		currency    TEXT NOT NULL,
		stock       INTEGER NOT NULL DEFAULT 0,
		active      BOOLEAN NOT NULL DEFAULT true,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	schema.TableOrders: `CREATE TABLE %[1]s.orders (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		customer_id UUID,
		email       TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		total_cents BIGINT NOT NULL DEFAULT 0,
		currency    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	schema.TableOrderItems: `CREATE TABLE %[1]s.order_items (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id         UUID NOT NULL REFERENCES %[1]s.orders (id) ON DELETE CASCADE,
		product_id       UUID REFERENCES %[1]s.products (id) ON DELETE SET NULL,
		quantity         INTEGER NOT NULL CHECK (quantity > 0),
		unit_price_cents BIGINT NOT NULL
	)`,
	schema.TableBanners: `CREATE TABLE %[1]s.banners (
		id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title     TEXT NOT NULL,
		image_url TEXT NOT NULL,
		link_url  TEXT NOT NULL DEFAULT '',
		position  INTEGER NOT NULL DEFAULT 0,
		active    BOOLEAN NOT NULL DEFAULT true
	)`,
	schema.TablePromotions: `CREATE TABLE %[1]s.promotions (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		code        TEXT NOT NULL UNIQUE,
		percent_off INTEGER NOT NULL CHECK (percent_off BETWEEN 1 AND 100),
		starts_at   TIMESTAMPTZ,
		ends_at     TIMESTAMPTZ
	)`,
	schema.TableTestimonials: `CREATE TABLE %[1]s.testimonials (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		author     TEXT NOT NULL,
		body       TEXT NOT NULL,
		rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	schema.TablePages: `CREATE TABLE %[1]s.pages (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		slug       TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL DEFAULT '',
		published  BOOLEAN NOT NULL DEFAULT false,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	schema.TableSettings: `CREATE TABLE %[1]s.settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// createSchema creates the tenant schema and its table set inside tx.
func createSchema(ctx context.Context, tx pgx.Tx, name schema.Name) error {
	quoted := name.Quoted()
	if _, err := tx.Exec(ctx, "CREATE SCHEMA "+quoted); err != nil {
		return fmt.Errorf("create schema %s: %w", name, err)
	}
	for _, table := range schema.Tables {
		ddl, ok := tableDDL[table]
		if !ok {
			return fmt.Errorf("no definition for table %q", table)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(ddl, quoted)); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

// seedSettings writes the default settings rows for a new store.
func seedSettings(ctx context.Context, tx pgx.Tx, name schema.Name, settings [][2]string) error {
	if len(settings) == 0 {
		return nil
	}
	sql := "INSERT INTO " + schema.Qualify(name, schema.TableSettings) + " (key, value) VALUES "
	args := make([]any, 0, len(settings)*2)
	for i, kv := range settings {
		if i > 0 {
			sql += ", "
		}
		sql += fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, kv[0], kv[1])
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}
