// Package pg bootstraps the shared PostgreSQL pool.
//
// Connect opens a pgx/v5 pool from Config, retrying while the database comes
// up. Migrate applies goose migrations from an fs.FS (usually an embed.FS) to
// the global schema: the tenant directory and platform users. Per-tenant
// schemas are not migrated here; provisioning creates them.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//	    return err
//	}
//
// The Is*Error helpers classify *pgconn.PgError values by SQLSTATE, e.g.
// IsDuplicateKeyError for unique violations and IsLockTimeoutError for a lock
// that was not granted within lock_timeout.
package pg
