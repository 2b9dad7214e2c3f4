// Package tenant resolves which store an HTTP request belongs to and carries
// that decision through the request context.
//
// # Resolution
//
// A Resolver extracts a subdomain candidate from the request. NewResolver
// builds the standard chain, in which the first non-empty result wins:
//
//  1. the X-Tenant-Subdomain header
//  2. the host of the Origin header, matched against the base domains
//  3. the host of the Referer header, matched against the base domains
//  4. the Host header, matched against the host suffixes (including dev domains)
//
// Reserved labels such as "api", "www" and "super-admin" never name a tenant.
//
// # Lookup
//
// A Provider answers GetBySubdomain from the global directory. Store reads
// public.tenants; Directory wraps any Provider with a cache and collapses
// concurrent misses for the same subdomain into one query. Only active tenants
// are cached, so suspensions take effect once the entry is invalidated.
//
// # Middleware
//
//	dir := tenant.NewDirectory(tenant.NewStore(pool),
//	    tenant.WithDirectoryCache(tenant.NewInMemoryCache(1000), 5*time.Minute),
//	)
//	r.Use(tenant.Middleware(tenant.NewResolver(cfg), dir,
//	    tenant.WithSkipPaths(cfg.SkipPaths...),
//	    tenant.WithScopedPool(tenantdb.FromPgxPool(pool)),
//	))
//
// Requests without a candidate pass through with no Scope. Every other
// failure, whether a malformed candidate, an unknown or inactive tenant or a
// directory error, produces the same 403 response with the body
// {"error":"tenant_context_error"}; the specific reason is only logged.
//
// Handlers read the Scope with FromContext and reach the tenant schema with DB:
//
//	conn, err := tenant.DB(r.Context())
//	rows, err := conn.Query(ctx, `SELECT id, name FROM products`)
//
// # Lifecycle
//
// Tenants move provisioning → active, provisioning → failed, active →
// suspended and suspended → active. Lifecycle holds the table; any other move
// is rejected.
package tenant
