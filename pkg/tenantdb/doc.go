// Package tenantdb provides the per-request database handle bound to a single
// tenant schema.
//
// A Conn is created for every tenant-scoped request but takes nothing from the
// pool until a statement actually runs. On first use it acquires a connection
// (bounded by an acquire timeout) and issues
//
//	SET search_path TO "tenant_<uuid>"
//
// with a quoted identifier. The scoped connection is reused for the rest of
// the request. Every statement is checked by sqlguard first; rejections are
// logged at error level and never reach the database.
//
// Release resets the search path and returns the connection to the pool. It is
// idempotent, so it can be registered for every termination signal at once:
//
//	conn := tenantdb.New(tenantdb.FromPgxPool(pool), scope.Schema)
//	stop := conn.ReleaseOnDone(r.Context()) // client abort
//	defer func() {
//	    stop()
//	    conn.Release(r.Context()) // normal return or panic
//	}()
//
// If the reset fails the connection is closed instead of being pooled.
//
// Rows from Query keep the connection until they are closed. A statement
// issued meanwhile on the same Conn waits no longer than its context and the
// acquire timeout, then fails with ErrBusy.
package tenantdb
