package tenantdb

import "errors"

var (
	// ErrUnavailable is returned when a connection cannot be acquired or
	// bound to the tenant schema. Callers may retry.
	ErrUnavailable = errors.New("tenantdb: scoped connection unavailable")

	// ErrBusy is returned, wrapped with ErrUnavailable, when a statement
	// times out waiting for rows still open on the same Conn.
	ErrBusy = errors.New("tenantdb: connection busy")

	// ErrReleased is returned when the connection is used after release.
	ErrReleased = errors.New("tenantdb: connection already released")
)
