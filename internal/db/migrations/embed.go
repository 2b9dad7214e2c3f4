// Package migrations holds the SQL migrations of the global schema.
package migrations

import "embed"

// FS contains the goose migration files.
//
//go:embed *.sql
var FS embed.FS
