package schema

import "errors"

// ErrInvalidName is returned when a string is not a canonical tenant schema name.
var ErrInvalidName = errors.New("schema: invalid tenant schema name")
