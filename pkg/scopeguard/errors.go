package scopeguard

import "errors"

// ErrInvalidRoute is returned for malformed route tables.
var ErrInvalidRoute = errors.New("scopeguard: invalid route table")
