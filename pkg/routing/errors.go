package routing

import "errors"

var (
	ErrEmptySubdomain = errors.New("routing: empty subdomain")
	ErrRegisterFailed = errors.New("routing: failed to update route table")
)
