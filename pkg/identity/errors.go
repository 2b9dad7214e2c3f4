package identity

import "errors"

var (
	ErrInvalidOwner       = errors.New("identity: owner needs a tenant and an email")
	ErrWeakPassword       = errors.New("identity: password must be 8 to 72 bytes long")
	ErrEmailTaken         = errors.New("identity: email already registered for this tenant")
	ErrRegistrationFailed = errors.New("identity: registration failed")
)
