package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrMissingToken      = errors.New("jwt: missing token")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrInvalidSigningKey = errors.New("jwt: signing key is too short")
	ErrInvalidClaims     = errors.New("jwt: invalid claims")
	ErrNoPrincipal       = errors.New("jwt: no principal in context")
)
