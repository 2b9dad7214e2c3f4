package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	jwxt "github.com/lestrrat-go/jwx/v2/jwt"
)

// Private claim names.
const (
	claimEmail           = "email"
	claimRole            = "role"
	claimTenantID        = "tid"
	claimSecurityVersion = "sv"
)

// MinKeyLength is the shortest HS256 key New accepts.
const MinKeyLength = 32

// Role is the platform role of an authenticated user.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleMerchant   Role = "merchant"
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleAdmin, RoleOwner, RoleSuperAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller carried by a token.
// TenantID is uuid.Nil for platform-level users.
type Principal struct {
	UserID          uuid.UUID
	Email           string
	Role            Role
	TenantID        uuid.UUID
	SecurityVersion int
}

// IsSuperAdmin reports whether p may act across tenants.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// Config holds token settings.
type Config struct {
	SigningKey string        `env:"JWT_SIGNING_KEY,required"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"storekit"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"1h"`
	ClockSkew  time.Duration `env:"JWT_CLOCK_SKEW" envDefault:"30s"`
}

// Service signs and verifies HS256 access tokens.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	skew   time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim written and required.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClockSkew sets the tolerated clock difference when validating.
func WithClockSkew(skew time.Duration) Option {
	return func(s *Service) {
		if skew >= 0 {
			s.skew = skew
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a token service with the provided signing key.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if len(signingKey) < MinKeyLength {
		return nil, ErrInvalidSigningKey
	}

	s := &Service{
		key: signingKey,
		ttl: time.Hour,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromConfig creates a service from environment configuration.
func NewFromConfig(cfg Config) (*Service, error) {
	return New([]byte(cfg.SigningKey),
		WithIssuer(cfg.Issuer),
		WithTTL(cfg.TTL),
		WithClockSkew(cfg.ClockSkew),
	)
}

// Issue signs a token for p.
func (s *Service) Issue(p Principal) (string, error) {
	if p.UserID == uuid.Nil || !p.Role.Valid() {
		return "", ErrInvalidClaims
	}

	now := s.now()
	b := jwxt.NewBuilder().
		JwtID(uuid.NewString()).
		Subject(p.UserID.String()).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(s.ttl)).
		Claim(claimEmail, p.Email).
		Claim(claimRole, string(p.Role)).
		Claim(claimSecurityVersion, p.SecurityVersion)
	if s.issuer != "" {
		b = b.Issuer(s.issuer)
	}
	if p.TenantID != uuid.Nil {
		b = b.Claim(claimTenantID, p.TenantID.String())
	}

	tok, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwxt.Sign(tok, jwxt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Parse verifies the signature and temporal claims of raw and returns the
// principal it carries.
func (s *Service) Parse(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrMissingToken
	}

	opts := []jwxt.ParseOption{
		jwxt.WithKey(jwa.HS256, s.key),
		jwxt.WithValidate(true),
		jwxt.WithAcceptableSkew(s.skew),
		jwxt.WithClock(jwxt.ClockFunc(s.now)),
	}
	if s.issuer != "" {
		opts = append(opts, jwxt.WithIssuer(s.issuer))
	}

	tok, err := jwxt.ParseString(raw, opts...)
	if err != nil {
		if errors.Is(err, jwxt.ErrTokenExpired()) {
			return Principal{}, errors.Join(ErrExpiredToken, err)
		}
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}

	return principalFrom(tok)
}

func principalFrom(tok jwxt.Token) (Principal, error) {
	var p Principal

	userID, err := uuid.Parse(tok.Subject())
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidClaims, err)
	}
	p.UserID = userID

	p.Email, _ = stringClaim(tok, claimEmail)

	role, _ := stringClaim(tok, claimRole)
	p.Role = Role(role)
	if !p.Role.Valid() {
		return Principal{}, ErrInvalidClaims
	}

	if tid, ok := stringClaim(tok, claimTenantID); ok && tid != "" {
		id, err := uuid.Parse(tid)
		if err != nil {
			return Principal{}, errors.Join(ErrInvalidClaims, err)
		}
		p.TenantID = id
	}

	if v, ok := tok.Get(claimSecurityVersion); ok {
		switch n := v.(type) {
		case float64:
			p.SecurityVersion = int(n)
		case int:
			p.SecurityVersion = n
		case int64:
			p.SecurityVersion = int(n)
		}
	}

	return p, nil
}

func stringClaim(tok jwxt.Token, name string) (string, bool) {
	v, ok := tok.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
