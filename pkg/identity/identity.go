package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/storekit/pkg/jwt"
	"github.com/dmitrymomot/storekit/pkg/pg"
)

// MinPasswordLength is the shortest password accepted for an owner account.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password accepted, in bytes. bcrypt
// ignores input beyond it.
const MaxPasswordBytes = 72

// Execer runs a statement. pgx.Tx satisfies it, so the owner row commits or
// rolls back together with the caller's transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// OwnerParams describes the first user of a new tenant.
type OwnerParams struct {
	TenantID uuid.UUID
	Email    string
	Password string
}

// Owner is the registered account. VerificationToken is returned once in
// plaintext so it can be mailed; only its hash is stored.
type Owner struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	Email             string
	Role              jwt.Role
	SecurityVersion   int
	VerificationToken string
	CreatedAt         time.Time
}

// Principal returns the token principal for o.
func (o *Owner) Principal() jwt.Principal {
	return jwt.Principal{
		UserID:          o.ID,
		Email:           o.Email,
		Role:            o.Role,
		TenantID:        o.TenantID,
		SecurityVersion: o.SecurityVersion,
	}
}

// Registrar creates owner accounts.
type Registrar struct {
	cost int
	now  func() time.Time
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithBcryptCost overrides the bcrypt cost.
func WithBcryptCost(cost int) Option {
	return func(r *Registrar) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			r.cost = cost
		}
	}
}

// NewRegistrar creates a registrar.
func NewRegistrar(opts ...Option) *Registrar {
	r := &Registrar{cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterOwner inserts the owner row using tx.
func (r *Registrar) RegisterOwner(ctx context.Context, tx Execer, p OwnerParams) (*Owner, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if p.TenantID == uuid.Nil || email == "" {
		return nil, ErrInvalidOwner
	}
	if len(p.Password) < MinPasswordLength || len(p.Password) > MaxPasswordBytes {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), r.cost)
	if err != nil {
		return nil, errors.Join(ErrRegistrationFailed, err)
	}

	token, tokenHash, err := newVerificationToken()
	if err != nil {
		return nil, errors.Join(ErrRegistrationFailed, err)
	}

	owner := &Owner{
		ID:                uuid.New(),
		TenantID:          p.TenantID,
		Email:             email,
		Role:              jwt.RoleOwner,
		SecurityVersion:   1,
		VerificationToken: token,
		CreatedAt:         r.now().UTC(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO public.users (id, tenant_id, email, password_hash, role, security_version, verification_token_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		owner.ID, owner.TenantID, owner.Email, string(hash), string(owner.Role), owner.SecurityVersion, tokenHash, owner.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Join(ErrRegistrationFailed, err)
	}

	return owner, nil
}

// CheckPassword compares a stored bcrypt hash with a candidate password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken returns the stored form of a verification token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newVerificationToken() (token, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashToken(token), nil
}
