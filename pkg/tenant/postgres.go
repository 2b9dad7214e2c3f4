package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const tenantColumns = `id, subdomain, name, plan, status, created_at`

// Store reads and updates the global tenant directory (public.tenants).
type Store struct {
	db DBTX
}

// NewStore creates a directory store on db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// GetBySubdomain implements Provider. Soft-deleted rows are invisible.
func (s *Store) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM public.tenants WHERE subdomain = $1 AND deleted_at IS NULL`,
		subdomain,
	)
	return scanTenant(row)
}

// GetByID returns a live tenant by identifier.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM public.tenants WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	return scanTenant(row)
}

// UpdateStatus moves a tenant from one status to another. It fails with
// ErrStatusConflict when the row is no longer in `from`.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE public.tenants SET status = $3, updated_at = now() WHERE id = $1 AND status = $2 AND deleted_at IS NULL`,
		id, string(from), string(to),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	var (
		t      Tenant
		plan   string
		status string
	)
	if err := row.Scan(&t.ID, &t.Subdomain, &t.Name, &plan, &status, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	t.Plan = Plan(plan)
	t.Status = Status(status)
	return &t, nil
}
