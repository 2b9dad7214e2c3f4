package provisioning

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

// StatusStore reads and updates tenant status. *tenant.Store satisfies it.
type StatusStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to tenant.Status) error
}

// Invalidator drops cached directory entries. *tenant.Directory satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, subdomain string)
}

// Lifecycle suspends and reinstates existing stores.
type Lifecycle struct {
	store  StatusStore
	cache  Invalidator
	logger *slog.Logger
}

// NewLifecycle creates a Lifecycle. cache may be nil.
func NewLifecycle(store StatusStore, cache Invalidator, log *slog.Logger) *Lifecycle {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Lifecycle{store: store, cache: cache, logger: log.With(logger.Component("provisioning"))}
}

// Suspend moves an active store to suspended. Requests for it are rejected
// as soon as the directory cache entry is gone.
func (l *Lifecycle) Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return l.fire(ctx, id, tenant.EventSuspend)
}

// Reinstate moves a suspended store back to active.
func (l *Lifecycle) Reinstate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return l.fire(ctx, id, tenant.EventReinstate)
}

func (l *Lifecycle) fire(ctx context.Context, id uuid.UUID, event tenant.Event) (*tenant.Tenant, error) {
	t, err := l.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, errors.Join(ErrProvisioningFailed, err)
	}

	next, err := tenant.NextStatus(ctx, t.Status, event)
	if err != nil {
		return nil, errors.Join(ErrInvalidTransition, err)
	}

	if err := l.store.UpdateStatus(ctx, id, t.Status, next); err != nil {
		if errors.Is(err, tenant.ErrStatusConflict) {
			return nil, errors.Join(ErrInvalidTransition, err)
		}
		return nil, errors.Join(ErrProvisioningFailed, err)
	}

	if l.cache != nil {
		l.cache.Invalidate(ctx, t.Subdomain)
	}

	l.logger.InfoContext(ctx, "tenant status changed",
		logger.TenantID(id),
		logger.Subdomain(t.Subdomain),
		slog.String("from", string(t.Status)),
		slog.String("to", string(next)),
	)

	t.Status = next
	return t, nil
}
