package tenant

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Directory is a caching Provider. Only active tenants are cached, and
// concurrent misses for the same subdomain share one upstream lookup.
type Directory struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	timeout  time.Duration
	group    singleflight.Group
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithDirectoryCache sets the cache. The default stores nothing.
func WithDirectoryCache(c Cache, ttl time.Duration) DirectoryOption {
	return func(d *Directory) {
		if c != nil {
			d.cache = c
		}
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithLookupTimeout bounds a single upstream lookup.
func WithLookupTimeout(timeout time.Duration) DirectoryOption {
	return func(d *Directory) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDirectory wraps provider.
func NewDirectory(provider Provider, opts ...DirectoryOption) *Directory {
	d := &Directory{
		provider: provider,
		cache:    NewNoOpCache(),
		ttl:      5 * time.Minute,
		timeout:  3 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// GetBySubdomain implements Provider.
func (d *Directory) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	if t, ok := d.cache.Get(ctx, subdomain); ok {
		return t, nil
	}

	v, err, _ := d.group.Do(subdomain, func() (any, error) {
		// The lookup outlives any single waiting request.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		t, err := d.provider.GetBySubdomain(lctx, subdomain)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, ErrTenantNotFound
		}
		if t.Active() {
			d.cache.Set(lctx, subdomain, t, d.ttl)
		}
		return *t, nil
	})
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrLookupFailed, err)
	}

	t := v.(Tenant)
	return &t, nil
}

// Invalidate drops a cached record, e.g. after a status change.
func (d *Directory) Invalidate(ctx context.Context, subdomain string) {
	d.cache.Delete(ctx, subdomain)
	d.group.Forget(subdomain)
}
