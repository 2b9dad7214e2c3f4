package routing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Config describes the routers written for each store.
type Config struct {
	RootKey      string   `env:"ROUTING_ROOT_KEY" envDefault:"traefik"`
	BaseDomain   string   `env:"ROUTING_BASE_DOMAIN" envDefault:"platform.example"`
	Service      string   `env:"ROUTING_SERVICE" envDefault:"storefront@file"`
	EntryPoints  []string `env:"ROUTING_ENTRYPOINTS" envSeparator:"," envDefault:"websecure"`
	CertResolver string   `env:"ROUTING_CERT_RESOLVER" envDefault:"letsencrypt"`
}

// RedisClient is the subset of go-redis used by RedisRegistrar.
type RedisClient interface {
	MSet(ctx context.Context, values ...any) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRegistrar publishes per-store routers in the Traefik Redis KV layout:
//
//	traefik/http/routers/tenant-shop1/rule = Host(`shop1.platform.example`)
//	traefik/http/routers/tenant-shop1/service = storefront@file
//	traefik/http/routers/tenant-shop1/entrypoints/0 = websecure
//	traefik/http/routers/tenant-shop1/tls/certresolver = letsencrypt
type RedisRegistrar struct {
	client RedisClient
	cfg    Config
}

// NewRedisRegistrar creates a registrar writing through client.
func NewRedisRegistrar(client RedisClient, cfg Config) *RedisRegistrar {
	if cfg.RootKey == "" {
		cfg.RootKey = "traefik"
	}
	return &RedisRegistrar{client: client, cfg: cfg}
}

// Register writes all router keys for subdomain in one MSET.
func (r *RedisRegistrar) Register(ctx context.Context, subdomain string) error {
	if subdomain == "" {
		return ErrEmptySubdomain
	}
	if err := r.client.MSet(ctx, r.values(subdomain)...).Err(); err != nil {
		return errors.Join(ErrRegisterFailed, err)
	}
	return nil
}

// Unregister removes the router keys for subdomain.
func (r *RedisRegistrar) Unregister(ctx context.Context, subdomain string) error {
	if subdomain == "" {
		return ErrEmptySubdomain
	}
	vals := r.values(subdomain)
	keys := make([]string, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		keys = append(keys, vals[i].(string))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Join(ErrRegisterFailed, err)
	}
	return nil
}

// Host returns the public hostname of a store.
func (r *RedisRegistrar) Host(subdomain string) string {
	return subdomain + "." + strings.TrimPrefix(r.cfg.BaseDomain, ".")
}

func (r *RedisRegistrar) values(subdomain string) []any {
	prefix := r.cfg.RootKey + "/http/routers/" + RouterName(subdomain) + "/"
	vals := []any{
		prefix + "rule", fmt.Sprintf("Host(`%s`)", r.Host(subdomain)),
		prefix + "service", r.cfg.Service,
	}
	for i, ep := range r.cfg.EntryPoints {
		vals = append(vals, prefix+"entrypoints/"+strconv.Itoa(i), ep)
	}
	if r.cfg.CertResolver != "" {
		vals = append(vals, prefix+"tls/certresolver", r.cfg.CertResolver)
	}
	return vals
}

// RouterName is the router identifier used for subdomain.
func RouterName(subdomain string) string {
	return "tenant-" + subdomain
}

// NopRegistrar accepts every registration. Used in development, where
// wildcard DNS already reaches the app.
type NopRegistrar struct{}

func (NopRegistrar) Register(context.Context, string) error   { return nil }
func (NopRegistrar) Unregister(context.Context, string) error { return nil }
