package routing_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/routing"
)

type fakeRedis struct {
	set  []any
	del  []string
	fail error
}

func (f *fakeRedis) MSet(_ context.Context, values ...any) *redis.StatusCmd {
	f.set = append(f.set, values...)
	return redis.NewStatusResult("OK", f.fail)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.del = append(f.del, keys...)
	return redis.NewIntResult(int64(len(keys)), f.fail)
}

func pairs(vals []any) map[string]any {
	m := make(map[string]any, len(vals)/2)
	for i := 0; i+1 < len(vals); i += 2 {
		m[vals[i].(string)] = vals[i+1]
	}
	return m
}

func TestRedisRegistrar(t *testing.T) {
	t.Parallel()

	cfg := routing.Config{
		RootKey:      "traefik",
		BaseDomain:   "platform.example",
		Service:      "storefront@file",
		EntryPoints:  []string{"web", "websecure"},
		CertResolver: "letsencrypt",
	}

	t.Run("register writes router keys", func(t *testing.T) {
		t.Parallel()

		fake := &fakeRedis{}
		reg := routing.NewRedisRegistrar(fake, cfg)
		require.NoError(t, reg.Register(context.Background(), "shop1"))

		assert.Equal(t, map[string]any{
			"traefik/http/routers/tenant-shop1/rule":             "Host(`shop1.platform.example`)",
			"traefik/http/routers/tenant-shop1/service":          "storefront@file",
			"traefik/http/routers/tenant-shop1/entrypoints/0":    "web",
			"traefik/http/routers/tenant-shop1/entrypoints/1":    "websecure",
			"traefik/http/routers/tenant-shop1/tls/certresolver": "letsencrypt",
		}, pairs(fake.set))
	})

	t.Run("unregister deletes the same keys", func(t *testing.T) {
		t.Parallel()

		fake := &fakeRedis{}
		reg := routing.NewRedisRegistrar(fake, cfg)
		require.NoError(t, reg.Unregister(context.Background(), "shop1"))

		assert.Len(t, fake.del, 5)
		assert.Contains(t, fake.del, "traefik/http/routers/tenant-shop1/rule")
	})

	t.Run("redis failure", func(t *testing.T) {
		t.Parallel()

		fake := &fakeRedis{fail: assert.AnError}
		err := routing.NewRedisRegistrar(fake, cfg).Register(context.Background(), "shop1")
		assert.ErrorIs(t, err, routing.ErrRegisterFailed)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty subdomain", func(t *testing.T) {
		t.Parallel()

		fake := &fakeRedis{}
		err := routing.NewRedisRegistrar(fake, cfg).Register(context.Background(), "")
		assert.ErrorIs(t, err, routing.ErrEmptySubdomain)
		assert.Empty(t, fake.set)
	})

	t.Run("nop", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, routing.NopRegistrar{}.Register(context.Background(), "shop1"))
	})
}
