package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/storekit/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("malformed url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://nope"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

type pinger struct {
	reply    string
	err      error
	deadline bool
}

func (p *pinger) Ping(ctx context.Context) *goredis.StatusCmd {
	_, p.deadline = ctx.Deadline()
	return goredis.NewStatusResult(p.reply, p.err)
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pinger  *pinger
		wantErr bool
	}{
		{"pong", &pinger{reply: "PONG"}, false},
		{"connection refused", &pinger{err: errors.New("dial tcp: connection refused")}, true},
		{"unexpected reply", &pinger{reply: "LOADING"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := redis.Healthcheck(tt.pinger)(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, tt.pinger.deadline, "ping is bounded even without a caller deadline")
		})
	}
}
