package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultPingTimeout bounds a health ping when the caller's context has no
// deadline of its own.
const defaultPingTimeout = 2 * time.Second

// Pinger is satisfied by every go-redis client.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Healthcheck reports whether the server answers a PING with PONG.
func Healthcheck(client Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultPingTimeout)
			defer cancel()
		}

		reply, err := client.Ping(ctx).Result()
		switch {
		case err != nil:
			return errors.Join(ErrHealthcheckFailed, err)
		case reply != "PONG":
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("unexpected ping reply %q", reply))
		}
		return nil
	}
}
