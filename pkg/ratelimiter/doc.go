// Package ratelimiter implements a token bucket limiter for public endpoints.
//
// A bucket holds at most Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request takes one token; a request that finds too few
// tokens is refused without consuming any.
//
// Two stores are provided. MemoryStore keeps buckets in process and suits a
// single instance or tests. RedisStore keeps them in Redis and updates them
// with a Lua script so every instance sees the same bucket:
//
//	store := ratelimiter.NewRedisStore(client, cfg.Prefix)
//	limiter, err := ratelimiter.New(store, cfg, ratelimiter.WithLogger(log))
//	r.With(limiter.Middleware(ratelimiter.ByClientIP)).Post("/provisioning/tenants", h)
//
// Store failures are logged and the request is let through.
package ratelimiter
