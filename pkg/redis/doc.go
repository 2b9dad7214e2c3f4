// Package redis connects to Redis with retries and exposes a health check.
//
// The client backs the shared tenant directory cache and the routing table
// written for the edge proxy:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	cache := tenant.NewRedisCache(client, "", log)
//	routes := routing.NewRedisRegistrar(client, routingCfg)
package redis
