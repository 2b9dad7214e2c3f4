// Package routing makes newly provisioned stores reachable through the edge
// proxy by writing router definitions into Traefik's Redis key-value provider.
package routing
