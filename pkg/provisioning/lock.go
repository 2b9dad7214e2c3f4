package provisioning

import "github.com/cespare/xxhash/v2"

// LockKey returns the advisory lock key for a subdomain: xxhash64 folded into
// 32 bits. Collisions only serialize unrelated subdomains, uniqueness is still
// enforced by the table constraint.
func LockKey(subdomain string) int32 {
	h := xxhash.Sum64String(subdomain)
	return int32(uint32(h) ^ uint32(h>>32))
}
