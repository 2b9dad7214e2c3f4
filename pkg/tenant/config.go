package tenant

import "time"

// Config holds tenant resolution settings.
//
// BaseDomains are matched against Origin and Referer hosts, HostSuffixes
// against the Host header and usually include dev domains as well.
type Config struct {
	Header             string        `env:"TENANT_HEADER" envDefault:"X-Tenant-Subdomain"`
	BaseDomains        []string      `env:"TENANT_BASE_DOMAINS" envSeparator:"," envDefault:"platform.example"`
	HostSuffixes       []string      `env:"TENANT_HOST_SUFFIXES" envSeparator:"," envDefault:"platform.example,localhost,lvh.me"`
	ReservedSubdomains []string      `env:"TENANT_RESERVED_SUBDOMAINS" envSeparator:"," envDefault:"api,www,super-admin"`
	SkipPaths          []string      `env:"TENANT_SKIP_PATHS" envSeparator:"," envDefault:"/health,/metrics,/provisioning,/super-admin"`
	CacheTTL           time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	CacheSize          int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	LookupTimeout      time.Duration `env:"TENANT_LOOKUP_TIMEOUT" envDefault:"3s"`
	AcquireTimeout     time.Duration `env:"TENANT_DB_ACQUIRE_TIMEOUT" envDefault:"5s"`
	ReleaseTimeout     time.Duration `env:"TENANT_DB_RELEASE_TIMEOUT" envDefault:"3s"`
}
