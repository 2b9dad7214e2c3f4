package provisioning

import "time"

// Config holds provisioning settings.
type Config struct {
	Timeout            time.Duration `env:"PROVISIONING_TIMEOUT" envDefault:"30s"`
	LockTimeout        time.Duration `env:"PROVISIONING_LOCK_TIMEOUT" envDefault:"5s"`
	DefaultCurrency    string        `env:"PROVISIONING_DEFAULT_CURRENCY" envDefault:"USD"`
	ReservedSubdomains []string      `env:"PROVISIONING_RESERVED_SUBDOMAINS" envSeparator:"," envDefault:"api,www,super-admin,admin,app,mail,static,provisioning,health,metrics"`
}

// DefaultConfig returns the settings used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		LockTimeout:     5 * time.Second,
		DefaultCurrency: "USD",
		ReservedSubdomains: []string{
			"api", "www", "super-admin", "admin", "app", "mail", "static", "provisioning", "health", "metrics",
		},
	}
}
