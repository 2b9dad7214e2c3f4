package httpserver

import "time"

// Config holds listener settings.
type Config struct {
	Addr              string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults and
// opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	base := []Option{
		func(c *config) {
			if cfg.Addr != "" {
				c.addr = cfg.Addr
			}
			if cfg.ReadHeaderTimeout > 0 {
				c.readHeaderTimeout = cfg.ReadHeaderTimeout
			}
			if cfg.ReadTimeout > 0 {
				c.readTimeout = cfg.ReadTimeout
			}
			if cfg.WriteTimeout > 0 {
				c.writeTimeout = cfg.WriteTimeout
			}
			if cfg.IdleTimeout > 0 {
				c.idleTimeout = cfg.IdleTimeout
			}
			if cfg.ShutdownTimeout > 0 {
				c.shutdownTimeout = cfg.ShutdownTimeout
			}
		},
	}
	return New(append(base, opts...)...)
}
