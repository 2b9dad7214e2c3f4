// Package config loads typed settings from the environment.
//
// Each package owns a Config struct with `env` tags (pg.Config,
// tenant.Config, provisioning.Config and so on). Load parses one, caches it
// by type and returns the cached copy afterwards:
//
//	var tenantCfg tenant.Config
//	config.MustLoad(&tenantCfg)
//
// A .env file in the working directory is read once, before the first parse.
// Real environment variables take precedence over it.
package config
