package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/storekit/internal/api"
	"github.com/dmitrymomot/storekit/internal/db/migrations"
	"github.com/dmitrymomot/storekit/internal/metrics"
	"github.com/dmitrymomot/storekit/internal/storefront"
	"github.com/dmitrymomot/storekit/pkg/clientip"
	"github.com/dmitrymomot/storekit/pkg/config"
	"github.com/dmitrymomot/storekit/pkg/email"
	"github.com/dmitrymomot/storekit/pkg/httpserver"
	"github.com/dmitrymomot/storekit/pkg/identity"
	"github.com/dmitrymomot/storekit/pkg/jwt"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/pg"
	"github.com/dmitrymomot/storekit/pkg/provisioning"
	"github.com/dmitrymomot/storekit/pkg/ratelimiter"
	"github.com/dmitrymomot/storekit/pkg/redis"
	"github.com/dmitrymomot/storekit/pkg/requestid"
	"github.com/dmitrymomot/storekit/pkg/routing"
	"github.com/dmitrymomot/storekit/pkg/scopeguard"
	"github.com/dmitrymomot/storekit/pkg/secrets"
	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	Service        string        `env:"APP_SERVICE" envDefault:"storekit"`
	RoutesFile     string        `env:"SCOPEGUARD_ROUTES_FILE"`
	RoutingEnabled bool          `env:"ROUTING_ENABLED" envDefault:"false"`
	HealthTimeout  time.Duration `env:"HEALTHCHECK_TIMEOUT" envDefault:"2s"`
}

func main() {
	if err := config.LoadEnv(); err != nil {
		slog.Error("failed to load .env", logger.Error(err))
	}

	var app appConfig
	config.MustLoad(&app)

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Service),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			tenant.LoggerExtractor(),
			jwt.LoggerExtractor(),
		),
	)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, log); err != nil {
		log.Error("storekit stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app appConfig, log *slog.Logger) error {
	var (
		pgCfg      pg.Config
		redisCfg   redis.Config
		httpCfg    httpserver.Config
		tenantCfg  tenant.Config
		jwtCfg     jwt.Config
		secretsCfg secrets.Config
		emailCfg   email.Config
		routingCfg routing.Config
		provCfg    provisioning.Config
		limitCfg   ratelimiter.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&tenantCfg) },
		func() error { return config.Load(&jwtCfg) },
		func() error { return config.Load(&secretsCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&routingCfg) },
		func() error { return config.Load(&provCfg) },
		func() error { return config.Load(&limitCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	m := metrics.New()

	directory := tenant.NewDirectory(
		tenant.NewStore(pool),
		tenant.WithDirectoryCache(tenant.NewRedisCache(rdb, "storekit:tenant:", log), tenantCfg.CacheTTL),
		tenant.WithLookupTimeout(tenantCfg.LookupTimeout),
	)

	auth, err := jwt.NewFromConfig(jwtCfg)
	if err != nil {
		return err
	}

	table, err := loadRoutes(app.RoutesFile)
	if err != nil {
		return err
	}
	guard := scopeguard.New(table,
		scopeguard.WithLogger(log),
		scopeguard.WithDenyHook(m.GuardDenied),
	)

	box, err := secrets.NewFromConfig(secretsCfg)
	if err != nil {
		return err
	}

	sender, err := email.New(emailCfg)
	if err != nil {
		return err
	}
	welcome := email.NewWelcomeNotifier(sender, emailCfg.BaseURL)

	var routes provisioning.RouteRegistrar = routing.NopRegistrar{}
	if app.RoutingEnabled {
		routes = routing.NewRedisRegistrar(rdb, routingCfg)
	}

	provisioner := provisioning.New(pool, identity.NewRegistrar(), box,
		provisioning.WithConfig(provCfg),
		provisioning.WithLogger(log),
		provisioning.WithRouteRegistrar(routes),
		provisioning.WithNotifier(provisioning.NotifierFunc(func(ctx context.Context, w provisioning.Welcome) error {
			return welcome.SendWelcome(ctx, email.WelcomeData{
				StoreName:         w.StoreName,
				Subdomain:         w.Subdomain,
				OwnerEmail:        w.OwnerEmail,
				VerificationToken: w.VerificationToken,
			})
		})),
		provisioning.WithOutcomeHook(m.ProvisioningDone),
	)

	var provisionLimit *ratelimiter.Limiter
	if limitCfg.Enabled {
		provisionLimit, err = ratelimiter.New(ratelimiter.NewRedisStore(rdb, limitCfg.Prefix), limitCfg,
			ratelimiter.WithLogger(log),
			ratelimiter.WithLimitHook(m.Limited),
		)
		if err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Deps{
		Logger:    log,
		Resolver:  tenant.NewResolver(tenantCfg),
		Directory: directory,
		TenantOptions: []tenant.Option{
			tenant.WithSkipPaths(tenantCfg.SkipPaths...),
			tenant.WithLogger(log),
			tenant.WithRejectHook(m.TenantRejected),
			tenant.WithScopedPool(tenantdb.FromPgxPool(pool),
				tenantdb.WithLogger(log),
				tenantdb.WithAcquireTimeout(tenantCfg.AcquireTimeout),
				tenantdb.WithReleaseTimeout(tenantCfg.ReleaseTimeout),
				tenantdb.WithAcquireHook(m.ConnAcquired),
				tenantdb.WithReleaseHook(m.ConnReleased),
				tenantdb.WithRejectHook(m.SQLRejected),
			),
		},
		Auth:           auth,
		Guard:          guard,
		Provisioner:    provisioner,
		ProvisionLimit: provisionLimit,
		Lifecycle:      provisioning.NewLifecycle(tenant.NewStore(pool), directory, log),
		Catalog:        storefront.NewCatalog(nil),
		Health: httpserver.HealthCheckHandler(log, app.HealthTimeout,
			httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
			httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
		),
		Metrics: m.Handler(),
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

func loadRoutes(path string) (*scopeguard.Table, error) {
	if path != "" {
		return scopeguard.LoadTableFile(path)
	}
	return api.LoadRoutes()
}
