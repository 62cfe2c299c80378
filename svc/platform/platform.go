// Package platform composes the rental-shop platform: configuration,
// logging, the central registry database, tenant routing, provisioning,
// and the HTTP surface.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anyrent/shopkit/modules/shop"
	"github.com/anyrent/shopkit/pkg/config"
	"github.com/anyrent/shopkit/pkg/httpserver"
	"github.com/anyrent/shopkit/pkg/logger"
	"github.com/anyrent/shopkit/pkg/pg"
	"github.com/anyrent/shopkit/pkg/redis"
	"github.com/anyrent/shopkit/pkg/subscription"
	"github.com/anyrent/shopkit/pkg/tenant"
	"github.com/anyrent/shopkit/pkg/tenantdb"
	"github.com/anyrent/shopkit/svc/onboarding"
	"github.com/anyrent/shopkit/svc/registry"
)

// Config holds platform-level settings.
type Config struct {
	RootDomain       string        `env:"ROOT_DOMAIN" envDefault:"anyrent.shop"`      // RootDomain is the public site; subdomains are tenants.
	PlansPath        string        `env:"PLANS_PATH" envDefault:"config/plans.yaml"`  // PlansPath is the subscription plan catalog.
	TenantCacheTTL   time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`           // TenantCacheTTL bounds metadata staleness.
	DefaultTenantKey string        `env:"DEFAULT_TENANT_KEY"`                         // DefaultTenantKey serves single-tenant deployments.
}

// Run wires the platform together and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	var (
		cfg     Config
		logCfg  logger.Config
		pgCfg   pg.Config
		rdCfg   redis.Config
		httpCfg httpserver.Config
		provCfg tenantdb.ProvisionerConfig
	)
	for _, load := range []func() error{
		func() error { return config.Load(&cfg) },
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&rdCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&provCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	log := logger.NewFromConfig(logCfg,
		logger.WithAttrs(slog.String("service", "shopkit")),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect registry database: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, rdCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	catalog, err := subscription.LoadCatalog(cfg.PlansPath)
	if err != nil {
		return err
	}

	reg := registry.NewClient(pool)
	admin := registry.NewAdmin(pool, tenantdb.NewPublisher(rdb, ""), log)

	meta := tenant.NewMetaCache()
	defer func() { _ = meta.Close() }()

	conns := tenantdb.NewConns(reg, tenantdb.WithLogger(log))
	defer conns.Shutdown(context.Background())

	invalidator := tenantdb.NewInvalidator(rdb, conns, meta, log, "")
	go func() {
		if err := invalidator.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("tenant invalidator stopped", "error", err)
		}
	}()

	provisioner, err := tenantdb.NewProvisioner(ctx, provCfg,
		tenantdb.WithProvisionerLogger(log))
	if err != nil {
		return err
	}

	onboard := onboarding.New(admin, provisioner, catalog, log)

	router := NewRouter(RouterDeps{
		Config:     cfg,
		Registry:   reg,
		MetaCache:  meta,
		Conns:      conns,
		Onboarding: onboard,
		Healthchecks: []func(context.Context) error{
			pg.Healthcheck(pool),
			redis.Healthcheck(rdb),
		},
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Config       Config
	Registry     tenant.Registry
	MetaCache    tenant.Cache
	Conns        *tenantdb.Conns
	Onboarding   *onboarding.Service
	Healthchecks []func(context.Context) error
}

// NewRouter builds the platform router: public signup routes outside
// the tenant middleware, tenant-scoped shop routes behind it.
func NewRouter(deps RouterDeps) chi.Router {
	resolve := tenant.NewChainResolver(
		tenant.NewHeaderResolver("X-Tenant-Key"),
		tenant.NewHeaderResolver("X-Tenant-Id"),
		tenant.NewSubdomainResolver(deps.Config.RootDomain),
		tenant.NewStaticResolver(deps.Config.DefaultTenantKey),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(deps.Healthchecks))
	if deps.Onboarding != nil {
		r.Mount("/account", deps.Onboarding.Handle())
	}

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolve, deps.Registry,
			tenant.WithCache(deps.MetaCache),
			tenant.WithCacheTTL(deps.Config.TenantCacheTTL),
		))
		r.Use(tenantdb.Middleware(deps.Conns, nil))
		r.Mount("/api", shop.Router())
	})

	return r
}

func healthHandler(checks []func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
