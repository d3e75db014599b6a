// Package app assembles the portal from its configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hr_portal/internal/config"
	"hr_portal/internal/directory"
	"hr_portal/internal/handlers"
	"hr_portal/internal/handlers/portal"
	"hr_portal/internal/middlewares"
	"hr_portal/internal/observability"
	"hr_portal/internal/router"
	"hr_portal/internal/security"
	"hr_portal/internal/server"
	"hr_portal/internal/shell"
	"hr_portal/internal/storage"
)

// App is a fully wired portal.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     storage.Store
	Pool      *pgxpool.Pool
	Directory directory.Directory
	Shells    *shell.Registry
	Metrics   *observability.Metrics
	Router    *router.Router

	limiter *middlewares.MemoryTokenBucketStore
}

// Backends lets callers supply pre-built dependencies. Nil fields are
// built from the configuration.
type Backends struct {
	Store     storage.Store
	Directory directory.Directory
	Dashboard directory.DashboardSource
	Metrics   *observability.Metrics
}

// New connects the configured backends and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	return Assemble(ctx, cfg, logger, Backends{})
}

// Assemble builds the portal, using any backends provided in b.
func Assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, b Backends) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	a.Store = b.Store
	if a.Store == nil {
		a.Store = clientStore(ctx, cfg, logger)
	}

	a.Directory = b.Directory
	dashboard := b.Dashboard
	if a.Directory == nil || dashboard == nil {
		if err := a.openDirectory(ctx, &dashboard); err != nil {
			return nil, err
		}
	}

	a.Metrics = b.Metrics
	if a.Metrics == nil {
		mc := observability.DefaultMetricsConfig("hr_portal")
		mc.Logger = logger
		a.Metrics = observability.NewMetrics(mc)
	}

	a.Shells = shell.NewRegistry(shell.RegistryConfig{
		Policy:   cfg.Shell.MatchPolicy,
		Store:    a.Store,
		IdleTTL:  cfg.Shell.IdleTTL,
		Logger:   logger,
		Recorder: a.Metrics,
	})

	h := handlers.NewHandler(a.Directory, dashboard, a.Shells, a.Store, nil, logger, handlers.Options{
		Brand:       cfg.Shell.BrandName,
		TokenTTL:    cfg.Session.TokenTTL,
		Development: cfg.IsDevelopment(),
	})

	a.Router = router.NewRouter(&router.Config{
		Static: &router.StaticConfig{Dir: cfg.Rendering.StaticDir, URLPrefix: "/static/"},
	}, logger, observability.RequestID(&observability.RequestIDConfig{Logger: logger}))

	router.SetupRoutes(a.Router, a.routeDeps(h))
	return a, nil
}

func (a *App) routeDeps(h *handlers.Handler) *router.Deps {
	cfg, logger := a.Config, a.Logger

	loggerConfig := middlewares.DefaultLoggerConfig()
	loggerConfig.Logger = logger

	securityConfig := middlewares.DefaultSecurityConfig()
	securityConfig.Logger = logger
	securityConfig.NoStore = func(r *http.Request) bool {
		return !strings.HasPrefix(r.URL.Path, "/static/")
	}

	csrf := security.NewCSRFProtection(&security.CSRFConfig{
		StoreFor:     middlewares.ProfileStore(a.Store),
		Logger:       logger,
		ErrorHandler: h.CSRFRejected,
	})

	a.limiter = middlewares.NewMemoryTokenBucketStore(15 * time.Minute)

	checks := observability.NewChecker()
	checks.Register("client_store", observability.PingCheck(a.Store.Ping, observability.StatusUnhealthy))
	if a.Pool != nil {
		checks.Register("database", observability.PingCheck(a.Pool.Ping, observability.StatusUnhealthy))
	}
	health := &observability.HealthConfig{
		Logger:  logger,
		Version: cfg.App.Version,
		Checks:  checks,
	}

	return &router.Deps{
		Portal: portal.NewPortal(h),
		Ambient: []router.Middleware{
			middlewares.Logger(loggerConfig),
			middlewares.Recovery(&middlewares.RecoveryConfig{
				Logger:            logger,
				DisableStackTrace: cfg.IsProduction(),
				RecoveryHandler:   h.Recover,
			}),
			middlewares.Security(securityConfig),
			a.Metrics.Middleware,
		},
		Profile: middlewares.Profile(&middlewares.ProfileConfig{
			CookieName: cfg.Session.ProfileCookieName,
			Secure:     cfg.Session.CookieSecure,
			Logger:     logger,
		}),
		CSRF: csrf.Middleware,
		RequireToken: middlewares.RequireToken(&middlewares.TokenGateConfig{
			Store:        a.Store,
			Logger:       logger,
			ErrorHandler: h.StorageUnavailable,
		}),
		LoginLimit: middlewares.RateLimit(&middlewares.RateLimitConfig{
			Logger:     logger,
			Capacity:   5,
			RefillRate: 1.0 / 12, // one attempt every 12s once the burst is spent
			Store:      a.limiter,
			LimitHandler: func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
				h.RenderError(w, r, http.StatusTooManyRequests,
					fmt.Sprintf("Too many sign-in attempts. Try again in %d seconds.", int(retryAfter.Seconds())+1))
			},
		}),
		Liveness:  observability.LivenessHandler(health),
		Readiness: observability.ReadinessHandler(health),
		Metrics:   a.Metrics.Handler(),
	}
}

// clientStore returns Redis backed by memory when REDIS_ADDR is set and
// reachable, memory alone otherwise.
func clientStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) storage.Store {
	memory := storage.NewMemoryStore(time.Minute)
	if cfg.Redis.Addr == "" {
		return memory
	}

	rc := storage.DefaultRedisConfig()
	rc.Addr = cfg.Redis.Addr
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.Logger = logger

	redisStore, err := storage.NewRedisStore(ctx, rc)
	if err != nil {
		logger.Warn("redis unavailable, client state is kept in memory", "error", err)
		return memory
	}
	return storage.NewFallbackStore(redisStore, memory, logger)
}

// openDirectory picks Postgres when DB_URL is set and the in-memory
// directory otherwise.
func (a *App) openDirectory(ctx context.Context, dashboard *directory.DashboardSource) error {
	cfg, logger := a.Config, a.Logger
	hasher := security.DefaultPasswordHasher()

	if cfg.Database.URL == "" {
		if a.Directory == nil {
			mem := directory.NewMemoryDirectory(hasher)
			if cfg.IsDevelopment() {
				if err := seedDemo(ctx, mem, hasher, logger); err != nil {
					return err
				}
			}
			a.Directory = mem
		}
		if *dashboard == nil {
			*dashboard = directory.SampleDashboard{}
		}
		return nil
	}

	pool, err := config.NewPool(ctx, cfg.Database.DBConfig(logger))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := directory.Migrate(ctx, pool); err != nil {
		pool.Close()
		return err
	}
	a.Pool = pool

	if a.Directory == nil {
		a.Directory = directory.NewPostgresDirectory(pool, hasher, logger)
	}
	if *dashboard == nil {
		*dashboard = directory.NewPostgresDashboard(pool, logger)
	}
	return nil
}

// Demo credentials for development runs without a database.
const (
	DemoUsername = "demo"
	DemoPassword = "demo-password"
)

func seedDemo(ctx context.Context, dir *directory.MemoryDirectory, hasher *security.PasswordHasher, logger *slog.Logger) error {
	hash, err := hasher.Hash(DemoPassword)
	if err != nil {
		return err
	}
	err = dir.Create(ctx, directory.Employee{
		EmpID:        "DEMO-001",
		FirstName:    "Demo",
		LastName:     "Employee",
		WorkEmail:    "demo@example.com",
		Username:     DemoUsername,
		Role:         directory.RoleEmployee,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	logger.Warn("development demo account enabled", "username", DemoUsername, "password", DemoPassword)
	return nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.Router.Handler()
}

// Resources returns what must be closed on shutdown, besides the HTTP
// server itself.
func (a *App) Resources() []server.Resource {
	resources := []server.Resource{
		a.Router,
		server.NewStoreResource("client-store", a.Store),
		server.NewCustomResource("login-limiter", func(ctx context.Context) error {
			if a.limiter != nil {
				a.limiter.Close()
			}
			return nil
		}),
	}
	if a.Pool != nil {
		resources = append(resources, server.NewDatabaseResource("postgres", a.Pool))
	}
	return resources
}
