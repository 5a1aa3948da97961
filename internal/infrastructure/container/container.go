// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alchemorsel/mealplan/internal/application/budget"
	"github.com/alchemorsel/mealplan/internal/application/planner"
	"github.com/alchemorsel/mealplan/internal/application/shoppinglist"
	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/alchemorsel/mealplan/internal/infrastructure/cache"
	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/mealplan/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/mealplan/internal/infrastructure/security"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/healthcheck"
	"github.com/alchemorsel/mealplan/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPathEnv names the variable holding an explicit config file path
const ConfigPathEnv = "MEALPLAN_CONFIG"

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	DatabaseModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigPathEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.IsDevelopment(),
		})
	},
)

// ObservabilityModule provides metrics and tracing
var ObservabilityModule = fx.Provide(
	func() prometheus.Registerer {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	},
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.PlanningMetrics { return m },
	func(m *monitoring.MetricsCollector) cache.OperationRecorder { return m },
	NewTracing,
)

// NewTracing installs the tracer provider and flushes it on stop
func NewTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		Insecure:       cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log.Named("tracing"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	return tp, nil
}

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *gormRepo.QueryMonitor {
		return gormRepo.NewQueryMonitor(cfg.Database.SlowQuery, log)
	},
	NewDatabase,
)

// NewDatabase opens the configured driver, brings the schema up to date and
// optionally seeds demo data
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, monitor *gormRepo.QueryMonitor) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgres.Open(context.Background(), cfg, []gorm.Plugin{monitor}, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := migrateUp(db, cfg, log); err != nil {
				return nil, err
			}
		}
	default:
		db, err = sqlite.SetupDatabase(cfg.Database.SQLitePath, sqlite.ParseLogLevel(cfg.Database.LogLevel), monitor)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		log.Info("Connected to SQLite database",
			zap.String("path", cfg.Database.SQLitePath),
			zap.Bool("in_memory", cfg.Database.SQLitePath == ":memory:"),
		)
	}

	if cfg.Database.Seed {
		if err := sqlite.SeedDatabase(db); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		log.Info("Demo data available",
			zap.String("free_user", sqlite.DemoFreeUserID.String()),
			zap.String("premium_user", sqlite.DemoPremiumUserID.String()),
		)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stats := monitor.Stats()
			log.Info("Closing database",
				zap.Int64("queries", stats.TotalQueries),
				zap.Int64("slow_queries", stats.SlowQueries),
				zap.Int64("failed_queries", stats.FailedQueries),
			)
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func migrateUp(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	m, err := migrations.New(sqlDB, cfg.Database.Database, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool
	return m.Up()
}

// CacheBackend is the cache behind the baseline reader
type CacheBackend struct {
	Repo   outbound.CacheRepository
	Type   string
	Client *redis.Client
}

// CacheModule provides caching
var CacheModule = fx.Provide(
	NewCacheBackend,
	func(db *gorm.DB, backend CacheBackend, cfg *config.Config, metrics cache.OperationRecorder, log *zap.Logger) outbound.PriceBaselineReader {
		return cache.NewBaselineCache(
			gormRepo.NewPriceBaselineRepository(db),
			backend.Repo,
			cfg.Redis.BaselineTTL,
			backend.Type,
			metrics,
			log,
		)
	},
)

// NewCacheBackend connects to Redis when enabled. An unreachable Redis falls
// back to the in-process cache; baselines are always readable from the database.
func NewCacheBackend(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) CacheBackend {
	if cfg.Redis.Enabled {
		client, err := redisRepo.NewClient(context.Background(), cfg, log)
		if err == nil {
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
			return CacheBackend{
				Repo:   redisRepo.NewCacheRepository(client, cfg.App.Name+":", log),
				Type:   "redis",
				Client: client,
			}
		}
		log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
	}
	return CacheBackend{Repo: memory.NewCacheRepository(), Type: "memory"}
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormRepo.NewCatalogRepository,
		fx.As(new(outbound.CatalogReader)),
	),
	gormRepo.NewPlanRepository,
	gormRepo.NewShoppingListRepository,
	gormRepo.NewUserRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	PolicyFromConfig,
	func(cfg *config.Config) planner.Shuffler {
		seed := cfg.Planning.RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return planner.NewShuffler(seed)
	},
	func(cfg *config.Config) planner.Options {
		return planner.Options{
			DefaultDays:          cfg.Planning.DefaultDays,
			DefaultMealsPerDay:   cfg.Planning.DefaultMealsPerDay,
			DefaultHouseholdSize: cfg.Planning.DefaultHouseholdSize,
		}
	},
	func(cfg *config.Config) shoppinglist.RetryPolicy {
		return shoppinglist.RetryPolicy{Attempts: cfg.Planning.ReadRetries, Backoff: cfg.Planning.RetryBackoff}
	},

	// Shopping service, also the planner's list builder
	shoppinglist.NewShoppingService,
	func(s *shoppinglist.ShoppingService) inbound.ShoppingService { return s },
	func(s *shoppinglist.ShoppingService) planner.ListBuilder { return s },

	fx.Annotate(
		planner.NewPlanService,
		fx.As(new(inbound.PlanService)),
	),
	fx.Annotate(
		budget.NewBudgetService,
		fx.As(new(inbound.BudgetService)),
	),

	// Security services
	security.NewAuthService,
	security.NewValidationService,
	func(cfg *config.Config, log *zap.Logger) *security.RateLimitService {
		return security.NewRateLimitService(security.RateLimitConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		}, log)
	},

	NewHealthCheck,
)

// PolicyFromConfig maps the configured tier entitlements. Tiers missing from
// the configuration keep the stock limits.
func PolicyFromConfig(cfg *config.Config) user.Policy {
	policy := user.DefaultPolicy()
	for name, e := range cfg.Planning.Entitlements {
		policy[user.Tier(strings.ToLower(name))] = user.Entitlement{
			MaxPlanDays:     e.MaxPlanDays,
			TimePreferences: e.TimePreferences,
			BudgetEstimates: e.BudgetEstimates,
		}
	}
	return policy
}

// NewHealthCheck registers the database and, when connected, Redis
func NewHealthCheck(cfg *config.Config, db *gorm.DB, backend CacheBackend, log *zap.Logger) (*healthcheck.HealthCheck, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	h := healthcheck.New(cfg.App.Version, log)
	h.Register("database", healthcheck.NewDatabaseChecker(sqlDB))
	if backend.Client != nil {
		h.Register("redis", healthcheck.NewRedisChecker(backend.Client))
	}
	return h, nil
}

// serverParams collects the HTTP server's dependencies
type serverParams struct {
	fx.In

	Config      *config.Config
	Logger      *zap.Logger
	Plans       inbound.PlanService
	Shopping    inbound.ShoppingService
	Budget      inbound.BudgetService
	Users       outbound.UserRepository
	Auth        *security.AuthService
	RateLimiter *security.RateLimitService
	Validator   *security.ValidationService
	Health      *healthcheck.HealthCheck
	Metrics     *monitoring.MetricsCollector
}

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(p serverParams) *apiserver.Server {
		return apiserver.NewServer(p.Config, p.Logger, apiserver.Dependencies{
			Plans:       p.Plans,
			Shopping:    p.Shopping,
			Budget:      p.Budget,
			Users:       p.Users,
			Auth:        p.Auth,
			RateLimiter: p.RateLimiter,
			Validator:   p.Validator,
			Health:      p.Health,
			Metrics:     p.Metrics,
		})
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.Server,
	limiter *security.RateLimitService,
	metrics *monitoring.MetricsCollector,
	_ *monitoring.TracingProvider,
) {
	background, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting meal plan service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			go limiter.Run(background)
			go metrics.StartUptimeCounter(background)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down meal plan service")
			cancel()

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
