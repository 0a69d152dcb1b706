// Package app wires storage, adapters and services from configuration.
package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/yourusername/codetrack/scraper-service/internal/aggregator"
	"github.com/yourusername/codetrack/scraper-service/internal/cache"
	"github.com/yourusername/codetrack/scraper-service/internal/config"
	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/progress"
	"github.com/yourusername/codetrack/scraper-service/internal/providers"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"github.com/yourusername/codetrack/scraper-service/internal/scheduler"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// App holds every long-lived component of the service
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Cache  cache.Cache

	Registry     *providers.Registry
	Orchestrator *aggregator.Orchestrator
	Profiles     *service.ProfileService
	Ranking      *service.RankingService
	Rules        *service.RuleService
	Students     *service.StudentService
	Hub          *progress.Hub
	Scheduler    *scheduler.Scheduler
}

// New opens storage and builds the component graph
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.NewRuleRepository(db).SeedDefaults(ctx); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db, Hub: progress.NewHub()}

	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis score cache")
		a.Redis = rdb
		a.Cache = cache.NewRedisCache(rdb)
	} else {
		logger.Info("No Redis URL configured, using database score cache")
		a.Cache = cache.NewGormCache(db)
	}

	a.Registry = NewRegistry(cfg)

	profileRepo := repository.NewProfileRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)
	ruleRepo := repository.NewRuleRepository(db)

	a.Orchestrator = aggregator.NewOrchestrator(a.Registry, a.Cache, perfRepo, cfg.CacheTTL)
	a.Profiles = service.NewProfileService(profileRepo, perfRepo, a.Registry, service.RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Delay:    cfg.RetryDelay,
	})
	a.Ranking = service.NewRankingService(ruleRepo, repository.NewRankingRepository(db), service.RankingOptions{
		DefaultLimit: cfg.RankingDefaultLimit,
		MaxLimit:     cfg.RankingMaxLimit,
		PersistChunk: cfg.RankPersistChunk,
	})
	a.Rules = service.NewRuleService(ruleRepo)
	a.Students = service.NewStudentService(repository.NewStudentRepository(db), profileRepo, perfRepo, ruleRepo)

	var sweeper cache.Sweeper
	if s, ok := a.Cache.(cache.Sweeper); ok {
		sweeper = s
	}
	a.Scheduler = scheduler.New(scheduler.Config{
		BatchSchedule: cfg.BatchSchedule,
		SweepSchedule: cfg.CacheSweepSchedule,
		UseCache:      false,
	}, a.Orchestrator, a.Ranking, profileRepo, sweeper, a.Hub)

	return a, nil
}

// NewRegistry builds the four platform adapters on a shared fetch client
// whose limiter spaces requests per host.
func NewRegistry(cfg *config.Config) *providers.Registry {
	overrides := map[string]time.Duration{}
	if u, err := url.Parse(cfg.CodeChefBaseURL); err == nil && u.Hostname() != "" {
		overrides[u.Hostname()] = cfg.CodeChefHostInterval
	}

	client := fetch.NewClient(fetch.ClientConfig{
		Timeout:        cfg.FetchTimeout,
		UserAgent:      cfg.UserAgent,
		Referer:        cfg.Referer,
		AcceptLanguage: cfg.AcceptLanguage,
		Limiter:        fetch.NewHostLimiter(cfg.DefaultHostInterval, overrides),
	})

	return providers.NewRegistry(
		providers.NewLeetCodeProvider(client, cfg.LeetCodeGraphQLURL, cfg.FetchTimeout, providers.LeetCodeWeights{
			Easy:    cfg.LeetCodeEasyWeight,
			Medium:  cfg.LeetCodeMediumWeight,
			Hard:    cfg.LeetCodeHardWeight,
			Contest: cfg.LeetCodeContestWeight,
		}),
		providers.NewCodeChefProvider(client, cfg.CodeChefBaseURL, cfg.CodeChefTimeout(), cfg.CodeChefPreDelay),
		providers.NewGeeksForGeeksProvider(client, cfg.GeeksForGeeksBaseURL, cfg.FetchTimeout),
		providers.NewHackerRankProvider(client, cfg.HackerRankBaseURL, cfg.FetchTimeout),
	)
}

// Health reports the reachability of each storage backend
func (a *App) Health(ctx context.Context) map[string]bool {
	health := map[string]bool{"database": false}

	if sqlDB, err := a.DB.DB(); err == nil {
		health["database"] = sqlDB.PingContext(ctx) == nil
	}
	if a.Redis != nil {
		health["redis"] = a.Redis.Ping(ctx).Err() == nil
	}
	return health
}

// Close releases storage connections
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DatabaseURL == "" {
		logger.Info("No database URL configured, using in-memory SQLite")
		// Use pure Go SQLite (no CGO required)
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
		}
		// every pooled connection would otherwise get its own empty database
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	} else {
		logger.Info("Connecting to PostgreSQL database")
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database initialized successfully")
	return db, nil
}
