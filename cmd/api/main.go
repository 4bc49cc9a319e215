// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stock-ledger/internal/adapters/db"
	"github.com/ammerola/stock-ledger/internal/adapters/directory"
	"github.com/ammerola/stock-ledger/internal/adapters/memory"
	redis_a "github.com/ammerola/stock-ledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/core/services"
	"github.com/ammerola/stock-ledger/internal/handlers"
	"github.com/ammerola/stock-ledger/internal/handlers/middleware"
	"github.com/ammerola/stock-ledger/internal/pkg/config"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	log := logger.SetupLogger("info", "json")

	log.Info("starting stock ledger api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(log.Logger)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	log = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	log.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Ledger.Store),
		slog.String("sweep_mode", cfg.Ledger.SweepMode),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sm, err := config.NewSecretsManager(ctx, cfg, log.Logger)
	if err == nil {
		err = config.ApplySecrets(ctx, cfg, sm)
	}
	if err != nil {
		log.Error("failed to resolve secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps, err := initializeDependencies(ctx, cfg, log.Logger)
	if err != nil {
		log.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if cfg.Ledger.SweepMode == "inprocess" {
		go deps.sweeper.Run(ctx, cfg.Ledger.SweepInterval)
	}

	server := setupHTTPServer(ctx, cfg, deps, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))

		// stops the in-process sweeper and the rate limiter janitor
		stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		log.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	metrics        *metrics.Metrics
	sweeper        *services.Sweeper
	router         *handlers.Router
}

func (d *dependencies) cleanup() {
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{metrics: metrics.New()}

	var (
		warehouseRepo ports.WarehouseRepository
		ledgerRepo    ports.LedgerRepository
	)
	switch cfg.Ledger.Store {
	case "postgres":
		logger.Info("connecting to database",
			slog.String("host", cfg.Database.Host),
			slog.String("database", cfg.Database.Name),
		)
		database, err := db.NewDatabase(ctx, databaseConfig(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.database = database

		if cfg.Database.AutoMigrate {
			if err := runMigrations(ctx, cfg, logger); err != nil {
				return deps, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		warehouseRepo = db.NewWarehouseRepository(database, logger)
		ledgerRepo = db.NewLedgerRepository(database, logger)
	default:
		logger.Warn("using the in-memory ledger store; stock is lost on restart")
		store := memory.NewStore(logger)
		warehouseRepo, ledgerRepo = store, store
	}

	// Redis backs the snapshot cache, the branch cache and the sweep lock.
	// The memory store runs without it when it is unreachable.
	var (
		cache      ports.CacheRepository
		stockCache ports.StockCache
	)
	logger.Info("connecting to Redis", slog.String("address", cfg.GetRedisAddress()))
	redisClient := redis.NewClient(redisOptions(cfg))
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		if cfg.Ledger.Store == "postgres" {
			return deps, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Warn("redis unavailable, running without cache and task queue",
			slog.String("error", err.Error()))
	} else {
		deps.redisClient = redisClient
		redisCache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
		cache = redisCache
		if cfg.Ledger.SnapshotCacheTTL > 0 {
			stockCache = redis_a.NewCacheManager(redisCache, cfg.Ledger.SnapshotCacheTTL, logger)
		}
	}

	branches, catalog := collaborators(cfg, cache, logger)

	opts := services.LedgerOptions{
		RetryAttempts:         cfg.Ledger.RetryAttempts,
		RetryInitialInterval:  cfg.Ledger.RetryInitialInterval,
		RetryMaxInterval:      cfg.Ledger.RetryMaxInterval,
		DefaultReservationTTL: cfg.Ledger.DefaultReservationTTL,
	}

	warehouseService := services.NewWarehouseService(warehouseRepo, branches, stockCache, opts, logger)
	movementService := services.NewMovementService(ledgerRepo, warehouseRepo, catalog, stockCache, opts, deps.metrics, logger)
	queryService := services.NewQueryService(ledgerRepo, warehouseRepo, stockCache, logger)
	deps.sweeper = services.NewSweeper(ledgerRepo, stockCache, cache, cfg.Ledger.SweepBatchSize, opts, deps.metrics, logger)

	// Workbooks are rendered here; archiving runs in the worker.
	snapshotService := services.NewSnapshotService(warehouseRepo, ledgerRepo, nil, opts, logger)

	var (
		scheduler ports.SnapshotScheduler
		inspector handlers.QueueInspector
	)
	if deps.redisClient != nil {
		logger.Info("initializing Asynq client")
		asynqRedisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		}
		deps.asynqClient = asynq.NewClient(asynqRedisOpt)
		deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)
		scheduler = workers.NewTaskClient(deps.asynqClient, cfg.Asynq.RetryMax, logger)
		inspector = deps.asynqInspector
	}

	var (
		dbCheck     handlers.DatabaseChecker
		redisHealth redis.UniversalClient
	)
	if deps.database != nil {
		dbCheck = deps.database
	}
	if deps.redisClient != nil {
		redisHealth = deps.redisClient
	}

	deps.router = &handlers.Router{
		Warehouses: handlers.NewWarehouseHandler(warehouseService, logger),
		Movements:  handlers.NewMovementHandler(movementService, logger),
		Queries:    handlers.NewQueryHandler(queryService, logger),
		Exports:    handlers.NewExportHandler(snapshotService, warehouseService, scheduler, logger),
		Health:     handlers.NewHealthHandler(dbCheck, redisHealth, inspector, cfg, logger),
		Metrics:    deps.metrics.Handler(),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// collaborators builds the branch directory and catalog clients. An unset
// URL accepts every reference.
func collaborators(cfg *config.Config, cache ports.CacheRepository, logger *slog.Logger) (ports.BranchDirectory, ports.Catalog) {
	var (
		branches ports.BranchDirectory = directory.AllowAll{}
		catalog  ports.Catalog         = directory.AllowAll{}
	)

	if url := cfg.Collaborators.BranchServiceURL; url != "" {
		branches = directory.NewBranchClient(url, cfg.Collaborators.Timeout, logger)
		if cache != nil && cfg.Collaborators.CacheTTL > 0 {
			branches = directory.NewCachedBranchDirectory(branches, cache, cfg.Collaborators.CacheTTL, logger)
		}
	} else {
		logger.Warn("branch service not configured, every branch is accepted")
	}

	if url := cfg.Collaborators.CatalogServiceURL; url != "" {
		catalog = directory.NewCatalogClient(url, cfg.Collaborators.Timeout, logger)
	} else {
		logger.Warn("catalog service not configured, every item is accepted")
	}

	return branches, catalog
}

func setupHTTPServer(ctx context.Context, cfg *config.Config, deps *dependencies, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	deps.router.Register(mux, cfg.Server)

	// First is outermost. Metrics sits next to the mux to read the matched pattern.
	chain := []middleware.Middleware{
		middleware.Recovery(log.Logger),
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.RealIP(cfg.Security.TrustedProxies),
		middleware.Logger(log),
	}
	if cfg.Security.SecureHeaders {
		chain = append(chain, middleware.SecureHeaders)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		chain = append(chain, middleware.CORS(cfg.Security.AllowedOrigins, cfg.Security.RequestIDHeader))
	}
	if cfg.Security.RateLimitRequests > 0 {
		chain = append(chain, middleware.RateLimit(ctx, cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration))
	}
	chain = append(chain,
		middleware.Compression,
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.Metrics(deps.metrics),
	)

	return &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           middleware.Chain(mux, chain...),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}
}

func databaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		LockTimeout:        cfg.Database.LockTimeout,
		StatementTimeout:   cfg.Database.StatementTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}

func redisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:            cfg.GetRedisAddress(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL:      cfg.GetDatabaseURL(),
		SourcePath:       cfg.Database.MigrationPath,
		TableName:        "schema_migrations",
		SchemaName:       "public",
		StatementTimeout: cfg.Database.StatementTimeout,
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
