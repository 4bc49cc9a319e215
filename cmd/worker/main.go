// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stock-ledger/internal/adapters/db"
	redis_a "github.com/ammerola/stock-ledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stock-ledger/internal/adapters/storage"
	"github.com/ammerola/stock-ledger/internal/core/ports"
	"github.com/ammerola/stock-ledger/internal/core/services"
	"github.com/ammerola/stock-ledger/internal/pkg/config"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
	"github.com/ammerola/stock-ledger/internal/workers"
)

func main() {
	log := logger.SetupLogger("info", "json")

	cfg, err := config.Load(log.Logger)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	log = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger := log.Logger
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	if cfg.Ledger.Store != "postgres" {
		slogger.Error("the worker needs the postgres ledger store", slog.String("store", cfg.Ledger.Store))
		os.Exit(1)
	}

	ctx := context.Background()

	sm, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err == nil {
		err = config.ApplySecrets(ctx, cfg, sm)
	}
	if err != nil {
		slogger.Error("failed to resolve secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	// The cache is only invalidated here; an outage leaves entries to expire.
	var stockCache ports.StockCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slogger.Warn("stock cache unavailable, skipping invalidation", slog.String("error", err.Error()))
	} else if cfg.Ledger.SnapshotCacheTTL > 0 {
		stockCache = redis_a.NewCacheManager(redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger), cfg.Ledger.SnapshotCacheTTL, slogger)
	}

	archive, err := initArchive(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize snapshot archive", slog.String("error", err.Error()))
		os.Exit(1)
	}

	warehouseRepo := db.NewWarehouseRepository(database, slogger)
	ledgerRepo := db.NewLedgerRepository(database, slogger)

	m := metrics.New()
	opts := services.LedgerOptions{
		RetryAttempts:        cfg.Ledger.RetryAttempts,
		RetryInitialInterval: cfg.Ledger.RetryInitialInterval,
		RetryMaxInterval:     cfg.Ledger.RetryMaxInterval,
	}
	sweeper := services.NewSweeper(ledgerRepo, stockCache, nil, cfg.Ledger.SweepBatchSize, opts, m, slogger)
	snapshots := services.NewSnapshotService(warehouseRepo, ledgerRepo, archive, opts, slogger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
		BaseContext: func() context.Context {
			return logger.WithLogger(context.Background(), log)
		},
	})

	mux := workers.NewServeMux(
		workers.NewSweepProcessor(sweeper, m, slogger),
		workers.NewSnapshotProcessor(snapshots, m, slogger),
		workers.NewCleanupProcessor(sweeper, cfg.Ledger.ReservationRetention, m, slogger),
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   newAsynqLogger(slogger),
		Location: time.UTC,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
				slogger.Warn("periodic task not enqueued", slog.String("error", err.Error()))
			}
		},
	})
	if _, err := workers.RegisterSchedules(scheduler, cfg.Ledger, cfg.Asynq.RetryMax, slogger); err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	var metricsSrv *http.Server
	if cfg.Asynq.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: cfg.Asynq.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slogger.Error("metrics listener failed", slog.String("error", err.Error()))
			}
		}()
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("sweep_mode", cfg.Ledger.SweepMode))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		LockTimeout:        cfg.Database.LockTimeout,
		StatementTimeout:   cfg.Database.StatementTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

// initArchive uploads to S3 when a bucket is configured and falls back to
// the local disk otherwise
func initArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.SnapshotArchive, error) {
	if cfg.AWS.S3Bucket == "" {
		dir := filepath.Join(os.TempDir(), "stock-snapshots")
		logger.Warn("no snapshot bucket configured, writing snapshots to disk", slog.String("dir", dir))
		return storage.NewLocalStorage(dir, logger), nil
	}

	s3, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		Prefix:          cfg.AWS.SnapshotPrefix,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return s3, nil
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	logger.FromContext(ctx).ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
