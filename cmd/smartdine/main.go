package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/smartdine/smartdine/internal/app"
	"github.com/smartdine/smartdine/internal/corporate"
	"github.com/smartdine/smartdine/internal/observability"
	"github.com/smartdine/smartdine/internal/payments"
	"github.com/smartdine/smartdine/internal/platform/kv"
	"github.com/smartdine/smartdine/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, cleanup, err := newStore(ctx, cfg, redisClient)
	if err != nil {
		logger.Error("open snapshot store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	cache := corporate.NewAnalyticsCache(redisClient, cfg.AnalyticsCacheTTL)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	service, err := corporate.NewService(ctx, corporate.ServiceConfig{
		Logger: logger,
		Store:  store,
		Cache:  cache,
		Mailer: jobs.NewAsynqMailer(jobsClient),
		Seed:   cfg.SeedSampleData,
	})
	if err != nil {
		logger.Error("init ledger service", slog.Any("error", err))
		os.Exit(1)
	}

	processor := payments.NewProcessor(logger)
	corporateHandler := corporate.NewHandler(logger, service, processor)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CorporateHandler: corporateHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func newStore(ctx context.Context, cfg *app.Config, redisClient *redis.Client) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		store := kv.NewRedisStoreWithClient(redisClient, "smartdine")
		return store, func() {}, nil
	case "postgres":
		store, err := kv.NewPostgresStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return kv.NewMemoryStore(), func() {}, nil
	}
}
