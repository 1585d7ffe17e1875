package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/smartdine/smartdine/internal/app"
	"github.com/smartdine/smartdine/internal/corporate"
	"github.com/smartdine/smartdine/internal/observability"
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
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

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
	})
	if err != nil {
		logger.Error("init ledger service", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	emailJob := jobs.NewSendEmailJob(jobs.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		From: cfg.SMTPFrom,
	}, logger, metrics)
	overdueJob := jobs.NewOverdueScanJob(service, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: emailJob.Handle},
			{Type: jobs.TaskTypeOverdueScan, Handler: overdueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueScanSchedule, Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
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
