package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	cartsvc "github.com/medirush/medirush-backend/internal/cart"
	"github.com/medirush/medirush-backend/internal/cron"
	ordersvc "github.com/medirush/medirush-backend/internal/orders"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db"
	"github.com/medirush/medirush-backend/pkg/logger"
	"github.com/medirush/medirush-backend/pkg/metrics"
	"github.com/medirush/medirush-backend/pkg/migrate"
	"github.com/medirush/medirush-backend/pkg/redis"
)

const lockKeyFormat = "mr:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	orderRepo := ordersvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())

	orderProgress, err := cron.NewOrderProgressJob(cron.OrderProgressJobParams{
		Logger:    logg,
		Orders:    orderRepo,
		Mover:     orderRepo,
		Tracking:  cfg.Tracking,
		BatchSize: cfg.Cron.SweepBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order progress job", err)
		os.Exit(1)
	}

	cartCleanup, err := cron.NewCartCleanupJob(cron.CartCleanupJobParams{
		Logger:    logg,
		Carts:     cartRepo,
		MaxAge:    cfg.Cron.CartMaxAge,
		BatchSize: cfg.Cron.SweepBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(orderProgress, cartCleanup)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
