package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/medirush/medirush-backend/api/routes"
	authsvc "github.com/medirush/medirush-backend/internal/auth"
	cartsvc "github.com/medirush/medirush-backend/internal/cart"
	catalogsvc "github.com/medirush/medirush-backend/internal/catalog"
	checkoutsvc "github.com/medirush/medirush-backend/internal/checkout"
	directorysvc "github.com/medirush/medirush-backend/internal/directory"
	ordersvc "github.com/medirush/medirush-backend/internal/orders"
	prescriptionsvc "github.com/medirush/medirush-backend/internal/prescriptions"
	profilesvc "github.com/medirush/medirush-backend/internal/profiles"
	"github.com/medirush/medirush-backend/internal/tracking"
	"github.com/medirush/medirush-backend/pkg/analysis"
	"github.com/medirush/medirush-backend/pkg/auth/session"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db"
	"github.com/medirush/medirush-backend/pkg/logger"
	"github.com/medirush/medirush-backend/pkg/migrate"
	"github.com/medirush/medirush-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogRepo := catalogsvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())
	profileRepo := profilesvc.NewRepository(dbClient.DB())
	directoryRepo := directorysvc.NewRepository(dbClient.DB())
	userRepo := authsvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(
		userRepo,
		redisClient,
		sessionManager,
		authsvc.NewLogSender(logg),
		cfg.JWT,
		cfg.OTP,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	profileService, err := profilesvc.NewService(profileRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	directoryService, err := directorysvc.NewService(directoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create directory service", err)
		os.Exit(1)
	}

	simulator := tracking.NewSimulator(orderRepo, cfg.Tracking, logg)
	defer simulator.Shutdown()

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		cartRepo,
		orderRepo,
		profileService,
		simulator,
		cfg.Tracking,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	analyzer, err := analysis.NewClient(
		cfg.Analysis.APIKey,
		analysis.WithBaseURL(cfg.Analysis.GatewayURL),
		analysis.WithModel(cfg.Analysis.Model),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create analysis client", err)
		os.Exit(1)
	}

	prescriptionService, err := prescriptionsvc.NewService(
		analyzer,
		redisClient,
		catalogRepo,
		cartService,
		cfg.Analysis,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create prescription service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			catalogService,
			cartService,
			checkoutService,
			orderService,
			prescriptionService,
			profileService,
			directoryService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
