package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/partshub/autospares-backend/api/routes"
	"github.com/partshub/autospares-backend/internal/auth"
	"github.com/partshub/autospares-backend/internal/cart"
	"github.com/partshub/autospares-backend/internal/catalog"
	"github.com/partshub/autospares-backend/internal/checkout"
	"github.com/partshub/autospares-backend/internal/orders"
	"github.com/partshub/autospares-backend/internal/users"
	"github.com/partshub/autospares-backend/pkg/auth/session"
	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/logger"
	"github.com/partshub/autospares-backend/pkg/metrics"
	"github.com/partshub/autospares-backend/pkg/migrate"
	"github.com/partshub/autospares-backend/pkg/redis"
	"github.com/partshub/autospares-backend/pkg/storage/gcs"
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogService, err := catalog.NewService(catalog.ServiceParams{DB: dbClient})
	exitOnError(logg, "failed to create catalog service", err)

	catalogAdmin, err := catalog.NewAdminService(catalog.AdminServiceParams{
		DB:     dbClient,
		Blobs:  gcsClient,
		Logger: logg,
	})
	exitOnError(logg, "failed to create catalog admin service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		DB:             dbClient,
		CheckoutConfig: cfg.Checkout,
	})
	exitOnError(logg, "failed to create cart service", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		DB:             dbClient,
		CheckoutConfig: cfg.Checkout,
		Metrics:        checkoutMetrics,
		Logger:         logg,
	})
	exitOnError(logg, "failed to create checkout service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{DB: dbClient})
	exitOnError(logg, "failed to create orders service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	exitOnError(logg, "failed to create auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "failed to create register service", err)

	storeAdminService, err := auth.NewAdminService(auth.AdminServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "failed to create store admin service", err)

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
		Handler: routes.NewRouter(routes.Params{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Session:      sessionManager,
			Catalog:      catalogService,
			CatalogAdmin: catalogAdmin,
			Cart:         cartService,
			Checkout:     checkoutService,
			Orders:       ordersService,
			Auth:         authService,
			Register:     registerService,
			StoreAdmins:  storeAdminService,
			HTTPMetrics:  httpMetrics,
			Registry:     registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
