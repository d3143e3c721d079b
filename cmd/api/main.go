package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mercantile-app/mercantile-backend/api/routes"
	"github.com/mercantile-app/mercantile-backend/internal/analytics"
	authsvc "github.com/mercantile-app/mercantile-backend/internal/auth"
	cartsvc "github.com/mercantile-app/mercantile-backend/internal/cart"
	discountsvc "github.com/mercantile-app/mercantile-backend/internal/discounts"
	"github.com/mercantile-app/mercantile-backend/internal/items"
	ordersvc "github.com/mercantile-app/mercantile-backend/internal/orders"
	"github.com/mercantile-app/mercantile-backend/internal/users"
	"github.com/mercantile-app/mercantile-backend/pkg/auth/session"
	"github.com/mercantile-app/mercantile-backend/pkg/config"
	"github.com/mercantile-app/mercantile-backend/pkg/db"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/mercantile-app/mercantile-backend/pkg/metrics"
	"github.com/mercantile-app/mercantile-backend/pkg/migrate"
	"github.com/mercantile-app/mercantile-backend/pkg/redis"
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

	cartStore, err := cartsvc.NewSessionStore(redisClient, cfg.Cart)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	itemRepo := items.NewRepository(gormDB)
	userRepo := users.NewRepository(gormDB)
	addressRepo := users.NewAddressRepository(gormDB)
	discountRepo := discountsvc.NewRepository(gormDB)
	orderRepo := ordersvc.NewRepository(gormDB)
	analyticsRepo := analytics.NewRepository(gormDB)

	authService, err := authsvc.NewService(userRepo, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(itemRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	discountService, err := discountsvc.NewService(discountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(orderRepo, itemRepo, addressRepo, cartStore, discountService, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	aggregate, err := cfg.Analytics.Aggregate()
	if err != nil {
		logg.Error(context.Background(), "invalid analytics config", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	reportMetrics := metrics.NewReportMetrics(registry)

	analyticsService, err := analytics.NewService(analyticsRepo, aggregate, reportMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Registry:         registry,
			Sessions:         sessionManager,
			CartStore:        cartStore,
			AuthService:      authService,
			CartService:      cartService,
			DiscountService:  discountService,
			OrderService:     orderService,
			AnalyticsService: analyticsService,
			ItemRepo:         itemRepo,
			AddressRepo:      addressRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
