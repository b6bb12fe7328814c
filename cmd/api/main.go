package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rakapradana/kasirpoint-backend/api/routes"
	"github.com/rakapradana/kasirpoint-backend/internal/cart"
	"github.com/rakapradana/kasirpoint-backend/internal/catalog"
	"github.com/rakapradana/kasirpoint-backend/internal/discounts"
	"github.com/rakapradana/kasirpoint-backend/internal/members"
	"github.com/rakapradana/kasirpoint-backend/internal/settings"
	"github.com/rakapradana/kasirpoint-backend/internal/transactions"
	"github.com/rakapradana/kasirpoint-backend/internal/users"
	"github.com/rakapradana/kasirpoint-backend/pkg/config"
	"github.com/rakapradana/kasirpoint-backend/pkg/db"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
	"github.com/rakapradana/kasirpoint-backend/pkg/metrics"
	"github.com/rakapradana/kasirpoint-backend/pkg/migrate"
	"github.com/rakapradana/kasirpoint-backend/pkg/outbox"
	"github.com/rakapradana/kasirpoint-backend/pkg/redis"
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

	gormDB := dbClient.DB()

	catalogRepo := catalog.NewRepository(gormDB)
	discountRepo := discounts.NewRepository(gormDB)
	memberRepo := members.NewRepository(gormDB)
	settingsRepo := settings.NewRepository(gormDB)
	userRepo := users.NewRepository(gormDB)
	transactionRepo := transactions.NewRepository(gormDB)
	outboxRepo := outbox.NewRepository(gormDB)

	settingsSvc, err := settings.NewService(settingsRepo, redisClient, logg)
	exitOnError(logg, "settings service", err)

	cartValidator, err := cart.NewValidator(catalogRepo)
	exitOnError(logg, "cart validator", err)

	resolver, err := discounts.NewResolver(discountRepo)
	exitOnError(logg, "discount resolver", err)

	memberSvc, err := members.NewService(memberRepo, settingsSvc)
	exitOnError(logg, "member service", err)

	userSvc, err := users.NewService(userRepo, cfg.JWT, cfg.Password)
	exitOnError(logg, "user service", err)

	tranIDs, err := transactions.NewTranIDGenerator(redisClient)
	exitOnError(logg, "tran id generator", err)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	outboxSvc := outbox.NewService(outboxRepo, logg)

	executor, err := transactions.NewExecutor(
		dbClient,
		userSvc,
		cartValidator,
		memberSvc,
		resolver,
		catalogRepo,
		discountRepo,
		transactionRepo,
		tranIDs,
		outboxSvc,
		checkoutMetrics,
		logg,
	)
	exitOnError(logg, "checkout executor", err)

	query, err := transactions.NewQuery(transactionRepo)
	exitOnError(logg, "transaction query", err)

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
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			Users:       userSvc,
			Executor:    executor,
			Query:       query,
			Settings:    settingsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to build "+what, err)
	os.Exit(1)
}
