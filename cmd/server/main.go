package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-ledger/internal/adapters/cache"
	"cafe-ledger/internal/adapters/http/middleware"
	"cafe-ledger/internal/adapters/http/routes"
	"cafe-ledger/internal/adapters/persistence/memstore"
	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/config"
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/logger"
	"cafe-ledger/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup("cafe-ledger", cfg.AppMode, cfg.LogLevel)

	ctx := context.Background()

	// Store
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	// Seed a demo cafe on an empty dev store
	if cfg.IsDev() {
		if err := config.NewSeeder(store).Run(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to seed demo data")
		}
	}

	// Order numbers come from Redis when configured
	var sequencer services.OrderNumberSequencer
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		sequencer = cache.NewOrderSequencer(client)
	}

	catalog, err := config.LoadRewardCatalog(cfg.Loyalty.RewardsCatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rewards catalog")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Cafe Ledger API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, routes.Deps{
		Store:     store,
		Sequencer: sequencer,
		Catalog:   catalog,
		Metrics:   m,
		Registry:  registry,
	}, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// openStore returns the configured store and its close func
func openStore(cfg *config.Config) (repositories.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		_ = config.CloseDatabase(db)
		return nil, nil, err
	}
	log.Info().Msg("database migration completed")

	return repositories.NewStore(db), func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}, nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server stopped gracefully")
}
