package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kosarica/price-comparator/config"
	"github.com/kosarica/price-comparator/internal/alerts"
	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/discounts"
	"github.com/kosarica/price-comparator/internal/handlers"
	"github.com/kosarica/price-comparator/internal/ingestion"
	"github.com/kosarica/price-comparator/internal/middleware"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/sweepers"
	"github.com/kosarica/price-comparator/internal/telemetry"
	"github.com/kosarica/price-comparator/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting price comparator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	enc, err := ingestion.ParseEncoding(cfg.Ingestion.Encoding)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid ingestion encoding")
	}
	loader := ingestion.NewLoader(enc, cfg.Ingestion.Concurrency, logger)

	snap, stats, err := loader.LoadDir(ctx, cfg.Ingestion.DataDir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Ingestion.DataDir).Msg("Initial load failed, starting with an empty catalog")
		snap = catalog.Empty()
	} else {
		logger.Info().
			Int("files", stats.Files).
			Int("prices", stats.Prices).
			Int("discounts", stats.Discounts).
			Int("row_errors", stats.RowErrors).
			Msg("Catalog loaded")
	}
	cat := catalog.New(snap)

	repo, db, err := alertRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up alert store")
	}
	if db != nil {
		defer db.Close()
	}

	engine := alerts.NewEngine(repo, cat, logger)
	alertSweeper := sweepers.NewAlertSweeper(engine, logger, cfg.Alerts.CheckInterval)
	go alertSweeper.Start(ctx)

	dirWatcher := watcher.New(cfg.Ingestion.DataDir, loader, cat, alertSweeper, cfg.Ingestion.Debounce, logger)
	if cfg.Ingestion.Watch {
		if err := dirWatcher.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("Data directory watch disabled")
		}
	}

	basketOptimizer := optimizer.NewBasketOptimizer(&cfg.Optimizer, logger)
	h := handlers.New(handlers.Deps{
		Catalog:   cat,
		Optimizer: basketOptimizer,
		Ranking:   discounts.NewRanking(cat, nil),
		Alerts:    engine,
		Reloader:  dirWatcher,
		DB:        db,
		Logger:    logger,
	})

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("")
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.Burst,
			IdleTimeout:       cfg.RateLimit.IdleTimeout,
		})
		go limiter.RunCleanup(ctx)
		api.Use(middleware.RateLimitMiddleware(limiter))
	}
	h.RegisterRoutes(api)

	admin := router.Group("/admin")
	admin.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	h.RegisterAdminRoutes(admin)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info().Msg("Shutting down server...")
	dirWatcher.Stop()
	alertSweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// alertRepository returns the configured alert store. The database handle
// is nil for the in-memory store.
func alertRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (alerts.Repository, *database.DB, error) {
	if cfg.Alerts.Store != config.AlertStorePostgres {
		logger.Info().Msg("Using in-memory alert store")
		return alerts.NewMemoryRepository(), nil, nil
	}

	db, err := database.Connect(ctx, database.PoolConfig{
		URL:         cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConnections,
		MinConns:    cfg.Database.MinConnections,
		MaxLifetime: cfg.Database.MaxConnLifetime,
		MaxIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info().Msg("Database connected")
	return database.NewAlertRepository(db), db, nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "price-comparator").Logger()
	return &logger
}
