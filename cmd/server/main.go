package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"

	"instatistics/internal/adapters/cache"
	"instatistics/internal/adapters/metrics"
	"instatistics/internal/adapters/scraper"
	"instatistics/internal/adapters/web"
	"instatistics/internal/config"
	"instatistics/internal/usecases"
	"instatistics/pkg/log"
	"instatistics/pkg/log/transporters"
)

// datasetStore is a usecases.DatasetStore holding resources.
type datasetStore interface {
	usecases.DatasetStore
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	log.SetDefault(logger)
	defer logger.Close()

	if err := run(cfg); err != nil {
		log.GlobalFatal("server stopped", "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	var t log.Transporter = transporters.NewStdout()
	if cfg.LogFormat == config.LogConsole {
		t = transporters.NewConsole()
	}
	return log.New(cfg.LogLevel, t).With("service", "instatistics")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load feed configuration (hot-reloaded)
	feedConfig, err := scraper.LoadFeedConfig(cfg.FeedConfigPath)
	if err != nil {
		return err
	}
	defer feedConfig.Close()

	// Initialize browser pool (single persistent browser)
	browserPool, err := scraper.NewBrowserPool(cfg.ChromePath)
	if err != nil {
		return err
	}
	defer browserPool.Close()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pipelineMetrics := metrics.NewPrometheus(prometheus.DefaultRegisterer)

	// Initialize adapters
	feed := scraper.NewProfileFeed(scraper.NewChromePageLoader(browserPool), feedConfig, cfg.Location)

	// Initialize use cases
	fetchUC := usecases.NewFetchProfileUseCase(feed, cfg.FetchTimeout)
	getProfileUC := usecases.NewGetProfileDatasetUseCase(store, fetchUC, pipelineMetrics)
	loadUploadUC := usecases.NewLoadUploadUseCase(store, cfg.Location, pipelineMetrics)
	analyzeUC := usecases.NewAnalyzeDatasetUseCase()

	// Initialize web handlers
	handlers := web.NewHandlers(getProfileUC, loadUploadUC, analyzeUC, cfg.MaxUploadBytes)
	rateLimiter := web.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
	defer rateLimiter.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "Instatistics",
		BodyLimit:             int(cfg.MaxUploadBytes) + 1<<20,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(web.RequestIDConfig()))
	app.Use(web.RequestIDToContextMiddleware())
	app.Use(web.RequestLoggerMiddleware())
	metrics.RegisterHTTP(app, "instatistics", "/metrics")

	web.SetupRoutes(app, handlers, rateLimiter)

	errCh := make(chan error, 1)
	go func() {
		log.GlobalInfo("starting server", "port", cfg.Port, "cache", cfg.CacheBackend, "timezone", cfg.Location.String())
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.GlobalInfo("shutting down")
	return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
}

func newStore(ctx context.Context, cfg *config.Config) (datasetStore, error) {
	if cfg.CacheBackend == config.CacheRedis {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		redisCache, err := cache.NewRedisCache(pingCtx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	}
	return cache.NewMemoryCache(cfg.CacheTTL), nil
}
