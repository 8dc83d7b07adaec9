/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the stock ledger HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env file, environment, flag overrides)
  2. Initialize SQLite store and open the ledger Book
  3. Connect the Redis summary cache (optional, falls back to no cache)
  4. Configure HTTP router and start the stock report scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -env     Path to a .env file (default: .env when present)
  -port    HTTP server port, overrides APP_PORT
  -db      SQLite database path, overrides DB_PATH
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the stock report scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close cache and database connections

EXAMPLES:
  # Run with file database
  ./server -db="./data/ledger.db"

  # Run with in-memory database and a Redis cache
  REDIS_ADDR=localhost:6379 ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/warp/stock-ledger/api"
	"github.com/warp/stock-ledger/cache"
	"github.com/warp/stock-ledger/config"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/logger"
	"github.com/warp/stock-ledger/store/sqlite"
)

func main() {
	// Flags
	envFile := flag.String("env", "", "Path to a .env file")
	port := flag.String("port", "", "HTTP server port (overrides APP_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Storage.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.DBPath).Msg("failed to create data directory")
		}
	}

	// Initialize store
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	ctx := context.Background()
	book, err := inventory.OpenBook(ctx, store, inventory.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ledger")
	}

	// Summary cache
	var summaryCache cache.SummaryCache = cache.NoopSummaryCache{}
	if cfg.Cache.RedisAddr != "" {
		redisCache := cache.NewRedisSummaryCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unavailable, summaries are not cached")
			redisCache.Close()
		} else {
			summaryCache = redisCache
			defer redisCache.Close()
			log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("summary cache: redis")
		}
	}

	opts := inventory.AggregateOptions{LowStockThreshold: cfg.Ledger.LowStockThreshold}
	handler := api.NewHandler(book, cache.NewSummarizer(summaryCache, cfg.Cache.TTL, log), opts)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	scheduler := api.NewStockReportScheduler(book, cfg.Reporting.CronSchedule, opts, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Reporting.CronSchedule).Msg("invalid STOCK_REPORT_CRON")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Int("records", len(book.State().Records)).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
