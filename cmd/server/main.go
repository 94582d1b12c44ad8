/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the pontaj overtime server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env file, environment, then flags)
  2. Initialize structured logging
  3. Initialize SQLite store (migrations run on open)
  4. Load the official holiday table (+ optional TOML file)
  5. Create API handler, router and debt watch
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: pontaj.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  TIME_ZONE, HOLIDAYS_FILE, LOG_LEVEL, LOG_FORMAT, CORS_ORIGINS,
  DEBT_WATCH_ENABLED, DEBT_WATCH_INTERVAL. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the debt watch
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/pontaj/api"
	"github.com/warp/pontaj/config"
	"github.com/warp/pontaj/logging"
	"github.com/warp/pontaj/overtime"
	"github.com/warp/pontaj/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Flags
	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(logging.Config{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: logging.ComponentApp,
		Output:    os.Stdout,
	})
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", logging.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	logger.WithComponent(logging.ComponentStorage).Info("database ready", "path", cfg.DBPath)

	official := overtime.RomanianHolidays()
	if cfg.HolidaysFile != "" {
		official, err = overtime.LoadHolidayTable(cfg.HolidaysFile, official)
		if err != nil {
			return err
		}
		logger.Info("holiday file loaded", "path", cfg.HolidaysFile)
	}

	handler := api.NewHandler(store, official, loc, logger)
	router := api.NewRouter(handler, cfg.CORSOrigins...)

	watch := api.NewDebtWatch(handler.Service, loc, logger)
	watch.Enabled = cfg.DebtWatchEnabled
	watch.CheckInterval = cfg.DebtWatchInterval
	watch.Start()
	defer watch.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", "http://localhost:"+cfg.Port, "time_zone", cfg.TimeZone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	watch.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
