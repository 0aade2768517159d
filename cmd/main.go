package main

//
//  @title           freightrates API
//  @version         1.0
//  @description     Daily average freight prices between ports and regions, plus price uploads.
//  @termsOfService  https://github.com/guttosm/freightrates
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/freightrates
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        rates
//  @tag.description Daily average prices per route
//
//  @tag.name        upload
//  @tag.description Price ingestion over a date range
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

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

	"github.com/guttosm/freightrates/config"
	_ "github.com/guttosm/freightrates/docs" // swagger docs
	"github.com/guttosm/freightrates/internal/app"
	"github.com/guttosm/freightrates/internal/ingestion"
	"github.com/guttosm/freightrates/internal/logger"
	"github.com/guttosm/freightrates/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (DB, Redis).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runMigrate brings the configured store's schema up to date. PostgreSQL uses
// the embedded goose migrations; SQLite creates its schema on open.
func runMigrate(cfg config.Config) error {
	switch cfg.Storage.Driver {
	case "sqlite":
		s, err := storage.NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		return s.Close()
	case "postgres", "":
		db, err := app.InitPostgres(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return storage.Migrate(db)
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// runSeed loads regions, ports and optional historical prices from dir.
func runSeed(ctx context.Context, cfg config.Config, dir string, parallel int) (ingestion.Summary, error) {
	stores, err := app.OpenStores(cfg)
	if err != nil {
		return ingestion.Summary{}, err
	}
	defer func() { _ = stores.Close() }()

	return ingestion.LoadDirectory(ctx, dir, stores.Locations, stores.Prices, parallel)
}

// main is the entry point of the freightrates application.
//
// Modes (selected via --mode flag):
//   - api:     Starts the REST API serving rates and accepting price uploads.
//   - migrate: Applies database migrations and exits.
//   - seed:    Loads regions.csv, ports.csv and prices.csv from --dir and exits.
//
// Flags:
//   - --mode:     Execution mode ("api", "migrate" or "seed"). Default: "api".
//   - --dir:      Directory containing the seed CSV files. Default: "./data/seed".
//   - --parallel: Concurrent price batch writers for seed (0=auto up to CPU, max 8).
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "api", "Mode: api, migrate or seed")
	dir := flag.String("dir", "./data/seed", "Directory with regions.csv, ports.csv and prices.csv")
	parallel := flag.Int("parallel", 0, "Concurrent price batch writers for seed (0=auto up to CPU, max 8)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "migrate":
		logger.L().Info().Str("storage", config.AppConfig.Storage.Driver).Msg("running migrations")
		if err := runMigrate(config.AppConfig); err != nil {
			logger.L().Fatal().Err(err).Msg("migration failed")
		}
		logger.L().Info().Msg("migrations applied")

	case "seed":
		logger.L().Info().Str("dir", *dir).Msg("running seed")
		sum, err := runSeed(ctx, config.AppConfig, *dir, *parallel)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("seed failed")
		}
		logger.L().Info().
			Int("regions", sum.Regions).
			Int("ports", sum.Ports).
			Int("prices", sum.Prices).
			Msg("seed completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
