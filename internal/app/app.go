package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/freightrates/config"
	"github.com/guttosm/freightrates/internal/api"
	"github.com/guttosm/freightrates/internal/currency"
	"github.com/guttosm/freightrates/internal/logger"
	"github.com/guttosm/freightrates/internal/middleware"
	"github.com/guttosm/freightrates/internal/service"
	"github.com/guttosm/freightrates/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the configured price store (PostgreSQL or SQLite).
//   - Builds the currency converter, fronted by Redis when REDIS_URL is set.
//   - Wires the rates service and upload reconciler into the HTTP handler.
//   - Configures the Gin router, rate limiter, health and readiness probes.
//   - Provides a cleanup function to close resources (DB, Redis, sweeper).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	writeMode := cfg.Upload.WriteMode
	if writeMode == "" {
		writeMode = string(storage.WriteUpsert)
	}
	mode, err := storage.ParseWriteMode(writeMode)
	if err != nil {
		return nil, nil, err
	}

	stores, err := OpenStores(cfg)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := ConnectRedis(context.Background(), cfg)
	if err != nil {
		_ = stores.Close()
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	var source currency.RateSource = currency.NewHTTPSource(cfg.Rates.URL, cfg.Rates.AppID, cfg.Rates.Timeout)
	if rdb != nil {
		source = currency.NewRedisCache(rdb, source, cfg.Redis.CacheTTL)
	}
	converter := currency.NewConverter(source)

	rates := service.NewRatesService(service.NewLocationResolver(stores.Locations), stores.Prices)
	uploads := service.NewUploadReconciler(stores.Prices, converter, mode, cfg.Rates.ReferenceCurrency)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute, time.Minute)
	limiter.StartSweeper(sweepCtx)

	router := api.NewRouter(api.NewHandler(rates, uploads), limiter)

	checks := []api.Check{{Name: "store", Ping: stores.Ping}}
	if rdb != nil {
		checks = append(checks, api.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	}
	api.NewHealthHandler(checks...).Register(router)

	logger.L().Info().
		Str("storage", cfg.Storage.Driver).
		Str("write_mode", string(mode)).
		Bool("rate_cache", rdb != nil).
		Msg("application initialized")

	cleanup := func() {
		stopSweeper()
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = stores.Close()
	}

	return router, cleanup, nil
}
