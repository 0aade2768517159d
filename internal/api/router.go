package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/freightrates/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// requestTimeout bounds every handler's context.
const requestTimeout = 10 * time.Second

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds request timeout handling (10 seconds).
//   - Mounts Swagger docs (/swagger/*any) and Prometheus metrics (/metrics).
//   - Configures the rates and upload routes under /api.
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
//   - limiter may be nil to disable rate limiting.
func NewRouter(handler *Handler, limiter *middleware.RateLimiter) *gin.Engine {
	RegisterValidators()

	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
	)
	if limiter != nil {
		router.Use(limiter.Handler())
	}
	router.Use(middleware.Timeout(requestTimeout))

	// ─── Swagger & metrics ────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ─── API ──────────────────────────────────────
	api := router.Group("/api")
	{
		api.GET("/rates/:date_from/:date_to/:origin/:destination/", handler.GetRates)
		api.GET("/rates_null/:date_from/:date_to/:origin/:destination/", handler.GetRatesNull)
		api.POST("/upload_price/", handler.UploadPrice)
		api.POST("/upload_usd_price/", handler.UploadCurrencyPrice)
	}

	return router
}
