package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// Paths excluded from the request deadline and from request logging.
const (
	pathImport        = "/api/v1/quotes/import"
	pathExport        = "/api/v1/quotes/export"
	pathNotifications = "/api/v1/notifications"
)

// RouterConfig contains the handlers and settings for the router.
// A nil handler leaves its routes unregistered.
type RouterConfig struct {
	// ServiceName labels traces.
	ServiceName string

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration

	Health   *handlers.HealthHandler
	Quotes   *handlers.QuoteHandler
	Transfer *handlers.TransferHandler
	Sync     *handlers.SyncHandler
	View     *handlers.ViewHandler
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips probes and notification polling)
//  6. Timeout - request deadline on /api/v1, except transfers
//
// Route groups:
//   - /-/ (internal): probes, build info and metrics
//   - /api/v1/ (public API): quotes, sync batches and the view
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(pathNotifications))

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout, pathImport, pathExport))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers business API routes. Transfer routes go first so
// the static export and import paths are registered next to /quotes/:id.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Transfer != nil {
		cfg.Transfer.RegisterRoutes(rg)
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(rg)
	}

	if cfg.Sync != nil {
		cfg.Sync.RegisterRoutes(rg)
	}

	if cfg.View != nil {
		cfg.View.RegisterRoutes(rg)
	}
}
