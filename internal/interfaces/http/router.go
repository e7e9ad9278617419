package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseLens/internal/interfaces/http/handlers"
	"github.com/turtacn/ClauseLens/internal/interfaces/http/middleware"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree. Nil handlers are not mounted.
type RouterConfig struct {
	// Handlers
	ClauseHandler    *handlers.ClauseHandler
	DocumentHandler  *handlers.DocumentHandler
	DashboardHandler *handlers.DashboardHandler
	ViewerHandler    *handlers.ViewerHandler
	ReportHandler    *handlers.ReportHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	CORS    *middleware.CORSConfig
	Logging middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.AppMetrics
	MetricsPath      string
}

// NewRouter builds the gin engine: global middleware, public health and
// metrics endpoints, and the workspace-scoped /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))

	// --- Public health endpoints ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	// --- API v1 (workspace-scoped) ---
	api := r.Group("/api/v1", middleware.Workspace())
	if cfg.ClauseHandler != nil {
		cfg.ClauseHandler.RegisterRoutes(api)
	}
	if cfg.DocumentHandler != nil {
		cfg.DocumentHandler.RegisterRoutes(api)
	}
	if cfg.DashboardHandler != nil {
		cfg.DashboardHandler.RegisterRoutes(api)
	}
	if cfg.ViewerHandler != nil {
		cfg.ViewerHandler.RegisterRoutes(api)
	}
	if cfg.ReportHandler != nil {
		cfg.ReportHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code:      string(errors.ErrCodeNotFound),
			Message:   "route not found",
			RequestID: logging.RequestIDFromContext(c.Request.Context()),
		})
	})
	return r
}
