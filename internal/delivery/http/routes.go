package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/savetide/backend/config"
	"github.com/savetide/backend/internal/infrastructure/logger"
)

// RouterDeps bundles what the router needs besides the handler
type RouterDeps struct {
	Logger logger.Logger
	// Metrics, when set, serves /metrics and instruments every route
	Metrics MetricsExporter
}

// MetricsExporter is implemented by the Prometheus metrics set
type MetricsExporter interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, deps RouterDeps) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Unversioned route kept for existing extension builds
	router.POST("/api/compare", handler.Compare)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/compare", handler.Compare)
		v1.GET("/barcode/:code", handler.Barcode)
		v1.GET("/merchants", handler.Merchants)
	}

	return router
}
