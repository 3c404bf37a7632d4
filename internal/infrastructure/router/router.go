package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/interface/api"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

// Options wires the HTTP surface of the pass service
type Options struct {
	PassHandler *api.PassHandler
	CronSecret  string
	Version     string
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
	Logger   logger.Logger
}

// NewRouter builds the gin engine with health, metrics and the v1 API
func NewRouter(opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(opts.Logger))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ticpin-pass",
			"version": opts.Version,
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := engine.Group("/api/v1")
	api.RegisterPassRoutes(v1, opts.PassHandler)
	api.RegisterInternalRoutes(v1, opts.PassHandler, opts.CronSecret)

	return engine
}
