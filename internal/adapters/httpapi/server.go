package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/infrastructure/config"
)

// NewRouter builds the gin engine with all routes and middleware wired.
// registry may be nil when metrics are disabled; /metrics then returns 404.
func NewRouter(m common.Mediator, cfg *config.ServerConfig, registry *prometheus.Registry) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Liveness probe, no auth
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if registry != nil {
		engine.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	handlers := NewHandlers(m)

	// The catalog is static game data, readable without an empire identity
	engine.GET("/api/catalog/:kind", handlers.listCatalog)

	api := engine.Group("/api")
	if cfg != nil && cfg.RateLimit.Enabled {
		limiter := NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Burst)
		api.Use(limiter.Middleware())
	}
	api.Use(EmpireAuth())
	{
		api.GET("/empire", handlers.empireOverview)
		api.GET("/empire/transactions", handlers.transactionLog)

		api.GET("/bases/:coord/status", handlers.baseStatus)
		api.POST("/bases/:coord/structures", handlers.startStructure)
		api.POST("/bases/:coord/research", handlers.startResearch)
		api.POST("/bases/:coord/units", handlers.trainUnits)
		api.POST("/bases/:coord/defenses", handlers.startDefense)

		api.DELETE("/queue/:type/:id", handlers.cancelEntry)
	}

	return engine
}
