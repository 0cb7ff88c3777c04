// Package api is the optional introspection HTTP surface spec.md §9's
// "surrounding repository concerns are explicit external collaborators"
// note calls for: a thin Gin wrapper around internal/session, grounded
// on the teacher's internal/api/router.go (recovery -> Sentry -> request
// tracking -> CORS -> routes) but serving one domain endpoint
// (POST /compile) instead of a handler per agent.
package api

import (
	"context"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/config"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the introspection API router. Outside production
// metrics.NewClient returns a disabled, non-nil client whose Record
// methods return without recording; metricsClient is nil only if
// NewClient returns an error, and compileHandler guards on nil before
// recording.
func SetupRouter(cfg *config.Config, version string) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(recoverWithSentry())
	router.Use(sentryMiddleware())
	router.Use(requestTracking())
	router.Use(cors())

	metricsClient, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		metricsClient = nil
	}

	router.GET("/healthz", healthCheck)
	router.GET("/metrics", newMetricsHandler(version).GetMetrics)

	ch := newCompileHandler(cfg, metricsClient)
	router.POST("/compile", ch.Compile)

	return router
}

// cors allows the introspection API to be called from a local browser
// tool without a proxy, matching the teacher's permissive local-tooling
// CORS middleware.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
