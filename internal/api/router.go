// Package api assembles the HTTP surface of the studio backend.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantfold/studio/internal/handlers"
	"github.com/quantfold/studio/internal/middleware"
	"github.com/quantfold/studio/internal/services"
)

// Options carries the dependencies the router wires into handlers.
type Options struct {
	Connections *services.ConnectionService
	Queries     *services.QueryService
	Catalog     *services.ModelCatalog

	// Shutdown is invoked after the terminate endpoint has responded.
	Shutdown func()

	// EnableMetrics exposes the Prometheus scrape endpoint.
	EnableMetrics bool
	MetricsPath   string
}

// NewRouter builds the gin engine with the full route table and
// middleware chain.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	connectionHandler := handlers.NewConnectionHandler(opts.Connections)
	queryHandler := handlers.NewQueryHandler(opts.Queries)
	modelHandler := handlers.NewModelHandler(opts.Catalog)

	router.GET("/", handlers.Health())
	router.GET("/terminate", handlers.Terminate(opts.Shutdown))

	router.GET("/models", modelHandler.List)
	router.GET("/connections", connectionHandler.List)
	router.POST("/connection", connectionHandler.Upsert)
	router.PUT("/connection", connectionHandler.Upsert)

	router.POST("/query", queryHandler.Run)
	router.POST("/raw_query", queryHandler.RunRaw)

	if opts.EnableMetrics {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	router.NoRoute(middleware.NotFoundHandler)

	return router
}
