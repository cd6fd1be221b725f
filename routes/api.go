package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/listing-parser/app/controllers"
	"github.com/listing-parser/helpers/utils"
)

// Controllers groups the handlers mounted by SetupAllRoutes.
type Controllers struct {
	Listings  *controllers.ListingController
	Societies *controllers.SocietyController
	Admin     *controllers.AdminController
}

// SetupAPIRoutes mounts the /v1 API.
func SetupAPIRoutes(router *gin.Engine, ctrl Controllers) {
	v1 := router.Group("/v1")
	{
		listings := v1.Group("/listings")
		{
			listings.POST("/parse", ctrl.Listings.ParseListing)
			listings.POST("/jobs", ctrl.Listings.BatchParse)
			listings.GET("/jobs/:jobID/status", ctrl.Listings.GetJobStatus)
			listings.GET("/jobs/:jobID/results", ctrl.Listings.GetJobResults)
		}

		v1.GET("/societies/search", ctrl.Societies.Search)

		admin := v1.Group("/admin")
		{
			admin.GET("/dictionary", ctrl.Admin.GetDictionary)
			admin.POST("/dictionary", ctrl.Admin.UpdateDictionary)
			admin.POST("/societies/sync", ctrl.Admin.SyncSocieties)
			admin.POST("/cache/invalidate", ctrl.Admin.InvalidateCache)
			admin.GET("/stats", ctrl.Admin.GetStats)
		}

		v1.GET("/health", ctrl.Listings.HealthCheck)
	}
}

// SetupHealthRoutes mounts the probe endpoints.
func SetupHealthRoutes(router *gin.Engine, listings *controllers.ListingController) {
	router.GET("/health", listings.HealthCheck)
	router.GET("/ready", listings.HealthCheck)
	router.GET("/live", func(c *gin.Context) { c.JSON(200, gin.H{"status": "alive"}) })
}

// SetupMetricsRoutes exposes the Prometheus default registry.
func SetupMetricsRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// SetupAllRoutes installs middleware and every route group.
func SetupAllRoutes(router *gin.Engine, ctrl Controllers, logger *zap.Logger) {
	setupMiddleware(router, logger)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctrl.Listings)
	SetupAPIRoutes(router, ctrl)
	SetupMetricsRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine, logger *zap.Logger) {
	router.Use(gin.Recovery())
	router.Use(requestID())
	if logger != nil {
		router.Use(requestLogger(logger))
	}
}

// requestID propagates X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateShortID()
		}
		c.Set(controllers.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(controllers.RequestIDKey)))
	}
}
