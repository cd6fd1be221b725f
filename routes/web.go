package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes mounts the index and endpoint listing.
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Listing Parser Service",
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api":       "Listing Parser API v1",
				"endpoints": map[string]string{
					"parse":            "POST /v1/listings/parse",
					"batch":            "POST /v1/listings/jobs",
					"job_status":       "GET /v1/listings/jobs/:jobID/status",
					"job_results":      "GET /v1/listings/jobs/:jobID/results?format=ndjson&gzip=1",
					"society_search":   "GET /v1/societies/search?q=",
					"dictionary":       "GET|POST /v1/admin/dictionary",
					"societies_sync":   "POST /v1/admin/societies/sync",
					"cache_invalidate": "POST /v1/admin/cache/invalidate",
					"stats":            "GET /v1/admin/stats",
					"health":           "GET /health",
					"metrics":          "GET /metrics",
				},
			})
		})
	}
}
