package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/listing-parser/app/responses"
	"github.com/listing-parser/internal/search"
)

// SocietySearcher looks societies up in the directory.
type SocietySearcher interface {
	Search(query, version string, limit int) ([]search.SocietyHit, error)
}

// SocietyController serves society directory lookups.
type SocietyController struct {
	directory SocietySearcher
	version   func() string
	logger    *zap.Logger
}

// NewSocietyController creates a SocietyController. directory may be nil when
// Meilisearch is not configured; version names the active rule set.
func NewSocietyController(directory SocietySearcher, version func() string, logger *zap.Logger) *SocietyController {
	return &SocietyController{directory: directory, version: version, logger: logger}
}

// Search handles GET /v1/societies/search?q=&limit=&all_versions=1.
func (sc *SocietyController) Search(c *gin.Context) {
	if sc.directory == nil {
		abortWithError(c, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Society directory is not configured")
		return
	}
	query := c.Query("q")
	if query == "" {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Query parameter q is required")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
		return
	}
	version := sc.version()
	if c.Query("all_versions") == "1" {
		version = ""
	}

	hits, err := sc.directory.Search(query, version, limit)
	if err != nil {
		sc.logger.Error("Society search failed", zap.String("query", query), zap.Error(err))
		abortWithError(c, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", err.Error())
		return
	}
	if hits == nil {
		hits = []search.SocietyHit{}
	}
	c.JSON(http.StatusOK, responses.SocietySearchResponse{Query: query, Hits: hits})
}
