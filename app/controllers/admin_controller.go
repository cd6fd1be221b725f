package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/listing-parser/app/requests"
	"github.com/listing-parser/app/responses"
	"github.com/listing-parser/app/services"
)

// AdminController serves rule management, cache and statistics endpoints.
type AdminController struct {
	rules  *services.DictionaryService
	admin  *services.AdminService
	logger *zap.Logger
}

// NewAdminController creates an AdminController.
func NewAdminController(rules *services.DictionaryService, admin *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{rules: rules, admin: admin, logger: logger}
}

// GetDictionary describes the active rule set; ?include_source=1 adds the
// dictionary text and alias table YAML.
func (ac *AdminController) GetDictionary(c *gin.Context) {
	c.JSON(http.StatusOK, ac.dictionaryResponse(ac.rules.Active(), c.Query("include_source") == "1"))
}

// UpdateDictionary replaces the dictionary and/or alias table.
func (ac *AdminController) UpdateDictionary(c *gin.Context) {
	var req requests.UpdateDictionaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}
	if req.SocietyDictionary == "" && req.AliasTable == "" {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "society_dictionary or alias_table is required")
		return
	}

	rules, err := ac.rules.Update(c.Request.Context(), req)
	switch {
	case errors.Is(err, services.ErrDirectoryUnavailable):
		// rules were applied; only the sync could not run
		ac.logger.Warn("Rules updated without directory sync", zap.String("version", rules.Version))
	case err != nil && rules.Version != "":
		ac.logger.Error("Directory sync after rule update failed", zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "SYNC_FAILED", err.Error())
		return
	case err != nil:
		abortWithError(c, http.StatusBadRequest, "INVALID_DICTIONARY", err.Error())
		return
	}
	c.JSON(http.StatusOK, ac.dictionaryResponse(rules, false))
}

// SyncSocieties pushes the active dictionary to the society directory.
func (ac *AdminController) SyncSocieties(c *gin.Context) {
	n, err := ac.rules.SyncDirectory(c.Request.Context())
	if errors.Is(err, services.ErrDirectoryUnavailable) {
		abortWithError(c, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", err.Error())
		return
	}
	if err != nil {
		ac.logger.Error("Society sync failed", zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "SYNC_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, responses.SyncResponse{Version: ac.rules.Version(), Synced: n})
}

// InvalidateCache drops cached parses. An empty keep_version clears the cache.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
			return
		}
	}

	start := time.Now()
	if err := ac.rules.InvalidateCache(c.Request.Context(), req.KeepVersion); err != nil {
		ac.logger.Error("Cache invalidation failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "INVALIDATE_ERROR", err.Error())
		return
	}
	elapsed := time.Since(start)
	ac.logger.Info("Cache invalidated", zap.String("keep_version", req.KeepVersion), zap.Duration("duration", elapsed))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Cache invalidated",
		Data: map[string]interface{}{
			"keep_version":       req.KeepVersion,
			"processing_time_ms": elapsed.Milliseconds(),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStats returns service statistics.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats := ac.admin.GetSystemStats(c.Request.Context())
	resp := responses.AdminStatsResponse{
		UptimeSeconds:     int64(stats.Uptime.Seconds()),
		DictionaryVersion: stats.DictionaryVersion,
		Societies:         stats.Societies,
		AliasSocieties:    stats.AliasSocieties,
		Jobs:              stats.Jobs,
		Parsed:            stats.Parsed,
		MemoryUsage:       stats.MemoryUsage,
	}
	if stats.Cache != nil {
		resp.CacheHitRate = stats.Cache.HitRate
		resp.CacheHits = stats.Cache.TotalHits
		resp.CacheMisses = stats.Cache.TotalMiss
		resp.CacheItems = stats.Cache.TotalItems
	}
	c.JSON(http.StatusOK, resp)
}

func (ac *AdminController) dictionaryResponse(rules services.RuleSet, withSource bool) responses.DictionaryResponse {
	resp := responses.DictionaryResponse{
		Version:        rules.Version,
		Societies:      rules.Dictionary.Canonicals(),
		AliasSocieties: rules.AliasTable.Len(),
	}
	if withSource {
		resp.SocietyDictionary = rules.DictionarySource
		if b, err := yaml.Marshal(rules.AliasTable); err == nil {
			resp.AliasTable = string(b)
		} else {
			ac.logger.Warn("Could not render alias table", zap.Error(err))
		}
	}
	return resp
}
