package services

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// SystemStats is the admin view of the running service.
type SystemStats struct {
	Uptime            time.Duration
	DictionaryVersion string
	Societies         int
	AliasSocieties    int
	Jobs              int
	Parsed            int64
	Cache             *CacheStats
	MemoryUsage       map[string]uint64
}

// AdminService aggregates statistics from the listing and dictionary services.
type AdminService struct {
	listings *ListingService
	rules    *DictionaryService
	logger   *zap.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(listings *ListingService, rules *DictionaryService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{listings: listings, rules: rules, logger: logger}
}

// GetSystemStats collects uptime, rule set, job, cache and memory figures.
// A failing cache leaves Cache nil.
func (as *AdminService) GetSystemStats(ctx context.Context) SystemStats {
	active := as.rules.Active()
	stats := SystemStats{
		Uptime:            time.Since(as.listings.GetStartTime()),
		DictionaryVersion: active.Version,
		Societies:         active.Dictionary.Len(),
		AliasSocieties:    active.AliasTable.Len(),
		Jobs:              as.listings.JobCount(),
		Parsed:            as.listings.Parsed(),
	}

	cache, err := as.listings.CacheStats(ctx)
	if err != nil {
		as.logger.Warn("Could not read cache stats", zap.Error(err))
	}
	stats.Cache = cache

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryUsage = map[string]uint64{
		"alloc_mb":       bToMb(m.Alloc),
		"total_alloc_mb": bToMb(m.TotalAlloc),
		"sys_mb":         bToMb(m.Sys),
		"num_gc":         uint64(m.NumGC),
	}
	return stats
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
