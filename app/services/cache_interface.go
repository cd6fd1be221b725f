package services

import (
	"context"
	"time"

	"github.com/listing-parser/app/models"
)

// CacheStats summarises cache effectiveness.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

func newCacheStats(hits, misses, items int64) *CacheStats {
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses, TotalItems: items}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// ICacheService stores parsed listings by cache key.
type ICacheService interface {
	Get(ctx context.Context, key string) (*models.ListingResult, bool, error)
	Set(ctx context.Context, key string, result *models.ListingResult) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// InvalidateByDictionaryVersion drops every entry not parsed with version.
	InvalidateByDictionaryVersion(ctx context.Context, version string) error

	GetStats(ctx context.Context) (*CacheStats, error)
	Exists(ctx context.Context, key string) (bool, error)
	// GetTTL returns the remaining lifetime of key, 0 when absent.
	GetTTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}
