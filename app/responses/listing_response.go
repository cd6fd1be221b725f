package responses

import (
	"github.com/listing-parser/app/models"
	"github.com/listing-parser/internal/search"
)

// ParseListingResponse is the reply to a single parse.
type ParseListingResponse struct {
	Result           models.ListingResult `json:"result"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
	CacheHit         bool                 `json:"cache_hit"`
}

// BatchParseResponse acknowledges a submitted job.
type BatchParseResponse struct {
	JobID            string `json:"job_id"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	TotalListings    int    `json:"total_listings"`
	Message          string `json:"message"`
}

// JobStatusResponse reports job progress.
type JobStatusResponse struct {
	JobID     string  `json:"job_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"` // 0.0 - 1.0
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Message   string  `json:"message"`
}

// SocietySearchResponse lists directory hits.
type SocietySearchResponse struct {
	Query string              `json:"query"`
	Hits  []search.SocietyHit `json:"hits"`
}

// DictionaryResponse describes the active rule data.
type DictionaryResponse struct {
	Version           string   `json:"version"`
	Societies         []string `json:"societies"`
	AliasSocieties    int      `json:"alias_societies"`
	SocietyDictionary string   `json:"society_dictionary,omitempty"`
	AliasTable        string   `json:"alias_table,omitempty"`
}

// SyncResponse reports a directory sync.
type SyncResponse struct {
	Version string `json:"version"`
	Synced  int    `json:"synced"`
}

// AdminStatsResponse aggregates service and cache statistics.
type AdminStatsResponse struct {
	UptimeSeconds     int64             `json:"uptime_seconds"`
	DictionaryVersion string            `json:"dictionary_version"`
	Societies         int               `json:"societies"`
	AliasSocieties    int               `json:"alias_societies"`
	Jobs              int               `json:"jobs"`
	Parsed            int64             `json:"parsed"`
	CacheHitRate      float64           `json:"cache_hit_rate"`
	CacheHits         int64             `json:"cache_hits"`
	CacheMisses       int64             `json:"cache_misses"`
	CacheItems        int64             `json:"cache_items"`
	MemoryUsage       map[string]uint64 `json:"memory_usage"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SuccessResponse wraps generic successful replies.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse is the /health body.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
