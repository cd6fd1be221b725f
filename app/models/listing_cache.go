package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingCache is the persistent cache document for one parse.
type ListingCache struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CacheKey          string             `bson:"cache_key" json:"cache_key"`
	RawText           string             `bson:"raw_text" json:"raw_text"`
	Result            ListingResult      `bson:"result" json:"result"`
	DictionaryVersion string             `bson:"dictionary_version" json:"dictionary_version"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed      time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount       int                `bson:"access_count" json:"access_count"`
}

// NewListingCache wraps a result for storage under key.
func NewListingCache(key string, result ListingResult) *ListingCache {
	now := time.Now()
	return &ListingCache{
		CacheKey:          key,
		RawText:           result.Raw,
		Result:            result,
		DictionaryVersion: result.DictionaryVersion,
		CreatedAt:         now,
		LastAccessed:      now,
		AccessCount:       1,
	}
}

// UpdateAccess records a cache hit.
func (lc *ListingCache) UpdateAccess() {
	lc.LastAccessed = time.Now()
	lc.AccessCount++
}

// IsExpired reports whether the entry is older than ttl.
func (lc *ListingCache) IsExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(lc.CreatedAt) > ttl
}

// IsValidDictionaryVersion reports whether the entry was parsed with version.
func (lc *ListingCache) IsValidDictionaryVersion(version string) bool {
	return lc.DictionaryVersion == version
}
