package models

import (
	"time"

	"github.com/listing-parser/internal/parser"
)

// ListingResult is one parsed listing as returned by the API and stored in the cache.
type ListingResult struct {
	parser.Record `bson:",inline"`

	Raw               string    `json:"raw,omitempty" bson:"raw"`
	RawFingerprint    string    `json:"raw_fingerprint" bson:"raw_fingerprint"`
	DictionaryVersion string    `json:"dictionary_version" bson:"dictionary_version"`
	ParsedAt          time.Time `json:"parsed_at" bson:"parsed_at"`
}

// Job states
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)
