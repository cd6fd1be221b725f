package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random v4 UUID.
func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateJobID returns a batch job ID.
func GenerateJobID() string {
	return "job_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateShortID returns the first 8 hex characters of a UUID, used as request IDs.
func GenerateShortID() string {
	return uuid.NewString()[:8]
}
