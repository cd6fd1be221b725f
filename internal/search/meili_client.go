// Package search keeps the society directory in Meilisearch so operators and
// the admin API can look societies up with typo tolerance.
package search

import (
	"fmt"
	"net/http"
	"time"

	ms "github.com/meilisearch/meilisearch-go"
)

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host          string
	APIKey        string
	IndexName     string
	Timeout       time.Duration
	MaxCandidates int
}

func newClient(cfg SearchConfig) ms.ServiceManager {
	opts := []ms.Option{ms.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		opts = append(opts, ms.WithCustomClient(&http.Client{Timeout: cfg.Timeout}))
	}
	return ms.New(cfg.Host, opts...)
}

// FilterVersion restricts a search to documents synced from one dictionary version.
func FilterVersion(version string) string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("dictionary_version = %q", version)
}
