package search

import (
	"errors"
	"fmt"
	"strings"

	ms "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/listing-parser/internal/normalizer"
	"github.com/listing-parser/internal/parser"
)

const seedBatchSize = 1000

// SocietyDocument is one society as stored in the index.
type SocietyDocument struct {
	ID                string   `json:"id"`
	Canonical         string   `json:"canonical"`
	NormalizedName    string   `json:"normalized_name"`
	Aliases           []string `json:"aliases"`
	DictionaryVersion string   `json:"dictionary_version"`
}

// SocietyHit is a search result.
type SocietyHit struct {
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
	Score     float64  `json:"score"`
}

// SocietyDirectory searches and syncs the society index.
type SocietyDirectory struct {
	index         ms.IndexManager
	logger        *zap.Logger
	maxCandidates int
}

// NewSocietyDirectory connects to Meilisearch and checks it is healthy.
func NewSocietyDirectory(cfg SearchConfig, logger *zap.Logger) (*SocietyDirectory, error) {
	client := newClient(cfg)
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch unreachable: %w", err)
	}
	return newSocietyDirectory(client.Index(cfg.IndexName), cfg.MaxCandidates, logger), nil
}

func newSocietyDirectory(index ms.IndexManager, maxCandidates int, logger *zap.Logger) *SocietyDirectory {
	if maxCandidates <= 0 {
		maxCandidates = 20
	}
	return &SocietyDirectory{index: index, logger: logger, maxCandidates: maxCandidates}
}

// EnsureSettings configures searchable and filterable attributes.
func (d *SocietyDirectory) EnsureSettings() error {
	task, err := d.index.UpdateSettings(&ms.Settings{
		SearchableAttributes: []string{"canonical", "normalized_name", "aliases"},
		FilterableAttributes: []string{"dictionary_version"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "exactness"},
		Synonyms: map[string][]string{
			"dha":  {"defence housing authority"},
			"rwp":  {"rawalpindi"},
			"isb":  {"islamabad"},
			"bt":   {"bahria town"},
			"phse": {"phase"},
		},
	})
	if err != nil {
		return fmt.Errorf("update society index settings: %w", err)
	}
	d.logger.Info("Society index settings updated", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Sync uploads docs in batches and returns how many were sent.
func (d *SocietyDirectory) Sync(docs []SocietyDocument) (int, error) {
	if len(docs) == 0 {
		return 0, errors.New("no societies to sync")
	}
	for i := 0; i < len(docs); i += seedBatchSize {
		end := min(i+seedBatchSize, len(docs))
		task, err := d.index.AddDocuments(docs[i:end], "id")
		if err != nil {
			return i, fmt.Errorf("add societies %d-%d: %w", i, end, err)
		}
		d.logger.Info("Synced society batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}
	return len(docs), nil
}

// Search returns societies matching query, best first. version narrows the
// search to one dictionary version when set.
func (d *SocietyDirectory) Search(query, version string, limit int) ([]SocietyHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 || limit > d.maxCandidates {
		limit = d.maxCandidates
	}
	result, err := d.index.Search(normalizer.Fingerprint(query), &ms.SearchRequest{
		Limit:            int64(limit),
		Filter:           FilterVersion(version),
		ShowRankingScore: true,
	})
	if err != nil {
		return nil, fmt.Errorf("search societies: %w", err)
	}
	return parseHits(result), nil
}

func parseHits(result *ms.SearchResponse) []SocietyHit {
	hits := make([]SocietyHit, 0, len(result.Hits))
	for _, raw := range result.Hits {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		hit := SocietyHit{}
		hit.Canonical, _ = m["canonical"].(string)
		if hit.Canonical == "" {
			continue
		}
		if aliases, ok := m["aliases"].([]interface{}); ok {
			for _, a := range aliases {
				if s, ok := a.(string); ok {
					hit.Aliases = append(hit.Aliases, s)
				}
			}
		}
		if score, ok := m["_rankingScore"].(float64); ok {
			hit.Score = score
		}
		hits = append(hits, hit)
	}
	return hits
}

// DocumentsFromDictionary turns a parsed dictionary into index documents.
func DocumentsFromDictionary(dict *parser.SocietyDictionary, version string) []SocietyDocument {
	canonicals := dict.Canonicals()
	docs := make([]SocietyDocument, 0, len(canonicals))
	for _, name := range canonicals {
		docs = append(docs, SocietyDocument{
			ID:                documentID(name),
			Canonical:         name,
			NormalizedName:    normalizer.Fingerprint(name),
			Aliases:           dict.Aliases(name),
			DictionaryVersion: version,
		})
	}
	return docs
}

// documentID makes a Meilisearch-safe id: "Top City-1" -> "top-city-1".
func documentID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(normalizer.FoldASCII(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
