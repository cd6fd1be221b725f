package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/listing-parser/app/requests"
	"github.com/listing-parser/internal/metrics"
	"github.com/listing-parser/internal/parser"
	"github.com/listing-parser/internal/search"
)

var (
	// ErrEmptyDictionary is returned when dictionary text yields no society.
	ErrEmptyDictionary = errors.New("society dictionary has no entries")
	// ErrDirectoryUnavailable is returned when no society directory is configured.
	ErrDirectoryUnavailable = errors.New("society directory is not configured")
)

// SocietyIndexer receives society documents. Implemented by search.SocietyDirectory.
type SocietyIndexer interface {
	Sync(docs []search.SocietyDocument) (int, error)
}

// RuleSet is the dictionary and alias table parses run with by default.
type RuleSet struct {
	Version          string
	DictionarySource string
	Dictionary       *parser.SocietyDictionary
	AliasSource      []byte
	AliasTable       *parser.AliasTable
}

// DictionaryService owns the active rule set. Replacing it changes the version,
// which drops cached parses made with older rules.
type DictionaryService struct {
	extractor *parser.Extractor
	cache     ICacheService
	directory SocietyIndexer
	metrics   *metrics.Metrics
	logger    *zap.Logger

	// updateMu serializes Update so concurrent partial updates cannot drop each other.
	updateMu sync.Mutex
	mu       sync.RWMutex
	active   RuleSet
}

// NewDictionaryService starts from the embedded rules. cache and directory may be nil.
func NewDictionaryService(extractor *parser.Extractor, cache ICacheService, directory SocietyIndexer, m *metrics.Metrics, logger *zap.Logger) *DictionaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	dictSource := parser.DefaultSocietyDictionaryText()
	aliasSource := parser.DefaultAliasTableSource()
	return &DictionaryService{
		extractor: extractor,
		cache:     cache,
		directory: directory,
		metrics:   m,
		logger:    logger,
		active: RuleSet{
			Version:          RulesVersion(dictSource, aliasSource),
			DictionarySource: dictSource,
			Dictionary:       extractor.DefaultDictionary(),
			AliasSource:      aliasSource,
			AliasTable:       extractor.DefaultAliasTable(),
		},
	}
}

// RulesVersion is a short content hash of a dictionary and alias table.
func RulesVersion(dictionary string, aliasTable []byte) string {
	h := sha256.New()
	h.Write([]byte(dictionary))
	h.Write([]byte{0})
	h.Write(aliasTable)
	return "v" + hex.EncodeToString(h.Sum(nil))[:12]
}

// Active returns the current rule set.
func (ds *DictionaryService) Active() RuleSet {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.active
}

// Version returns the current rule set version.
func (ds *DictionaryService) Version() string {
	return ds.Active().Version
}

// Update replaces the dictionary and/or alias table. Omitted parts are kept.
// On a version change the cache keeps only entries of the new version, and
// the directory is resynced when asked.
func (ds *DictionaryService) Update(ctx context.Context, req requests.UpdateDictionaryRequest) (RuleSet, error) {
	ds.updateMu.Lock()
	defer ds.updateMu.Unlock()

	next := ds.Active()

	if strings.TrimSpace(req.SocietyDictionary) != "" {
		dict := ds.extractor.Dictionary(req.SocietyDictionary)
		if dict.Len() == 0 {
			return RuleSet{}, ErrEmptyDictionary
		}
		next.DictionarySource = req.SocietyDictionary
		next.Dictionary = dict
	}
	if strings.TrimSpace(req.AliasTable) != "" {
		table, err := parser.ParseAliasTable([]byte(req.AliasTable))
		if err != nil {
			return RuleSet{}, err
		}
		next.AliasSource = []byte(req.AliasTable)
		next.AliasTable = table
	}
	next.Version = RulesVersion(next.DictionarySource, next.AliasSource)

	ds.mu.Lock()
	previous := ds.active.Version
	ds.active = next
	ds.mu.Unlock()

	if next.Version != previous {
		if m := ds.metrics; m != nil {
			m.DictionaryUpdates.Inc()
		}
		ds.logger.Info("Rule set replaced",
			zap.String("previous_version", previous),
			zap.String("version", next.Version),
			zap.Int("societies", next.Dictionary.Len()),
			zap.Int("alias_societies", next.AliasTable.Len()))
		if err := ds.InvalidateCache(ctx, next.Version); err != nil {
			ds.logger.Warn("Cache invalidation after rule update failed", zap.Error(err))
		}
	}
	if req.SyncDirectory {
		if _, err := ds.SyncDirectory(ctx); err != nil {
			return next, err
		}
	}
	return next, nil
}

// LoadFiles applies rule files named in the configuration. Empty paths are skipped.
func (ds *DictionaryService) LoadFiles(ctx context.Context, dictionaryPath, aliasPath string) (RuleSet, error) {
	var req requests.UpdateDictionaryRequest
	if dictionaryPath != "" {
		b, err := os.ReadFile(dictionaryPath)
		if err != nil {
			return RuleSet{}, fmt.Errorf("read society dictionary: %w", err)
		}
		req.SocietyDictionary = string(b)
	}
	if aliasPath != "" {
		b, err := os.ReadFile(aliasPath)
		if err != nil {
			return RuleSet{}, fmt.Errorf("read alias table: %w", err)
		}
		req.AliasTable = string(b)
	}
	return ds.Update(ctx, req)
}

// SyncDirectory pushes the active dictionary to the society directory.
func (ds *DictionaryService) SyncDirectory(ctx context.Context) (int, error) {
	if ds.directory == nil {
		return 0, ErrDirectoryUnavailable
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	active := ds.Active()
	n, err := ds.directory.Sync(search.DocumentsFromDictionary(active.Dictionary, active.Version))
	if err != nil {
		return n, fmt.Errorf("sync society directory: %w", err)
	}
	ds.logger.Info("Society directory synced", zap.String("version", active.Version), zap.Int("societies", n))
	return n, nil
}

// InvalidateCache drops cached parses not made with keepVersion; an empty
// keepVersion clears the cache.
func (ds *DictionaryService) InvalidateCache(ctx context.Context, keepVersion string) error {
	if ds.cache == nil {
		return nil
	}
	if keepVersion == "" {
		return ds.cache.Clear(ctx)
	}
	return ds.cache.InvalidateByDictionaryVersion(ctx, keepVersion)
}
