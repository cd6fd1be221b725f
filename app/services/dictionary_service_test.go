package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-parser/app/requests"
	"github.com/listing-parser/internal/parser"
	"github.com/listing-parser/internal/search"
)

type recordingIndexer struct {
	docs []search.SocietyDocument
	err  error
}

func (r *recordingIndexer) Sync(docs []search.SocietyDocument) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.docs = docs
	return len(docs), nil
}

func TestDictionaryService_Defaults(t *testing.T) {
	s := newTestServices(t)
	active := s.rules.Active()

	assert.Equal(t, RulesVersion(parser.DefaultSocietyDictionaryText(), parser.DefaultAliasTableSource()), active.Version)
	assert.Same(t, s.extractor.DefaultDictionary(), active.Dictionary)
	assert.Greater(t, active.AliasTable.Len(), 0)
}

func TestDictionaryService_Update(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	before := s.rules.Version()

	_, _, err := s.listings.Parse(ctx, bahriaListing, requests.ParseOptions{UseCache: true})
	require.NoError(t, err)
	require.Equal(t, 1, s.cache.Size())

	rules, err := s.rules.Update(ctx, requests.UpdateDictionaryRequest{
		SocietyDictionary: "Lake City : lake city, LC",
	})
	require.NoError(t, err)
	assert.NotEqual(t, before, rules.Version)
	assert.Equal(t, []string{"Lake City"}, rules.Dictionary.Canonicals())
	assert.Equal(t, 0, s.cache.Size(), "entries of the old version are dropped")

	res, hit, err := s.listings.Parse(ctx, "LC plot 9 demand 90 lac", requests.ParseOptions{UseCache: true})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Lake City", res.Society)
	assert.Equal(t, rules.Version, res.DictionaryVersion)

	// the alias table was kept
	res, _, err = s.listings.Parse(ctx, "bt8 plot 4", requests.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bahria Town Rawalpindi", res.Society)
	assert.Equal(t, "Phase 8", res.PhaseBlock)
}

func TestDictionaryService_UpdateIsIdempotent(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	req := requests.UpdateDictionaryRequest{AliasTable: "Lake City:\n  Overseas: [\"lc overseas\"]\n"}

	first, err := s.rules.Update(ctx, req)
	require.NoError(t, err)
	second, err := s.rules.Update(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
}

func TestDictionaryService_UpdateRejectsBadInput(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	before := s.rules.Version()

	_, err := s.rules.Update(ctx, requests.UpdateDictionaryRequest{SocietyDictionary: "no separators here"})
	assert.ErrorIs(t, err, ErrEmptyDictionary)

	_, err = s.rules.Update(ctx, requests.UpdateDictionaryRequest{AliasTable: "[1, 2]"})
	assert.Error(t, err)

	assert.Equal(t, before, s.rules.Version(), "failed updates leave the rules untouched")
}

func TestDictionaryService_SyncDirectory(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.rules.SyncDirectory(ctx)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)

	idx := &recordingIndexer{}
	rules := NewDictionaryService(s.extractor, nil, idx, nil, nil)
	n, err := rules.SyncDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.Active().Dictionary.Len(), n)
	for _, d := range idx.docs {
		assert.Equal(t, rules.Version(), d.DictionaryVersion)
	}

	updated, err := rules.Update(ctx, requests.UpdateDictionaryRequest{
		SocietyDictionary: "Lake City : lake city",
		SyncDirectory:     true,
	})
	require.NoError(t, err)
	require.Len(t, idx.docs, 1)
	assert.Equal(t, "lake-city", idx.docs[0].ID)
	assert.Equal(t, updated.Version, idx.docs[0].DictionaryVersion)

	idx.err = errors.New("meili down")
	_, err = rules.SyncDirectory(ctx)
	assert.ErrorContains(t, err, "meili down")
}

func TestDictionaryService_LoadFiles(t *testing.T) {
	s := newTestServices(t)
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "societies.txt")
	require.NoError(t, os.WriteFile(dictPath, []byte("Lake City : lake city\n"), 0o600))

	rules, err := s.rules.LoadFiles(context.Background(), dictPath, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lake City"}, rules.Dictionary.Canonicals())

	_, err = s.rules.LoadFiles(context.Background(), "", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestAdminService_GetSystemStats(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	_, _, err := s.listings.Parse(ctx, bahriaListing, requests.ParseOptions{UseCache: true})
	require.NoError(t, err)

	stats := NewAdminService(s.listings, s.rules, nil).GetSystemStats(ctx)

	assert.Equal(t, s.rules.Version(), stats.DictionaryVersion)
	assert.Equal(t, s.extractor.DefaultDictionary().Len(), stats.Societies)
	assert.Equal(t, int64(1), stats.Parsed)
	require.NotNil(t, stats.Cache)
	assert.Equal(t, int64(1), stats.Cache.TotalItems)
	assert.Contains(t, stats.MemoryUsage, "alloc_mb")
}

func TestDictionaryService_ConcurrentPartialUpdates(t *testing.T) {
	const dict = "Lake City : lake city, LC"
	const aliases = "Lake City:\n  Overseas: [\"lc overseas\"]\n"

	for i := 0; i < 50; i++ {
		s := newTestServices(t)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.rules.Update(context.Background(), requests.UpdateDictionaryRequest{SocietyDictionary: dict})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.rules.Update(context.Background(), requests.UpdateDictionaryRequest{AliasTable: aliases})
			assert.NoError(t, err)
		}()
		wg.Wait()

		active := s.rules.Active()
		require.Equal(t, dict, active.DictionarySource, "round %d", i)
		require.Equal(t, aliases, string(active.AliasSource), "round %d", i)
		require.Equal(t, RulesVersion(dict, []byte(aliases)), active.Version)
	}
}
