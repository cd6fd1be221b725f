package search

import (
	"errors"
	"testing"

	ms "github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-parser/internal/parser"
)

// fakeIndex implements the few IndexManager methods the directory calls.
type fakeIndex struct {
	ms.IndexManager

	added      [][]SocietyDocument
	settings   *ms.Settings
	lastQuery  string
	lastReq    *ms.SearchRequest
	response   *ms.SearchResponse
	searchErr  error
	addErrFrom int
}

func (f *fakeIndex) AddDocuments(docs interface{}, primaryKey ...string) (*ms.TaskInfo, error) {
	batch := docs.([]SocietyDocument)
	if f.addErrFrom > 0 && len(f.added) >= f.addErrFrom {
		return nil, errors.New("index unavailable")
	}
	f.added = append(f.added, batch)
	return &ms.TaskInfo{TaskUID: int64(len(f.added))}, nil
}

func (f *fakeIndex) UpdateSettings(s *ms.Settings) (*ms.TaskInfo, error) {
	f.settings = s
	return &ms.TaskInfo{TaskUID: 1}, nil
}

func (f *fakeIndex) Search(query string, req *ms.SearchRequest) (*ms.SearchResponse, error) {
	f.lastQuery, f.lastReq = query, req
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.response, nil
}

func TestDocumentsFromDictionary(t *testing.T) {
	dict := parser.ParseSocietyDictionary("Top City-1 : top city, topcity\nDHA Islamabad : DHA")

	docs := DocumentsFromDictionary(dict, "v3")

	require.Len(t, docs, 2)
	assert.Equal(t, "top-city-1", docs[0].ID)
	assert.Equal(t, "Top City-1", docs[0].Canonical)
	assert.Equal(t, []string{"Top City-1", "top city", "topcity"}, docs[0].Aliases)
	assert.Equal(t, "v3", docs[0].DictionaryVersion)
	assert.Equal(t, "dha-islamabad", docs[1].ID)
}

func TestSocietyDirectory_SyncBatches(t *testing.T) {
	idx := &fakeIndex{}
	dir := newSocietyDirectory(idx, 10, zap.NewNop())

	docs := make([]SocietyDocument, seedBatchSize+5)
	n, err := dir.Sync(docs)

	require.NoError(t, err)
	assert.Equal(t, len(docs), n)
	require.Len(t, idx.added, 2)
	assert.Len(t, idx.added[1], 5)

	_, err = dir.Sync(nil)
	assert.Error(t, err)
}

func TestSocietyDirectory_SyncPartialFailure(t *testing.T) {
	idx := &fakeIndex{addErrFrom: 1}
	dir := newSocietyDirectory(idx, 10, zap.NewNop())

	n, err := dir.Sync(make([]SocietyDocument, seedBatchSize*2))
	assert.Error(t, err)
	assert.Equal(t, seedBatchSize, n)
}

func TestSocietyDirectory_Search(t *testing.T) {
	idx := &fakeIndex{response: &ms.SearchResponse{Hits: []interface{}{
		map[string]interface{}{"canonical": "Bahria Town Rawalpindi", "aliases": []interface{}{"BTR", "bahria"}, "_rankingScore": 0.91},
		map[string]interface{}{"aliases": []interface{}{"orphan"}},
		"not a document",
	}}}
	dir := newSocietyDirectory(idx, 10, zap.NewNop())

	hits, err := dir.Search("  Bahria   TOWN ", "v2", 50)
	require.NoError(t, err)

	assert.Equal(t, "bahria town", idx.lastQuery)
	assert.Equal(t, int64(10), idx.lastReq.Limit)
	assert.Equal(t, `dictionary_version = "v2"`, idx.lastReq.Filter)
	require.Len(t, hits, 1)
	assert.Equal(t, SocietyHit{Canonical: "Bahria Town Rawalpindi", Aliases: []string{"BTR", "bahria"}, Score: 0.91}, hits[0])
}

func TestSocietyDirectory_SearchErrors(t *testing.T) {
	dir := newSocietyDirectory(&fakeIndex{searchErr: errors.New("boom")}, 0, zap.NewNop())

	_, err := dir.Search(" ", "", 5)
	assert.Error(t, err)

	_, err = dir.Search("dha", "", 5)
	assert.ErrorContains(t, err, "boom")
}

func TestSocietyDirectory_EnsureSettings(t *testing.T) {
	idx := &fakeIndex{}
	require.NoError(t, newSocietyDirectory(idx, 0, zap.NewNop()).EnsureSettings())
	assert.Contains(t, idx.settings.FilterableAttributes, "dictionary_version")
}

func TestFilterVersion(t *testing.T) {
	assert.Empty(t, FilterVersion(""))
	assert.Equal(t, `dictionary_version = "7"`, FilterVersion("7"))
}
