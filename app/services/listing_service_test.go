package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-parser/app/models"
	"github.com/listing-parser/app/requests"
	"github.com/listing-parser/internal/parser"
)

const bahriaListing = "BTR Phase 7 Plot # 123 10 Marla Demand 85 Lac 0300-1234567 corner plot"

type testServices struct {
	extractor *parser.Extractor
	rules     *DictionaryService
	listings  *ListingService
	cache     *CacheService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	ex, err := parser.NewExtractor(zap.NewNop())
	require.NoError(t, err)
	cache := NewCacheService(time.Hour)
	rules := NewDictionaryService(ex, cache, nil, nil, zap.NewNop())
	listings, err := NewListingService(ex, rules, cache, nil, ListingServiceConfig{Workers: 4}, zap.NewNop())
	require.NoError(t, err)
	return &testServices{extractor: ex, rules: rules, listings: listings, cache: cache}
}

func TestListingService_Parse(t *testing.T) {
	s := newTestServices(t)

	res, hit, err := s.listings.Parse(context.Background(), bahriaListing, requests.ParseOptions{})
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, "Bahria Town Rawalpindi", res.Society)
	assert.Equal(t, "Phase 7", res.PhaseBlock)
	assert.Equal(t, "123", res.PlotNumber)
	require.NotNil(t, res.DemandAmount)
	assert.Equal(t, 8_500_000.0, *res.DemandAmount)
	assert.Equal(t, "+923001234567", res.PhoneE164)
	assert.Equal(t, bahriaListing, res.Raw)
	assert.Equal(t, s.rules.Version(), res.DictionaryVersion)
	assert.Equal(t, 0, s.cache.Size(), "cache is opt-in")
}

func TestListingService_ParseUsesCache(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	opts := requests.ParseOptions{UseCache: true}

	first, hit, err := s.listings.Parse(ctx, bahriaListing, opts)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := s.listings.Parse(ctx, "  "+bahriaListing+"  ", opts)
	require.NoError(t, err)
	assert.True(t, hit, "surrounding whitespace does not change the key")
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, int64(1), s.listings.Parsed())

	_, hit, err = s.listings.Parse(ctx, bahriaListing, requests.ParseOptions{UseCache: true, BlockStyle: "letter"})
	require.NoError(t, err)
	assert.False(t, hit, "options are part of the key")
}

func TestListingService_ParseSurvivesCacheFailure(t *testing.T) {
	ex, err := parser.NewExtractor(nil)
	require.NoError(t, err)
	rules := NewDictionaryService(ex, nil, nil, nil, nil)
	ls, err := NewListingService(ex, rules, failingCache{}, nil, ListingServiceConfig{}, nil)
	require.NoError(t, err)

	res, hit, err := ls.Parse(context.Background(), bahriaListing, requests.ParseOptions{UseCache: true})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "123", res.PlotNumber)
}

func TestListingService_InvalidOptions(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts requests.ParseOptions
	}{
		{"block style", requests.ParseOptions{BlockStyle: "roman"}},
		{"empty dictionary", requests.ParseOptions{SocietyDictionary: "# comments only"}},
		{"alias table not a mapping", requests.ParseOptions{AliasTable: "- a\n- b\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.listings.Parse(ctx, bahriaListing, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestListingService_CustomRules(t *testing.T) {
	s := newTestServices(t)
	fuzzy := true

	res, _, err := s.listings.Parse(context.Background(), "foo enclav plot 5 demand 90 lac", requests.ParseOptions{
		SocietyDictionary: "Foo Enclave : foo enclave",
		AliasTable:        "{}",
		FuzzySocieties:    &fuzzy,
	})
	require.NoError(t, err)
	assert.Equal(t, "Foo Enclave", res.Society)
	assert.True(t, strings.HasPrefix(res.DictionaryVersion, "custom-"))
}

func TestListingService_ParseBatchKeepsOrder(t *testing.T) {
	s := newTestServices(t)
	texts := []string{
		bahriaListing,
		"Multi Gardens B-17 Block F Plot 45 25x50 Price 1.2 Cr 03211234567",
		"",
		"DHA phase 2 plot 88 1 kanal demand 3.5 crore",
	}
	var calls atomic.Int64

	results, err := s.listings.ParseBatch(context.Background(), texts, requests.ParseOptions{}, 2, func(int) { calls.Add(1) })
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	assert.Equal(t, "Bahria Town Rawalpindi", results[0].Society)
	assert.Equal(t, "Multi Gardens B-17", results[1].Society)
	assert.Equal(t, parser.Record{}, results[2].Record)
	assert.Equal(t, "DHA Islamabad", results[3].Society)
	assert.Equal(t, int64(len(texts)), calls.Load())
}

func TestListingService_ParseBatchCancelled(t *testing.T) {
	s := newTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.listings.ParseBatch(ctx, []string{bahriaListing}, requests.ParseOptions{}, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListingService_Jobs(t *testing.T) {
	s := newTestServices(t)
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = bahriaListing
	}

	jobID, err := s.listings.SubmitJob(texts, requests.ParseOptions{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := s.listings.GetJobStatus(jobID)
		return err == nil && st.Status == models.JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	st, err := s.listings.GetJobStatus(jobID)
	require.NoError(t, err)
	assert.Equal(t, 250, st.Processed)
	assert.Equal(t, 1.0, st.Progress)

	results, err := s.listings.GetJobResults(jobID)
	require.NoError(t, err)
	assert.Len(t, results, 250)

	stream, err := s.listings.GetJobResultsStream(context.Background(), jobID)
	require.NoError(t, err)
	n := 0
	for r := range stream {
		assert.Equal(t, "123", r.PlotNumber)
		n++
	}
	assert.Equal(t, 250, n)
	assert.Equal(t, 1, s.listings.JobCount())
}

func TestListingService_JobErrors(t *testing.T) {
	s := newTestServices(t)

	_, err := s.listings.GetJobStatus("job_missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = s.listings.GetJobResults("job_missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = s.listings.SubmitJob(nil, requests.ParseOptions{})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = s.listings.SubmitJob([]string{"x"}, requests.ParseOptions{BlockStyle: "roman"})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestListingService_ResultsBeforeDone(t *testing.T) {
	s := newTestServices(t)
	s.listings.mu.Lock()
	s.listings.jobs["job_pending"] = &job{status: JobStatus{JobID: "job_pending", Status: models.JobStatusRunning}}
	s.listings.mu.Unlock()

	_, err := s.listings.GetJobResults("job_pending")
	assert.ErrorIs(t, err, ErrJobNotFinished)
}

func TestListingService_CleanupFinishedJobs(t *testing.T) {
	s := newTestServices(t)
	now := time.Now()
	old := now.Add(-2 * time.Hour)
	s.listings.mu.Lock()
	s.listings.jobs["job_done_old"] = &job{
		status:  JobStatus{Status: models.JobStatusDone, UpdatedAt: old},
		results: make([]*models.ListingResult, 20000),
	}
	s.listings.jobs["job_failed_old"] = &job{status: JobStatus{Status: models.JobStatusFailed, UpdatedAt: old}}
	s.listings.jobs["job_running_old"] = &job{status: JobStatus{Status: models.JobStatusRunning, UpdatedAt: old}}
	s.listings.jobs["job_done_recent"] = &job{status: JobStatus{Status: models.JobStatusDone, UpdatedAt: now.Add(-time.Minute)}}
	s.listings.mu.Unlock()

	assert.Equal(t, 2, s.listings.CleanupFinishedJobs(now))
	assert.Equal(t, 2, s.listings.JobCount())

	_, err := s.listings.GetJobStatus("job_done_old")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = s.listings.GetJobResults("job_failed_old")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = s.listings.GetJobStatus("job_running_old")
	assert.NoError(t, err)
	_, err = s.listings.GetJobStatus("job_done_recent")
	assert.NoError(t, err)

	assert.Zero(t, s.listings.CleanupFinishedJobs(now))
}

func TestListingService_JobCleanupWorker(t *testing.T) {
	ex, err := parser.NewExtractor(zap.NewNop())
	require.NoError(t, err)
	rules := NewDictionaryService(ex, nil, nil, nil, zap.NewNop())
	listings, err := NewListingService(ex, rules, nil, nil, ListingServiceConfig{JobRetention: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	jobID, err := listings.SubmitJob([]string{bahriaListing}, requests.ParseOptions{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st, err := listings.GetJobStatus(jobID)
		return err == nil && st.Status == models.JobStatusDone
	}, 5*time.Second, 5*time.Millisecond)

	listings.StartJobCleanup(5 * time.Millisecond)
	defer listings.Close()

	require.Eventually(t, func() bool {
		_, err := listings.GetJobStatus(jobID)
		return errors.Is(err, ErrJobNotFound)
	}, 5*time.Second, 5*time.Millisecond)
	assert.NoError(t, listings.Close(), "Close is idempotent")
}

func TestEstimateBatchProcessingTime(t *testing.T) {
	s := newTestServices(t)
	assert.Equal(t, 1, s.listings.EstimateBatchProcessingTime(10))
	assert.Equal(t, 3, s.listings.EstimateBatchProcessingTime(16000))
}

func TestWriteNDJSON(t *testing.T) {
	ch := make(chan *models.ListingResult, 2)
	ch <- result("Top City-1", "v1")
	ch <- result("", "v1")
	close(ch)

	var b strings.Builder
	require.NoError(t, WriteNDJSON(&b, ch))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"society":"Top City-1"`)
	assert.Contains(t, lines[1], `"size_value":null`)
}
