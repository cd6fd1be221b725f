package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/listing-parser/app/models"
	"github.com/listing-parser/app/requests"
	"github.com/listing-parser/helpers/utils"
	"github.com/listing-parser/internal/metrics"
	"github.com/listing-parser/internal/normalizer"
	"github.com/listing-parser/internal/parser"
)

var (
	// ErrJobNotFound is returned for unknown job IDs.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotFinished is returned when results are requested before a job is done.
	ErrJobNotFinished = errors.New("job has not finished")
	// ErrInvalidOptions wraps option validation failures.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrEmptyBatch is returned for a job without listings.
	ErrEmptyBatch = errors.New("batch has no listings")
)

const (
	aliasTableCacheSize = 32
	progressEvery       = 100
	defaultJobRetention = time.Hour
)

// JobStatus is the externally visible state of a batch job.
type JobStatus struct {
	JobID     string
	Status    string
	Progress  float64
	Processed int
	Total     int
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type job struct {
	status  JobStatus
	results []*models.ListingResult
}

// ListingService parses listings, optionally through a cache, and runs batch jobs.
type ListingService struct {
	extractor *parser.Extractor
	rules     *DictionaryService
	cache     ICacheService
	metrics   *metrics.Metrics
	logger    *zap.Logger
	defaults  parser.Options
	workers   int
	startTime time.Time

	aliasTables *lru.Cache[string, *parser.AliasTable]
	parsed      atomic.Int64

	mu           sync.RWMutex
	jobs         map[string]*job
	jobRetention time.Duration
	stop         chan struct{}
	once         sync.Once
}

// ListingServiceConfig carries the configured engine defaults and pool size.
type ListingServiceConfig struct {
	Defaults parser.Options
	Workers  int
	// JobRetention is how long finished jobs stay queryable; 0 means one hour.
	JobRetention time.Duration
}

// NewListingService wires the engine to the rule set and cache. cache may be nil.
func NewListingService(extractor *parser.Extractor, rules *DictionaryService, cache ICacheService, m *metrics.Metrics, cfg ListingServiceConfig, logger *zap.Logger) (*ListingService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.JobRetention <= 0 {
		cfg.JobRetention = defaultJobRetention
	}
	tables, err := lru.New[string, *parser.AliasTable](aliasTableCacheSize)
	if err != nil {
		return nil, fmt.Errorf("alias table cache: %w", err)
	}
	return &ListingService{
		extractor:   extractor,
		rules:       rules,
		cache:       cache,
		metrics:     m,
		logger:      logger,
		defaults:    cfg.Defaults,
		workers:     cfg.Workers,
		startTime:   time.Now(),
		aliasTables: tables,
		jobs:        make(map[string]*job),

		jobRetention: cfg.JobRetention,
		stop:         make(chan struct{}),
	}, nil
}

// ResolvedOptions are engine options plus the tag identifying their rule data.
type ResolvedOptions struct {
	engine  parser.Options
	version string
	ruleKey string
}

// ResolveOptions merges request options over the configured defaults and the
// active rule set.
func (ls *ListingService) ResolveOptions(req requests.ParseOptions) (ResolvedOptions, error) {
	active := ls.rules.Active()
	opts := ls.defaults
	opts.SocietyDictionary = active.DictionarySource
	opts.AliasTable = active.AliasTable
	version := active.Version
	ruleKey := active.Version

	if req.BlockStyle != "" {
		opts.BlockStyle = parser.BlockStyle(req.BlockStyle)
	}
	if req.FuzzySocieties != nil {
		opts.FuzzySocieties = *req.FuzzySocieties
	}
	if err := opts.Validate(); err != nil {
		return ResolvedOptions{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	custom := req.SocietyDictionary != "" || req.AliasTable != ""
	if req.SocietyDictionary != "" {
		if ls.extractor.Dictionary(req.SocietyDictionary).Len() == 0 {
			return ResolvedOptions{}, fmt.Errorf("%w: %v", ErrInvalidOptions, ErrEmptyDictionary)
		}
		opts.SocietyDictionary = req.SocietyDictionary
	}
	if req.AliasTable != "" {
		table, err := ls.aliasTable(req.AliasTable)
		if err != nil {
			return ResolvedOptions{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		opts.AliasTable = table
	}
	if custom {
		ruleKey = RulesVersion(req.SocietyDictionary, []byte(req.AliasTable))
		version = "custom-" + ruleKey[1:9]
	}
	opts = opts.WithDefaults()
	return ResolvedOptions{engine: opts, version: version, ruleKey: ruleKey}, nil
}

func (ls *ListingService) aliasTable(src string) (*parser.AliasTable, error) {
	sum := sha256.Sum256([]byte(src))
	key := hex.EncodeToString(sum[:])
	if t, ok := ls.aliasTables.Get(key); ok {
		return t, nil
	}
	t, err := parser.ParseAliasTable([]byte(src))
	if err != nil {
		return nil, err
	}
	ls.aliasTables.Add(key, t)
	return t, nil
}

// CacheKey identifies one parse: the cleaned text the engine will see plus
// everything else that changes its output. Case is kept since demand text
// echoes the input.
func CacheKey(text string, opts ResolvedOptions) string {
	h := sha256.New()
	h.Write([]byte(normalizer.Clean(text, opts.engine.MaxInputBytes)))
	h.Write([]byte{0})
	h.Write([]byte(opts.ruleKey))
	h.Write([]byte{0})
	h.Write([]byte(opts.engine.BlockStyle))
	h.Write([]byte(strconv.FormatBool(opts.engine.FuzzySocieties)))
	h.Write([]byte(strconv.Itoa(opts.engine.MaxInputBytes)))
	return hex.EncodeToString(h.Sum(nil))
}

// Parse extracts one listing. The bool reports a cache hit. Cache failures are
// logged and never fail the parse.
func (ls *ListingService) Parse(ctx context.Context, text string, req requests.ParseOptions) (*models.ListingResult, bool, error) {
	opts, err := ls.ResolveOptions(req)
	if err != nil {
		return nil, false, err
	}
	return ls.parse(ctx, text, opts, req.UseCache)
}

func (ls *ListingService) parse(ctx context.Context, text string, opts ResolvedOptions, useCache bool) (*models.ListingResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	useCache = useCache && ls.cache != nil

	var key string
	if useCache {
		key = CacheKey(text, opts)
		cached, found, err := ls.cache.Get(ctx, key)
		if err != nil {
			ls.metrics.CacheError("get")
			ls.logger.Warn("Cache get failed", zap.Error(err))
		} else if found {
			ls.metrics.ObserveParse("cache", 0, cached.Fields())
			return cached, true, nil
		}
	}

	start := time.Now()
	rec, err := ls.extractor.ExtractContext(ctx, text, opts.engine)
	if err != nil {
		return nil, false, err
	}
	ls.metrics.ObserveParse("engine", time.Since(start), rec.Fields())
	ls.parsed.Add(1)

	result := &models.ListingResult{
		Record:            rec,
		Raw:               text,
		RawFingerprint:    normalizer.Fingerprint(text),
		DictionaryVersion: opts.version,
		ParsedAt:          time.Now().UTC(),
	}

	if useCache {
		if err := ls.cache.Set(ctx, key, result); err != nil {
			ls.metrics.CacheError("set")
			ls.logger.Warn("Cache set failed", zap.Error(err))
		}
	}
	return result, false, nil
}

// ParseBatch parses texts on a bounded worker pool, keeping input order.
// progress, when set, receives the running count of finished listings.
func (ls *ListingService) ParseBatch(ctx context.Context, texts []string, req requests.ParseOptions, workers int, progress func(done int)) ([]*models.ListingResult, error) {
	opts, err := ls.ResolveOptions(req)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = ls.workers
	}

	results := make([]*models.ListingResult, len(texts))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			result, _, err := ls.parse(gctx, text, opts, req.UseCache)
			if err != nil {
				return err
			}
			results[i] = result
			if n := done.Add(1); progress != nil {
				progress(int(n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EstimateBatchProcessingTime is a rough duration in seconds for count listings.
func (ls *ListingService) EstimateBatchProcessingTime(count int) int {
	// about 0.5ms a listing per worker
	return count/(2000*ls.workers) + 1
}

// SubmitJob registers a batch job and processes it in the background.
func (ls *ListingService) SubmitJob(texts []string, req requests.ParseOptions) (string, error) {
	if len(texts) == 0 {
		return "", ErrEmptyBatch
	}
	if _, err := ls.ResolveOptions(req); err != nil {
		return "", err
	}
	jobID := utils.GenerateJobID()
	now := time.Now()
	ls.mu.Lock()
	ls.jobs[jobID] = &job{status: JobStatus{
		JobID:     jobID,
		Status:    models.JobStatusPending,
		Total:     len(texts),
		Message:   "Queued",
		CreatedAt: now,
		UpdatedAt: now,
	}}
	ls.mu.Unlock()

	go ls.ProcessBatchJob(context.Background(), jobID, texts, req)
	return jobID, nil
}

// ProcessBatchJob runs a registered job to completion.
func (ls *ListingService) ProcessBatchJob(ctx context.Context, jobID string, texts []string, req requests.ParseOptions) {
	if m := ls.metrics; m != nil {
		m.JobsRunning.Inc()
		defer m.JobsRunning.Dec()
	}
	ls.updateJob(jobID, func(j *job) {
		j.status.Status = models.JobStatusRunning
		j.status.Message = "Processing"
	})

	start := time.Now()
	results, err := ls.ParseBatch(ctx, texts, req, 0, func(done int) {
		if done%progressEvery != 0 && done != len(texts) {
			return
		}
		ls.updateJob(jobID, func(j *job) {
			if done > j.status.Processed {
				j.status.Processed = done
				j.status.Progress = float64(done) / float64(len(texts))
			}
		})
	})

	final := models.JobStatusDone
	ls.updateJob(jobID, func(j *job) {
		if err != nil {
			final = models.JobStatusFailed
			j.status.Message = err.Error()
		} else {
			j.results = results
			j.status.Processed = len(results)
			j.status.Progress = 1
			j.status.Message = "Completed"
		}
		j.status.Status = final
	})
	if m := ls.metrics; m != nil {
		m.JobsTotal.WithLabelValues(final).Inc()
	}
	ls.logger.Info("Batch job finished",
		zap.String("job_id", jobID),
		zap.String("status", final),
		zap.Int("total", len(texts)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
}

func (ls *ListingService) updateJob(jobID string, fn func(*job)) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if j, ok := ls.jobs[jobID]; ok {
		fn(j)
		j.status.UpdatedAt = time.Now()
	}
}

// GetJobStatus returns a snapshot of the job state.
func (ls *ListingService) GetJobStatus(jobID string) (JobStatus, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	j, ok := ls.jobs[jobID]
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return j.status, nil
}

// GetJobResults returns the results of a finished job in input order.
func (ls *ListingService) GetJobResults(jobID string) ([]*models.ListingResult, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	j, ok := ls.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if j.status.Status != models.JobStatusDone {
		return nil, ErrJobNotFinished
	}
	return j.results, nil
}

// GetJobResultsStream yields the results of a finished job one at a time.
// The channel is closed after the last result or when ctx is done.
func (ls *ListingService) GetJobResultsStream(ctx context.Context, jobID string) (<-chan *models.ListingResult, error) {
	results, err := ls.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}
	out := make(chan *models.ListingResult, 100)
	go func() {
		defer close(out)
		for _, r := range results {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// CleanupFinishedJobs drops done and failed jobs last updated more than the
// retention period before now, and returns how many were removed. Pending and
// running jobs are never dropped.
func (ls *ListingService) CleanupFinishedJobs(now time.Time) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	removed := 0
	for id, j := range ls.jobs {
		finished := j.status.Status == models.JobStatusDone || j.status.Status == models.JobStatusFailed
		if finished && now.Sub(j.status.UpdatedAt) > ls.jobRetention {
			delete(ls.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		ls.logger.Debug("Expired batch jobs removed", zap.Int("removed", removed), zap.Int("remaining", len(ls.jobs)))
	}
	return removed
}

// StartJobCleanup runs CleanupFinishedJobs every interval until Close.
func (ls *ListingService) StartJobCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				ls.CleanupFinishedJobs(now)
			case <-ls.stop:
				return
			}
		}
	}()
}

// Close stops the job cleanup worker.
func (ls *ListingService) Close() error {
	ls.once.Do(func() { close(ls.stop) })
	return nil
}

// GetStartTime returns when the service was created.
func (ls *ListingService) GetStartTime() time.Time {
	return ls.startTime
}

// JobCount is the number of jobs known to the service.
func (ls *ListingService) JobCount() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.jobs)
}

// Parsed is the number of listings run through the engine.
func (ls *ListingService) Parsed() int64 {
	return ls.parsed.Load()
}

// CacheStats returns cache statistics, or nil without a cache.
func (ls *ListingService) CacheStats(ctx context.Context) (*CacheStats, error) {
	if ls.cache == nil {
		return nil, nil
	}
	return ls.cache.GetStats(ctx)
}

// RulesVersion returns the active rule set version.
func (ls *ListingService) RulesVersion() string {
	return ls.rules.Version()
}
