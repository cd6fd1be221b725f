package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/listing-parser/app/models"
)

type memoryEntry struct {
	result   *models.ListingResult
	storedAt time.Time
}

// CacheService is an in-memory ICacheService with a fixed TTL.
type CacheService struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
	stop    chan struct{}
	once    sync.Once
}

// NewCacheService creates a memory cache. ttl <= 0 keeps entries until cleared.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.ListingResult, bool, error) {
	cs.mu.RLock()
	entry, ok := cs.entries[key]
	cs.mu.RUnlock()

	if !ok || cs.expired(entry) {
		if ok {
			cs.Delete(ctx, key)
		}
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return entry.result, true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.ListingResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.entries[key] = memoryEntry{result: result, storedAt: time.Now()}
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.entries, key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.entries = make(map[string]memoryEntry)
	return nil
}

func (cs *CacheService) InvalidateByDictionaryVersion(ctx context.Context, version string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for key, entry := range cs.entries {
		if entry.result == nil || entry.result.DictionaryVersion != version {
			delete(cs.entries, key)
		}
	}
	return nil
}

// Size returns the number of stored entries, expired ones included.
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.entries)
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	return newCacheStats(cs.hits.Load(), cs.misses.Load(), int64(cs.Size())), nil
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	entry, ok := cs.entries[key]
	return ok && !cs.expired(entry), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	entry, ok := cs.entries[key]
	if !ok || cs.ttl <= 0 {
		return 0, nil
	}
	remaining := cs.ttl - time.Since(entry.storedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CleanupExpired drops entries past their TTL.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for key, entry := range cs.entries {
		if cs.expired(entry) {
			delete(cs.entries, key)
		}
	}
}

// StartCleanupWorker runs CleanupExpired every interval until Close.
func (cs *CacheService) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cs.CleanupExpired()
			case <-cs.stop:
				return
			}
		}
	}()
}

func (cs *CacheService) Close() error {
	cs.once.Do(func() { close(cs.stop) })
	return nil
}

func (cs *CacheService) expired(entry memoryEntry) bool {
	return cs.ttl > 0 && time.Since(entry.storedAt) > cs.ttl
}
