package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/listing-parser/app/models"
)

// HybridCacheService layers a fast cache (Redis) over a persistent one (MongoDB).
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService combines l1 and l2. Reads go l1 first; writes go to both.
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// both runs op against both layers concurrently and joins their errors.
func (hcs *HybridCacheService) both(op string, fn func(ICacheService) error) error {
	errCh := make(chan error, 2)
	for _, layer := range []ICacheService{hcs.l1, hcs.l2} {
		go func(c ICacheService) { errCh <- fn(c) }(layer)
	}
	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			hcs.logger.Warn("Cache layer failed", zap.String("op", op), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return nil
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ListingResult, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("L1 cache failed, falling back to L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// promote to L1 without holding up the caller
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.l1.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("Failed to promote entry to L1", zap.Error(err), zap.String("key", key))
		}
	}()
	return result, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.ListingResult) error {
	return hcs.both("set", func(c ICacheService) error { return c.Set(ctx, key, result) })
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both("delete", func(c ICacheService) error { return c.Delete(ctx, key) })
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both("clear", func(c ICacheService) error { return c.Clear(ctx) }); err != nil {
		return err
	}
	hcs.logger.Info("Cleared hybrid cache")
	return nil
}

func (hcs *HybridCacheService) InvalidateByDictionaryVersion(ctx context.Context, version string) error {
	return hcs.both("invalidate", func(c ICacheService) error {
		return c.InvalidateByDictionaryVersion(ctx, version)
	})
}

// GetStats sums both layers. L2 misses follow L1 misses, so hits are summed
// and only L2 misses count as misses. Items come from the persistent layer.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	s1, err1 := hcs.l1.GetStats(ctx)
	s2, err2 := hcs.l2.GetStats(ctx)
	switch {
	case err1 != nil && err2 != nil:
		return nil, fmt.Errorf("cache stats: %w", errors.Join(err1, err2))
	case err1 != nil:
		return s2, nil
	case err2 != nil:
		return s1, nil
	}
	return newCacheStats(s1.TotalHits+s2.TotalHits, s2.TotalMiss, s2.TotalItems), nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("L1 exists failed, falling back to L2", zap.Error(err))
	} else if ok {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	return hcs.both("close", func(c ICacheService) error { return c.Close() })
}
