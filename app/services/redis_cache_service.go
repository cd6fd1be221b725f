package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/listing-parser/app/models"
)

const (
	redisKeyPrefix = "listing_parser:"
	redisScanCount = 500
)

// RedisCacheService stores parsed listings as JSON strings in Redis.
type RedisCacheService struct {
	client redis.UniversalClient
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects to redisURL and pings it.
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisCacheServiceWithClient(client, ttl, logger), nil
}

// NewRedisCacheServiceWithClient wraps an existing client.
func NewRedisCacheServiceWithClient(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCacheService{client: client, logger: logger, prefix: redisKeyPrefix, ttl: ttl}
}

func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.ListingResult, bool, error) {
	val, err := rcs.client.Get(ctx, rcs.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Redis get failed", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}

	var result models.ListingResult
	if err := json.Unmarshal(val, &result); err != nil {
		rcs.logger.Error("Corrupt cache entry", zap.Error(err), zap.String("key", key))
		rcs.misses.Add(1)
		return nil, false, err
	}
	rcs.hits.Add(1)
	return &result, true, nil
}

func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.ListingResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := rcs.client.Set(ctx, rcs.prefix+key, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Redis set failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	return rcs.client.Del(ctx, rcs.prefix+key).Err()
}

// scanKeys walks every key under the prefix with SCAN, never KEYS.
func (rcs *RedisCacheService) scanKeys(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := rcs.client.Scan(ctx, cursor, rcs.prefix+"*", redisScanCount).Result()
		if err != nil {
			return fmt.Errorf("scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	deleted := 0
	err := rcs.scanKeys(ctx, func(keys []string) error {
		deleted += len(keys)
		return rcs.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		return err
	}
	rcs.logger.Info("Cleared redis cache", zap.Int("keys_deleted", deleted))
	return nil
}

func (rcs *RedisCacheService) InvalidateByDictionaryVersion(ctx context.Context, version string) error {
	deleted := 0
	err := rcs.scanKeys(ctx, func(keys []string) error {
		values, err := rcs.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		var stale []string
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			var entry struct {
				DictionaryVersion string `json:"dictionary_version"`
			}
			if json.Unmarshal([]byte(s), &entry) != nil || entry.DictionaryVersion != version {
				stale = append(stale, keys[i])
			}
		}
		if len(stale) == 0 {
			return nil
		}
		deleted += len(stale)
		return rcs.client.Del(ctx, stale...).Err()
	})
	if err != nil {
		return err
	}
	rcs.logger.Info("Invalidated redis cache", zap.String("keep_version", version), zap.Int("keys_deleted", deleted))
	return nil
}

func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	var items int64
	if err := rcs.scanKeys(ctx, func(keys []string) error {
		items += int64(len(keys))
		return nil
	}); err != nil {
		rcs.logger.Warn("Could not count redis keys", zap.Error(err))
	}
	return newCacheStats(rcs.hits.Load(), rcs.misses.Load(), items), nil
}

func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rcs.client.TTL(ctx, rcs.prefix+key).Result()
	if err != nil {
		return 0, err
	}
	// -2 missing, -1 no expiry
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
