package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/listing-parser/app/models"
)

// MongoCacheCollection holds one ListingCache document per cache key.
const MongoCacheCollection = "listing_cache"

// MongoCacheService is a persistent cache in MongoDB fronted by an in-process LRU.
type MongoCacheService struct {
	collection *mongo.Collection
	l1         *lru.Cache[string, *models.ListingResult]
	logger     *zap.Logger
	ttl        time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	l1Hits atomic.Int64
}

// NewMongoCacheService creates the collection indexes and the L1 cache. A
// positive ttl is enforced by a TTL index on created_at.
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if l1Size <= 0 {
		l1Size = 10000
	}
	l1, err := lru.New[string, *models.ListingResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create l1 cache: %w", err)
	}

	collection := db.Collection(MongoCacheCollection)
	createdAt := options.Index()
	if ttl > 0 {
		createdAt.SetExpireAfterSeconds(int32(ttl.Seconds()))
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cache_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dictionary_version", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: createdAt},
		{Keys: bson.D{{Key: "access_count", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("Could not create listing_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{collection: collection, l1: l1, logger: logger, ttl: ttl}, nil
}

func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ListingResult, bool, error) {
	if result, ok := mcs.l1.Get(key); ok {
		mcs.l1Hits.Add(1)
		mcs.hits.Add(1)
		return result, true, nil
	}

	var entry models.ListingCache
	err := mcs.collection.FindOne(ctx, bson.M{"cache_key": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query listing cache: %w", err)
	}
	if entry.IsExpired(mcs.ttl) {
		mcs.misses.Add(1)
		return nil, false, nil
	}

	mcs.hits.Add(1)
	go mcs.updateAccessStats(key)
	mcs.l1.Add(key, &entry.Result)
	return &entry.Result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ListingResult) error {
	mcs.l1.Add(key, result)

	entry := models.NewListingCache(key, *result)
	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"cache_key": key}, entry, opts); err != nil {
		mcs.logger.Error("Failed to store listing cache entry", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("store listing cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1.Remove(key)
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"cache_key": key}); err != nil {
		return fmt.Errorf("delete listing cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1.Purge()
	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear listing cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) InvalidateByDictionaryVersion(ctx context.Context, version string) error {
	mcs.l1.Purge()
	res, err := mcs.collection.DeleteMany(ctx, bson.M{"dictionary_version": bson.M{"$ne": version}})
	if err != nil {
		return fmt.Errorf("invalidate listing cache: %w", err)
	}
	mcs.logger.Info("Invalidated listing cache",
		zap.String("keep_version", version),
		zap.Int64("deleted_count", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count listing cache: %w", err)
	}
	mcs.logger.Debug("Cache stats",
		zap.Int("l1_size", mcs.l1.Len()),
		zap.Int64("l1_hits", mcs.l1Hits.Load()),
		zap.Int64("mongo_count", count))
	return newCacheStats(mcs.hits.Load(), mcs.misses.Load(), count), nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1.Contains(key) {
		return true, nil
	}
	n, err := mcs.collection.CountDocuments(ctx, bson.M{"cache_key": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check listing cache: %w", err)
	}
	return n > 0, nil
}

func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl <= 0 {
		return 0, nil
	}
	var entry models.ListingCache
	err := mcs.collection.FindOne(ctx, bson.M{"cache_key": key},
		options.FindOne().SetProjection(bson.M{"created_at": 1})).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if remaining := mcs.ttl - time.Since(entry.CreatedAt); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// Close is a no-op; the caller owns the mongo client.
func (mcs *MongoCacheService) Close() error { return nil }

func (mcs *MongoCacheService) updateAccessStats(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"cache_key": key}, update); err != nil {
		mcs.logger.Warn("Failed to update access stats", zap.Error(err))
	}
}

// WarmUp loads the most accessed entries into the L1 cache.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up listing cache: %w", err)
	}
	defer cursor.Close(ctx)

	loaded := 0
	for cursor.Next(ctx) {
		var entry models.ListingCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Skipping undecodable cache entry", zap.Error(err))
			continue
		}
		result := entry.Result
		mcs.l1.Add(entry.CacheKey, &result)
		loaded++
	}
	mcs.logger.Info("Cache warm up finished", zap.Int("loaded", loaded), zap.Int("l1_size", mcs.l1.Len()))
	return cursor.Err()
}
