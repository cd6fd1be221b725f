package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/listing-parser/app/config"
	"github.com/listing-parser/app/services"
	"github.com/listing-parser/internal/search"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// backends are the optional external services.
type backends struct {
	cache     services.ICacheService
	mongo     *mongo.Client
	directory *search.SocietyDirectory
}

func initBackends(logger *zap.Logger) (*backends, error) {
	b := &backends{}
	cache, err := b.initCache(logger)
	if err != nil {
		return nil, err
	}
	b.cache = cache

	if url := viper.GetString("meilisearch.url"); url != "" {
		dir, err := search.NewSocietyDirectory(search.SearchConfig{
			Host:          url,
			APIKey:        viper.GetString("meilisearch.master_key"),
			IndexName:     viper.GetString("meilisearch.index"),
			Timeout:       viper.GetDuration("meilisearch.timeout"),
			MaxCandidates: config.C.Search.MaxCandidates,
		}, logger.Named("directory"))
		if err != nil {
			// search is optional; parsing keeps working without it
			logger.Warn("Society directory disabled", zap.Error(err))
		} else {
			if err := dir.EnsureSettings(); err != nil {
				logger.Warn("Could not apply society index settings", zap.Error(err))
			}
			b.directory = dir
		}
	}
	return b, nil
}

// initCache builds the backend named by cache.backend: memory, redis, mongo or hybrid.
func (b *backends) initCache(logger *zap.Logger) (services.ICacheService, error) {
	ttl := viper.GetDuration("cache.ttl")
	backend := viper.GetString("cache.backend")
	logger.Info("Cache backend", zap.String("backend", backend), zap.Duration("ttl", ttl))

	switch backend {
	case "none":
		return nil, nil
	case "memory":
		mem := services.NewCacheService(ttl)
		mem.StartCleanupWorker(10 * time.Minute)
		return mem, nil
	case "redis":
		return services.NewRedisCacheService(viper.GetString("redis.url"), ttl, logger)
	case "mongo", "hybrid":
		mongoCache, err := b.mongoCache(ttl, logger)
		if err != nil {
			return nil, err
		}
		if backend == "mongo" {
			return mongoCache, nil
		}
		redisCache, err := services.NewRedisCacheService(viper.GetString("redis.url"), ttl, logger)
		if err != nil {
			return nil, err
		}
		return services.NewHybridCacheService(redisCache, mongoCache, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

func (b *backends) mongoCache(ttl time.Duration, logger *zap.Logger) (*services.MongoCacheService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(viper.GetString("mongo.url")))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	b.mongo = client

	db := client.Database(viper.GetString("mongo.database"))
	l1Size := viper.GetInt("cache.l1_size")
	mc, err := services.NewMongoCacheService(db, l1Size, ttl, logger)
	if err != nil {
		return nil, err
	}
	if err := mc.WarmUp(ctx, l1Size/2); err != nil {
		logger.Warn("Cache warm up failed", zap.Error(err))
	}
	logger.Info("Connected to MongoDB", zap.String("database", db.Name()))
	return mc, nil
}

func (b *backends) Close(logger *zap.Logger) {
	if b.cache != nil {
		if err := b.cache.Close(); err != nil {
			logger.Error("Closing cache", zap.Error(err))
		}
	}
	if b.mongo != nil {
		if err := b.mongo.Disconnect(context.Background()); err != nil {
			logger.Error("Disconnecting MongoDB", zap.Error(err))
		}
	}
}
