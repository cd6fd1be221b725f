package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/listing-parser/app/config"
	"github.com/listing-parser/app/controllers"
	"github.com/listing-parser/app/services"
	"github.com/listing-parser/internal/metrics"
	"github.com/listing-parser/internal/parser"
	"github.com/listing-parser/routes"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	if err := config.Load(viper.GetString("parser.config")); err != nil {
		logger.Fatal("Failed to load parser config", zap.Error(err))
	}
	logger.Info("Starting Listing Parser Service",
		zap.String("block_style", config.C.BlockStyle),
		zap.Bool("fuzzy_societies", config.C.FuzzySocieties))

	extractor, err := parser.NewExtractor(logger.Named("parser"))
	if err != nil {
		logger.Fatal("Failed to load rule data", zap.Error(err))
	}
	m := metrics.New()

	backends, err := initBackends(logger)
	if err != nil {
		logger.Fatal("Failed to initialise backends", zap.Error(err))
	}
	defer backends.Close(logger)

	var indexer services.SocietyIndexer
	var searcher controllers.SocietySearcher
	if backends.directory != nil {
		indexer, searcher = backends.directory, backends.directory
	}

	rules := services.NewDictionaryService(extractor, backends.cache, indexer, m, logger)
	if config.C.SocietyDictionaryPath != "" || config.C.AliasTablePath != "" {
		if _, err := rules.LoadFiles(context.Background(), config.C.SocietyDictionaryPath, config.C.AliasTablePath); err != nil {
			logger.Fatal("Failed to load rule files", zap.Error(err))
		}
	}
	if viper.GetBool("meilisearch.sync_on_start") && indexer != nil {
		if _, err := rules.SyncDirectory(context.Background()); err != nil {
			logger.Warn("Initial society sync failed", zap.Error(err))
		}
	}

	listings, err := services.NewListingService(extractor, rules, backends.cache, m, services.ListingServiceConfig{
		Defaults:     config.C.EngineOptions(),
		Workers:      config.C.Batch.Workers,
		JobRetention: config.C.Batch.JobRetention(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create listing service", zap.Error(err))
	}
	listings.StartJobCleanup(time.Minute)
	defer listings.Close()
	admin := services.NewAdminService(listings, rules, logger)

	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Controllers{
		Listings:  controllers.NewListingController(listings, config.C.Batch.MaxListings, logger),
		Societies: controllers.NewSocietyController(searcher, rules.Version, logger),
		Admin:     controllers.NewAdminController(rules, admin, logger),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + viper.GetString("app.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// loadConfig reads config/app.yaml when present; every key can be overridden
// from the environment (app.port -> APP_PORT).
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("parser.config", "config/parser.yaml")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.l1_size", 10000)
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "listing_parser")
	viper.SetDefault("meilisearch.url", "")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "societies")
	viper.SetDefault("meilisearch.timeout", "10s")
	viper.SetDefault("meilisearch.sync_on_start", false)

	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}
}

// initLogger picks the zap preset from APP_ENV.
func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialise logger: ", err)
	}
	return logger
}
