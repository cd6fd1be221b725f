// Package main is the listingctl command line: parse listings locally, run
// NDJSON batches and seed the society directory.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/listing-parser/app/config"
	"github.com/listing-parser/app/services"
	"github.com/listing-parser/internal/parser"
)

var rootCmd = &cobra.Command{
	Use:   "listingctl",
	Short: "Extract structured records from property listing messages",
	Long: `listingctl runs the listing extraction engine without the HTTP service.

parse reads one listing from the arguments or stdin, batch converts a file of
listings into NDJSON records, and seed pushes the society dictionary into the
Meilisearch directory.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "parser config file (default: config/parser.yaml when present)")
	rootCmd.PersistentFlags().String("dictionary", "", "society dictionary file replacing the built-in one")
	rootCmd.PersistentFlags().String("alias-table", "", "alias table YAML/JSON file replacing the built-in one")
	rootCmd.PersistentFlags().Bool("verbose", false, "log engine decisions to stderr")

	_ = viper.BindPFlag("dictionary", rootCmd.PersistentFlags().Lookup("dictionary"))
	_ = viper.BindPFlag("alias_table", rootCmd.PersistentFlags().Lookup("alias-table"))
}

func initConfig() {
	viper.SetEnvPrefix("LISTINGCTL")
	viper.AutomaticEnv()
}

// loadParserConfig reads --config, falling back to defaults when the default
// file is absent.
func loadParserConfig(cmd *cobra.Command) (config.ParserCfg, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat("config/parser.yaml"); err != nil {
			return config.Defaults(), nil
		}
		path = "config/parser.yaml"
	}
	return config.Read(path)
}

func newLogger(cmd *cobra.Command) *zap.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// localServices builds the engine stack in-process, without cache or directory.
func localServices(cmd *cobra.Command, indexer services.SocietyIndexer) (*services.ListingService, *services.DictionaryService, config.ParserCfg, error) {
	cfg, err := loadParserConfig(cmd)
	if err != nil {
		return nil, nil, cfg, err
	}
	logger := newLogger(cmd)
	extractor, err := parser.NewExtractor(logger)
	if err != nil {
		return nil, nil, cfg, err
	}
	rules := services.NewDictionaryService(extractor, nil, indexer, nil, logger)

	dictPath := firstNonEmpty(viper.GetString("dictionary"), cfg.SocietyDictionaryPath)
	aliasPath := firstNonEmpty(viper.GetString("alias_table"), cfg.AliasTablePath)
	if dictPath != "" || aliasPath != "" {
		if _, err := rules.LoadFiles(context.Background(), dictPath, aliasPath); err != nil {
			return nil, nil, cfg, err
		}
	}

	listings, err := services.NewListingService(extractor, rules, nil, nil, services.ListingServiceConfig{
		Defaults: cfg.EngineOptions(),
		Workers:  cfg.Batch.Workers,
	}, logger)
	return listings, rules, cfg, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// envString reads a LISTINGCTL_ prefixed setting through viper.
func envString(key string) string {
	return viper.GetString(key)
}
