package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/listing-parser/internal/parser"
)

// BatchCfg bounds batch jobs.
type BatchCfg struct {
	Workers     int `yaml:"workers" json:"workers"`
	MaxListings int `yaml:"max_listings" json:"max_listings"`
	// RetentionMinutes is how long a finished job and its results are kept.
	RetentionMinutes int `yaml:"retention_minutes" json:"retention_minutes"`
}

// JobRetention returns RetentionMinutes as a duration.
func (b BatchCfg) JobRetention() time.Duration {
	return time.Duration(b.RetentionMinutes) * time.Minute
}

// SearchCfg tunes the society directory.
type SearchCfg struct {
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"`
}

// ParserCfg is the engine and batch configuration read from config/parser.yaml.
type ParserCfg struct {
	BlockStyle            string    `yaml:"block_style" json:"block_style"`
	FuzzySocieties        bool      `yaml:"fuzzy_societies" json:"fuzzy_societies"`
	MaxInputBytes         int       `yaml:"max_input_bytes" json:"max_input_bytes"`
	SocietyDictionaryPath string    `yaml:"society_dictionary_path" json:"society_dictionary_path"`
	AliasTablePath        string    `yaml:"alias_table_path" json:"alias_table_path"`
	RequestTimeoutMs      int       `yaml:"request_timeout_ms" json:"request_timeout_ms"`
	Batch                 BatchCfg  `yaml:"batch" json:"batch"`
	Search                SearchCfg `yaml:"search" json:"search"`
}

// C is the loaded configuration.
var C = Defaults()

// Defaults returns the configuration used when no file is present.
func Defaults() ParserCfg {
	return ParserCfg{
		BlockStyle:       string(parser.BlockStyleTitle),
		RequestTimeoutMs: 1500,
		Batch:            BatchCfg{Workers: 8, MaxListings: 20000, RetentionMinutes: 60},
		Search:           SearchCfg{MaxCandidates: 20},
	}
}

// Load reads path over the defaults, applies env overrides and validates.
func Load(path string) error {
	cfg, err := Read(path)
	if err != nil {
		return err
	}
	C = cfg
	return nil
}

// Read is Load without touching C.
func Read(path string) (ParserCfg, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := cfg.EngineOptions().Validate(); err != nil {
		return cfg, fmt.Errorf("invalid parser config: %w", err)
	}
	return cfg, nil
}

// ENV overrides
func applyEnv(cfg *ParserCfg) {
	switch os.Getenv("FUZZY_SOCIETIES") {
	case "0":
		cfg.FuzzySocieties = false
	case "1":
		cfg.FuzzySocieties = true
	}
	if v := os.Getenv("BLOCK_STYLE"); v != "" {
		cfg.BlockStyle = v
	}
	if v, err := strconv.Atoi(os.Getenv("BATCH_WORKERS")); err == nil && v > 0 {
		cfg.Batch.Workers = v
	}
}

// EngineOptions maps the configuration onto parser options.
func (c ParserCfg) EngineOptions() parser.Options {
	return parser.Options{
		BlockStyle:     parser.BlockStyle(c.BlockStyle),
		FuzzySocieties: c.FuzzySocieties,
		MaxInputBytes:  c.MaxInputBytes,
	}
}

// RequestTimeout bounds one HTTP parse including cache round trips.
func RequestTimeout() time.Duration {
	if C.RequestTimeoutMs <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(C.RequestTimeoutMs) * time.Millisecond
}
