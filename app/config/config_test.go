package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-parser/internal/parser"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parser.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRead(t *testing.T) {
	path := writeConfig(t, "block_style: letter\nbatch:\n  workers: 3\n")

	cfg, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "letter", cfg.BlockStyle)
	assert.Equal(t, 3, cfg.Batch.Workers)
	assert.Equal(t, 20000, cfg.Batch.MaxListings, "defaults survive partial files")
	assert.Equal(t, time.Hour, cfg.Batch.JobRetention())
	assert.Equal(t, parser.BlockStyleLetter, cfg.EngineOptions().BlockStyle)
}

func TestRead_EnvOverrides(t *testing.T) {
	t.Setenv("FUZZY_SOCIETIES", "1")
	t.Setenv("BATCH_WORKERS", "12")
	path := writeConfig(t, "fuzzy_societies: false\n")

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.True(t, cfg.FuzzySocieties)
	assert.Equal(t, 12, cfg.Batch.Workers)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(writeConfig(t, "block_style: roman\n"))
	assert.Error(t, err)

	_, err = Read(writeConfig(t, "batch: [1, 2"))
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRepositoryConfigLoads(t *testing.T) {
	cfg, err := Read(filepath.Join("..", "..", "config", "parser.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 16384, cfg.MaxInputBytes)
}
