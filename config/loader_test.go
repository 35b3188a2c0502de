package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "./specs", cfg.Specs.Dir)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, "swagger_operations", cfg.Qdrant.Collection)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 1.2, cfg.Retrieval.ScoreThreshold, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Browse.Timeout)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 9000
specs:
  dir: /data/openapi
llm:
  model: gpt-4o
  temperature: 0.2
retrieval:
  top_k: 8
cache:
  enabled: true
  ttl: 10m
`), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "/data/openapi", cfg.Specs.Dir)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.InDelta(t, 0.2, float64(cfg.LLM.Temperature), 1e-6)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)

	// Untouched sections keep their defaults.
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.InDelta(t, 1.2, cfg.Retrieval.ScoreThreshold, 1e-9)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4o\n"), 0o644))

	t.Setenv("ENGINE_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("ENGINE_LLM_API_KEY", "sk-env")
	t.Setenv("ENGINE_RETRIEVAL_SCORE_THRESHOLD", "0.8")
	t.Setenv("ENGINE_QDRANT_AUTO_CREATE_COLLECTION", "false")
	t.Setenv("ENGINE_LLM_TIMEOUT", "45s")
	t.Setenv("ENGINE_BROWSE_TIMEOUT", "90s")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.InDelta(t, 0.8, cfg.Retrieval.ScoreThreshold, 1e-9)
	assert.False(t, cfg.Qdrant.AutoCreateCollection)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Browse.Timeout)
}

func TestCustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_HTTP_PORT", "7070")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort)
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	t.Setenv("ENGINE_SERVER_HTTP_PORT", "not-a-number")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Server.HTTPPort = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Qdrant.Collection = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Retrieval.ScoreThreshold = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LLM.Temperature = 3
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Browse.Timeout = 0
	assert.Error(t, cfg.Validate())
}
