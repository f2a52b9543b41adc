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
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("EMBEDDING_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 20, cfg.Database.PoolSize)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Empty(t, cfg.Embedding.APIKey)

	m := cfg.Scoring.Model()
	assert.Equal(t, 0.3, m.Weights.Virality)
	assert.Equal(t, 0.4, m.Weights.Relevance)
	assert.Equal(t, 0.3, m.Weights.Engagement)
	assert.Equal(t, 11, m.Diversity.MinItems)
	assert.Equal(t, 0.5, m.MinVideoScore)
	assert.Equal(t, 0.3, m.MinTagAffinity)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  port: 9000
redis:
  cache_ttl: 5m
scoring:
  weights:
    virality: 0.5
    relevance: 0.25
    engagement: 0.25
  diversity:
    author_penalty: 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9100")
	t.Setenv("MIN_VIDEO_SCORE", "0.65")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("EMBEDDING_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Virality)
	assert.Equal(t, 0.8, cfg.Scoring.Diversity.AuthorPenalty)
	assert.Equal(t, 0.85, cfg.Scoring.Diversity.TagPenalty, "untouched keys keep defaults")
	assert.Equal(t, 0.65, cfg.Scoring.MinVideoScore)
	assert.Equal(t, "sk-openai", cfg.Embedding.APIKey)
}

func TestEmbeddingKeyPrecedence(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("EMBEDDING_API_KEY", "sk-embed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-embed", cfg.Embedding.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"negative weight", map[string]string{"VIRALITY_WEIGHT": "-0.1"}},
		{"threshold above one", map[string]string{"MIN_TAG_AFFINITY": "1.5"}},
		{"zero pool", map[string]string{"DB_POOL_SIZE": "0"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("X_INT", "notanint")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_FLOAT", "")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.Equal(t, time.Second, getEnvDuration("X_DUR", time.Second))
	assert.Equal(t, 0.4, getEnvFloat("X_FLOAT", 0.4))
}
