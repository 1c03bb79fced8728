package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "curriculum", cfg.VectorStore.Chromem.Collection)
	assert.Equal(t, 384, cfg.VectorStore.Chromem.VectorSize)
	assert.Equal(t, 5, cfg.Retrieval.K)
	assert.Equal(t, 0.5, cfg.Retrieval.ScoreThreshold)
	assert.Equal(t, 0.4, cfg.Reward.QuizImprovementWeight)
	assert.Equal(t, 0.3, cfg.Reward.QuizAbsoluteWeight)
	assert.Equal(t, 0.2, cfg.Reward.EngagementWeight)
	assert.Equal(t, 0.1, cfg.Reward.EfficiencyWeight)
	assert.Equal(t, "fastembed", cfg.Embeddings.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TUTORD_RETRIEVAL_K", "3")
	t.Setenv("TUTORD_RETRIEVAL_SCORE_THRESHOLD", "0.7")
	t.Setenv("TUTORD_VECTORSTORE_PROVIDER", "qdrant")
	t.Setenv("TUTORD_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Retrieval.K)
	assert.Equal(t, 0.7, cfg.Retrieval.ScoreThreshold)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
retrieval:
  k: 8
  score_threshold: 0.6
vectorstore:
  chromem:
    collection: oxford_maths
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Retrieval.K)
	assert.Equal(t, 0.6, cfg.Retrieval.ScoreThreshold)
	assert.Equal(t, "oxford_maths", cfg.VectorStore.Chromem.Collection)
	// Untouched sections keep defaults.
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retrieval.K)
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv("TUTORD_RETRIEVAL_K", "0")
	_, err := Load("")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"zero k", func(c *Config) { c.Retrieval.K = 0 }, "retrieval.k"},
		{"threshold above one", func(c *Config) { c.Retrieval.ScoreThreshold = 1.5 }, "score_threshold"},
		{"unknown provider", func(c *Config) { c.VectorStore.Provider = "pinecone" }, "provider"},
		{"weights off", func(c *Config) { c.Reward.EfficiencyWeight = 0.5 }, "weights"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
