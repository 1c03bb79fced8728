// Package config provides configuration loading for tutord.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables, with hardcoded defaults as the base layer.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/tutord/internal/logging"
)

// Config holds the complete tutord configuration.
type Config struct {
	Logging       logging.Config      `koanf:"logging"`
	VectorStore   VectorStoreConfig   `koanf:"vectorstore"`
	Embeddings    EmbeddingsConfig    `koanf:"embeddings"`
	Retrieval     RetrievalConfig     `koanf:"retrieval"`
	Reward        RewardConfig        `koanf:"reward"`
	Storage       StorageConfig       `koanf:"storage"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ObservabilityConfig toggles OpenTelemetry export. The full exporter
// configuration lives in the telemetry package; this section covers the
// settings most deployments change.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	OTLPEndpoint    string `koanf:"otlp_endpoint"`
}

// VectorStoreConfig selects and configures the vector index backend.
type VectorStoreConfig struct {
	// Provider selects the backend: "chromem" (embedded, default) or "qdrant".
	Provider string `koanf:"provider"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig configures the embedded chromem-go store.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Compress   bool   `koanf:"compress"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
}

// QdrantConfig configures the external Qdrant gRPC store.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
	UseTLS     bool   `koanf:"use_tls"`
}

// EmbeddingsConfig configures embedding generation.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "fastembed" (local ONNX, default) or "tei".
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	CacheDir string `koanf:"cache_dir"`
}

// RetrievalConfig holds default retrieval parameters. Both can be
// overridden per call.
type RetrievalConfig struct {
	// K is the number of candidates requested from the index.
	K int `koanf:"k"`

	// ScoreThreshold is the minimum similarity for a chunk to be included.
	ScoreThreshold float64 `koanf:"score_threshold"`
}

// RewardConfig holds the reward signal weight table.
type RewardConfig struct {
	QuizImprovementWeight float64 `koanf:"quiz_improvement_weight"`
	QuizAbsoluteWeight    float64 `koanf:"quiz_absolute_weight"`
	EngagementWeight      float64 `koanf:"engagement_weight"`
	EfficiencyWeight      float64 `koanf:"efficiency_weight"`
}

// StorageConfig configures the SQLite database for performance and
// trajectory records.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// Default returns the base configuration before file and env overrides.
func Default() *Config {
	return &Config{
		Logging: logging.NewDefaultConfig(),
		VectorStore: VectorStoreConfig{
			Provider: "chromem",
			Chromem: ChromemConfig{
				Path:       "~/.local/share/tutord/vectorstore",
				Collection: "curriculum",
				VectorSize: 384,
			},
			Qdrant: QdrantConfig{
				Host:       "localhost",
				Port:       6334,
				Collection: "curriculum",
				VectorSize: 384,
			},
		},
		Embeddings: EmbeddingsConfig{
			Provider: "fastembed",
			Model:    "BAAI/bge-small-en-v1.5",
			BaseURL:  "http://localhost:8080",
		},
		Retrieval: RetrievalConfig{
			K:              5,
			ScoreThreshold: 0.5,
		},
		Reward: RewardConfig{
			QuizImprovementWeight: 0.4,
			QuizAbsoluteWeight:    0.3,
			EngagementWeight:      0.2,
			EfficiencyWeight:      0.1,
		},
		Storage: StorageConfig{
			Path: "~/.local/share/tutord/tutord.db",
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: false,
			OTLPEndpoint:    "localhost:4317",
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Retrieval.K <= 0 {
		return fmt.Errorf("retrieval.k must be positive, got %d", c.Retrieval.K)
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		return fmt.Errorf("retrieval.score_threshold must be in [0,1], got %v", c.Retrieval.ScoreThreshold)
	}
	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("unsupported vectorstore provider: %s (supported: chromem, qdrant)", c.VectorStore.Provider)
	}
	sum := c.Reward.QuizImprovementWeight + c.Reward.QuizAbsoluteWeight +
		c.Reward.EngagementWeight + c.Reward.EfficiencyWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("reward weights must sum to 1.0, got %v", sum)
	}
	return nil
}
