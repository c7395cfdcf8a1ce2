// Package config loads the application configuration. Structure comes from a
// YAML file; secrets stay in the environment and only their variable names
// appear in the file.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP query service.
type ServerConfig struct {
	Listen         string `yaml:"listen"`
	APIKeyEnv      string `yaml:"api_key_env"`
	RateLimit      int    `yaml:"rate_limit"`
	RateWindowSecs int    `yaml:"rate_window_secs"`
}

// OpenAIConfig configures the embedding and generation client.
type OpenAIConfig struct {
	APIKeyEnv           string  `yaml:"api_key_env"`
	ChatModel           string  `yaml:"chat_model"`
	EmbeddingModel      string  `yaml:"embedding_model"`
	Temperature         float64 `yaml:"temperature"`
	GenerateTimeoutSecs int     `yaml:"generate_timeout_secs"`
}

// QdrantConfig contains connection details for the corpus store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig controls query-time retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// IngestConfig controls the ingestion pipeline.
type IngestConfig struct {
	// EmbedsPerSec throttles embedding calls during ingestion.
	EmbedsPerSec float64 `yaml:"embeds_per_sec"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Config is the root application configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from the given path. If the file does not exist,
// returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = "0.0.0.0:8000"
	}
	if cfg.Server.APIKeyEnv == "" {
		cfg.Server.APIKeyEnv = "KIRA_API_SECRET"
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 10
	}
	if cfg.Server.RateWindowSecs == 0 {
		cfg.Server.RateWindowSecs = 60
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-3.5-turbo"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.3
	}
	if cfg.OpenAI.GenerateTimeoutSecs == 0 {
		cfg.OpenAI.GenerateTimeoutSecs = 120
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Qdrant.APIKeyEnv == "" {
		cfg.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "tbk_kira_articles"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 15
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Ingest.EmbedsPerSec == 0 {
		cfg.Ingest.EmbedsPerSec = 2
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
