package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// PipelineConfig holds the extraction pipeline knobs. Durations are
// expressed in milliseconds so the TOML stays plain integers.
type PipelineConfig struct {
	ChunkSize      int `toml:"chunk_size"`
	ChunkOverlap   int `toml:"chunk_overlap"`
	RequestDelayMS int `toml:"request_delay_ms"`
	MaxRetries     int `toml:"max_retries"`
	BackoffBaseMS  int `toml:"backoff_base_ms"`
	MinChunkChars  int `toml:"min_chunk_chars"`
	MinDocChars    int `toml:"min_doc_chars"`
	BatchSize      int `toml:"batch_size"`
}

// PromptOverrides let deployments swap the built-in prompt templates
// without recompiling. Empty fields fall back to the defaults compiled
// into the extraction package.
type PromptOverrides struct {
	Extraction string `toml:"extraction"`
	Domain     string `toml:"domain"`
}

type Config struct {
	LLM      LLMConfig       `toml:"llm"`
	Neo4j    Neo4jConfig     `toml:"neo4j"`
	Pipeline PipelineConfig  `toml:"pipeline"`
	Prompts  PromptOverrides `toml:"prompts"`
}

func (p PipelineConfig) RequestDelay() time.Duration {
	return time.Duration(p.RequestDelayMS) * time.Millisecond
}

func (p PipelineConfig) BackoffBase() time.Duration {
	return time.Duration(p.BackoffBaseMS) * time.Millisecond
}

// Default returns the configuration used when no file is present.
// Chunk size fits comfortably in the default extraction model's context window.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
		Neo4j: Neo4jConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
		},
		Pipeline: PipelineConfig{
			ChunkSize:      15000,
			ChunkOverlap:   0,
			RequestDelayMS: 1500,
			MaxRetries:     3,
			BackoffBaseMS:  5000,
			MinChunkChars:  50,
			MinDocChars:    100,
			BatchSize:      200,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		c.Neo4j.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Neo4j.Password = v
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Pipeline.ChunkSize = n
		}
	}
}

// Validate reports configuration problems that would otherwise only
// surface mid-run (a missing API key fails on the first LLM call,
// dozens of chunks into a document).
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm provider not specified")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("api key required for llm provider %q", c.LLM.Provider)
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j uri not specified")
	}
	if c.Pipeline.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}
	return nil
}
