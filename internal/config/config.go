// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/latentspace/match-engine/internal/ranking"
)

// Config represents engine configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults, environment
// variables or CLI flags.
type Config struct {
	// Port is the HTTP port for the API server.
	Port int `json:"port,omitempty"`
	// DatabaseURL is the PostgreSQL connection URL.
	DatabaseURL string `json:"database_url,omitempty"`
	// WeightsFile is the path to a weight configuration JSON file.
	WeightsFile string `json:"weights_file,omitempty"`
	// GeminiAPIKey enables embedding computation when set.
	GeminiAPIKey string `json:"api_key,omitempty"`
	// PoolLimit caps the candidate pool size per user.
	PoolLimit int `json:"pool_limit,omitempty"`
	// Concurrency is how many users a batch run scores in parallel.
	Concurrency int `json:"concurrency,omitempty"`
	// WeightsVer selects the weight version for batch runs.
	WeightsVer string `json:"weight_version,omitempty"`
}

// Load loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a configuration from environment variables.
func FromEnv() Config {
	return Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		WeightsFile:  os.Getenv("WEIGHTS_FILE"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
}

// Validate checks that the configuration has valid values.
// Required fields are checked later, after merging with CLI flags.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.PoolLimit < 0 {
		return fmt.Errorf("config error: 'pool_limit' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.WeightsFile != "" {
		if _, err := os.Stat(c.WeightsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: weights file not found: %s", c.WeightsFile)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. Used to layer config file values under CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.WeightsFile == "" {
		result.WeightsFile = defaults.WeightsFile
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.PoolLimit == 0 {
		result.PoolLimit = defaults.PoolLimit
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.WeightsVer == "" {
		result.WeightsVer = defaults.WeightsVer
	}

	return result
}

// ApplyDefaults fills unset fields with the engine defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.PoolLimit == 0 {
		c.PoolLimit = 200
	}
	if c.Concurrency == 0 {
		c.Concurrency = ranking.DefaultBatchConcurrency
	}
}
