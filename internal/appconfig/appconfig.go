// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for inference requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultEndpointURL is the default base URL of the local inference endpoint.
	defaultEndpointURL = "http://localhost:11434"
	// defaultTemperature is the sampling temperature applied when the config omits one.
	defaultTemperature = 0.7
	// defaultSeed seeds the sampler for reproducible human-rating draws.
	defaultSeed = 42
	// defaultTargetSampleSize is the total human-rating sample target.
	defaultTargetSampleSize = 100
	// defaultPerCohortQuota caps the draw from any single cohort.
	defaultPerCohortQuota = 8
	// defaultDataDir holds the CSV tables.
	defaultDataDir = "data"
)

// defaultSystemPrompts mirrors the prompt versions shipped with the harness.
var defaultSystemPrompts = map[string]string{
	"v1": "You are a helpful AI assistant. Provide accurate, clear, and concise responses.",
	"v2": "You are a helpful AI assistant. Provide accurate, clear, and concise responses. When uncertain, acknowledge limitations. Cite sources when making factual claims.",
}

// Config represents the top-level application configuration.
type Config struct {
	EndpointURL          string            `json:"endpointUrl,omitempty"`
	Models               []string          `json:"models"`
	SystemPromptVersions []string          `json:"systemPromptVersions,omitempty"`
	SystemPrompts        map[string]string `json:"systemPrompts,omitempty"`
	Temperature          *float64          `json:"temperature,omitempty"`
	PromptLimit          int               `json:"promptLimit,omitempty"`
	JudgeModel           string            `json:"judgeModel,omitempty"`
	Seed                 *int64            `json:"seed,omitempty"`
	TargetSampleSize     int               `json:"targetSampleSize,omitempty"`
	PerCohortQuota       int               `json:"perCohortQuota,omitempty"`
	TimeoutSeconds       int               `json:"timeout,omitempty"`
	DataDir              string            `json:"dataDir,omitempty"`
	LogFile              string            `json:"logFile,omitempty"`
	Debug                bool              `json:"debug"`
	ConfigPath           string            `json:"-"`
}

// RequestTimeout returns the timeout duration for inference requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Endpoint returns the base URL of the inference endpoint, applying a default if not set.
func (c Config) Endpoint() string {
	if url := strings.TrimSpace(c.EndpointURL); url != "" {
		return strings.TrimRight(url, "/")
	}
	return defaultEndpointURL
}

// SamplingTemperature returns the configured temperature or the default.
func (c Config) SamplingTemperature() float64 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

// SampleSeed returns the random seed used for the human-rating sample.
func (c Config) SampleSeed() int64 {
	if c.Seed == nil {
		return defaultSeed
	}
	return *c.Seed
}

// SampleTarget returns the target size for the human-rating sample.
func (c Config) SampleTarget() int {
	if c.TargetSampleSize <= 0 {
		return defaultTargetSampleSize
	}
	return c.TargetSampleSize
}

// CohortQuota returns the maximum draw from any single cohort.
func (c Config) CohortQuota() int {
	if c.PerCohortQuota <= 0 {
		return defaultPerCohortQuota
	}
	return c.PerCohortQuota
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "krino.log"
}

// DataDirPath returns the directory holding the CSV tables.
func (c Config) DataDirPath() string {
	if dir := strings.TrimSpace(c.DataDir); dir != "" {
		return dir
	}
	return defaultDataDir
}

// PromptsPath returns the path of the prompts table.
func (c Config) PromptsPath() string { return filepath.Join(c.DataDirPath(), "prompts.csv") }

// RunsPath returns the path of the runs table.
func (c Config) RunsPath() string { return filepath.Join(c.DataDirPath(), "runs.csv") }

// ScoresPath returns the path of the auto-scores table.
func (c Config) ScoresPath() string { return filepath.Join(c.DataDirPath(), "auto_scores.csv") }

// RatingsPath returns the path of the human-ratings template.
func (c Config) RatingsPath() string { return filepath.Join(c.DataDirPath(), "human_ratings.csv") }

// PromptVersions returns the system-prompt versions to evaluate, in run order.
func (c Config) PromptVersions() []string {
	if len(c.SystemPromptVersions) > 0 {
		return c.SystemPromptVersions
	}
	return []string{"v2"}
}

// SystemPromptText resolves a system-prompt version to its text. Versions
// defined in the config shadow the built-in defaults.
func (c Config) SystemPromptText(version string) (string, error) {
	if text, ok := c.SystemPrompts[version]; ok {
		return text, nil
	}
	if text, ok := defaultSystemPrompts[version]; ok {
		return text, nil
	}
	return "", fmt.Errorf("unknown system prompt version %q", version)
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if len(config.Models) == 0 {
			return Config{}, errors.New("config must list at least one model")
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				if len(config.Models) == 0 {
					return Config{}, errors.New("config must list at least one model")
				}
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
