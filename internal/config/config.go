// Package config holds engine-wide configuration for mapforge.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds configuration for the map-assembly engine.
type EngineConfig struct {
	Service    ServiceConfig    `yaml:"service"`
	Store      StoreConfig      `yaml:"store"`
	Generation GenerationConfig `yaml:"generation"`
	Limits     LimitsConfig     `yaml:"limits"`
}

// ServiceConfig holds settings for the external generation service.
type ServiceConfig struct {
	// BaseURL is the root URL of the generation API.
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// RequestTimeoutSeconds bounds a single HTTP round trip,
	// not the lifetime of a background generation job.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// StoreConfig holds settings for the tileset/blob persistence layer.
type StoreConfig struct {
	// Driver selects the store backend: "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file path (sqlite driver only).
	Path string `yaml:"path"`

	// DSN is the PostgreSQL connection string (postgres driver only).
	DSN string `yaml:"dsn"`
}

// GenerationConfig holds defaults for generation and polling behavior.
type GenerationConfig struct {
	// TileSize is the default tile edge length in pixels (16 or 32).
	TileSize int `yaml:"tile_size"`

	// View is the default camera view sent to the service.
	View string `yaml:"view"`

	// PollIntervalSeconds is the initial delay between job status polls.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// MaxWaitSeconds is the hard ceiling on waiting for one job.
	MaxWaitSeconds int `yaml:"max_wait_seconds"`

	// ExpandOverlapPx is how many edge pixels of a region are handed to
	// the service as context when expanding in a direction.
	ExpandOverlapPx int `yaml:"expand_overlap_px"`
}

// LimitsConfig caps the size of work the engine will accept.
type LimitsConfig struct {
	// MaxChainTerrains is the maximum number of terrains in one chain.
	MaxChainTerrains int `yaml:"max_chain_terrains"`

	// MaxGridVertices caps (rows+1)*(cols+1) for a terrain grid.
	MaxGridVertices int `yaml:"max_grid_vertices"`
}

// DefaultConfig returns an EngineConfig with sensible defaults.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Service: ServiceConfig{
			BaseURL:               "https://api.pixellab.ai/v2",
			APIKeyEnv:             "PIXELLAB_API_KEY",
			RequestTimeoutSeconds: 60,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "data/mapforge.db",
		},
		Generation: GenerationConfig{
			TileSize:            16,
			View:                "high top-down",
			PollIntervalSeconds: 5,
			MaxWaitSeconds:      300,
			ExpandOverlapPx:     16,
		},
		Limits: LimitsConfig{
			MaxChainTerrains: 16,
			MaxGridVertices:  1 << 20, // roughly a 1023x1023 cell map
		},
	}
}

// LoadConfig loads engine configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*EngineConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// APIKey resolves the generation service API key from the environment.
func (c *ServiceConfig) APIKey() string {
	env := c.APIKeyEnv
	if env == "" {
		env = "PIXELLAB_API_KEY"
	}
	return os.Getenv(env)
}
