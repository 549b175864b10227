package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Carver  CarverConfig  `json:"carver"`
	Protect ProtectConfig `json:"protect"`
	Output  OutputConfig  `json:"output"`
}

// CarverConfig holds configuration for the seam carving engine
type CarverConfig struct {
	Workers      int `json:"workers"`
	MaxGridCells int `json:"max_grid_cells"`
}

// ProtectConfig holds configuration for vision-model subject protection
type ProtectConfig struct {
	Enabled       bool    `json:"enabled"`
	Backend       string  `json:"backend"`
	URL           string  `json:"url"`
	Model         string  `json:"model"`
	Weight        float64 `json:"weight"`
	MinConfidence float64 `json:"min_confidence"`
	SendFormat    string  `json:"send_format"`
	SendSize      int     `json:"send_size"`
	SendQuality   int     `json:"send_quality"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	OutputDir     string `json:"output_dir"`
	Prefix        string `json:"prefix"`
	Suffix        string `json:"suffix"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	Debug         bool   `json:"debug"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Carver: CarverConfig{
			Workers:      1,
			MaxGridCells: 0,
		},
		Protect: ProtectConfig{
			Enabled:       false,
			Backend:       "ollama",
			URL:           DefaultBackendURL("ollama"),
			Model:         "llava",
			Weight:        1e6,
			MinConfidence: 0.3,
			SendFormat:    "jpg",
			SendSize:      1024,
			SendQuality:   85,
		},
		Output: OutputConfig{
			DefaultFormat: "",
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_carved",
			Quality:       90,
			Lossless:      false,
			Debug:         false,
		},
	}
}

// Load reads the file at filename when it exists and returns defaults otherwise
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// LoadFromFile loads configuration from a JSON file. Missing keys keep their
// default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Carver.Workers < 0 {
		return fmt.Errorf("carver.workers must not be negative")
	}

	if c.Carver.MaxGridCells < 0 {
		return fmt.Errorf("carver.max_grid_cells must not be negative")
	}

	switch c.Protect.Backend {
	case "ollama", "llamacpp", "saliency":
	default:
		return fmt.Errorf("protect.backend must be ollama, llamacpp or saliency, got %q", c.Protect.Backend)
	}

	if c.Protect.Weight < 0 {
		return fmt.Errorf("protect.weight must not be negative")
	}

	if c.Protect.MinConfidence < 0 || c.Protect.MinConfidence > 1 {
		return fmt.Errorf("protect.min_confidence must be between 0 and 1")
	}

	if c.Protect.SendQuality < 1 || c.Protect.SendQuality > 100 {
		return fmt.Errorf("protect.send_quality must be between 1 and 100")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "", "jpg", "jpeg", "png", "webp", "bmp", "tif", "tiff", "gif":
	default:
		return fmt.Errorf("output.default_format %q is not supported", c.Output.DefaultFormat)
	}

	return nil
}

// DefaultBackendURL returns the usual local address of a vision backend.
// The offline saliency backend has none.
func DefaultBackendURL(backend string) string {
	switch backend {
	case "llamacpp":
		return "http://localhost:8080"
	case "saliency":
		return ""
	default:
		return "http://localhost:11434"
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "seamcarver", "config.json")
}
