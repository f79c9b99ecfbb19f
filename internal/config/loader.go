package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	StudiesDir      string `json:"studies_dir" yaml:"studies_dir" toml:"studies_dir"`
	ImageBaseURL    string `json:"image_base_url" yaml:"image_base_url" toml:"image_base_url"`
	Viewports       int    `json:"viewports" yaml:"viewports" toml:"viewports"`
	PrefetchWindow  int    `json:"prefetch_window" yaml:"prefetch_window" toml:"prefetch_window"`
	PrefetchCacheMB int    `json:"prefetch_cache_mb" yaml:"prefetch_cache_mb" toml:"prefetch_cache_mb"`
	ReferenceLines  *bool  `json:"reference_lines" yaml:"reference_lines" toml:"reference_lines"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ReferenceLinesEnabled returns the configured value, defaulting to true.
func (c Config) ReferenceLinesEnabled() bool {
	if c.ReferenceLines == nil {
		return true
	}
	return *c.ReferenceLines
}
