// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source formats.
const (
	FormatGeoJSON = "geojson"
	FormatArray   = "array"
)

// Config represents the root configuration file structure.
type Config struct {
	Server  Server   `yaml:"server"`
	Render  Render   `yaml:"render"`
	Output  string   `yaml:"output,omitempty"`
	Sources []Source `yaml:"sources"`
}

// Server tunes the HTTP API.
type Server struct {
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty"`
	Minify       bool  `yaml:"minify,omitempty"`
}

// Render holds preview defaults.
type Render struct {
	Width   int     `yaml:"width,omitempty"`
	Height  int     `yaml:"height,omitempty"`
	Stroke  float64 `yaml:"stroke,omitempty"`
	Quality float32 `yaml:"quality,omitempty"`
}

// Source represents a single input processed by the loader.
type Source struct {
	// defining the data directly in config.yaml
	Inline any `yaml:"inline,omitempty"`

	Name   string `yaml:"name"`
	URL    string `yaml:"url,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"` // geojson (default) or array
	Kind   string `yaml:"kind,omitempty"`   // geometry kind for array sources

	MaxDistanceKm float64 `yaml:"max_distance_km,omitempty"`
	Preview       bool    `yaml:"preview,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 4 << 20
	}
	if c.Render.Width <= 0 {
		c.Render.Width = 512
	}
	if c.Render.Height <= 0 {
		c.Render.Height = 512
	}
	if c.Render.Stroke <= 0 {
		c.Render.Stroke = 2
	}
	if c.Render.Quality <= 0 {
		c.Render.Quality = 85
	}
	if c.Output == "" {
		c.Output = "out"
	}
	for i := range c.Sources {
		if c.Sources[i].Format == "" {
			c.Sources[i].Format = FormatGeoJSON
		}
	}
}

// Validate checks that sources are usable and reports every problem found.
func (c *Config) Validate() error {
	var errs []string
	seen := make(map[string]bool)

	for i, s := range c.Sources {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("sources[%d].name is required", i))
		} else if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("sources[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true

		inputs := 0
		if s.URL != "" {
			inputs++
		}
		if s.Path != "" {
			inputs++
		}
		if s.Inline != nil {
			inputs++
		}
		if inputs != 1 {
			errs = append(errs, fmt.Sprintf("sources[%d] must set exactly one of url, path or inline", i))
		}

		switch s.Format {
		case FormatGeoJSON, FormatArray:
		default:
			errs = append(errs, fmt.Sprintf("sources[%d].format must be geojson or array, got %q", i, s.Format))
		}
		if s.MaxDistanceKm < 0 {
			errs = append(errs, fmt.Sprintf("sources[%d].max_distance_km must not be negative", i))
		}
	}

	if c.Render.Quality > 100 {
		errs = append(errs, fmt.Sprintf("render.quality must be 1-100, got %v", c.Render.Quality))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
