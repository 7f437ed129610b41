package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bargom/eventc/internal/buildcache"
	"github.com/bargom/eventc/internal/events"
	"github.com/bargom/eventc/pkg/logging"
	"github.com/bargom/eventc/pkg/metrics"
)

// Config holds the configuration of a build.
type Config struct {
	// Extensions are catalog extension files loaded on top of the built-in ones
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// Styles is an optional style table file for rendered sentences
	Styles string `json:"styles,omitempty" yaml:"styles,omitempty"`

	Generator events.Config     `json:"generator" yaml:"generator"`
	Cache     buildcache.Config `json:"cache" yaml:"cache"`
	Logging   logging.Config    `json:"logging" yaml:"logging"`
	Metrics   metrics.Config    `json:"metrics" yaml:"metrics"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Generator: *events.DefaultConfig(),
		Cache:     buildcache.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
		Metrics:   metrics.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a file over the defaults.
// Supports JSON and YAML formats based on file extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		// Try YAML first, then JSON
		if err := yaml.Unmarshal(data, config); err != nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config (tried YAML and JSON): %w", err)
			}
		}
	}

	// Relative files are resolved against the config file's directory.
	dir := filepath.Dir(path)
	for i, ext := range config.Extensions {
		config.Extensions[i] = resolve(dir, ext)
	}
	config.Styles = resolve(dir, config.Styles)
	if config.Cache.Type == "sqlite" && config.Cache.Path != ":memory:" {
		config.Cache.Path = resolve(dir, config.Cache.Path)
	}

	return config, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// ApplyEnv overrides c with EVENTC_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("EVENTC_EXTENSIONS"); v != "" {
		c.Extensions = filepath.SplitList(v)
	}
	if v := os.Getenv("EVENTC_STYLES"); v != "" {
		c.Styles = v
	}
	if v := os.Getenv("EVENTC_PACKAGE"); v != "" {
		c.Generator.Package = v
	}
	if v := os.Getenv("EVENTC_FORMAT"); v != "" {
		format, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid EVENTC_FORMAT: %w", err)
		}
		c.Generator.Format = format
	}
	if v := os.Getenv("EVENTC_CACHE"); v != "" {
		c.Cache.Type = strings.ToLower(v)
	}
	if v := os.Getenv("EVENTC_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("EVENTC_CACHE_URL"); v != "" {
		c.Cache.URL = v
	}
	if v := os.Getenv("EVENTC_METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}
	c.Logging.ApplyEnv()
	return nil
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
