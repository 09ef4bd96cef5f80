// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bomcost/internal/errors"
	"bomcost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Workspace selects where product sets are persisted
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// WorkspaceConfig contains persistence settings
type WorkspaceConfig struct {
	// Name is the default workspace
	Name string `json:"name" yaml:"name"`

	// Backend is sqlite or file. The memory backend is not accepted here
	// because nothing would outlive a single command.
	Backend string `json:"backend" yaml:"backend"`

	// Path is the database file (sqlite) or directory (file)
	Path string `json:"path" yaml:"path"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// Precision is the number of decimal places for amounts
	Precision int32 `json:"precision" yaml:"precision"`

	// ShowExcluded lists xor-excluded and unpriced materials
	ShowExcluded bool `json:"show_excluded" yaml:"show_excluded"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Version: "1.0",
		Workspace: WorkspaceConfig{
			Name:    "default",
			Backend: "sqlite",
			Path:    filepath.Join(homeDir, ".bomcost", "workspaces.db"),
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			Precision:     2,
			ShowExcluded:  true,
		},
		Logging: logging.DefaultConfig(),
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from a file. A missing file yields defaults.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("read "+path, err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Config("decode "+path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Workspace.Backend {
	case "sqlite", "file":
	case "memory":
		return errors.New(errors.TypeConfig, "memory backend does not persist workspaces between commands; use sqlite or file")
	default:
		return errors.Newf(errors.TypeConfig, "unknown workspace backend %q", c.Workspace.Backend)
	}
	if c.Output.Precision < 0 {
		return errors.Newf(errors.TypeConfig, "negative output precision %d", c.Output.Precision)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("create "+dir, err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Config("encode config", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
