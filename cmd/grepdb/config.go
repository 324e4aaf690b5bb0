// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/grepdb/internal/errors"
)

const (
	defaultConfigDir  = ".grepdb"
	defaultConfigFile = "config.yaml"
	configVersion     = "1"
)

// Config represents the .grepdb/config.yaml configuration file.
type Config struct {
	Version string            `yaml:"version"`
	Sources map[string]string `yaml:"sources"`           // source name -> SQLite database path
	Sites   map[string]string `yaml:"sites,omitempty"`   // site reference -> admin base URL
	Presets map[string]Preset `yaml:"presets,omitempty"` // named search defaults
	Serve   ServeConfig       `yaml:"serve,omitempty"`
}

// Preset is a named bundle of search defaults. A preset fills in flags
// the user did not set on the command line; explicit flags always win.
type Preset struct {
	IgnoreCase      bool     `yaml:"ignore_case,omitempty"`
	ShowValues      string   `yaml:"show_values,omitempty"` // "a", "l", a context width, or "none"
	FindTextColumns bool     `yaml:"find_text_columns,omitempty"`
	FindCharColumns bool     `yaml:"find_char_columns,omitempty"`
	FindColumns     []string `yaml:"find_columns,omitempty"` // declared-type prefixes
	AdminLinks      []string `yaml:"admin_links,omitempty"`  // site references
	Limit           int      `yaml:"limit,omitempty"`
}

// ServeConfig contains HTTP server settings for 'grepdb serve'.
type ServeConfig struct {
	Port string `yaml:"port,omitempty"`
}

// DefaultConfig returns a config with a single source and the default
// admin site, the minimal file 'grepdb init' writes.
func DefaultConfig(sourceName, dbPath string) *Config {
	return &Config{
		Version: configVersion,
		Sources: map[string]string{sourceName: dbPath},
		Sites:   map[string]string{"default": "http://localhost:8000"},
		Serve:   ServeConfig{Port: "8080"},
	}
}

// LoadConfig loads configuration from the specified path or finds it
// automatically.
//
// If configPath is empty, GREPDB_CONFIG_PATH is consulted, then
// .grepdb/config.yaml is searched for in the current directory and its
// parents. Environment overrides are applied after loading.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("GREPDB_CONFIG_PATH")
	}
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: Path comes from user config or discovery
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or run 'grepdb init --force' to recreate", configPath),
			err,
		)
	}

	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version '%s' is not supported (expected '%s')", cfg.Version, configVersion),
			"Run 'grepdb init --force' to regenerate the configuration file",
			nil,
		)
	}

	cfg.applyEnvOverrides()

	// Source paths in the file are relative to the config directory,
	// not to wherever the command happens to run.
	baseDir := filepath.Dir(filepath.Dir(configPath))
	for name, path := range cfg.Sources {
		if !filepath.IsAbs(path) {
			cfg.Sources[name] = filepath.Join(baseDir, path)
		}
	}

	return &cfg, nil
}

// SaveConfig writes the configuration to the specified path as YAML,
// creating the .grepdb directory if needed.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug. Please report it with your configuration details",
			err,
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewPermissionError(
			"Cannot create configuration directory",
			fmt.Sprintf("Permission denied creating %s", dir),
			"Check directory permissions or run with appropriate privileges",
			err,
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and ensure sufficient disk space",
			err,
		)
	}

	return nil
}

// ConfigPath returns the path to the config file in the given directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}

// findConfigFile searches for .grepdb/config.yaml in the current
// directory and its parents, stopping at the filesystem root.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}

	for {
		configPath := ConfigPath(dir)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.NewConfigError(
		"Configuration not found",
		"No .grepdb/config.yaml file found in current directory or any parent directory",
		"Run 'grepdb init' to create a new configuration",
		nil,
	)
}

// Preset looks up a named preset.
func (c *Config) Preset(name string) (Preset, error) {
	p, ok := c.Presets[name]
	if !ok {
		return Preset{}, errors.NewConfigError(
			fmt.Sprintf("Preset '%s' not found", name),
			"The preset is not defined in the configuration file",
			"Add it under 'presets:' in .grepdb/config.yaml or check the name for typos",
			nil,
		)
	}
	return p, nil
}

// SourcePath resolves a source name to its database path.
func (c *Config) SourcePath(name string) (string, error) {
	path, ok := c.Sources[name]
	if !ok {
		return "", errors.NewConfigError(
			fmt.Sprintf("Source '%s' not found", name),
			"The source is not defined in the configuration file",
			"Add it under 'sources:' in .grepdb/config.yaml or run 'grepdb sources' to list known sources",
			nil,
		)
	}
	return path, nil
}

// applyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - GREPDB_SERVE_PORT: Override the serve port
//   - GREPDB_DEFAULT_SITE: Override the "default" site base URL
//   - GREPDB_SOURCE_<NAME>: Override or add a source path (name lowercased)
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("GREPDB_SERVE_PORT"); port != "" {
		c.Serve.Port = port
	}
	if site := os.Getenv("GREPDB_DEFAULT_SITE"); site != "" {
		if c.Sites == nil {
			c.Sites = make(map[string]string)
		}
		c.Sites["default"] = site
	}
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" || !strings.HasPrefix(key, "GREPDB_SOURCE_") {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, "GREPDB_SOURCE_"))
		if name == "" {
			continue
		}
		if c.Sources == nil {
			c.Sources = make(map[string]string)
		}
		c.Sources[name] = value
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
