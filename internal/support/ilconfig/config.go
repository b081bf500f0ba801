// Package ilconfig handles the loader's resource configuration: the list of
// directories scanned for component shared libraries (spec §6: "a resource
// configuration file for the list of plugin search paths, under
// `il-core/component-paths`").
//
// Config is stored at $XDG_CONFIG_HOME/omxcore/il-core.yaml (defaulting to
// ~/.config/omxcore/il-core.yaml).
package ilconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk il-core resource configuration.
type Config struct {
	ILCore ILCore `yaml:"il-core"`
}

// ILCore holds the component-paths list.
type ILCore struct {
	ComponentPaths []string `yaml:"component-paths"`
}

// Path returns the config file location, respecting XDG_CONFIG_HOME.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "omxcore", "il-core.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "omxcore", "il-core.yaml")
}

// Load reads the config file. A missing file is not an error: it yields a
// Config with no component paths, matching the teacher's tolerant-Load
// convention for first-run experience.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read il-core config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse il-core config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to disk, creating directories as needed.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal il-core config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write il-core config: %w", err)
	}
	return nil
}

// AddComponentPath appends a search directory if not already present.
func (c *Config) AddComponentPath(dir string) {
	for _, p := range c.ILCore.ComponentPaths {
		if p == dir {
			return
		}
	}
	c.ILCore.ComponentPaths = append(c.ILCore.ComponentPaths, dir)
}
