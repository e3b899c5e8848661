// Package config loads the per-user mlint configuration. Values set there act
// as defaults for CLI flags that are not given explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the location of the configuration file.
const EnvConfigPath = "MLINT_CONFIG"

// Config is the top-level user configuration.
// It is loaded from ~/.config/mlint/config.yaml (or $MLINT_CONFIG).
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults" json:"defaults"`
	Cluster  ClusterConfig  `yaml:"cluster"  json:"cluster"`
}

// DefaultsConfig holds defaults for the validate and cluster commands.
type DefaultsConfig struct {
	// Policy is the policy file applied when --policy is not provided.
	Policy string `yaml:"policy" json:"policy"`

	// Format is the output format: "text", "table" or "json".
	Format string `yaml:"format" json:"format"`

	// Color enables severity coloring.
	Color bool `yaml:"color" json:"color"`

	// MetricsFile is the Prometheus textfile written after each run.
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
}

// ClusterConfig holds defaults for the cluster command.
type ClusterConfig struct {
	// Kubeconfig is used when no --kubeconfig flag is provided.
	Kubeconfig string `yaml:"kubeconfig" json:"kubeconfig"`

	// Context is used when no --context flag is provided.
	Context string `yaml:"context" json:"context"`
}

// Loader is the interface for reading Config from disk.
type Loader interface {
	// Load reads and parses the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}

// FileLoader reads Config from a YAML file. A missing file yields an empty
// Config and no error.
type FileLoader struct {
	path string
}

// NewFileLoader returns a loader for path. An empty path selects $MLINT_CONFIG,
// then ~/.config/mlint/config.yaml.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = defaultPath()
	}
	return &FileLoader{path: path}
}

func defaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mlint", "config.yaml")
}

// ConfigPath implements Loader.
func (l *FileLoader) ConfigPath() string { return l.path }

// Load implements Loader.
func (l *FileLoader) Load() (*Config, error) {
	cfg := &Config{}
	if l.path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	return cfg, nil
}
