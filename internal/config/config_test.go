package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/config"
)

func TestFileLoader_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)
}

func TestFileLoader_Parses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`defaults:
  policy: /etc/mlint/policy.yaml
  format: table
  color: true
  metrics_file: /var/lib/node_exporter/mlint.prom
cluster:
  kubeconfig: /home/ci/.kube/config
  context: staging
`), 0o644))

	cfg, err := config.NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/mlint/policy.yaml", cfg.Defaults.Policy)
	assert.Equal(t, "table", cfg.Defaults.Format)
	assert.True(t, cfg.Defaults.Color)
	assert.Equal(t, "/var/lib/node_exporter/mlint.prom", cfg.Defaults.MetricsFile)
	assert.Equal(t, "/home/ci/.kube/config", cfg.Cluster.Kubeconfig)
	assert.Equal(t, "staging", cfg.Cluster.Context)
}

func TestFileLoader_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults: [broken"), 0o644))

	_, err := config.NewFileLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestNewFileLoader_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(config.EnvConfigPath, path)

	assert.Equal(t, path, config.NewFileLoader("").ConfigPath())
}
