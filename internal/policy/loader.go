package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadPolicy reads and decodes the policy file at path. Only version 1 is
// accepted; semantic checks are left to Validate.
func LoadPolicy(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if cfg.Version != 1 {
		return nil, errors.New("unsupported policy version")
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}
	cfg.dir = filepath.Dir(path)

	return &cfg, nil
}
