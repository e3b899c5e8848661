package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// Apply registers the overrides, custom rules and Rego policies of cfg on
// registry, in that order. It returns the generated codes in registration
// order. cfg is expected to have passed Validate.
func Apply(ctx context.Context, cfg *PolicyConfig, registry *rules.Registry) ([]string, error) {
	if cfg == nil {
		return nil, nil
	}

	for code, rc := range cfg.Rules {
		if err := registry.Override(code, rules.Override{Enabled: rc.Enabled, Opinionated: rc.Opinionated}); err != nil {
			return nil, err
		}
	}

	var codes []string
	for i, c := range cfg.Custom {
		sev, err := models.ParseSeverity(c.Severity)
		if err != nil {
			return nil, fmt.Errorf("custom[%d]: %w", i, err)
		}
		spec := rules.CustomRuleSpec{
			Variable:    c.Variable,
			Workload:    c.Workload,
			Severity:    sev,
			Opinionated: c.Opinionated,
			References:  c.References,
			Commentary:  c.Commentary,
		}
		var code string
		switch rules.CustomRuleKind(c.Kind) {
		case rules.ForbiddenVariable:
			code, err = registry.RegisterForbiddenVariable(spec)
		case rules.ForbiddenVariableWithValue:
			if c.Value != nil {
				spec.Value = *c.Value
			}
			code, err = registry.RegisterForbiddenVariableWithValue(spec)
		default:
			return nil, fmt.Errorf("custom[%d]: unknown kind %q", i, c.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("custom[%d]: %w", i, err)
		}
		codes = append(codes, code)
	}

	for i, r := range cfg.Rego {
		sev, err := models.ParseSeverity(r.Severity)
		if err != nil {
			return nil, fmt.Errorf("rego[%d]: %w", i, err)
		}
		path := r.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.dir, path)
		}
		module, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("rego[%d]: read %s: %w", i, path, err)
		}
		code, err := registry.RegisterRego(ctx, rules.RegoRuleSpec{
			Name:        r.Name,
			Module:      string(module),
			Query:       r.Query,
			Severity:    sev,
			Opinionated: r.Opinionated,
			References:  r.References,
		})
		if err != nil {
			return nil, fmt.Errorf("rego[%d]: %w", i, err)
		}
		codes = append(codes, code)
	}

	return codes, nil
}
