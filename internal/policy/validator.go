package policy

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - max_level_allowed must be within 0-4 if set
//   - rule codes must appear in knownCodes
//   - custom rules need a known kind, a variable name and a valid severity;
//     the with-value family also needs a value
//   - rego policies need a name, a file and a valid severity
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig, knownCodes []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	known := make(map[string]struct{}, len(knownCodes))
	for _, code := range knownCodes {
		known[code] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	if cfg.MaxLevelAllowed != nil {
		if l := *cfg.MaxLevelAllowed; l < 0 || l > models.MaxLevel {
			errs = append(errs, fmt.Errorf("max_level_allowed: invalid value %d; must be between 0 and %d", l, models.MaxLevel))
		}
	}

	for code := range cfg.Rules {
		if _, ok := known[code]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule code", code))
		}
	}

	for i, c := range cfg.Custom {
		kind := rules.CustomRuleKind(c.Kind)
		if !kind.Valid() {
			errs = append(errs, fmt.Errorf("custom[%d].kind: invalid value %q; valid values: %s, %s",
				i, c.Kind, rules.ForbiddenVariable, rules.ForbiddenVariableWithValue))
		}
		if c.Variable == "" {
			errs = append(errs, fmt.Errorf("custom[%d].variable: must not be empty", i))
		}
		if kind == rules.ForbiddenVariableWithValue && c.Value == nil {
			errs = append(errs, fmt.Errorf("custom[%d].value: required for kind %s", i, kind))
		}
		if _, err := models.ParseSeverity(c.Severity); err != nil {
			errs = append(errs, fmt.Errorf("custom[%d].severity: %w", i, err))
		}
	}

	for i, r := range cfg.Rego {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("rego[%d].name: must not be empty", i))
		}
		if r.File == "" {
			errs = append(errs, fmt.Errorf("rego[%d].file: must not be empty", i))
		}
		if _, err := models.ParseSeverity(r.Severity); err != nil {
			errs = append(errs, fmt.Errorf("rego[%d].severity: %w", i, err))
		}
	}

	return errs
}
