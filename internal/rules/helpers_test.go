package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/manifest"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// fixture is one manifest file of a test unit.
type fixture struct {
	path string
	yaml string
}

// unitCtx decodes fixtures in order and builds the rule context of unit "app".
func unitCtx(t *testing.T, files ...fixture) rules.RuleContext {
	t.Helper()
	decoded := make([]manifest.File, 0, len(files))
	for _, f := range files {
		docs, err := manifest.DecodeDocuments([]byte(f.yaml))
		require.NoError(t, err)
		decoded = append(decoded, manifest.File{Path: f.path, Documents: docs})
	}
	return rules.NewRuleContext("app", manifest.Normalize(decoded))
}

func codes(issues []models.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func foundAt(issues []models.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.FoundAt)
	}
	return out
}

func boolPtr(b bool) *bool    { return &b }
