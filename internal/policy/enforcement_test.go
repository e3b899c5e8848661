package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

func TestMaxLevel_Empty(t *testing.T) {
	assert.Equal(t, 0, MaxLevel(nil))
}

func TestMaxLevel_Highest(t *testing.T) {
	issues := []models.Issue{
		{Severity: models.SeverityMinor},
		{Severity: models.SeverityHigh},
		{Severity: models.SeverityModerate},
	}
	assert.Equal(t, 3, MaxLevel(issues))
}

func TestShouldFail_NoIssues(t *testing.T) {
	assert.False(t, ShouldFail(nil, 0))
}

// For a single issue of level L, the run fails iff L > maxLevelAllowed.
func TestShouldFail_Boundary(t *testing.T) {
	severities := []models.Severity{
		models.SeverityMinor,
		models.SeverityModerate,
		models.SeverityHigh,
		models.SeverityBreakable,
	}
	for _, sev := range severities {
		issues := []models.Issue{{Severity: sev}}
		l := sev.Level()
		assert.False(t, ShouldFail(issues, l), "%s with allowed=%d", sev, l)
		assert.True(t, ShouldFail(issues, l-1), "%s with allowed=%d", sev, l-1)
	}
}

func TestResolveMaxLevel(t *testing.T) {
	assert.Equal(t, 3, ResolveMaxLevel(nil, 3))
	assert.Equal(t, 3, ResolveMaxLevel(&PolicyConfig{}, 3))
	zero := 0
	assert.Equal(t, 0, ResolveMaxLevel(&PolicyConfig{MaxLevelAllowed: &zero}, 3))
}

func TestResolveDisableOpinionated(t *testing.T) {
	assert.False(t, ResolveDisableOpinionated(nil, false))
	assert.True(t, ResolveDisableOpinionated(nil, true))
	assert.True(t, ResolveDisableOpinionated(&PolicyConfig{DisableOpinionated: true}, false))
}
