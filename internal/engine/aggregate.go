package engine

import (
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/policy"
)

// Aggregate turns the concatenated issues of a run into its result.
// Opinionated issues are dropped first when opts.DisableOpinionated is set;
// the max level and exit code are computed over what remains.
func Aggregate(issues []models.Issue, data []models.UnitData, opts Options) *models.ValidationResult {
	kept := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if opts.DisableOpinionated && issue.Opinionated {
			continue
		}
		kept = append(kept, issue)
	}
	if data == nil {
		data = []models.UnitData{}
	}

	result := &models.ValidationResult{
		Issues:   kept,
		Data:     data,
		MaxLevel: policy.MaxLevel(kept),
	}
	if policy.ShouldFail(kept, opts.MaxLevelAllowed) {
		result.ExitingCode = 1
		result.Error = &ThresholdError{Level: result.MaxLevel, MaxAllowed: opts.MaxLevelAllowed}
	}
	return result
}
