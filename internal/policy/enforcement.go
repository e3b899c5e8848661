package policy

import (
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// MaxLevel returns the highest severity level among issues, or 0 when
// issues is empty.
func MaxLevel(issues []models.Issue) int {
	maxLevel := 0
	for _, i := range issues {
		if l := i.Severity.Level(); l > maxLevel {
			maxLevel = l
		}
	}
	return maxLevel
}

// ShouldFail reports whether any issue has a severity level strictly above
// maxLevelAllowed. An empty issue list never fails.
func ShouldFail(issues []models.Issue, maxLevelAllowed int) bool {
	return MaxLevel(issues) > maxLevelAllowed
}
