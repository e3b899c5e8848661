package rules

import (
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// resourceKey identifies a resource for duplicate detection. Namespace is not
// part of the key.
type resourceKey struct {
	kind string
	name string
}

// K8SDuplicatedResourceRule fires for every record that repeats the
// (kind, metadata.name) of an earlier record in the same unit. The earliest
// record is canonical and is always reported first in FoundAt.
type K8SDuplicatedResourceRule struct{}

func (r K8SDuplicatedResourceRule) ID() string   { return CodeDuplicatedResource }
func (r K8SDuplicatedResourceRule) Name() string { return "Duplicated Resource" }

func (r K8SDuplicatedResourceRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	first := make(map[resourceKey]models.ResourceRecord)
	for _, res := range ctx.Resources {
		kind := res.Kind()
		if kind == "" {
			continue
		}
		key := resourceKey{kind: kind, name: res.Name()}
		canonical, seen := first[key]
		if !seen {
			first[key] = res
			continue
		}
		issues = append(issues, duplicatedResourceIssue(canonical.Path, res.Path, key.name, kind))
	}
	return issues
}
