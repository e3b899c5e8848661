package rules

import (
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// RuleContext carries everything derived from one analysis unit.
// It is the sole input to Rule.Evaluate and is built once per unit by
// NewRuleContext; rules must never read files or mutate the context.
type RuleContext struct {
	// Unit is the analysis unit (directory) the resources came from.
	Unit string

	// Resources holds every normalized record of the unit in first-seen order.
	Resources []models.ResourceRecord

	// Workloads is the container view over the unit's Deployments and CronJobs.
	Workloads WorkloadView

	// Variables is the resolution graph built from Workloads and ConfigMaps.
	Variables *VariableGraph
}

// NewRuleContext derives the workload view and variable graph for unit.
// Extraction and resolution happen once here so every rule sees the same data.
func NewRuleContext(unit string, resources []models.ResourceRecord) RuleContext {
	workloads := ExtractWorkloads(resources)
	return RuleContext{
		Unit:      unit,
		Resources: resources,
		Workloads: workloads,
		Variables: BuildVariableGraph(workloads.Containers, ExtractConfigMaps(resources)),
	}
}

// Rule is a single deterministic manifest check. Each rule reports exactly
// one issue code; its ID is that code.
// Rules must be stateless and safe to call concurrently.
type Rule interface {
	// ID returns the issue code this rule reports (e.g. "k8s007").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate inspects ctx and returns zero or more issues.
	Evaluate(ctx RuleContext) []models.Issue
}
