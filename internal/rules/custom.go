package rules

import (
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// CustomRuleKind selects the family of a forbidden-variable rule.
type CustomRuleKind string

const (
	// ForbiddenVariable fires whenever the variable is present.
	ForbiddenVariable CustomRuleKind = "forbiddenVariable"

	// ForbiddenVariableWithValue fires when the variable resolves to Value.
	ForbiddenVariableWithValue CustomRuleKind = "forbiddenVariableWithValue"
)

// Valid reports whether k is a known custom rule family.
func (k CustomRuleKind) Valid() bool {
	return k == ForbiddenVariable || k == ForbiddenVariableWithValue
}

// CustomRuleSpec parametrizes a forbidden-variable rule.
type CustomRuleSpec struct {
	// Variable is the env variable name the rule forbids.
	Variable string

	// Value is matched exactly against the resolved value. Only used by the
	// ForbiddenVariableWithValue family.
	Value string

	// Workload restricts the rule to containers of the named workload.
	// Empty applies the rule to every container.
	Workload string

	Severity    models.Severity
	Opinionated bool
	References  []string

	// Commentary is appended to the long description.
	Commentary string
}

// validate checks the fields every custom rule needs.
func (s CustomRuleSpec) validate() error {
	if s.Variable == "" {
		return errors.New("custom rule: variable must not be empty")
	}
	if !s.Severity.Valid() {
		return fmt.Errorf("custom rule %s: invalid severity %q", s.Variable, s.Severity)
	}
	return nil
}

// CustomRule is a registered forbidden-variable rule. It reads only the
// resolved variables of the unit.
type CustomRule struct {
	code string
	kind CustomRuleKind
	spec CustomRuleSpec
}

func (r *CustomRule) ID() string { return r.code }

func (r *CustomRule) Name() string {
	if r.kind == ForbiddenVariableWithValue {
		return fmt.Sprintf("Forbidden Variable %s=%s", r.spec.Variable, r.spec.Value)
	}
	return fmt.Sprintf("Forbidden Variable %s", r.spec.Variable)
}

func (r *CustomRule) Evaluate(ctx RuleContext) []models.Issue {
	if ctx.Variables == nil {
		return nil
	}
	var issues []models.Issue
	for _, cv := range ctx.Variables.Containers {
		c := cv.Container
		if r.spec.Workload != "" && c.WorkloadName != r.spec.Workload {
			continue
		}
		rv, present := cv.Resolved[r.spec.Variable]
		if !present || !r.matches(rv) {
			continue
		}
		issues = append(issues, r.issue(c))
	}
	return issues
}

func (r *CustomRule) matches(rv models.ResolvedVariable) bool {
	if r.kind != ForbiddenVariableWithValue {
		return true
	}
	return rv.Solved && rv.Value != nil && *rv.Value == r.spec.Value
}

func (r *CustomRule) issue(c models.ContainerRecord) models.Issue {
	short := fmt.Sprintf("Variable '%s' is not allowed.", r.spec.Variable)
	long := fmt.Sprintf("Container '%s' at '%s' declares forbidden variable '%s'.", c.Name, c.WorkloadName, r.spec.Variable)
	if r.kind == ForbiddenVariableWithValue {
		short = fmt.Sprintf("Variable '%s' is not allowed with value '%s'.", r.spec.Variable, r.spec.Value)
		long = fmt.Sprintf("Container '%s' at '%s' declares forbidden variable '%s' with value '%s'.",
			c.Name, c.WorkloadName, r.spec.Variable, r.spec.Value)
	}
	if r.spec.Commentary != "" {
		long += " " + r.spec.Commentary
	}
	refs := append([]string{}, r.spec.References...)
	return models.Issue{
		Severity:         r.spec.Severity,
		Code:             r.code,
		ShortDescription: short,
		LongDescription:  long,
		FoundAt:          c.File,
		References:       refs,
		Opinionated:      r.spec.Opinionated,
	}
}
