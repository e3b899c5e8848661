package rules

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// DefaultRegoQuery is evaluated when a RegoRuleSpec sets no query.
const DefaultRegoQuery = "data.manifestlint.deny"

// RegoRuleSpec describes a policy written in Rego. The query must yield a
// set (or array) whose elements are either message strings or objects with a
// "msg" field and an optional "foundAt" field.
type RegoRuleSpec struct {
	Name   string
	Module string
	Query  string

	Severity    models.Severity
	Opinionated bool
	References  []string
}

// RegoRule evaluates a prepared Rego query against the resolved variables of
// a unit.
type RegoRule struct {
	code  string
	spec  RegoRuleSpec
	query rego.PreparedEvalQuery
}

// compileRego prepares spec for evaluation. The returned rule has no code yet.
func compileRego(ctx context.Context, spec RegoRuleSpec) (*RegoRule, error) {
	if spec.Query == "" {
		spec.Query = DefaultRegoQuery
	}
	prepared, err := rego.New(
		rego.Query(spec.Query),
		rego.Module(spec.Name+".rego", spec.Module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile rego policy %s: %w", spec.Name, err)
	}
	return &RegoRule{spec: spec, query: prepared}, nil
}

func (r *RegoRule) ID() string   { return r.code }
func (r *RegoRule) Name() string { return fmt.Sprintf("Rego Policy %s", r.spec.Name) }

// Evaluate runs the policy with a background context. Evaluation errors
// panic; RuleSet calls EvaluateContext instead and returns them.
func (r *RegoRule) Evaluate(ctx RuleContext) []models.Issue {
	issues, err := r.EvaluateContext(context.Background(), ctx)
	if err != nil {
		panic(err)
	}
	return issues
}

// EvaluateContext runs the policy and converts every denial into an issue.
func (r *RegoRule) EvaluateContext(ctx context.Context, rc RuleContext) ([]models.Issue, error) {
	results, err := r.query.Eval(ctx, rego.EvalInput(regoInput(rc)))
	if err != nil {
		return nil, fmt.Errorf("evaluate rego policy %s: %w", r.spec.Name, err)
	}

	var issues []models.Issue
	for _, res := range results {
		for _, expr := range res.Expressions {
			denials, err := parseDenials(expr.Value)
			if err != nil {
				return nil, fmt.Errorf("rego policy %s: %w", r.spec.Name, err)
			}
			for _, d := range denials {
				foundAt := d.foundAt
				if foundAt == "" {
					foundAt = rc.Unit
				}
				issues = append(issues, models.Issue{
					Severity:         r.spec.Severity,
					Code:             r.code,
					ShortDescription: d.msg,
					LongDescription:  fmt.Sprintf("Policy '%s' denied: %s", r.spec.Name, d.msg),
					FoundAt:          foundAt,
					References:       append([]string{}, r.spec.References...),
					Opinionated:      r.spec.Opinionated,
				})
			}
		}
	}
	return issues, nil
}

type denial struct {
	msg     string
	foundAt string
}

func parseDenials(value any) ([]denial, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("query result must be a set of denials, got %T", value)
	}
	denials := make([]denial, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			denials = append(denials, denial{msg: v})
		case map[string]any:
			msg, _ := v["msg"].(string)
			if msg == "" {
				return nil, fmt.Errorf("denial object without msg: %v", v)
			}
			foundAt, _ := v["foundAt"].(string)
			denials = append(denials, denial{msg: msg, foundAt: foundAt})
		default:
			return nil, fmt.Errorf("unsupported denial type %T", item)
		}
	}
	sort.SliceStable(denials, func(i, j int) bool { return denials[i].msg < denials[j].msg })
	return denials, nil
}

// regoInput exposes the unit's containers and their resolved variables.
//
//	{
//	  "unit": "deploy/app",
//	  "containers": [{"name", "image", "file", "workload", "workloadKind",
//	                  "variables": {"NAME": {"solved": true, "value": "x"}}}],
//	  "configMaps": {"cm": ["KEY"]}
//	}
func regoInput(rc RuleContext) map[string]any {
	containers := []any{}
	configMaps := map[string]any{}
	if rc.Variables != nil {
		for _, cv := range rc.Variables.Containers {
			vars := make(map[string]any, len(cv.Resolved))
			for name, rv := range cv.Resolved {
				entry := map[string]any{"solved": rv.Solved}
				if rv.Value != nil {
					entry["value"] = *rv.Value
				}
				vars[name] = entry
			}
			c := cv.Container
			containers = append(containers, map[string]any{
				"name":         c.Name,
				"image":        c.Image,
				"file":         c.File,
				"workload":     c.WorkloadName,
				"workloadKind": c.WorkloadKind,
				"variables":    vars,
			})
		}
		for name, keys := range rc.Variables.ConfigMapsVariables {
			list := make([]any, len(keys))
			for i, k := range keys {
				list[i] = k
			}
			configMaps[name] = list
		}
	}
	return map[string]any{
		"unit":       rc.Unit,
		"containers": containers,
		"configMaps": configMaps,
	}
}
