package rules

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// ContextRule is a Rule whose evaluation can fail or block, such as a Rego
// policy. RuleSet prefers EvaluateContext when a rule implements it.
type ContextRule interface {
	Rule
	EvaluateContext(ctx context.Context, rc RuleContext) ([]models.Issue, error)
}

// Override changes the behaviour of a registered rule. Nil fields leave the
// current setting untouched.
type Override struct {
	Enabled     *bool
	Opinionated *bool
}

// Registry is an ordered, in-memory rule registry.
// Rules are evaluated in registration order: built-ins first, then custom
// rules as they were registered.
// Register panics on duplicate rule IDs to catch wiring mistakes at startup.
type Registry struct {
	mu        sync.Mutex
	rules     []Rule
	index     map[string]struct{}
	overrides map[string]Override

	// counter feeds generated custom rule codes.
	counter atomic.Uint64
}

// NewRegistry returns a registry holding builtins in the given order.
func NewRegistry(builtins ...Rule) *Registry {
	r := &Registry{
		index:     make(map[string]struct{}),
		overrides: make(map[string]Override),
	}
	for _, rule := range builtins {
		r.Register(rule)
	}
	return r
}

// Register adds rule to the registry. Panics if the same ID is registered twice.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[rule.ID()]; exists {
		panic(fmt.Sprintf("duplicate rule ID: %q", rule.ID()))
	}
	r.rules = append(r.rules, rule)
	r.index[rule.ID()] = struct{}{}
}

// Override sets enabled/opinionated for the rule with the given code.
// Later calls win field by field.
func (r *Registry) Override(code string, o Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[code]; !exists {
		return fmt.Errorf("override: unknown rule code %q", code)
	}
	cur := r.overrides[code]
	if o.Enabled != nil {
		v := *o.Enabled
		cur.Enabled = &v
	}
	if o.Opinionated != nil {
		v := *o.Opinionated
		cur.Opinionated = &v
	}
	r.overrides[code] = cur
	return nil
}

// RegisterForbiddenVariable registers a rule that fires whenever spec.Variable
// is present in a container, and returns its generated code.
func (r *Registry) RegisterForbiddenVariable(spec CustomRuleSpec) (string, error) {
	return r.registerCustom(ForbiddenVariable, spec)
}

// RegisterForbiddenVariableWithValue registers a rule that fires when
// spec.Variable resolves to exactly spec.Value, and returns its generated code.
func (r *Registry) RegisterForbiddenVariableWithValue(spec CustomRuleSpec) (string, error) {
	return r.registerCustom(ForbiddenVariableWithValue, spec)
}

// registerCustom consumes no code when spec is invalid.
func (r *Registry) registerCustom(kind CustomRuleKind, spec CustomRuleSpec) (string, error) {
	if err := spec.validate(); err != nil {
		return "", err
	}
	rule := &CustomRule{code: r.nextCode(), kind: kind, spec: spec}
	r.Register(rule)
	return rule.code, nil
}

// RegisterRego compiles spec and registers it under a generated code.
// No code is consumed when compilation fails.
func (r *Registry) RegisterRego(ctx context.Context, spec RegoRuleSpec) (string, error) {
	rule, err := compileRego(ctx, spec)
	if err != nil {
		return "", err
	}
	rule.code = r.nextCode()
	r.Register(rule)
	return rule.code, nil
}

func (r *Registry) nextCode() string {
	return fmt.Sprintf("custom%03d", r.counter.Add(1))
}

// Snapshot freezes the registry state for one run.
func (r *Registry) Snapshot() *RuleSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := &RuleSet{entries: make([]ruleEntry, 0, len(r.rules))}
	for _, rule := range r.rules {
		e := ruleEntry{rule: rule, enabled: true}
		if o, ok := r.overrides[rule.ID()]; ok {
			if o.Enabled != nil {
				e.enabled = *o.Enabled
			}
			e.opinionated = o.Opinionated
		}
		set.entries = append(set.entries, e)
	}
	return set
}

type ruleEntry struct {
	rule        Rule
	enabled     bool
	opinionated *bool
}

// RuleInfo describes one rule of a RuleSet.
type RuleInfo struct {
	Code    string
	Name    string
	Enabled bool
}

// RuleSet is an immutable view of a Registry taken by Snapshot.
type RuleSet struct {
	entries []ruleEntry
}

// Rules lists every rule of the set, disabled ones included.
func (s *RuleSet) Rules() []RuleInfo {
	infos := make([]RuleInfo, 0, len(s.entries))
	for _, e := range s.entries {
		infos = append(infos, RuleInfo{Code: e.rule.ID(), Name: e.rule.Name(), Enabled: e.enabled})
	}
	return infos
}

// Evaluate runs every enabled rule against rc in order and returns the merged
// issues. An opinionated override is stamped on copies of the issues a rule
// returns. The first rule error aborts the evaluation.
func (s *RuleSet) Evaluate(ctx context.Context, rc RuleContext) ([]models.Issue, error) {
	var issues []models.Issue
	for _, e := range s.entries {
		if !e.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var found []models.Issue
		if cr, ok := e.rule.(ContextRule); ok {
			var err error
			found, err = cr.EvaluateContext(ctx, rc)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", e.rule.ID(), err)
			}
		} else {
			found = e.rule.Evaluate(rc)
		}
		if e.opinionated != nil {
			for _, issue := range found {
				issue.Opinionated = *e.opinionated
				issues = append(issues, issue)
			}
			continue
		}
		issues = append(issues, found...)
	}
	return issues, nil
}
