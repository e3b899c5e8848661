package rules

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// ContainerVariables is one container with its resolved environment.
type ContainerVariables struct {
	Container models.ContainerRecord

	// Names lists the variable names in env order, each once.
	Names []string

	// Resolved maps each variable name to its resolution. When a name repeats
	// in the container env, the last entry wins.
	Resolved map[string]models.ResolvedVariable
}

// VariableReference is an env entry whose ConfigMap reference did not resolve.
type VariableReference struct {
	Container models.ContainerRecord
	Variable  string
	Ref       models.ConfigMapKeyRef
}

// UnusedKey is a ConfigMap key that no container references.
type UnusedKey struct {
	ConfigMap string
	Path      string
	Key       string
}

// VariableGraph is the per-unit data-flow view between container env
// variables and the ConfigMaps supplying them.
type VariableGraph struct {
	// Containers holds every well-formed container in workload order.
	Containers []ContainerVariables

	// SolvedVariablesByContainer maps container name to variable resolutions.
	// Containers sharing a name share one entry.
	SolvedVariablesByContainer map[string]map[string]models.ResolvedVariable

	// ConfigMaps holds the canonical (first-seen) record for each name.
	ConfigMaps []models.ConfigMapRecord

	// ConfigMapsVariables and ConfigMapsUsedVariables hold sorted key lists per ConfigMap.
	ConfigMapsVariables     map[string][]string
	ConfigMapsUsedVariables map[string][]string

	// MissingConfigMaps lists references to ConfigMaps absent from the unit.
	MissingConfigMaps []VariableReference

	// MissingKeys lists references to keys absent from an existing ConfigMap.
	MissingKeys []VariableReference

	used map[string]sets.Set[string]
}

// BuildVariableGraph resolves every env entry of containers against
// configMaps in a single pass. Resolution never fails: anything that cannot
// be traced yields Solved=false.
func BuildVariableGraph(containers []models.ContainerRecord, configMaps []models.ConfigMapRecord) *VariableGraph {
	g := &VariableGraph{
		SolvedVariablesByContainer: make(map[string]map[string]models.ResolvedVariable),
		ConfigMapsVariables:        make(map[string][]string),
		ConfigMapsUsedVariables:    make(map[string][]string),
		used:                       make(map[string]sets.Set[string]),
	}

	byName := make(map[string]models.ConfigMapRecord, len(configMaps))
	for _, cm := range configMaps {
		if _, dup := byName[cm.Name]; dup {
			continue
		}
		byName[cm.Name] = cm
		g.ConfigMaps = append(g.ConfigMaps, cm)
		g.used[cm.Name] = sets.New[string]()
	}

	for _, c := range containers {
		cv := ContainerVariables{
			Container: c,
			Resolved:  make(map[string]models.ResolvedVariable, len(c.Env)),
		}
		solved, ok := g.SolvedVariablesByContainer[c.Name]
		if !ok {
			solved = make(map[string]models.ResolvedVariable)
			g.SolvedVariablesByContainer[c.Name] = solved
		}
		for _, env := range c.Env {
			rv := g.resolve(c, env, byName)
			if _, seen := cv.Resolved[env.Name]; !seen {
				cv.Names = append(cv.Names, env.Name)
			}
			cv.Resolved[env.Name] = rv
			solved[env.Name] = rv
		}
		g.Containers = append(g.Containers, cv)
	}

	for _, cm := range g.ConfigMaps {
		g.ConfigMapsVariables[cm.Name] = sets.List(cm.Keys)
		g.ConfigMapsUsedVariables[cm.Name] = sets.List(g.used[cm.Name])
	}
	return g
}

func (g *VariableGraph) resolve(c models.ContainerRecord, env models.EnvVarRef, byName map[string]models.ConfigMapRecord) models.ResolvedVariable {
	if ref := env.ConfigMapRef; ref != nil {
		cm, ok := byName[ref.Name]
		if !ok {
			g.MissingConfigMaps = append(g.MissingConfigMaps, VariableReference{Container: c, Variable: env.Name, Ref: *ref})
			return models.ResolvedVariable{}
		}
		if !cm.Keys.Has(ref.Key) {
			g.MissingKeys = append(g.MissingKeys, VariableReference{Container: c, Variable: env.Name, Ref: *ref})
			return models.ResolvedVariable{}
		}
		g.used[cm.Name].Insert(ref.Key)
		v := cm.Values[ref.Key]
		return models.ResolvedVariable{Solved: true, Value: &v}
	}
	if env.Value != nil {
		v := *env.Value
		return models.ResolvedVariable{Solved: true, Value: &v}
	}
	return models.ResolvedVariable{}
}

// UnusedKeys returns the keys never referenced by any container, grouped by
// ConfigMap in first-seen order and sorted within each ConfigMap.
func (g *VariableGraph) UnusedKeys() []UnusedKey {
	var unused []UnusedKey
	for _, cm := range g.ConfigMaps {
		keys := sets.List(cm.Keys.Difference(g.used[cm.Name]))
		for _, k := range keys {
			unused = append(unused, UnusedKey{ConfigMap: cm.Name, Path: cm.Path, Key: k})
		}
	}
	return unused
}

// UnitData projects the graph into the diagnostic record of unit dir.
func (g *VariableGraph) UnitData(dir string) models.UnitData {
	data := models.UnitData{
		Directory:                  dir,
		ConfigMapsVariables:        make(map[string][]string, len(g.ConfigMapsVariables)),
		ConfigMapsUsedVariables:    make(map[string][]string, len(g.ConfigMapsUsedVariables)),
		SolvedVariablesByContainer: make(map[string]map[string]models.ResolvedVariable, len(g.SolvedVariablesByContainer)),
	}
	for name, keys := range g.ConfigMapsVariables {
		data.ConfigMapsVariables[name] = append([]string(nil), keys...)
	}
	for name, keys := range g.ConfigMapsUsedVariables {
		data.ConfigMapsUsedVariables[name] = append([]string(nil), keys...)
	}
	for container, vars := range g.SolvedVariablesByContainer {
		copied := make(map[string]models.ResolvedVariable, len(vars))
		for k, v := range vars {
			copied[k] = v
		}
		data.SolvedVariablesByContainer[container] = copied
	}
	return data
}

// ContainerNames returns the keys of SolvedVariablesByContainer, sorted.
func (g *VariableGraph) ContainerNames() []string {
	names := make([]string, 0, len(g.SolvedVariablesByContainer))
	for n := range g.SolvedVariablesByContainer {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ── k8s011 ───────────────────────────────────────────────────────────────────

// K8SConfigMapNotFoundRule fires for each env entry referring to a ConfigMap
// that is not declared in the unit.
type K8SConfigMapNotFoundRule struct{}

func (r K8SConfigMapNotFoundRule) ID() string   { return CodeConfigMapNotFound }
func (r K8SConfigMapNotFoundRule) Name() string { return "ConfigMap Not Found Locally" }

func (r K8SConfigMapNotFoundRule) Evaluate(ctx RuleContext) []models.Issue {
	if ctx.Variables == nil {
		return nil
	}
	var issues []models.Issue
	for _, ref := range ctx.Variables.MissingConfigMaps {
		c := ref.Container
		issues = append(issues, configMapNotFoundIssue(c.File, c.WorkloadName, c.Name, ref.Variable, ref.Ref.Name))
	}
	return issues
}

// ── k8s012 ───────────────────────────────────────────────────────────────────

// K8SVariableNotInConfigMapRule fires for each env entry referring to a key
// the target ConfigMap does not define.
type K8SVariableNotInConfigMapRule struct{}

func (r K8SVariableNotInConfigMapRule) ID() string   { return CodeVariableNotInConfigMap }
func (r K8SVariableNotInConfigMapRule) Name() string { return "Variable Not Found At ConfigMap" }

func (r K8SVariableNotInConfigMapRule) Evaluate(ctx RuleContext) []models.Issue {
	if ctx.Variables == nil {
		return nil
	}
	var issues []models.Issue
	for _, ref := range ctx.Variables.MissingKeys {
		c := ref.Container
		issues = append(issues, variableNotInConfigMapIssue(
			c.File, c.WorkloadName, c.Name, ref.Variable, ref.Ref.Key, ref.Ref.Name))
	}
	return issues
}

// ── k8s013 ───────────────────────────────────────────────────────────────────

// K8SUnusedConfigMapVariableRule fires once for each ConfigMap key that no
// container references.
type K8SUnusedConfigMapVariableRule struct{}

func (r K8SUnusedConfigMapVariableRule) ID() string   { return CodeUnusedConfigMapVariable }
func (r K8SUnusedConfigMapVariableRule) Name() string { return "Unused ConfigMap Variable" }

func (r K8SUnusedConfigMapVariableRule) Evaluate(ctx RuleContext) []models.Issue {
	if ctx.Variables == nil {
		return nil
	}
	var issues []models.Issue
	for _, k := range ctx.Variables.UnusedKeys() {
		issues = append(issues, unusedConfigMapVariableIssue(k.Path, k.Key, k.ConfigMap))
	}
	return issues
}
