package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

const latestUnit = `
apiVersion: apps/v1
kind: Deployment
metadata: {name: web}
spec:
  template:
    spec:
      containers:
        - name: web
          image: "nginx:latest"
          env:
            - {name: DEBUG, value: "true"}
`

func builtinRegistry() *rules.Registry {
	return rules.NewRegistry(
		rules.K8SRecommendedAPIVersionRule{},
		rules.K8SLatestTagRule{},
		rules.K8SCommandOverrideRule{},
	)
}

func TestRegistry_DuplicateIDPanics(t *testing.T) {
	assert.Panics(t, func() {
		rules.NewRegistry(rules.K8SLatestTagRule{}, rules.K8SLatestTagRule{})
	})
}

func TestRegistry_OverrideUnknownCode(t *testing.T) {
	err := builtinRegistry().Override("k8s999", rules.Override{Enabled: boolPtr(false)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "k8s999")
}

func TestRegistry_OverrideLastWriteWinsPerField(t *testing.T) {
	reg := builtinRegistry()
	require.NoError(t, reg.Override("k8s007", rules.Override{Enabled: boolPtr(false)}))
	require.NoError(t, reg.Override("k8s007", rules.Override{Opinionated: boolPtr(true)}))

	ctx := unitCtx(t, fixture{"app/deploy.yaml", latestUnit})
	assert.Empty(t, evaluate(t, reg, ctx))

	require.NoError(t, reg.Override("k8s007", rules.Override{Enabled: boolPtr(true)}))
	issues := evaluate(t, reg, ctx)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Opinionated)
}

func TestRegistry_OpinionatedOverrideCopiesIssues(t *testing.T) {
	reg := builtinRegistry()
	require.NoError(t, reg.Override("k8s007", rules.Override{Opinionated: boolPtr(true)}))

	ctx := unitCtx(t, fixture{"app/deploy.yaml", latestUnit})
	issues := evaluate(t, reg, ctx)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Opinionated)

	// the rule itself still reports the catalog value
	direct := rules.K8SLatestTagRule{}.Evaluate(ctx)
	require.Len(t, direct, 1)
	assert.False(t, direct[0].Opinionated)
}

func TestRegistry_CustomCodesPerInstance(t *testing.T) {
	reg := builtinRegistry()
	first, err := reg.RegisterForbiddenVariable(rules.CustomRuleSpec{Variable: "A", Severity: models.SeverityMinor})
	require.NoError(t, err)
	second, err := reg.RegisterForbiddenVariableWithValue(rules.CustomRuleSpec{Variable: "B", Value: "x", Severity: models.SeverityMinor})
	require.NoError(t, err)
	assert.Equal(t, "custom001", first)
	assert.Equal(t, "custom002", second)

	other := rules.NewRegistry()
	code, err := other.RegisterForbiddenVariable(rules.CustomRuleSpec{Variable: "A", Severity: models.SeverityMinor})
	require.NoError(t, err)
	assert.Equal(t, "custom001", code)
}

func TestRegistry_EvaluationOrder(t *testing.T) {
	reg := builtinRegistry()
	_, err := reg.RegisterForbiddenVariable(rules.CustomRuleSpec{Variable: "DEBUG", Severity: models.SeverityMinor})
	require.NoError(t, err)

	issues := evaluate(t, reg, unitCtx(t, fixture{"app/deploy.yaml", latestUnit}))
	assert.Equal(t, []string{"k8s007", "custom001"}, codes(issues))
}

func TestRegistry_SnapshotIsImmutable(t *testing.T) {
	reg := builtinRegistry()
	snap := reg.Snapshot()

	require.NoError(t, reg.Override("k8s007", rules.Override{Enabled: boolPtr(false)}))
	_, err := reg.RegisterForbiddenVariable(rules.CustomRuleSpec{Variable: "DEBUG", Severity: models.SeverityMinor})
	require.NoError(t, err)

	infos := snap.Rules()
	require.Len(t, infos, 3)
	for _, info := range infos {
		assert.True(t, info.Enabled, info.Code)
	}

	latest := reg.Snapshot().Rules()
	require.Len(t, latest, 4)
	assert.Equal(t, rules.RuleInfo{Code: "k8s007", Name: "Container Uses Latest Tag", Enabled: false}, latest[1])
	assert.Equal(t, "custom001", latest[3].Code)
}

func TestRuleSet_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := builtinRegistry().Snapshot().Evaluate(ctx, unitCtx(t, fixture{"app/deploy.yaml", latestUnit}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog(t *testing.T) {
	entries := rules.Catalog()
	require.Len(t, entries, 14)
	assert.Equal(t, "k8s001", entries[0].Code)
	assert.Equal(t, "k8s014", entries[13].Code)

	codesList := rules.BuiltinCodes()
	assert.IsIncreasing(t, codesList)
}
