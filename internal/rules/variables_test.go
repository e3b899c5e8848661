package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

const variablesUnit = `
apiVersion: v1
kind: ConfigMap
metadata: {name: settings}
data:
  DB_HOST: db.internal
  DB_PORT: 5432
  UNUSED_B: b
  UNUSED_A: a
---
apiVersion: apps/v1
kind: Deployment
metadata: {name: api}
spec:
  template:
    spec:
      containers:
        - name: api
          image: "api:1"
          env:
            - name: DB_HOST
              valueFrom:
                configMapKeyRef: {name: settings, key: DB_HOST}
            - name: DB_PORT
              valueFrom:
                configMapKeyRef: {name: settings, key: DB_PORT}
            - name: MODE
              value: production
            - name: POD_NAME
              valueFrom:
                fieldRef: {fieldPath: metadata.name}
            - name: CACHE
              valueFrom:
                configMapKeyRef: {name: cache, key: CACHE}
            - name: DB_USER
              valueFrom:
                configMapKeyRef: {name: settings, key: DB_USER}
`

func TestVariableGraph_Resolution(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", variablesUnit})

	vars := ctx.Variables.SolvedVariablesByContainer["api"]
	require.Len(t, vars, 6)

	require.True(t, vars["DB_HOST"].Solved)
	assert.Equal(t, "db.internal", *vars["DB_HOST"].Value)
	require.True(t, vars["DB_PORT"].Solved)
	assert.Equal(t, "5432", *vars["DB_PORT"].Value)
	require.True(t, vars["MODE"].Solved)
	assert.Equal(t, "production", *vars["MODE"].Value)

	for _, name := range []string{"POD_NAME", "CACHE", "DB_USER"} {
		assert.False(t, vars[name].Solved, name)
		assert.Nil(t, vars[name].Value, name)
	}
}

func TestVariableGraph_EveryEnvEntryResolved(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", variablesUnit})

	for _, c := range ctx.Workloads.Containers {
		resolved := ctx.Variables.SolvedVariablesByContainer[c.Name]
		for _, env := range c.Env {
			_, ok := resolved[env.Name]
			assert.True(t, ok, "variable %s of %s has no resolution", env.Name, c.Name)
		}
	}
}

func TestVariableGraph_ConfigMapRefWinsOverValue(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", `
apiVersion: v1
kind: ConfigMap
metadata: {name: settings}
data: {MODE: from-configmap}
---
apiVersion: apps/v1
kind: Deployment
metadata: {name: api}
spec:
  template:
    spec:
      containers:
        - name: api
          image: "api:1"
          env:
            - name: MODE
              value: inline
              valueFrom:
                configMapKeyRef: {name: settings, key: MODE}
`})

	rv := ctx.Variables.SolvedVariablesByContainer["api"]["MODE"]
	require.True(t, rv.Solved)
	assert.Equal(t, "from-configmap", *rv.Value)
}

func TestVariableGraph_UnitData(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", variablesUnit})

	data := ctx.Variables.UnitData("app")
	assert.Equal(t, "app", data.Directory)
	assert.Equal(t, []string{"DB_HOST", "DB_PORT", "UNUSED_A", "UNUSED_B"}, data.ConfigMapsVariables["settings"])
	assert.Equal(t, []string{"DB_HOST", "DB_PORT"}, data.ConfigMapsUsedVariables["settings"])
	assert.Contains(t, data.SolvedVariablesByContainer, "api")

	// the projection is a copy
	data.ConfigMapsVariables["settings"][0] = "changed"
	assert.Equal(t, "DB_HOST", ctx.Variables.ConfigMapsVariables["settings"][0])
}

// ── k8s011 ───────────────────────────────────────────────────────────────────

func TestConfigMapNotFound(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", variablesUnit})

	issues := rules.K8SConfigMapNotFoundRule{}.Evaluate(ctx)
	require.Len(t, issues, 1)
	i := issues[0]
	assert.Equal(t, "k8s011", i.Code)
	assert.True(t, i.Opinionated)
	assert.Equal(t, "ConfigMap 'cache' not found locally.", i.ShortDescription)
	assert.Equal(t, "app/unit.yaml", i.FoundAt)
}

// ── k8s012 ───────────────────────────────────────────────────────────────────

func TestVariableNotInConfigMap(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", variablesUnit})

	issues := rules.K8SVariableNotInConfigMapRule{}.Evaluate(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "Referred variable 'DB_USER' not found at 'settings'.", issues[0].ShortDescription)
}

// ── k8s013 ───────────────────────────────────────────────────────────────────

func TestUnusedConfigMapVariable_CompleteAndSorted(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", variablesUnit})

	issues := rules.K8SUnusedConfigMapVariableRule{}.Evaluate(ctx)
	require.Len(t, issues, 2)
	assert.Equal(t, "Variable 'UNUSED_A' of configmap 'settings' isn't used.", issues[0].ShortDescription)
	assert.Equal(t, "Variable 'UNUSED_B' of configmap 'settings' isn't used.", issues[1].ShortDescription)

	// every defined key is either used or reported
	data := ctx.Variables.UnitData("app")
	reported := len(issues)
	assert.Equal(t, len(data.ConfigMapsVariables["settings"]), len(data.ConfigMapsUsedVariables["settings"])+reported)
}

func TestUnusedConfigMapVariable_DuplicateConfigMapReportedOnce(t *testing.T) {
	ctx := unitCtx(t,
		fixture{"app/a.yaml", settingsConfigMap},
		fixture{"app/b.yaml", settingsConfigMap},
	)

	issues := rules.K8SUnusedConfigMapVariableRule{}.Evaluate(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "app/a.yaml", issues[0].FoundAt)
}

func TestVariableRules_NoGraph(t *testing.T) {
	var ctx rules.RuleContext
	assert.Empty(t, rules.K8SConfigMapNotFoundRule{}.Evaluate(ctx))
	assert.Empty(t, rules.K8SVariableNotInConfigMapRule{}.Evaluate(ctx))
	assert.Empty(t, rules.K8SUnusedConfigMapVariableRule{}.Evaluate(ctx))
}

func TestVariableGraph_NullValueUnresolved(t *testing.T) {
	ctx := unitCtx(t, fixture{"app/unit.yaml", `
apiVersion: apps/v1
kind: Deployment
metadata: {name: api}
spec:
  template:
    spec:
      containers:
        - name: api
          image: "api:1"
          env:
            - name: NULLV
              value: null
            - name: EMPTY
              value: ""
            - name: PORT
              value: 8080
`})

	vars := ctx.Variables.SolvedVariablesByContainer["api"]
	require.Len(t, vars, 3)

	assert.False(t, vars["NULLV"].Solved)
	assert.Nil(t, vars["NULLV"].Value)

	require.True(t, vars["EMPTY"].Solved)
	assert.Equal(t, "", *vars["EMPTY"].Value)
	require.True(t, vars["PORT"].Solved)
	assert.Equal(t, "8080", *vars["PORT"].Value)
}

func TestVariableGraph_NullValueDoesNotMatchEmptyForbiddenValue(t *testing.T) {
	reg := rules.NewRegistry()
	_, err := reg.RegisterForbiddenVariableWithValue(rules.CustomRuleSpec{
		Variable: "NULLV",
		Value:    "",
		Severity: models.SeverityModerate,
	})
	require.NoError(t, err)

	assert.Empty(t, evaluate(t, reg, unitCtx(t, fixture{"app/unit.yaml", `
apiVersion: apps/v1
kind: Deployment
metadata: {name: api}
spec:
  template:
    spec:
      containers:
        - name: api
          image: "api:1"
          env:
            - name: NULLV
              value: null
`})))
}
