package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityLevel(t *testing.T) {
	assert.Equal(t, 1, SeverityMinor.Level())
	assert.Equal(t, 2, SeverityModerate.Level())
	assert.Equal(t, 3, SeverityHigh.Level())
	assert.Equal(t, 4, SeverityBreakable.Level())
	assert.Equal(t, MaxLevel, Severity("CRITICAL").Level())
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity(" high ")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, sev)

	_, err = ParseSeverity("critical")
	assert.Error(t, err)
}

func TestResourceRecordAccessors(t *testing.T) {
	r := ResourceRecord{Path: "a.yaml", Object: map[string]any{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata":   map[string]any{"name": "web", "namespace": "prod"},
	}}
	assert.Equal(t, "apps/v1", r.APIVersion())
	assert.Equal(t, "Deployment", r.Kind())
	assert.Equal(t, "web", r.Name())
	assert.Equal(t, "web", r.WorkloadName())
	assert.Equal(t, "prod", r.Namespace())

	r.Object["name"] = "legacy-name"
	assert.Equal(t, "legacy-name", r.WorkloadName())

	var empty ResourceRecord
	assert.Empty(t, empty.Kind())
	assert.Empty(t, empty.Name())

	wrongType := ResourceRecord{Object: map[string]any{"apiVersion": 1.0}}
	assert.Empty(t, wrongType.APIVersion())
}

func TestValidationResultJSON_Error(t *testing.T) {
	failed := &ValidationResult{
		Issues:      []Issue{},
		Data:        []UnitData{},
		ExitingCode: 1,
		Error:       errors.New("load unit app: broken"),
	}
	raw, err := json.Marshal(failed)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "load unit app: broken", decoded["error"])
	assert.Equal(t, float64(1), decoded["exitingCode"])
	assert.Contains(t, decoded, "issues")

	raw, err = json.Marshal(ValidationResult{Issues: []Issue{}, Data: []UnitData{}})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"error"`)
}

