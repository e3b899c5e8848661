package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the impact level of an issue.
type Severity string

const (
	SeverityMinor     Severity = "MINOR"
	SeverityModerate  Severity = "MODERATE"
	SeverityHigh      Severity = "HIGH"
	SeverityBreakable Severity = "BREAKABLE"
)

// severityLevel maps each severity to its numeric level used by threshold checks.
var severityLevel = map[Severity]int{
	SeverityMinor:     1,
	SeverityModerate:  2,
	SeverityHigh:      3,
	SeverityBreakable: 4,
}

// MaxLevel is the highest severity level; allowing it tolerates every issue.
const MaxLevel = 4

// Level returns the numeric level of s (MINOR=1 ... BREAKABLE=4).
// Unknown severities count as BREAKABLE.
func (s Severity) Level() int {
	if l, ok := severityLevel[s]; ok {
		return l
	}
	return MaxLevel
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	_, ok := severityLevel[s]
	return ok
}

// ParseSeverity converts a case-insensitive severity name into a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", fmt.Errorf("invalid severity %q; valid values: MINOR, MODERATE, HIGH, BREAKABLE", s)
	}
	return sev, nil
}

// Issue is a single policy violation found in the analysed manifests.
// It is the atomic output unit of the rule engine and is never mutated after
// creation; overrides produce modified copies.
type Issue struct {
	Severity         Severity `json:"severity"`
	Code             string   `json:"code"`
	ShortDescription string   `json:"shortDescription"`
	LongDescription  string   `json:"longDescription"`
	FoundAt          string   `json:"foundAt"`
	References       []string `json:"references"`
	Opinionated      bool     `json:"opinionated"`
}

// UnitData is the per-analysis-unit diagnostic record returned alongside issues.
// Key sets are sorted so the record is stable across runs.
type UnitData struct {
	// Directory is the analysis unit (a directory, or a cluster namespace source).
	Directory string `json:"directory"`

	// ConfigMapsVariables lists the keys defined by each ConfigMap.
	ConfigMapsVariables map[string][]string `json:"configMapsVariables"`

	// ConfigMapsUsedVariables lists the keys of each ConfigMap referenced by at
	// least one container.
	ConfigMapsUsedVariables map[string][]string `json:"configMapsUsedVariables"`

	// SolvedVariablesByContainer maps container name → variable name → resolution.
	SolvedVariablesByContainer map[string]map[string]ResolvedVariable `json:"solvedVariablesByContainer"`
}

// ValidationResult is the top-level output of a validation run.
type ValidationResult struct {
	Issues []Issue    `json:"issues"`
	Data   []UnitData `json:"data"`

	// MaxLevel is the highest severity level among Issues, 0 when there are none.
	MaxLevel int `json:"maxLevel"`

	// ExitingCode is 1 when MaxLevel exceeds the allowed level or the run
	// failed, 0 otherwise.
	ExitingCode int `json:"exitingCode"`

	// Error is set whenever ExitingCode is 1.
	Error error `json:"-"`
}

// MarshalJSON encodes the result with the message of Error under "error".
// The key is omitted when the run succeeded.
func (r ValidationResult) MarshalJSON() ([]byte, error) {
	type plain ValidationResult
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return json.Marshal(out)
}
