package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/metrics"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// DefaultMaxLevelAllowed tolerates everything up to HIGH.
const DefaultMaxLevelAllowed = 3

// Options configures a single validation run.
// It is the sole input to Engine.Validate besides the context.
type Options struct {
	// WorkingDir is the root of the manifest tree. Each directory below it
	// containing manifests is one analysis unit.
	WorkingDir string

	// MaxLevelAllowed is the highest tolerated severity level (0-4).
	MaxLevelAllowed int

	// DebugInfo logs normalized records and the variable graph of each unit.
	DebugInfo bool

	// Verbose selects long descriptions when the result is rendered.
	Verbose bool

	// DisableOpinionated drops opinionated issues from the result.
	DisableOpinionated bool
}

// DefaultOptions returns the options of a plain run over workingDir.
func DefaultOptions(workingDir string) Options {
	return Options{
		WorkingDir:      workingDir,
		MaxLevelAllowed: DefaultMaxLevelAllowed,
		Verbose:         true,
	}
}

// ThresholdError reports that the highest severity found exceeds the allowed level.
type ThresholdError struct {
	Level      int
	MaxAllowed int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("issue with level %d occurred while max level allowed was %d", e.Level, e.MaxAllowed)
}

// Engine runs the registered rules over manifest units and aggregates the
// issues. A single Engine may serve several runs; each run works on its own
// snapshot of the registry.
type Engine struct {
	registry *rules.Registry
	recorder *metrics.Recorder
	logger   *zap.Logger
}

// NewEngine constructs an Engine. recorder may be nil to disable metrics and
// a nil logger is replaced by a no-op logger.
func NewEngine(registry *rules.Registry, recorder *metrics.Recorder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// failed builds the result of a run aborted by an unrecoverable error. Issues
// collected before the failure are discarded.
func failed(err error) *models.ValidationResult {
	return &models.ValidationResult{
		Issues:      []models.Issue{},
		Data:        []models.UnitData{},
		ExitingCode: 1,
		Error:       err,
	}
}
