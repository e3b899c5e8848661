package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/manifest"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// Validate discovers the manifest units under opts.WorkingDir, decodes them
// and runs the analysis. An empty WorkingDir means the current directory.
// It never returns nil; failures are reported through the result's Error and
// ExitingCode.
func (e *Engine) Validate(ctx context.Context, opts Options) *models.ValidationResult {
	start := time.Now()
	if opts.WorkingDir == "" {
		opts.WorkingDir = "."
	}
	e.logger.Info("validating manifests", zap.String("working_dir", opts.WorkingDir))

	units, err := manifest.FindManifestsByDirectory(opts.WorkingDir)
	if err != nil {
		return e.finish(e.fail(fmt.Errorf("discover manifests: %w", err)), start)
	}

	loaded := make([]manifest.LoadedUnit, 0, len(units))
	for _, u := range units {
		lu, err := manifest.LoadUnit(ctx, u)
		if err != nil {
			return e.finish(e.fail(fmt.Errorf("load unit %s: %w", u.Dir, err)), start)
		}
		loaded = append(loaded, lu)
	}

	return e.finish(e.analyse(ctx, loaded, opts), start)
}

// ValidateUnits runs the analysis over units that are already decoded, such
// as namespaces read from a live cluster.
func (e *Engine) ValidateUnits(ctx context.Context, units []manifest.LoadedUnit, opts Options) *models.ValidationResult {
	start := time.Now()
	return e.finish(e.analyse(ctx, units, opts), start)
}

// analyse evaluates every unit sequentially against one registry snapshot.
// A panic anywhere below is turned into a failed result.
func (e *Engine) analyse(ctx context.Context, units []manifest.LoadedUnit, opts Options) (result *models.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			result = e.fail(fmt.Errorf("analysis panicked: %w", err))
		}
	}()

	ruleSet := e.registry.Snapshot()

	var issues []models.Issue
	data := make([]models.UnitData, 0, len(units))
	for _, u := range units {
		e.logger.Info("running analysis", zap.String("unit", u.Dir), zap.Int("files", len(u.Files)))

		records := manifest.Normalize(u.Files)
		rc := rules.NewRuleContext(u.Dir, records)
		if opts.DebugInfo {
			e.debugUnit(rc)
		}

		found, err := ruleSet.Evaluate(ctx, rc)
		if err != nil {
			return e.fail(fmt.Errorf("evaluate unit %s: %w", u.Dir, err))
		}
		issues = append(issues, found...)
		data = append(data, rc.Variables.UnitData(u.Dir))
		e.recorder.UnitProcessed()
	}

	return Aggregate(issues, data, opts)
}

func (e *Engine) fail(err error) *models.ValidationResult {
	e.logger.Error("unable to validate manifests", zap.Error(err))
	return failed(err)
}

func (e *Engine) finish(result *models.ValidationResult, start time.Time) *models.ValidationResult {
	e.recorder.RecordResult(result, time.Since(start))
	if result.Error == nil {
		e.logger.Info("validation finished", zap.Int("issues", len(result.Issues)), zap.Int("max_level", result.MaxLevel))
	}
	return result
}

func (e *Engine) debugUnit(rc rules.RuleContext) {
	e.logger.Debug("normalized records", zap.String("unit", rc.Unit), zap.Any("records", rc.Resources))
	e.logger.Debug("variable graph",
		zap.String("unit", rc.Unit),
		zap.Strings("containers", rc.Variables.ContainerNames()),
		zap.Any("config_maps_variables", rc.Variables.ConfigMapsVariables),
		zap.Any("config_maps_used_variables", rc.Variables.ConfigMapsUsedVariables),
		zap.Any("solved_variables_by_container", rc.Variables.SolvedVariablesByContainer),
	)
}
