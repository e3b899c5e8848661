package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/config"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/engine"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/metrics"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/output"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/policy"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rulepacks/kubernetes_core"
)

// exitError carries a non-zero process exit code out of a command without
// printing anything else.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

// runFlags are the flags shared by validate and cluster.
type runFlags struct {
	level              int
	disableOpinionated bool
	debug              bool
	verbose            bool
	policyPath         string
	metricsFile        string
	format             string
	color              bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.level, "level", engine.DefaultMaxLevelAllowed, "Highest severity level tolerated (0-4)")
	cmd.Flags().BoolVar(&f.disableOpinionated, "disable-opinionated", false, "Drop opinionated issues from the result")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Log normalized resources and resolved variables of each unit")
	cmd.Flags().BoolVar(&f.verbose, "verbose", true, "Print long descriptions, locations and references")
	cmd.Flags().StringVar(&f.policyPath, "policy", "", "Policy file with rule overrides and custom rules")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	cmd.Flags().StringVar(&f.format, "format", "text", `Output format: "text", "table" or "json"`)
	cmd.Flags().BoolVar(&f.color, "color", false, "Color severities in text and table output")
}

// loadUserConfig is replaced in tests.
var loadUserConfig = func() (*config.Config, error) {
	return config.NewFileLoader("").Load()
}

// runner holds everything a validate or cluster command needs for one run.
type runner struct {
	flags    *runFlags
	user     *config.Config
	logger   *zap.Logger
	recorder *metrics.Recorder
	engine   *engine.Engine
	opts     engine.Options
}

// applyUserDefaults fills flags that were not given on the command line from
// the user configuration.
func (f *runFlags) applyUserDefaults(cmd *cobra.Command, cfg *config.Config) {
	d := cfg.Defaults
	if !cmd.Flags().Changed("policy") && d.Policy != "" {
		f.policyPath = d.Policy
	}
	if !cmd.Flags().Changed("format") && d.Format != "" {
		f.format = d.Format
	}
	if !cmd.Flags().Changed("color") && d.Color {
		f.color = true
	}
	if !cmd.Flags().Changed("metrics-file") && d.MetricsFile != "" {
		f.metricsFile = d.MetricsFile
	}
}

// setup builds the logger, registry, policy and engine options. Flags set
// explicitly on the command line win over the user configuration and the
// policy file.
func (f *runFlags) setup(cmd *cobra.Command, workingDir string) (*runner, error) {
	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, err
	}
	f.applyUserDefaults(cmd, userCfg)

	switch f.format {
	case "text", "table", "json":
	default:
		return nil, fmt.Errorf("unknown format %q", f.format)
	}
	if cmd.Flags().Changed("level") && !validLevel(f.level) {
		return nil, fmt.Errorf("--level must be between 0 and %d, got %d", models.MaxLevel, f.level)
	}

	logger := newLogger(cmd.ErrOrStderr(), f.debug)

	registry := kubernetes_core.NewRegistry()
	cfg, err := loadAndApplyPolicy(cmd, f.policyPath, registry)
	if err != nil {
		return nil, err
	}

	opts := engine.DefaultOptions(workingDir)
	opts.MaxLevelAllowed = policy.ResolveMaxLevel(cfg, engine.DefaultMaxLevelAllowed)
	if cmd.Flags().Changed("level") {
		opts.MaxLevelAllowed = f.level
	}
	opts.DisableOpinionated = policy.ResolveDisableOpinionated(cfg, f.disableOpinionated)
	opts.DebugInfo = f.debug
	opts.Verbose = f.verbose

	var recorder *metrics.Recorder
	if f.metricsFile != "" {
		recorder = metrics.NewRecorder()
	}

	return &runner{
		flags:    f,
		user:     userCfg,
		logger:   logger,
		recorder: recorder,
		engine:   engine.NewEngine(registry, recorder, logger),
		opts:     opts,
	}, nil
}

// report renders result, writes the metrics textfile and turns a non-zero
// exiting code into an exitError.
func (r *runner) report(cmd *cobra.Command, result *models.ValidationResult) error {
	out := cmd.OutOrStdout()

	var threshold *engine.ThresholdError
	runFailed := result.Error != nil && !errors.As(result.Error, &threshold)

	switch {
	case r.flags.format == "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	case runFailed:
		// nothing to render; the error line below is the whole report
	case r.flags.format == "table":
		output.RenderTable(out, result.Issues, r.tableOptions())
	default:
		output.RenderIssues(out, result.Issues, r.tableOptions())
	}

	if result.Error != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Validator exited with code %d: %v\n", result.ExitingCode, result.Error)
	}

	if r.recorder != nil {
		if err := r.recorder.WriteTextfile(r.flags.metricsFile); err != nil {
			r.logger.Warn("could not write metrics", zap.String("path", r.flags.metricsFile), zap.Error(err))
		}
	}

	if result.ExitingCode != 0 {
		return &exitError{code: result.ExitingCode}
	}
	return nil
}

func (r *runner) tableOptions() output.TableOptions {
	return output.TableOptions{Colored: r.flags.color, Verbose: r.opts.Verbose}
}

// newLogger returns a development-style console logger writing to w.
func newLogger(w io.Writer, debug bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.AddSync(w), cfg.Level)
	return zap.New(core)
}
