// Package metrics records per-run counters for manifest validation and
// exports them in the Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

const namespace = "mlint"

// Run outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeThreshold = "threshold_exceeded"
	OutcomeFailure   = "failure"
)

// Recorder collects validation metrics on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	issuesTotal *prometheus.CounterVec
	unitsTotal  prometheus.Counter
	runsTotal   *prometheus.CounterVec
	maxLevel    prometheus.Gauge
	runDuration prometheus.Histogram
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		issuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "issues_total",
				Help:      "Issues reported, by code and severity",
			},
			[]string{"code", "severity"},
		),
		unitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Analysis units processed",
		}),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Validation runs, by outcome",
			},
			[]string{"outcome"},
		),
		maxLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "max_level",
			Help:      "Highest severity level found by the last run",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of validation runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
	r.registry.MustRegister(r.issuesTotal, r.unitsTotal, r.runsTotal, r.maxLevel, r.runDuration)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// UnitProcessed counts one analysed unit.
func (r *Recorder) UnitProcessed() {
	if r == nil {
		return
	}
	r.unitsTotal.Inc()
}

// RecordResult records the outcome of a finished run.
func (r *Recorder) RecordResult(result *models.ValidationResult, elapsed time.Duration) {
	if r == nil || result == nil {
		return
	}
	for _, issue := range result.Issues {
		r.issuesTotal.WithLabelValues(issue.Code, string(issue.Severity)).Inc()
	}
	r.maxLevel.Set(float64(result.MaxLevel))
	r.runDuration.Observe(elapsed.Seconds())
	r.runsTotal.WithLabelValues(Outcome(result)).Inc()
}

// Outcome classifies result into one of the Outcome constants.
func Outcome(result *models.ValidationResult) string {
	switch {
	case result.ExitingCode == 0:
		return OutcomeSuccess
	case result.Error != nil && len(result.Issues) > 0:
		return OutcomeThreshold
	default:
		return OutcomeFailure
	}
}

// WriteTextfile writes all metrics to path in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
