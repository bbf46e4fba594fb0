package service

import (
	"os"
	"path/filepath"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Repository status label values
const (
	StatusPass  = "pass"
	StatusFail  = "fail"
	StatusError = "error"
)

// RunMetrics holds the Prometheus metrics of evaluation runs
type RunMetrics struct {
	registry *prometheus.Registry

	RepositoriesEvaluated *prometheus.CounterVec
	ConditionFailures     *prometheus.CounterVec
	Coverage              *prometheus.GaugeVec
	RepositoryStatus      *prometheus.GaugeVec
	RunDuration           prometheus.Gauge
	LastRunTimestamp      prometheus.Gauge
}

// NewRunMetrics creates the metrics on a dedicated registry
func NewRunMetrics() *RunMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &RunMetrics{
		registry: registry,
		RepositoriesEvaluated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qadash_repositories_evaluated_total",
				Help: "Total number of repositories evaluated, by gate status",
			},
			[]string{"status"},
		),
		ConditionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qadash_gate_condition_failures_total",
				Help: "Total number of failed gate conditions",
			},
			[]string{"condition"},
		),
		Coverage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "qadash_repository_coverage_percent",
				Help: "Unit test coverage of a repository in percent",
			},
			[]string{"repository"},
		),
		RepositoryStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "qadash_repository_gate_passed",
				Help: "1 when the repository passed its quality gate, 0 otherwise",
			},
			[]string{"repository"},
		),
		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "qadash_run_duration_seconds",
				Help: "Wall time of the last evaluation run in seconds",
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "qadash_last_run_timestamp_seconds",
				Help: "Unix time the last evaluation run finished",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a finished run
func (m *RunMetrics) Observe(result *domain.RunResult) {
	for _, s := range result.Snapshots {
		metrics := s.Metrics()
		status := StatusFail
		passed := 0.0
		if s.OverallStatus() {
			status = StatusPass
			passed = 1
		}
		m.RepositoriesEvaluated.WithLabelValues(status).Inc()
		m.RepositoryStatus.WithLabelValues(metrics.Repository).Set(passed)

		for _, c := range analyzer.FailedConditions(metrics, result.Policy) {
			m.ConditionFailures.WithLabelValues(string(c.Condition)).Inc()
		}
		if metrics.Coverage != nil {
			m.Coverage.WithLabelValues(metrics.Repository).Set(*metrics.Coverage)
		}
	}

	for range result.Failures {
		m.RepositoriesEvaluated.WithLabelValues(StatusError).Inc()
	}

	m.RunDuration.Set(result.Duration().Seconds())
	if !result.FinishedAt.IsZero() {
		m.LastRunTimestamp.Set(float64(result.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the metrics in the node exporter textfile format
func (m *RunMetrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewOutputError("failed to create metrics directory", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return domain.NewOutputError("failed to write metrics textfile", err)
	}
	return nil
}
