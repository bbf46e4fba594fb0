package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/config"
	"github.com/ludo-technologies/qadash/internal/constants"
	"github.com/ludo-technologies/qadash/internal/log"
	"github.com/ludo-technologies/qadash/internal/testutil"
	"github.com/ludo-technologies/qadash/service"
)

// workspace holds a configuration pointing at temporary artifact and
// checkout directories with three repositories: worker passes, api fails
// the linter and jobs has no artifacts at all.
func workspace(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.RepositoriesDir = t.TempDir()

	files := map[string]string{"a.py": "import os\n", "b.py": "x = 1\ny = 2\n"}
	testutil.WriteCheckout(t, cfg.Paths.RepositoriesDir, "worker", files)
	testutil.WriteCheckout(t, cfg.Paths.RepositoriesDir, "api", files)

	worker := testutil.CleanArtifacts("a.py", "b.py")
	worker.Coverage = "95"
	testutil.WriteArtifacts(t, cfg.Paths.WorkDir, "worker", worker)

	api := testutil.CleanArtifacts("a.py", "b.py")
	api.LinterPassed = []string{"a.py"}
	api.LinterFailed = []string{"b.py"}
	testutil.WriteArtifacts(t, cfg.Paths.WorkDir, "api", api)

	return cfg
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(250 * time.Millisecond)
		return now
	}
}

func newTestUseCase(t *testing.T, cfg *config.Config, b *QualityUseCaseBuilder) *QualityUseCase {
	t.Helper()
	uc, err := b.
		WithService(service.NewQualityServiceFromConfig(cfg, log.Discard())).
		WithFormatter(service.NewPlainOutputFormatter()).
		WithPerformance(cfg.Performance).
		WithLogger(log.Discard()).
		WithClock(fixedClock()).
		WithRunID(func() string { return "run-1" }).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return uc
}

func TestQualityUseCaseBuilder_RequiresService(t *testing.T) {
	if _, err := NewQualityUseCaseBuilder().Build(); err == nil {
		t.Error("Build should fail without a quality service")
	}
}

func TestNewQualityUseCase(t *testing.T) {
	if uc, err := NewQualityUseCase(nil, nil); err == nil || uc != nil {
		t.Errorf("Expected an error without a quality service, got %v, %v", uc, err)
	}

	svc := service.NewQualityServiceFromConfig(config.DefaultConfig(), log.Discard())
	if uc, err := NewQualityUseCase(svc, service.NewPlainOutputFormatter()); err != nil || uc == nil {
		t.Errorf("Expected a use case, got %v, %v", uc, err)
	}
}

func TestQualityUseCase_InvalidRequest(t *testing.T) {
	cfg := workspace(t)
	uc := newTestUseCase(t, cfg, NewQualityUseCaseBuilder())

	tests := []struct {
		name string
		req  domain.QualityRequest
	}{
		{"no repositories", domain.QualityRequest{WorkDir: cfg.Paths.WorkDir, Policy: domain.DefaultPolicy()}},
		{"duplicate repository", domain.QualityRequest{Repositories: []string{"api", "api"}, WorkDir: cfg.Paths.WorkDir, Policy: domain.DefaultPolicy()}},
		{"threshold out of range", domain.QualityRequest{Repositories: []string{"api"}, WorkDir: cfg.Paths.WorkDir, Policy: domain.Policy{CoverageThreshold: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := uc.Execute(context.Background(), tt.req)
			if result != nil {
				t.Error("Expected no result for an invalid request")
			}
			if !domain.HasErrorCode(err, domain.ErrCodeInvalidInput) {
				t.Errorf("Expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestQualityUseCase_Execute(t *testing.T) {
	cfg := workspace(t)

	store, err := service.NewHistoryStore(constants.HistoryBackendSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewHistoryStore failed: %v", err)
	}
	defer store.Close()

	metrics := service.NewRunMetrics()
	textfile := filepath.Join(t.TempDir(), "qadash.prom")

	uc := newTestUseCase(t, cfg, NewQualityUseCaseBuilder().
		WithHistory(store).
		WithMetrics(metrics, textfile))

	var out bytes.Buffer
	result, err := uc.Execute(context.Background(), domain.QualityRequest{
		Repositories:    []string{"worker", "jobs", "api"},
		WorkDir:         cfg.Paths.WorkDir,
		RepositoriesDir: cfg.Paths.RepositoriesDir,
		Policy:          domain.DefaultPolicy(),
		OutputFormat:    domain.OutputFormatText,
		OutputWriter:    &out,
		ConfigPath:      "qadash.yaml",
	})

	var agg *service.AggregatedError
	if !errors.As(err, &agg) {
		t.Fatalf("Expected an aggregated error, got %v", err)
	}
	if result == nil {
		t.Fatal("Expected a partial result")
	}

	if result.RunID != "run-1" {
		t.Errorf("Expected run ID run-1, got %s", result.RunID)
	}
	if len(result.Snapshots) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(result.Snapshots))
	}
	if result.Snapshots[0].Repository() != "worker" || result.Snapshots[1].Repository() != "api" {
		t.Errorf("Snapshots should follow the request order, got %s, %s",
			result.Snapshots[0].Repository(), result.Snapshots[1].Repository())
	}
	if result.Passed != 1 || result.Failed != 1 {
		t.Errorf("Expected 1 passed and 1 failed, got %d and %d", result.Passed, result.Failed)
	}
	if len(result.Failures) != 1 || result.Failures[0].Repository != "jobs" {
		t.Fatalf("Expected jobs to fail, got %+v", result.Failures)
	}
	if result.Failures[0].Code != domain.ErrCodeFileNotFound {
		t.Errorf("Expected FILE_NOT_FOUND, got %s", result.Failures[0].Code)
	}
	if result.Duration() != 250*time.Millisecond {
		t.Errorf("Expected a 250ms run, got %v", result.Duration())
	}
	if result.AllPassed() {
		t.Error("A run with failures should not pass")
	}

	if !strings.Contains(out.String(), "Summary: 1 passed, 1 failed, 1 errored") {
		t.Errorf("Report missing summary:\n%s", out.String())
	}

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-1" || runs[0].Repositories != 3 || runs[0].Config != "qadash.yaml" {
		t.Errorf("Unexpected recorded runs: %+v", runs)
	}

	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("Metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(data), `qadash_repositories_evaluated_total{status="error"} 1`) {
		t.Errorf("Textfile missing error counter:\n%s", data)
	}
}

func TestQualityUseCase_AllPass(t *testing.T) {
	cfg := workspace(t)
	uc := newTestUseCase(t, cfg, NewQualityUseCaseBuilder())

	result, err := uc.Execute(context.Background(), domain.QualityRequest{
		Repositories:    []string{"worker"},
		WorkDir:         cfg.Paths.WorkDir,
		RepositoriesDir: cfg.Paths.RepositoriesDir,
		Policy:          domain.DefaultPolicy(),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.AllPassed() {
		t.Errorf("Expected worker to pass, remarks: %v", result.Snapshots[0].Remarks())
	}
}

func TestQualityUseCase_OutputPath(t *testing.T) {
	cfg := workspace(t)
	uc := newTestUseCase(t, cfg, NewQualityUseCaseBuilder())

	path := filepath.Join(t.TempDir(), "reports", "run.csv")
	var out bytes.Buffer
	_, err := uc.Execute(context.Background(), domain.QualityRequest{
		Repositories:    []string{"worker", "api"},
		WorkDir:         cfg.Paths.WorkDir,
		RepositoriesDir: cfg.Paths.RepositoriesDir,
		Policy:          domain.DefaultPolicy(),
		OutputFormat:    domain.OutputFormatCSV,
		OutputWriter:    &out,
		OutputPath:      path,
		NoOpen:          true,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Report not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(out.String(), "csv report saved to:") {
		t.Errorf("Expected a saved notice, got %q", out.String())
	}
}

func TestQualityUseCase_Cancelled(t *testing.T) {
	cfg := workspace(t)
	uc := newTestUseCase(t, cfg, NewQualityUseCaseBuilder())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.Execute(ctx, domain.QualityRequest{
		Repositories: []string{"worker", "api"},
		WorkDir:      cfg.Paths.WorkDir,
		Policy:       domain.DefaultPolicy(),
	})
	if err == nil {
		t.Fatal("Expected an error for a cancelled run")
	}
	if len(result.Snapshots) != 0 || len(result.Failures) != 2 {
		t.Errorf("Expected every repository to fail, got %d snapshots and %d failures",
			len(result.Snapshots), len(result.Failures))
	}
}
