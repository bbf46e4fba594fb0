package service

import (
	"context"
	"testing"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/config"
	"github.com/ludo-technologies/qadash/internal/log"
	"github.com/ludo-technologies/qadash/internal/testutil"
)

// newTestWorkspace returns a config whose work and checkout directories are temporary
func newTestWorkspace(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.RepositoriesDir = t.TempDir()
	return cfg
}

func TestQualityService_EvaluateRepository_Passing(t *testing.T) {
	cfg := newTestWorkspace(t)
	testutil.WriteCheckout(t, cfg.Paths.RepositoriesDir, "worker", map[string]string{
		"a.py": "a\n",
		"b.py": "b\n",
	})
	artifacts := testutil.CleanArtifacts("a.py", "b.py")
	artifacts.Coverage = "95"
	testutil.WriteArtifacts(t, cfg.Paths.WorkDir, "worker", artifacts)

	svc := NewQualityServiceFromConfig(cfg, log.Discard())
	snapshot, err := svc.EvaluateRepository(context.Background(), "worker", domain.DefaultPolicy())
	if err != nil {
		t.Fatalf("EvaluateRepository failed: %v", err)
	}

	if !snapshot.OverallStatus() {
		t.Errorf("Expected the repository to pass, remarks: %v", snapshot.Remarks())
	}
	if len(snapshot.Remarks()) != 0 {
		t.Errorf("Expected no remarks, got %v", snapshot.Remarks())
	}
	m := snapshot.Metrics()
	if m.SourceFileCount != 2 || m.SourceLineCount != 2 {
		t.Errorf("Expected 2 files and 2 lines, got %d and %d", m.SourceFileCount, m.SourceLineCount)
	}
	if m.Coverage == nil || *m.Coverage != 95 {
		t.Errorf("Expected coverage 95, got %v", m.Coverage)
	}
	if len(snapshot.ArtifactDigests()) != 6 {
		t.Errorf("Expected 6 artifact digests, got %d", len(snapshot.ArtifactDigests()))
	}
}

func TestQualityService_EvaluateRepository_Failing(t *testing.T) {
	cfg := newTestWorkspace(t)
	testutil.WriteCheckout(t, cfg.Paths.RepositoriesDir, "worker", map[string]string{
		"a.py": "a\n",
		"b.py": "b\n",
		"c.py": "c\n",
	})
	testutil.WriteArtifacts(t, cfg.Paths.WorkDir, "worker", testutil.Artifacts{
		LinterPassed:         []string{"a.py", "b.py"},
		LinterFailed:         []string{"c.py"},
		DocstylePassed:       []string{"a.py", "b.py", "c.py"},
		ComplexityRanks:      []string{"A", "F"},
		MaintainabilityRanks: []string{"A"},
		Coverage:             "50",
	})

	svc := NewQualityServiceFromConfig(cfg, log.Discard())
	snapshot, err := svc.EvaluateRepository(context.Background(), "worker", domain.DefaultPolicy())
	if err != nil {
		t.Fatalf("EvaluateRepository failed: %v", err)
	}

	if snapshot.OverallStatus() {
		t.Fatal("Expected the repository to fail")
	}
	want := []string{
		"improve code coverage",
		"linter failed",
		"reduce cyclomatic complexity",
		"set up dead code detection",
		"set up common errors detection",
	}
	got := snapshot.Remarks()
	if len(got) != len(want) {
		t.Fatalf("Expected remarks %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("remark %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestQualityService_EvaluateRepository_IgnoredFiles(t *testing.T) {
	cfg := newTestWorkspace(t)
	testutil.WriteCheckout(t, cfg.Paths.RepositoriesDir, "worker", map[string]string{
		"a.py":     "a\n",
		"setup.py": "s\n",
	})
	testutil.WriteArtifacts(t, cfg.Paths.WorkDir, "worker", testutil.CleanArtifacts("a.py"))

	policy := domain.DefaultPolicy()
	policy.IgnoredPylint["worker"] = []string{"setup.py"}
	policy.IgnoredPydocstyle["worker"] = []string{"setup.py"}

	svc := NewQualityServiceFromConfig(cfg, log.Discard())
	snapshot, err := svc.EvaluateRepository(context.Background(), "worker", policy)
	if err != nil {
		t.Fatalf("EvaluateRepository failed: %v", err)
	}

	if !snapshot.OverallStatus() {
		t.Errorf("ignored files should cover the gap, remarks: %v", snapshot.Remarks())
	}
	remarks := snapshot.Remarks()
	if len(remarks) != 3 || remarks[0] != "unit tests not set up" ||
		remarks[1] != "1 file ignored by pylint" || remarks[2] != "1 file ignored by pydocstyle" {
		t.Errorf("Unexpected remarks %v", remarks)
	}
}

func TestQualityService_EvaluateRepository_MissingArtifact(t *testing.T) {
	cfg := newTestWorkspace(t)
	testutil.WriteCheckout(t, cfg.Paths.RepositoriesDir, "worker", map[string]string{"a.py": "a\n"})
	testutil.WriteFile(t, cfg.Paths.WorkDir, "worker.linter.txt", testutil.CheckLog([]string{"a.py"}, nil))

	svc := NewQualityServiceFromConfig(cfg, log.Discard())
	_, err := svc.EvaluateRepository(context.Background(), "worker", domain.DefaultPolicy())
	if !domain.HasErrorCode(err, domain.ErrCodeFileNotFound) {
		t.Errorf("Expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestQualityService_EvaluateRepository_RejectsPaths(t *testing.T) {
	cfg := newTestWorkspace(t)
	svc := NewQualityServiceFromConfig(cfg, log.Discard())

	for _, repo := range []string{"../worker", "org/worker", ".."} {
		if _, err := svc.EvaluateRepository(context.Background(), repo, domain.DefaultPolicy()); !domain.HasErrorCode(err, domain.ErrCodeInvalidInput) {
			t.Errorf("%s: expected INVALID_INPUT, got %v", repo, err)
		}
	}
}

func TestQualityService_EvaluateRepository_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewQualityServiceFromConfig(newTestWorkspace(t), log.Discard())
	if _, err := svc.EvaluateRepository(ctx, "worker", domain.DefaultPolicy()); err == nil {
		t.Error("Expected an error for a cancelled context")
	}
}

func TestQualityService_ImplementsInterface(t *testing.T) {
	var _ domain.QualityService = &QualityServiceImpl{}
}
