package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/testutil"
	"github.com/spf13/cobra"
)

// writeWorkspace creates tool outputs for worker (passing) and api (linter
// failure) plus a config with a SQLite history, and returns the config path.
func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	workDir := filepath.Join(root, "artifacts")
	reposDir := filepath.Join(root, "repos")

	files := map[string]string{"a.py": "import os\n", "b.py": "x = 1\n"}
	testutil.WriteCheckout(t, reposDir, "worker", files)
	testutil.WriteCheckout(t, reposDir, "api", files)

	worker := testutil.CleanArtifacts("a.py", "b.py")
	worker.Coverage = "95"
	testutil.WriteArtifacts(t, workDir, "worker", worker)

	api := testutil.CleanArtifacts("a.py", "b.py")
	api.LinterPassed = []string{"a.py"}
	api.LinterFailed = []string{"b.py"}
	testutil.WriteArtifacts(t, workDir, "api", api)

	content := "repositories: [worker, api]\n" +
		"paths:\n" +
		"  work_dir: " + workDir + "\n" +
		"  repositories_dir: " + reposDir + "\n" +
		"history:\n" +
		"  backend: sqlite\n" +
		"  dsn: " + filepath.Join(root, "history.db") + "\n" +
		"log:\n" +
		"  level: error\n"
	return testutil.WriteFile(t, root, "qadash.yaml", content)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCmd_FlagsExist(t *testing.T) {
	cmd := checkCmd()

	expectedFlags := []string{"config", "work-dir", "repos-dir", "coverage-threshold", "verbose", "no-history", "json"}
	for _, flagName := range expectedFlags {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestCheckCmd_ShortFlags(t *testing.T) {
	cmd := checkCmd()

	shortFlags := map[string]string{
		"c": "config",
		"w": "work-dir",
		"v": "verbose",
	}

	for short, long := range shortFlags {
		flag := cmd.Flags().ShorthandLookup(short)
		if flag == nil {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestCheckExitError_Error(t *testing.T) {
	err := &CheckExitError{Code: 1, Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("Error() should return message, got '%s'", err.Error())
	}
}

func TestCheckCmd_ExitCodes(t *testing.T) {
	configPath := writeWorkspace(t)

	tests := []struct {
		name     string
		args     []string
		exitCode int
		contains string
	}{
		{"passing repository", []string{"--config", configPath, "--no-history", "worker"}, domain.ExitCodePass, "All quality gates passed"},
		{"gate failure", []string{"--config", configPath, "--no-history"}, domain.ExitCodeViolation, "linter-clean"},
		{"missing artifacts", []string{"--config", configPath, "--no-history", "worker", "jobs"}, domain.ExitCodeError, "jobs"},
		{"bad config", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, domain.ExitCodeError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, checkCmd(), tt.args...)

			code := domain.ExitCodePass
			if err != nil {
				var exitErr *CheckExitError
				if !errors.As(err, &exitErr) {
					t.Fatalf("Expected a CheckExitError, got %v", err)
				}
				code = exitErr.Code
			}
			if code != tt.exitCode {
				t.Errorf("Expected exit code %d, got %d (%v)", tt.exitCode, code, err)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("Output should contain %q\n%s", tt.contains, out)
			}
		})
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := execute(t, checkCmd(), "--config", configPath, "--no-history", "--json", "--coverage-threshold", "99")
	var exitErr *CheckExitError
	if !errors.As(err, &exitErr) || exitErr.Code != domain.ExitCodeViolation {
		t.Fatalf("Expected exit code 1, got %v", err)
	}

	var result domain.CheckResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if result.Summary.RepositoriesFailed != 2 {
		t.Errorf("A 99%% threshold should fail both repositories, got %+v", result.Summary)
	}
}

func TestReportCmd_CSV(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := execute(t, reportCmd(), "--config", configPath, "--no-history", "--format", "csv")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected header and 2 rows, got:\n%s", out)
	}
}

func TestReportCmd_UnsupportedFormat(t *testing.T) {
	configPath := writeWorkspace(t)

	_, err := execute(t, reportCmd(), "--config", configPath, "--format", "xml")
	if !domain.HasErrorCode(err, domain.ErrCodeUnsupportedFormat) {
		t.Errorf("Expected UNSUPPORTED_FORMAT, got %v", err)
	}
}

func TestHistoryWorkflow(t *testing.T) {
	configPath := writeWorkspace(t)

	if _, err := execute(t, checkCmd(), "--config", configPath); err == nil {
		t.Fatal("Expected the gate failure of api")
	}

	out, err := execute(t, historyCmd(), "list", "--config", configPath, "--json")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	var runs []domain.RunRecord
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("history list output is not JSON: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Passed != 1 || runs[0].Failed != 1 {
		t.Errorf("Unexpected runs: %+v", runs)
	}

	out, err = execute(t, historyCmd(), "trend", "api", "--config", configPath, "--json")
	if err != nil {
		t.Fatalf("history trend failed: %v", err)
	}
	var rows []domain.SnapshotRecord
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("history trend output is not JSON: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Status || rows[0].LinterFailed != 1 {
		t.Errorf("Unexpected trend rows: %+v", rows)
	}

	prefix := filepath.Join(t.TempDir(), "export", "qa")
	out, err = execute(t, exportCmd(), "--config", configPath, "--output", prefix)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "Exported 2 snapshots") {
		t.Errorf("Unexpected export output: %s", out)
	}
	if _, err := os.Stat(prefix + ".runs.parquet"); err != nil {
		t.Errorf("Runs file missing: %v", err)
	}

	if _, err := execute(t, historyCmd(), "clear", "--yes", "--config", configPath); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	out, _ = execute(t, historyCmd(), "list", "--config", configPath)
	if !strings.Contains(out, "No runs recorded.") {
		t.Errorf("Expected empty history, got %s", out)
	}
}

func TestHistoryCmd_Disabled(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "qadash.yaml", "history:\n  backend: none\n")

	_, err := execute(t, historyCmd(), "list", "--config", configPath)
	if !domain.HasErrorCode(err, domain.ErrCodeConfigError) {
		t.Errorf("Expected CONFIG_ERROR for a disabled history, got %v", err)
	}
}

func TestMigrateCmd(t *testing.T) {
	dir := t.TempDir()
	configPath := testutil.WriteFile(t, dir, "qadash.yaml",
		"history:\n  backend: sqlite\n  dsn: "+filepath.Join(dir, "history.db")+"\n")

	out, err := execute(t, migrateCmd(), "up", "--config", configPath)
	if err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if !strings.Contains(out, "Migrated history schema from version 0 to 3") {
		t.Errorf("Unexpected output: %s", out)
	}

	out, err = execute(t, migrateCmd(), "version", "--config", configPath)
	if err != nil {
		t.Fatalf("migrate version failed: %v", err)
	}
	if strings.TrimSpace(out) != "History schema version 3" {
		t.Errorf("Unexpected output: %s", out)
	}

	if _, err := execute(t, migrateCmd(), "sideways", "--config", configPath); err == nil {
		t.Error("Expected an error for an unknown action")
	}
}

func TestSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"check", "report", "history", "migrate", "export", "mcp", "init", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Missing subcommand %s", name)
		}
	}
}

func TestVersionCmd_FlagsExist(t *testing.T) {
	cmd := versionCmd()

	flag := cmd.Flags().Lookup("verbose")
	if flag == nil {
		t.Error("Missing expected flag: --verbose")
	}
}

func TestVersionCmd_Output(t *testing.T) {
	out, err := execute(t, versionCmd())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "qadash version ") {
		t.Errorf("Unexpected version output: %s", out)
	}
}
