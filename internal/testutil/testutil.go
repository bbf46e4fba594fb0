// Package testutil provides helper functions for testing qadash components
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Check results as printed by the checker scripts
const (
	PassMarker = "    Pass"
	FailMarker = "    Fail"
)

// CheckLog renders a checker log: each file line followed by its verdict
func CheckLog(passed, failed []string) string {
	var b strings.Builder
	for _, f := range passed {
		fmt.Fprintf(&b, "%s\n%s\n", f, PassMarker)
	}
	for _, f := range failed {
		fmt.Fprintf(&b, "%s\n%s\n", f, FailMarker)
	}
	return b.String()
}

// ComplexityReport renders a radon "cc -j" report with one block per rank letter
func ComplexityReport(ranks ...string) string {
	return rankReport("module.py", ranks)
}

// MaintainabilityReport renders a radon "mi -j" report with one module per rank letter
func MaintainabilityReport(ranks ...string) string {
	var parts []string
	for i, r := range ranks {
		parts = append(parts, fmt.Sprintf(`"m%d.py": {"mi": 50.0, "rank": %q}`, i, r))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func rankReport(module string, ranks []string) string {
	var blocks []string
	for i, r := range ranks {
		blocks = append(blocks, fmt.Sprintf(`{"type": "function", "name": "f%d", "complexity": 1, "rank": %q}`, i, r))
	}
	return fmt.Sprintf(`{%q: [%s]}`, module, strings.Join(blocks, ", "))
}

// Artifacts describes the tool outputs of one repository
type Artifacts struct {
	LinterPassed         []string
	LinterFailed         []string
	DocstylePassed       []string
	DocstyleFailed       []string
	DeadCodePassed       []string
	DeadCodeFailed       []string
	CommonErrorsPassed   []string
	CommonErrorsFailed   []string
	ComplexityRanks      []string
	MaintainabilityRanks []string
	Coverage             string
}

// CleanArtifacts returns artifacts in which every listed file passes every check
func CleanArtifacts(files ...string) Artifacts {
	return Artifacts{
		LinterPassed:         files,
		DocstylePassed:       files,
		DeadCodePassed:       files,
		CommonErrorsPassed:   files,
		ComplexityRanks:      []string{"A", "B"},
		MaintainabilityRanks: []string{"A"},
	}
}

// WriteArtifacts writes the tool outputs of a repository into workDir
func WriteArtifacts(t *testing.T, workDir, repository string, a Artifacts) {
	t.Helper()
	WriteFile(t, workDir, repository+".linter.txt", CheckLog(a.LinterPassed, a.LinterFailed))
	WriteFile(t, workDir, repository+".pydocstyle.txt", CheckLog(a.DocstylePassed, a.DocstyleFailed))
	WriteFile(t, workDir, repository+".dead_code.txt", CheckLog(a.DeadCodePassed, a.DeadCodeFailed))
	WriteFile(t, workDir, repository+".common_errors.txt", CheckLog(a.CommonErrorsPassed, a.CommonErrorsFailed))
	WriteFile(t, workDir, repository+".cc.json", ComplexityReport(a.ComplexityRanks...))
	WriteFile(t, workDir, repository+".mi.json", MaintainabilityReport(a.MaintainabilityRanks...))
	if a.Coverage != "" {
		WriteFile(t, workDir, repository+".coverage", a.Coverage)
	}
}

// WriteCheckout creates a repository checkout under reposDir holding the
// given files (relative path to content).
func WriteCheckout(t *testing.T, reposDir, repository string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(reposDir, repository)
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	if len(files) == 0 {
		if err := os.MkdirAll(root, 0755); err != nil {
			t.Fatalf("Failed to create checkout: %v", err)
		}
	}
	return root
}

// WriteFile writes content to dir/rel, creating parent directories
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}
