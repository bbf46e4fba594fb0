package domain

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatHTML OutputFormat = "html"
)

// IsValid reports whether the format is supported by the reporters
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV, OutputFormatHTML:
		return true
	}
	return false
}

// QualityRequest represents a request to evaluate a set of repositories
type QualityRequest struct {
	// Repositories to evaluate, in report order
	Repositories []string

	// WorkDir holds the tool-output artifacts (<repo>.linter.txt, ...)
	WorkDir string

	// RepositoriesDir holds the repository checkouts used for source counting
	RepositoriesDir string

	// Policy the gate is evaluated against
	Policy Policy

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	NoOpen       bool

	// Configuration
	ConfigPath string
}

// Validate checks the request
func (r QualityRequest) Validate() error {
	if len(r.Repositories) == 0 {
		return NewValidationError("no repositories to evaluate")
	}
	seen := make(map[string]bool, len(r.Repositories))
	for _, repo := range r.Repositories {
		if err := ValidateRepositoryName(repo); err != nil {
			return err
		}
		if seen[repo] {
			return NewValidationError(fmt.Sprintf("repository %q listed twice", repo))
		}
		seen[repo] = true
	}
	if r.WorkDir == "" {
		return NewValidationError("work directory is required")
	}
	if r.OutputFormat != "" && !r.OutputFormat.IsValid() {
		return NewUnsupportedFormatError(string(r.OutputFormat))
	}
	return r.Policy.Validate()
}

// ValidateRepositoryName rejects names that would resolve artifacts or
// checkouts outside the configured directories
func ValidateRepositoryName(name string) error {
	switch {
	case name == "":
		return NewValidationError("repository name cannot be empty")
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		return NewValidationError(fmt.Sprintf("invalid repository name %q: path separators and dot segments are not allowed", name))
	}
	return nil
}

// RepositoryFailure records a repository that could not be evaluated
type RepositoryFailure struct {
	Repository string `json:"repository" yaml:"repository"`
	Code       string `json:"code,omitempty" yaml:"code,omitempty"`
	Error      string `json:"error" yaml:"error"`
}

// RunResult collects the snapshots of one evaluation run
type RunResult struct {
	RunID      string                       `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time                    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time                    `json:"finished_at" yaml:"finished_at"`
	Snapshots  []*RepositoryQualitySnapshot `json:"snapshots" yaml:"snapshots"`
	Failures   []RepositoryFailure          `json:"failures,omitempty" yaml:"failures,omitempty"`
	Passed     int                          `json:"passed" yaml:"passed"`
	Failed     int                          `json:"failed" yaml:"failed"`
	Policy     Policy                       `json:"policy" yaml:"policy"`
}

// Tally recomputes the passed and failed counters from the snapshots
func (r *RunResult) Tally() {
	r.Passed, r.Failed = 0, 0
	for _, s := range r.Snapshots {
		if s.OverallStatus() {
			r.Passed++
		} else {
			r.Failed++
		}
	}
}

// Duration returns the wall time of the run
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// AllPassed reports whether every repository was evaluated and passed its gate
func (r *RunResult) AllPassed() bool {
	if len(r.Failures) > 0 {
		return false
	}
	for _, s := range r.Snapshots {
		if !s.OverallStatus() {
			return false
		}
	}
	return true
}

// Snapshot returns the snapshot of a repository, or nil
func (r *RunResult) Snapshot(repository string) *RepositoryQualitySnapshot {
	for _, s := range r.Snapshots {
		if s.Repository() == repository {
			return s
		}
	}
	return nil
}

// QualityService evaluates a single repository
type QualityService interface {
	EvaluateRepository(ctx context.Context, repository string, policy Policy) (*RepositoryQualitySnapshot, error)
}

// OutputFormatter renders a run in one of the supported formats
type OutputFormatter interface {
	Write(result *RunResult, format OutputFormat, writer io.Writer) error
}

// RunRecord is a stored run as listed by the history store
type RunRecord struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at" yaml:"finished_at"`
	Repositories int       `json:"repositories" yaml:"repositories"`
	Passed       int       `json:"passed" yaml:"passed"`
	Failed       int       `json:"failed" yaml:"failed"`
	Config       string    `json:"config,omitempty" yaml:"config,omitempty"`
}

// SnapshotRecord is a stored per-repository row of a run
type SnapshotRecord struct {
	RunID              string            `json:"run_id" yaml:"run_id"`
	Repository         string            `json:"repository" yaml:"repository"`
	RecordedAt         time.Time         `json:"recorded_at" yaml:"recorded_at"`
	Status             bool              `json:"status" yaml:"status"`
	SourceFiles        int               `json:"source_files" yaml:"source_files"`
	LinterTotal        int               `json:"linter_total" yaml:"linter_total"`
	LinterFailed       int               `json:"linter_failed" yaml:"linter_failed"`
	DocstyleTotal      int               `json:"docstyle_total" yaml:"docstyle_total"`
	DocstyleFailed     int               `json:"docstyle_failed" yaml:"docstyle_failed"`
	Coverage           *float64          `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	CCStatus           bool              `json:"cc_status" yaml:"cc_status"`
	MIStatus           bool              `json:"mi_status" yaml:"mi_status"`
	DeadCodeFailed     int               `json:"dead_code_failed" yaml:"dead_code_failed"`
	CommonErrorsFailed int               `json:"common_errors_failed" yaml:"common_errors_failed"`
	Remarks            []string          `json:"remarks" yaml:"remarks"`
	Digests            map[string]string `json:"digests,omitempty" yaml:"digests,omitempty"`
}

// HistoryStore persists runs for trend reporting
type HistoryStore interface {
	RecordRun(ctx context.Context, result *RunResult, config string) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	RepositoryTrend(ctx context.Context, repository string, limit int) ([]SnapshotRecord, error)
	AllSnapshots(ctx context.Context) ([]SnapshotRecord, error)
	Clear(ctx context.Context) error
	Close() error
}
