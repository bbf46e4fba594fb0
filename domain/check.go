package domain

// CheckResult represents the result of a quality gate check over all repositories
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	RunID       string           `json:"run_id"`
	Violations  []CheckViolation `json:"violations"`
	Errors      []CheckError     `json:"errors,omitempty"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single failed gate condition of a repository
type CheckViolation struct {
	Repository string        `json:"repository"`
	Rule       GateCondition `json:"rule"`                // linter-coverage, dead-code, etc.
	Severity   string        `json:"severity"`            // error, warning
	Message    string        `json:"message"`             // Human-readable description
	Actual     string        `json:"actual"`              // Actual value
	Threshold  string        `json:"threshold,omitempty"` // Expected value
}

// CheckError represents a repository that could not be evaluated
type CheckError struct {
	Repository string `json:"repository"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	RepositoriesEvaluated int `json:"repositories_evaluated"`
	RepositoriesPassed    int `json:"repositories_passed"`
	RepositoriesFailed    int `json:"repositories_failed"`
	RepositoriesErrored   int `json:"repositories_errored"`
	TotalViolations       int `json:"total_violations"`
	SourceFiles           int `json:"source_files"`
}

// Exit codes of the check command
const (
	ExitCodePass      = 0
	ExitCodeViolation = 1
	ExitCodeError     = 2
)
