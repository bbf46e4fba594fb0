package app

import (
	"fmt"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/ludo-technologies/qadash/internal/version"
)

var conditionMessages = map[domain.GateCondition]string{
	domain.ConditionLinterCoverage:       "not every source file was checked by the linter",
	domain.ConditionDocstyleCoverage:     "not every source file was checked by the docstyle checker",
	domain.ConditionLinterClean:          "linter reported failing files",
	domain.ConditionDocstyleClean:        "docstyle checker reported failing files",
	domain.ConditionUnitTestCoverage:     "unit test coverage below threshold",
	domain.ConditionCyclomaticComplexity: "code blocks with cyclomatic complexity rank D or worse",
	domain.ConditionMaintainability:      "modules with maintainability index rank B or C",
	domain.ConditionDeadCode:             "dead code detected",
	domain.ConditionCommonErrors:         "common errors detected",
}

// BuildCheckResult turns a run into the CI-facing check result. The exit code
// is 2 when any repository could not be evaluated, 1 when a gate failed and
// 0 otherwise.
func BuildCheckResult(result *domain.RunResult) *domain.CheckResult {
	check := &domain.CheckResult{
		RunID:       result.RunID,
		Violations:  []domain.CheckViolation{},
		Duration:    result.Duration().Milliseconds(),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}

	for _, snapshot := range result.Snapshots {
		metrics := snapshot.Metrics()
		check.Summary.SourceFiles += metrics.SourceFileCount
		if snapshot.OverallStatus() {
			check.Summary.RepositoriesPassed++
			continue
		}
		check.Summary.RepositoriesFailed++
		for _, c := range analyzer.FailedConditions(metrics, result.Policy) {
			check.Violations = append(check.Violations, domain.CheckViolation{
				Repository: snapshot.Repository(),
				Rule:       c.Condition,
				Severity:   "error",
				Message:    conditionMessage(c.Condition),
				Actual:     c.Actual,
				Threshold:  c.Expected,
			})
		}
	}

	for _, f := range result.Failures {
		check.Errors = append(check.Errors, domain.CheckError{
			Repository: f.Repository,
			Code:       f.Code,
			Message:    f.Error,
		})
	}

	check.Summary.RepositoriesEvaluated = len(result.Snapshots)
	check.Summary.RepositoriesErrored = len(result.Failures)
	check.Summary.TotalViolations = len(check.Violations)

	switch {
	case len(check.Errors) > 0:
		check.ExitCode = domain.ExitCodeError
	case check.Summary.RepositoriesFailed > 0:
		check.ExitCode = domain.ExitCodeViolation
	default:
		check.ExitCode = domain.ExitCodePass
	}
	check.Passed = check.ExitCode == domain.ExitCodePass

	return check
}

func conditionMessage(c domain.GateCondition) string {
	if msg, ok := conditionMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("condition %s failed", c)
}
