package analyzer

import (
	"fmt"
	"strconv"

	"github.com/ludo-technologies/qadash/domain"
)

// EvaluateConditions evaluates every gate condition for the metrics of one
// repository. Ignored file counts are taken from the policy.
func EvaluateConditions(m domain.QualityMetrics, policy domain.Policy) []domain.ConditionResult {
	ignoredPylint, ignoredPydocstyle := policy.IgnoredCounts(m.Repository)
	linterChecked := m.Linter.Total + ignoredPylint
	docstyleChecked := m.Docstyle.Total + ignoredPydocstyle

	results := make([]domain.ConditionResult, 0, len(domain.GateConditions))
	add := func(c domain.GateCondition, passed bool, actual, expected string) {
		results = append(results, domain.ConditionResult{
			Condition: c,
			Passed:    passed,
			Actual:    actual,
			Expected:  expected,
		})
	}

	sourceFiles := strconv.Itoa(m.SourceFileCount)
	add(domain.ConditionLinterCoverage, m.SourceFileCount == linterChecked,
		strconv.Itoa(linterChecked), sourceFiles)
	add(domain.ConditionDocstyleCoverage, m.SourceFileCount == docstyleChecked,
		strconv.Itoa(docstyleChecked), sourceFiles)
	add(domain.ConditionLinterClean, m.Linter.Failed == 0,
		strconv.Itoa(m.Linter.Failed), "0")
	add(domain.ConditionDocstyleClean, m.Docstyle.Failed == 0,
		strconv.Itoa(m.Docstyle.Failed), "0")

	threshold := fmt.Sprintf(">= %g", policy.CoverageThreshold)
	if m.Coverage == nil {
		add(domain.ConditionUnitTestCoverage, true, "unknown", threshold)
	} else {
		add(domain.ConditionUnitTestCoverage, *m.Coverage >= policy.CoverageThreshold,
			fmt.Sprintf("%g", *m.Coverage), threshold)
	}

	cc := m.CyclomaticComplexity
	add(domain.ConditionCyclomaticComplexity, cc.Status,
		strconv.Itoa(cc.Counts[domain.ComplexityRankD]+cc.Counts[domain.ComplexityRankE]+cc.Counts[domain.ComplexityRankF]),
		"0 blocks ranked D-F")

	mi := m.MaintainabilityIndex
	add(domain.ConditionMaintainability, mi.Status,
		strconv.Itoa(mi.Counts[domain.MaintainabilityRankB]+mi.Counts[domain.MaintainabilityRankC]),
		"0 modules ranked B-C")

	add(domain.ConditionDeadCode, m.DeadCode.Failed == 0,
		strconv.Itoa(m.DeadCode.Failed), "0")
	add(domain.ConditionCommonErrors, m.CommonErrors.Failed == 0,
		strconv.Itoa(m.CommonErrors.Failed), "0")

	return results
}

// ComputeStatus is the gate verdict: true iff every condition holds
func ComputeStatus(m domain.QualityMetrics, policy domain.Policy) bool {
	for _, r := range EvaluateConditions(m, policy) {
		if !r.Passed {
			return false
		}
	}
	return true
}

// FailedConditions returns the conditions that do not hold, in evaluation order
func FailedConditions(m domain.QualityMetrics, policy domain.Policy) []domain.ConditionResult {
	var failed []domain.ConditionResult
	for _, r := range EvaluateConditions(m, policy) {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
