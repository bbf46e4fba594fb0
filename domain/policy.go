package domain

import (
	"fmt"
	"math"
)

// DefaultCoverageThreshold is the minimal unit test coverage in percent
const DefaultCoverageThreshold = 90.0

// Policy carries the thresholds and static ignore lists the gate is
// evaluated against. It is injected per evaluation, never stored globally.
type Policy struct {
	// CoverageThreshold is the minimal coverage in percent (0-100)
	CoverageThreshold float64 `json:"coverage_threshold" yaml:"coverage_threshold"`

	// IgnoredPylint maps a repository to source files exempted from the linter
	IgnoredPylint map[string][]string `json:"ignored_pylint,omitempty" yaml:"ignored_pylint,omitempty"`

	// IgnoredPydocstyle maps a repository to source files exempted from the docstyle checker
	IgnoredPydocstyle map[string][]string `json:"ignored_pydocstyle,omitempty" yaml:"ignored_pydocstyle,omitempty"`
}

// DefaultPolicy returns a policy with the default threshold and no ignore lists
func DefaultPolicy() Policy {
	return Policy{
		CoverageThreshold: DefaultCoverageThreshold,
		IgnoredPylint:     map[string][]string{},
		IgnoredPydocstyle: map[string][]string{},
	}
}

// IgnoredCounts returns how many files of the repository are exempted from
// the linter and from the docstyle checker.
func (p Policy) IgnoredCounts(repository string) (pylint, pydocstyle int) {
	return len(p.IgnoredPylint[repository]), len(p.IgnoredPydocstyle[repository])
}

// Validate checks the policy values
func (p Policy) Validate() error {
	if math.IsNaN(p.CoverageThreshold) || p.CoverageThreshold < 0 || p.CoverageThreshold > 100 {
		return NewValidationError(fmt.Sprintf("coverage threshold must be between 0 and 100, got %g", p.CoverageThreshold))
	}
	return nil
}

// GateCondition names one of the nine conditions of the quality gate
type GateCondition string

const (
	ConditionLinterCoverage       GateCondition = "linter-coverage"
	ConditionDocstyleCoverage     GateCondition = "docstyle-coverage"
	ConditionLinterClean          GateCondition = "linter-clean"
	ConditionDocstyleClean        GateCondition = "docstyle-clean"
	ConditionUnitTestCoverage     GateCondition = "unit-test-coverage"
	ConditionCyclomaticComplexity GateCondition = "cyclomatic-complexity"
	ConditionMaintainability      GateCondition = "maintainability-index"
	ConditionDeadCode             GateCondition = "dead-code"
	ConditionCommonErrors         GateCondition = "common-errors"
)

// GateConditions lists all conditions in evaluation order
var GateConditions = []GateCondition{
	ConditionLinterCoverage,
	ConditionDocstyleCoverage,
	ConditionLinterClean,
	ConditionDocstyleClean,
	ConditionUnitTestCoverage,
	ConditionCyclomaticComplexity,
	ConditionMaintainability,
	ConditionDeadCode,
	ConditionCommonErrors,
}

// ConditionResult is the outcome of one gate condition
type ConditionResult struct {
	Condition GateCondition `json:"condition" yaml:"condition"`
	Passed    bool          `json:"passed" yaml:"passed"`
	Actual    string        `json:"actual" yaml:"actual"`
	Expected  string        `json:"expected" yaml:"expected"`
}
