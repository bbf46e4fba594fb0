package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/qadash/domain"
)

// Remark texts
const (
	RemarkLinterNotSetup         = "linter not set up"
	RemarkLinterPartial          = "not all source files are checked by linter"
	RemarkDocstyleNotSetup       = "docstyle checker not set up"
	RemarkDocstylePartial        = "not all source files are checked by pydocstyle"
	RemarkImproveCoverage        = "improve code coverage"
	RemarkUnitTestsNotSetup      = "unit tests not set up"
	RemarkLinterFailed           = "linter failed"
	RemarkDocstyleFailed         = "pydocstyle check failed"
	RemarkReduceComplexity       = "reduce cyclomatic complexity"
	RemarkImproveMaintainability = "improve maintainability index"
	RemarkRemoveDeadCode         = "remove dead code"
	RemarkSetupDeadCode          = "set up dead code detection"
	RemarkFixCommonErrors        = "fix common errors"
	RemarkSetupCommonErrors      = "set up common errors detection"
)

// Remarks returns the remediation remarks for a repository in display order.
// Each rule contributes at most one remark; an empty list means nothing to fix.
func Remarks(m domain.QualityMetrics, policy domain.Policy) []string {
	ignoredPylint, ignoredPydocstyle := policy.IgnoredCounts(m.Repository)
	linterChecked := m.Linter.Total + ignoredPylint
	docstyleChecked := m.Docstyle.Total + ignoredPydocstyle

	remarks := []string{}

	switch {
	case !m.Linter.DisplayResults:
		remarks = append(remarks, RemarkLinterNotSetup)
	case m.SourceFileCount != linterChecked:
		remarks = append(remarks, RemarkLinterPartial)
	}

	switch {
	case !m.Docstyle.DisplayResults:
		remarks = append(remarks, RemarkDocstyleNotSetup)
	case m.SourceFileCount != docstyleChecked:
		remarks = append(remarks, RemarkDocstylePartial)
	}

	// Ignored files count towards the comparison but not the printed totals
	if linterChecked != docstyleChecked {
		remarks = append(remarks, fmt.Sprintf("linter checked %d files, but pydocstyle checked %d files",
			m.Linter.Total, m.Docstyle.Total))
	}

	switch {
	case m.Coverage == nil:
		remarks = append(remarks, RemarkUnitTestsNotSetup)
	case !(*m.Coverage >= policy.CoverageThreshold):
		remarks = append(remarks, RemarkImproveCoverage)
	}

	if m.Linter.Failed != 0 {
		remarks = append(remarks, RemarkLinterFailed)
	}
	if m.Docstyle.Failed != 0 {
		remarks = append(remarks, RemarkDocstyleFailed)
	}

	if ignoredPylint > 0 {
		remarks = append(remarks, ignoredRemark(ignoredPylint, "pylint"))
	}
	if ignoredPydocstyle > 0 {
		remarks = append(remarks, ignoredRemark(ignoredPydocstyle, "pydocstyle"))
	}

	if !m.CyclomaticComplexity.Status {
		remarks = append(remarks, RemarkReduceComplexity)
	}
	if !m.MaintainabilityIndex.Status {
		remarks = append(remarks, RemarkImproveMaintainability)
	}

	if r := detectorRemark(m.DeadCode, RemarkRemoveDeadCode, RemarkSetupDeadCode); r != "" {
		remarks = append(remarks, r)
	}
	if r := detectorRemark(m.CommonErrors, RemarkFixCommonErrors, RemarkSetupCommonErrors); r != "" {
		remarks = append(remarks, r)
	}

	return remarks
}

func ignoredRemark(count int, tool string) string {
	noun := "file"
	if count > 1 {
		noun = "files"
	}
	return fmt.Sprintf("%d %s ignored by %s", count, noun, tool)
}

// detectorRemark covers dead code and common errors. A detector that failed
// files gets the fix remark even when it printed no file markers.
func detectorRemark(m domain.LinterMetric, fix, setup string) string {
	switch {
	case m.Failed != 0:
		return fix
	case !m.DisplayResults:
		return setup
	}
	return ""
}
