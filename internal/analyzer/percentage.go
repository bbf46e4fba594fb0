package analyzer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ludo-technologies/qadash/domain"
)

// Progress bar classes, lowest bucket first
const (
	BarClassDanger  = "progress-bar-danger"
	BarClassWarning = "progress-bar-warning"
	BarClassInfo    = "progress-bar-info"
	BarClassSuccess = "progress-bar-success"
)

// Percentage returns 100*part2/(part1+part2) rounded to an integer, or "0"
// when both parts are zero.
func Percentage(part1, part2 int) string {
	total := part1 + part2
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.0f", 100*float64(part2)/float64(total))
}

// ProgressBarClass maps a percentage string onto a bar style class
func ProgressBarClass(percent string) string {
	v, ok := parsePercent(percent)
	if !ok {
		return BarClassDanger
	}
	switch {
	case v < 30:
		return BarClassDanger
	case v < 70:
		return BarClassWarning
	case v < 90:
		return BarClassInfo
	default:
		return BarClassSuccess
	}
}

// ProgressBarWidth maps a percentage string onto a CSS width clamped to 0..100
func ProgressBarWidth(percent string) string {
	v, ok := parsePercent(percent)
	if !ok {
		return "0%"
	}
	v = math.Max(0, math.Min(100, v))
	return fmt.Sprintf("%.0f%%", v)
}

func parsePercent(percent string) (float64, bool) {
	v, err := strconv.ParseFloat(percent, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// NewLinterMetric derives a complete metric from marker counts and the
// per-file results. The bar follows the pass percentage.
func NewLinterMetric(passed, failed int, files domain.FileCheckResult) domain.LinterMetric {
	passPercent := Percentage(failed, passed)
	return domain.LinterMetric{
		Total:          passed + failed,
		Passed:         passed,
		Failed:         failed,
		DisplayResults: len(files) > 0,
		PassPercent:    passPercent,
		FailPercent:    Percentage(passed, failed),
		BarStyleClass:  ProgressBarClass(passPercent),
		BarWidth:       ProgressBarWidth(passPercent),
		Files:          files.Clone(),
	}
}
