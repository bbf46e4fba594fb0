package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/version"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	useColors bool
}

// NewOutputFormatter creates a new output formatter. Colors follow the
// terminal detection of fatih/color.
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{useColors: !color.NoColor}
}

// NewPlainOutputFormatter creates a formatter that never emits ANSI colors
func NewPlainOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// RunResultJSON wraps RunResult with report metadata
type RunResultJSON struct {
	Version          string `json:"version" yaml:"version"`
	GeneratedAt      string `json:"generated_at" yaml:"generated_at"`
	DurationMs       int64  `json:"duration_ms" yaml:"duration_ms"`
	domain.RunResult `yaml:",inline"`
}

func newRunResultJSON(result *domain.RunResult) RunResultJSON {
	return RunResultJSON{
		Version:     version.Version,
		GeneratedAt: time.Now().Format(time.RFC3339),
		DurationMs:  result.Duration().Milliseconds(),
		RunResult:   *result,
	}
}

// Write writes the run in the specified format
func (f *OutputFormatterImpl) Write(result *domain.RunResult, format domain.OutputFormat, writer io.Writer) error {
	if result == nil {
		return domain.NewOutputError("nothing to report", nil)
	}

	var err error
	switch format {
	case domain.OutputFormatText, "":
		err = f.writeText(result, writer)
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, newRunResultJSON(result))
	case domain.OutputFormatYAML:
		err = f.writeYAML(result, writer)
	case domain.OutputFormatCSV:
		err = f.writeCSV(result, writer)
	case domain.OutputFormatHTML:
		err = f.WriteHTML(result, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write %s report", format), err)
	}
	return nil
}

func (f *OutputFormatterImpl) writeYAML(result *domain.RunResult, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(newRunResultJSON(result)); err != nil {
		return err
	}
	return encoder.Close()
}

// CSVHeader lists the columns of the CSV report, one row per repository
var CSVHeader = []string{
	"date", "run_id", "repository",
	"source_files", "source_lines",
	"linter_total", "linter_passed", "linter_failed",
	"docstyle_total", "docstyle_passed", "docstyle_failed",
	"coverage", "status",
}

func (f *OutputFormatterImpl) writeCSV(result *domain.RunResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	date := result.StartedAt.Format("2006-01-02")
	for _, s := range result.Snapshots {
		m := s.Metrics()
		coverage := ""
		if m.Coverage != nil {
			coverage = strconv.FormatFloat(*m.Coverage, 'f', -1, 64)
		}
		status := "fail"
		if s.OverallStatus() {
			status = "pass"
		}
		record := []string{
			date, result.RunID, m.Repository,
			strconv.Itoa(m.SourceFileCount), strconv.Itoa(m.SourceLineCount),
			strconv.Itoa(m.Linter.Total), strconv.Itoa(m.Linter.Passed), strconv.Itoa(m.Linter.Failed),
			strconv.Itoa(m.Docstyle.Total), strconv.Itoa(m.Docstyle.Passed), strconv.Itoa(m.Docstyle.Failed),
			coverage, status,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// writeText writes the run as a table followed by the remarks of failing repositories
func (f *OutputFormatterImpl) writeText(result *domain.RunResult, writer io.Writer) error {
	red, green, yellow := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if f.useColors {
		red = color.New(color.FgRed, color.Bold).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	}

	fmt.Fprintf(writer, "\n=== qadash Quality Report ===\n\n")
	fmt.Fprintf(writer, "Run: %s\n", result.RunID)
	fmt.Fprintf(writer, "Started: %s\n", result.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration: %dms\n", result.Duration().Milliseconds())
	fmt.Fprintf(writer, "Coverage threshold: %g%%\n\n", result.Policy.CoverageThreshold)

	if len(result.Snapshots) > 0 {
		table := tablewriter.NewWriter(writer)
		table.Header([]string{"Repository", "Files", "Lines", "Linter", "Docstyle", "Coverage", "CC", "MI", "Dead code", "Errors", "Status"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, s := range result.Snapshots {
			m := s.Metrics()
			status := green("PASS")
			if !s.OverallStatus() {
				status = red("FAIL")
			}
			data = append(data, []string{
				m.Repository,
				strconv.Itoa(m.SourceFileCount),
				strconv.Itoa(m.SourceLineCount),
				checkCell(m.Linter, yellow),
				checkCell(m.Docstyle, yellow),
				coverageCell(m.Coverage, result.Policy.CoverageThreshold, yellow),
				rankCell(m.CyclomaticComplexity.Status, yellow),
				rankCell(m.MaintainabilityIndex.Status, yellow),
				checkCell(m.DeadCode, yellow),
				checkCell(m.CommonErrors, yellow),
				status,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	var withRemarks []*domain.RepositoryQualitySnapshot
	for _, s := range result.Snapshots {
		if len(s.Remarks()) > 0 {
			withRemarks = append(withRemarks, s)
		}
	}
	if len(withRemarks) > 0 {
		fmt.Fprintf(writer, "\nRemarks:\n")
		for _, s := range withRemarks {
			fmt.Fprintf(writer, "  %s:\n", s.Repository())
			for _, r := range s.Remarks() {
				fmt.Fprintf(writer, "    - %s\n", r)
			}
		}
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, failure := range result.Failures {
			fmt.Fprintf(writer, "  - %s: %s\n", failure.Repository, red(failure.Error))
		}
	}

	fmt.Fprintf(writer, "\nSummary: %d passed, %d failed, %d errored\n",
		result.Passed, result.Failed, len(result.Failures))
	return nil
}

// checkCell renders "passed/total (pass%)", or n/a when the tool printed nothing
func checkCell(m domain.LinterMetric, highlight func(...any) string) string {
	if !m.DisplayResults {
		return highlight("n/a")
	}
	cell := fmt.Sprintf("%d/%d (%s%%)", m.Passed, m.Total, m.PassPercent)
	if m.Failed > 0 {
		return highlight(cell)
	}
	return cell
}

func coverageCell(coverage *float64, threshold float64, highlight func(...any) string) string {
	if coverage == nil {
		return highlight("n/a")
	}
	cell := strconv.FormatFloat(*coverage, 'f', 1, 64) + "%"
	if *coverage < threshold {
		return highlight(cell)
	}
	return cell
}

func rankCell(ok bool, highlight func(...any) string) string {
	if ok {
		return "ok"
	}
	return highlight("fail")
}

// FormatRemarks joins remarks for single-line contexts such as log fields
func FormatRemarks(remarks []string) string {
	return strings.Join(remarks, "; ")
}
