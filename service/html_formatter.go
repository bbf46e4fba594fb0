package service

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/ludo-technologies/qadash/internal/version"
)

// HTMLData represents the data for HTML template
type HTMLData struct {
	GeneratedAt  string
	Duration     int64
	Version      string
	RunID        string
	Threshold    float64
	Passed       int
	Failed       int
	Repositories []HTMLRepository
	Failures     []domain.RepositoryFailure
}

// HTMLRepository is one row of the dashboard
type HTMLRepository struct {
	Name         string
	Status       bool
	SourceFiles  int
	SourceLines  int
	Linter       domain.LinterMetric
	Docstyle     domain.LinterMetric
	DeadCode     domain.LinterMetric
	CommonErrors domain.LinterMetric
	Coverage     string
	CoverageBar  string
	CoverageCSS  string
	CCCounts     []RankCount
	CCStatus     bool
	MICounts     []RankCount
	MIStatus     bool
	Remarks      []string
}

// RankCount is a rank letter with its count, in scale order
type RankCount struct {
	Rank  string
	Count int
	Bad   bool
}

// WriteHTML writes the run as a self-contained HTML dashboard
func (f *OutputFormatterImpl) WriteHTML(result *domain.RunResult, writer io.Writer) error {
	data := HTMLData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Duration:    result.Duration().Milliseconds(),
		Version:     version.Version,
		RunID:       result.RunID,
		Threshold:   result.Policy.CoverageThreshold,
		Passed:      result.Passed,
		Failed:      result.Failed,
		Failures:    result.Failures,
	}

	for _, s := range result.Snapshots {
		data.Repositories = append(data.Repositories, newHTMLRepository(s))
	}

	tmpl, err := template.New("dashboard").Parse(htmlTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(writer, data)
}

func newHTMLRepository(s *domain.RepositoryQualitySnapshot) HTMLRepository {
	m := s.Metrics()
	repo := HTMLRepository{
		Name:         m.Repository,
		Status:       s.OverallStatus(),
		SourceFiles:  m.SourceFileCount,
		SourceLines:  m.SourceLineCount,
		Linter:       m.Linter,
		Docstyle:     m.Docstyle,
		DeadCode:     m.DeadCode,
		CommonErrors: m.CommonErrors,
		Coverage:     "n/a",
		CCStatus:     m.CyclomaticComplexity.Status,
		MIStatus:     m.MaintainabilityIndex.Status,
		Remarks:      s.Remarks(),
	}

	if m.Coverage != nil {
		percent := fmt.Sprintf("%.0f", *m.Coverage)
		repo.Coverage = fmt.Sprintf("%.1f%%", *m.Coverage)
		repo.CoverageBar = analyzer.ProgressBarWidth(percent)
		repo.CoverageCSS = analyzer.ProgressBarClass(percent)
	}

	for _, r := range domain.ComplexityRanks {
		repo.CCCounts = append(repo.CCCounts, RankCount{
			Rank:  string(r),
			Count: m.CyclomaticComplexity.Counts[r],
			Bad:   !r.Acceptable(),
		})
	}
	for _, r := range domain.MaintainabilityRanks {
		repo.MICounts = append(repo.MICounts, RankCount{
			Rank:  string(r),
			Count: m.MaintainabilityIndex.Counts[r],
			Bad:   !r.Acceptable(),
		})
	}
	return repo
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>qadash Quality Dashboard</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f0f2f5;
        }
        .container { max-width: 1400px; margin: 0 auto; padding: 20px; }
        .header {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .header h1 { color: #667eea; margin-bottom: 10px; }
        .header .subtitle { color: #666; font-size: 14px; }
        .table {
            width: 100%;
            border-collapse: collapse;
            background: white;
            border-radius: 10px;
            overflow: hidden;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .table th, .table td {
            padding: 10px;
            text-align: left;
            border-bottom: 1px solid #ddd;
            vertical-align: top;
            font-size: 14px;
        }
        .table th { background: #f8f9fa; font-weight: 600; }
        .status-pass { color: #4caf50; font-weight: bold; }
        .status-fail { color: #f44336; font-weight: bold; }
        .rank-bad { color: #f44336; }
        .progress {
            width: 120px;
            height: 14px;
            background: #eee;
            border-radius: 7px;
            overflow: hidden;
        }
        .progress-bar { height: 100%; }
        .progress-bar-danger { background: #f44336; }
        .progress-bar-warning { background: #ff9800; }
        .progress-bar-info { background: #2196f3; }
        .progress-bar-success { background: #4caf50; }
        .na { color: #999; }
        ul.remarks { padding-left: 18px; }
        .errors {
            background: white;
            border-radius: 10px;
            padding: 20px;
            margin-top: 20px;
            color: #f44336;
        }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>Quality Dashboard</h1>
        <div class="subtitle">Run {{.RunID}} | Generated {{.GeneratedAt}} | {{.Duration}}ms | qadash {{.Version}}</div>
        <div class="subtitle">Coverage threshold {{.Threshold}}% | {{.Passed}} passed, {{.Failed}} failed</div>
    </div>

    <table class="table">
        <thead>
        <tr>
            <th>Repository</th>
            <th>Status</th>
            <th>Source files</th>
            <th>Linter</th>
            <th>Docstyle</th>
            <th>Coverage</th>
            <th>Cyclomatic complexity</th>
            <th>Maintainability index</th>
            <th>Dead code</th>
            <th>Common errors</th>
            <th>Remarks</th>
        </tr>
        </thead>
        <tbody>
        {{range .Repositories}}
        <tr>
            <td>{{.Name}}</td>
            <td>{{if .Status}}<span class="status-pass">OK</span>{{else}}<span class="status-fail">FAIL</span>{{end}}</td>
            <td>{{.SourceFiles}} ({{.SourceLines}} lines)</td>
            <td>{{template "check" .Linter}}</td>
            <td>{{template "check" .Docstyle}}</td>
            <td>{{if .CoverageBar}}{{.Coverage}}
                <div class="progress"><div class="progress-bar {{.CoverageCSS}}" style="width: {{.CoverageBar}}"></div></div>
                {{else}}<span class="na">n/a</span>{{end}}</td>
            <td>{{range .CCCounts}}<span{{if and .Bad .Count}} class="rank-bad"{{end}}>{{.Rank}}:{{.Count}}</span> {{end}}</td>
            <td>{{range .MICounts}}<span{{if and .Bad .Count}} class="rank-bad"{{end}}>{{.Rank}}:{{.Count}}</span> {{end}}</td>
            <td>{{template "check" .DeadCode}}</td>
            <td>{{template "check" .CommonErrors}}</td>
            <td>{{if .Remarks}}<ul class="remarks">{{range .Remarks}}<li>{{.}}</li>{{end}}</ul>{{end}}</td>
        </tr>
        {{end}}
        </tbody>
    </table>

    {{if .Failures}}
    <div class="errors">
        <h3>Repositories that could not be evaluated</h3>
        <ul>{{range .Failures}}<li>{{.Repository}}: {{.Error}}</li>{{end}}</ul>
    </div>
    {{end}}
</div>
</body>
</html>
{{define "check"}}{{if .DisplayResults}}{{.Passed}}/{{.Total}} passed
<div class="progress"><div class="progress-bar {{.BarStyleClass}}" style="width: {{.BarWidth}}"></div></div>
{{else}}<span class="na">n/a</span>{{end}}{{end}}`
