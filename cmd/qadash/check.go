package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ludo-technologies/qadash/app"
	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkFlags evaluationFlags
	checkJSON  bool
)

var (
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	repoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [repository...]",
		Short: "Quality gate check for CI/CD pipelines",
		Long: `Evaluate the quality gate of every repository from the tool outputs in the
work directory.

Repositories are taken from the arguments, then from the configuration, and
finally discovered from the <repo>.linter.txt files in the work directory.

Exit codes:
  0 - All repositories pass their gate
  1 - At least one repository fails its gate
  2 - A repository could not be evaluated (missing tool output, parse error, etc.)

Examples:
  # Check every configured repository
  qadash check

  # Check two repositories with a lower coverage bar
  qadash check --coverage-threshold 80 worker api

  # JSON output for machine parsing
  qadash check --json`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	checkFlags.register(cmd)
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output results as JSON")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(checkFlags.configPath, checkFlags.verbose)
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	req, err := checkFlags.buildRequest(cmd, env, args)
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: err.Error()}
	}

	history, err := openHistory(env.cfg, checkFlags.noHistory)
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: fmt.Sprintf("failed to open history store: %v", err)}
	}
	defer history.Close()

	// Create progress manager (auto-disabled for JSON output or non-TTY/CI)
	pm := service.NewProgressManager(!checkJSON)
	defer pm.Close()

	uc, err := newQualityUseCase(env, pm, history, service.NewOutputFormatter())
	if err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: err.Error()}
	}

	// The verbose text report is rendered by the use case itself
	if checkFlags.verbose && !checkJSON {
		req.OutputFormat = domain.OutputFormatText
		req.OutputWriter = cmd.OutOrStdout()
	} else {
		req.OutputWriter = nil
		req.OutputPath = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := uc.Execute(ctx, *req)
	if result == nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: err.Error()}
	}

	check := app.BuildCheckResult(result)
	if checkJSON {
		return outputCheckJSON(cmd.OutOrStdout(), check)
	}
	return outputCheckText(cmd.OutOrStdout(), check)
}

func outputCheckText(w io.Writer, result *domain.CheckResult) error {
	summary := labelStyle.Render(fmt.Sprintf("%d passed, %d failed, %d errored in %dms",
		result.Summary.RepositoriesPassed,
		result.Summary.RepositoriesFailed,
		result.Summary.RepositoriesErrored,
		result.Duration))

	if result.Passed {
		fmt.Fprintf(w, "%s All quality gates passed\n", passStyle.Render("PASS"))
		fmt.Fprintf(w, "  %s\n", summary)
		return nil
	}

	fmt.Fprintf(w, "%s Quality gate failed\n", failStyle.Render("FAIL"))
	fmt.Fprintf(w, "  %s\n", summary)

	var current string
	for _, v := range result.Violations {
		if v.Repository != current {
			current = v.Repository
			fmt.Fprintf(w, "  %s\n", repoStyle.Render(current))
		}
		fmt.Fprintf(w, "    [%s] %s: %s (actual %s, expected %s)\n",
			strings.ToUpper(v.Severity), v.Rule, v.Message, v.Actual, v.Threshold)
	}

	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s %s: %s\n", failStyle.Render("ERROR"), e.Repository, e.Message)
	}

	return &CheckExitError{Code: result.ExitCode, Message: ""}
}

func outputCheckJSON(w io.Writer, result *domain.CheckResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return &CheckExitError{Code: domain.ExitCodeError, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
	}

	if !result.Passed {
		return &CheckExitError{Code: result.ExitCode, Message: ""}
	}
	return nil
}
