package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ludo-technologies/qadash/app"
	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/service"
	"github.com/spf13/cobra"
)

var (
	reportFlags      evaluationFlags
	reportFormat     string
	reportOutputPath string
	reportNoOpen     bool
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [repository...]",
		Short: "Render the quality dashboard",
		Long: `Evaluate every repository and render the dashboard in one of the supported
formats: text, json, yaml, csv or html.

HTML reports are always written to a file (output.directory, or --output) and
opened in the browser unless --no-open is given. Other formats go to stdout
unless --output is set.

Examples:
  # Terminal table
  qadash report

  # CSV export of today's run
  qadash report --format csv --output qa.csv

  # HTML dashboard without opening a browser
  qadash report --format html --no-open`,
		RunE: runReport,
	}

	reportFlags.register(cmd)
	cmd.Flags().StringVarP(&reportFormat, "format", "f", "",
		"Output format: text, json, yaml, csv, html (overrides output.format)")
	cmd.Flags().StringVarP(&reportOutputPath, "output", "o", "",
		"Write the report to this file")
	cmd.Flags().BoolVar(&reportNoOpen, "no-open", false,
		"Don't auto-open HTML report in browser")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(reportFlags.configPath, reportFlags.verbose)
	if err != nil {
		return err
	}

	req, err := reportFlags.buildRequest(cmd, env, args)
	if err != nil {
		return err
	}

	if reportFormat != "" {
		req.OutputFormat = domain.OutputFormat(reportFormat)
	}
	if req.OutputFormat == "" {
		req.OutputFormat = domain.OutputFormatText
	}
	if !req.OutputFormat.IsValid() {
		return domain.NewUnsupportedFormatError(string(req.OutputFormat))
	}

	req.OutputPath = reportOutputPath
	if req.OutputPath == "" && req.OutputFormat == domain.OutputFormatHTML {
		req.OutputPath = app.NewFileHelper().ReportPath(env.cfg.Output.Directory, req.OutputFormat, time.Now())
	}
	req.NoOpen = reportNoOpen

	// Notices about written files go to stderr, reports to stdout
	if req.OutputPath != "" {
		req.OutputWriter = cmd.ErrOrStderr()
	} else {
		req.OutputWriter = cmd.OutOrStdout()
	}

	history, err := openHistory(env.cfg, reportFlags.noHistory)
	if err != nil {
		return err
	}
	defer history.Close()

	// Progress is only drawn when the report itself does not go to the terminal
	pm := service.NewProgressManager(req.OutputPath != "")
	defer pm.Close()

	uc, err := newQualityUseCase(env, pm, history, service.NewOutputFormatter())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := uc.Execute(ctx, *req)
	var agg *service.AggregatedError
	if errors.As(err, &agg) && result != nil {
		// Unevaluated repositories are listed in the report itself
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d repositories could not be evaluated\n", len(agg.Errors))
		return nil
	}
	return err
}
