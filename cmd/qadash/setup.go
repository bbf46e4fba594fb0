package main

import (
	"fmt"

	"github.com/ludo-technologies/qadash/app"
	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/config"
	"github.com/ludo-technologies/qadash/internal/log"
	"github.com/ludo-technologies/qadash/service"
	"github.com/spf13/cobra"
)

// evaluationFlags are shared by the commands that evaluate repositories
type evaluationFlags struct {
	configPath        string
	workDir           string
	reposDir          string
	coverageThreshold float64
	verbose           bool
	noHistory         bool
}

func (f *evaluationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVarP(&f.workDir, "work-dir", "w", "",
		"Directory holding the tool outputs (overrides paths.work_dir)")
	cmd.Flags().StringVar(&f.reposDir, "repos-dir", "",
		"Directory holding the repository checkouts (overrides paths.repositories_dir)")
	cmd.Flags().Float64Var(&f.coverageThreshold, "coverage-threshold", config.DefaultCoverageThreshold,
		"Minimal unit test coverage in percent (overrides policy.coverage_threshold)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false,
		"Show detailed output and debug logs")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false,
		"Do not record this run in the history store")
}

// environment bundles what a command needs after configuration is loaded
type environment struct {
	cfg    *config.Config
	logger *log.Logger
}

// loadEnvironment loads the configuration and installs the process logger.
// Log output goes to stderr so reports on stdout stay machine readable.
func loadEnvironment(configPath string, verbose bool) (*environment, error) {
	cfg, err := service.NewConfigurationLoader().LoadConfig(configPath, ".")
	if err != nil {
		return nil, err
	}

	logger := log.New(log.FromSettings(cfg.Log.Level, cfg.Log.Format, verbose))
	log.SetDefaultLogger(logger)

	return &environment{cfg: cfg, logger: logger}, nil
}

// applyPaths copies path overrides into the configuration, so that the
// readers built from it see the same directories as the request.
func (f *evaluationFlags) applyPaths(cfg *config.Config) {
	if f.workDir != "" {
		cfg.Paths.WorkDir = f.workDir
	}
	if f.reposDir != "" {
		cfg.Paths.RepositoriesDir = f.reposDir
	}
}

// buildRequest turns configuration, flags and positional repositories into
// a quality request. Without configured or given repositories, the work
// directory is scanned for linter outputs.
func (f *evaluationFlags) buildRequest(cmd *cobra.Command, env *environment, repositories []string) (*domain.QualityRequest, error) {
	f.applyPaths(env.cfg)

	loader := service.NewConfigurationLoader()
	overrides := service.RequestOverrides{
		Repositories: repositories,
		ConfigPath:   f.configPath,
	}
	if cmd.Flags().Changed("coverage-threshold") {
		threshold := f.coverageThreshold
		overrides.CoverageThreshold = &threshold
	}
	req := loader.MergeConfig(loader.ToRequest(env.cfg), overrides)

	resolved, err := app.ResolveRepositories(app.NewFileHelper(), req.Repositories, req.WorkDir)
	if err != nil {
		return nil, domain.NewFileNotFoundError(req.WorkDir, err)
	}
	if len(resolved) == 0 {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("no repositories configured and no linter outputs found in %s", req.WorkDir), nil)
	}
	req.Repositories = resolved

	return req, nil
}

// openHistory opens the configured history store, or a no-op store when
// recording is disabled.
func openHistory(cfg *config.Config, disabled bool) (domain.HistoryStore, error) {
	if disabled {
		return service.NoOpHistoryStore{}, nil
	}
	return service.NewHistoryStore(cfg.History.Backend, cfg.HistoryDSN())
}

// newQualityUseCase wires the use case from configuration
func newQualityUseCase(env *environment, pm domain.ProgressManager, history domain.HistoryStore, formatter domain.OutputFormatter) (*app.QualityUseCase, error) {
	builder := app.NewQualityUseCaseBuilder().
		WithService(service.NewQualityServiceFromConfig(env.cfg, env.logger)).
		WithFormatter(formatter).
		WithProgress(pm).
		WithPerformance(env.cfg.Performance).
		WithHistory(history).
		WithLogger(env.logger)

	if env.cfg.Metrics.Textfile != "" {
		builder = builder.WithMetrics(service.NewRunMetrics(), env.cfg.Metrics.Textfile)
	}

	return builder.Build()
}
