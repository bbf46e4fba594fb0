package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/config"
	"github.com/ludo-technologies/qadash/internal/log"
	"github.com/ludo-technologies/qadash/service"
)

// QualityUseCase orchestrates one evaluation run over all repositories
type QualityUseCase struct {
	service     domain.QualityService
	formatter   domain.OutputFormatter
	progress    domain.ProgressManager
	performance config.PerformanceConfig
	history     domain.HistoryStore
	metrics     *service.RunMetrics
	textfile    string
	logger      *log.Logger
	clock       func() time.Time
	newRunID    func() string
}

// NewQualityUseCase creates a use case with defaults for everything but the
// service, which is required
func NewQualityUseCase(svc domain.QualityService, formatter domain.OutputFormatter) (*QualityUseCase, error) {
	return NewQualityUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		Build()
}

// Execute evaluates every requested repository and returns the run. A
// repository that cannot be evaluated does not stop the others: the partial
// result is returned together with a *service.AggregatedError.
func (uc *QualityUseCase) Execute(ctx context.Context, req domain.QualityRequest) (*domain.RunResult, error) {
	if err := req.Validate(); err != nil {
		if domain.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	result := &domain.RunResult{
		RunID:     uc.newRunID(),
		StartedAt: uc.clock(),
		Policy:    req.Policy,
	}
	logger := uc.logger.WithRun(result.RunID)
	logger.Info("evaluation started", "repositories", len(req.Repositories))

	snapshots := make([]*domain.RepositoryQualitySnapshot, len(req.Repositories))
	tasks := make([]domain.ExecutableTask, len(req.Repositories))
	for i, repository := range req.Repositories {
		tasks[i] = &repositoryTask{
			repository: repository,
			policy:     req.Policy,
			service:    uc.service,
			store:      func(s *domain.RepositoryQualitySnapshot) { snapshots[i] = s },
		}
	}

	executor := service.NewParallelExecutorWithProgress(&uc.performance, uc.progress)
	runErr := executor.Execute(ctx, tasks)

	for _, s := range snapshots {
		if s != nil {
			result.Snapshots = append(result.Snapshots, s)
		}
	}

	var agg *service.AggregatedError
	if runErr != nil {
		if !errors.As(runErr, &agg) {
			return nil, domain.NewAnalysisError("evaluation failed", runErr)
		}
		for _, taskErr := range agg.Errors {
			result.Failures = append(result.Failures, domain.RepositoryFailure{
				Repository: taskErr.TaskName,
				Code:       domain.ErrorCode(taskErr.Err),
				Error:      taskErr.Err.Error(),
			})
			logger.WithRepository(taskErr.TaskName).WithError(taskErr.Err).Warn("repository not evaluated")
		}
	}

	result.FinishedAt = uc.clock()
	result.Tally()

	uc.record(ctx, logger, result, req.ConfigPath)

	if err := uc.writeOutput(result, req); err != nil {
		return result, err
	}

	logger.Info("evaluation finished",
		"passed", result.Passed,
		"failed", result.Failed,
		"errored", len(result.Failures),
		"duration_ms", result.Duration().Milliseconds())

	if agg != nil {
		return result, agg
	}
	return result, nil
}

// record persists the run and exports metrics. Neither may change the
// verdict of the run, so failures are only logged.
func (uc *QualityUseCase) record(ctx context.Context, logger *log.Logger, result *domain.RunResult, configPath string) {
	if uc.history != nil {
		if err := uc.history.RecordRun(ctx, result, configPath); err != nil {
			logger.WithError(err).Warn("failed to record run history")
		}
	}

	if uc.metrics == nil {
		return
	}
	uc.metrics.Observe(result)
	if uc.textfile != "" {
		if err := uc.metrics.WriteTextfile(uc.textfile); err != nil {
			logger.WithError(err).Warn("failed to write metrics textfile")
		}
	}
}

// writeOutput renders the run to the request's writer or file
func (uc *QualityUseCase) writeOutput(result *domain.RunResult, req domain.QualityRequest) error {
	if uc.formatter == nil {
		return nil
	}
	format := req.OutputFormat
	if format == "" {
		format = domain.OutputFormatText
	}

	if req.OutputPath == "" {
		if req.OutputWriter == nil {
			return nil
		}
		return uc.formatter.Write(result, format, req.OutputWriter)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return domain.NewOutputError("failed to create report directory", err)
	}
	file, err := os.Create(req.OutputPath)
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create %s", req.OutputPath), err)
	}
	defer file.Close()

	if err := uc.formatter.Write(result, format, file); err != nil {
		return err
	}

	if req.OutputWriter != nil {
		absPath, _ := filepath.Abs(req.OutputPath)
		fmt.Fprintf(req.OutputWriter, "%s report saved to: %s\n", format, absPath)
	}

	if format == domain.OutputFormatHTML && !req.NoOpen && !service.IsSSH() {
		absPath, _ := filepath.Abs(req.OutputPath)
		if err := service.OpenBrowser("file://" + absPath); err != nil {
			uc.logger.WithError(err).Warn("could not open browser")
		}
	}
	return nil
}

// repositoryTask evaluates one repository inside the parallel executor
type repositoryTask struct {
	repository string
	policy     domain.Policy
	service    domain.QualityService
	store      func(*domain.RepositoryQualitySnapshot)
}

func (t *repositoryTask) Name() string { return t.repository }

func (t *repositoryTask) IsEnabled() bool { return true }

func (t *repositoryTask) Execute(ctx context.Context) (interface{}, error) {
	snapshot, err := t.service.EvaluateRepository(ctx, t.repository, t.policy)
	if err != nil {
		return nil, err
	}
	t.store(snapshot)
	return snapshot, nil
}

// QualityUseCaseBuilder provides a builder pattern for creating QualityUseCase
type QualityUseCaseBuilder struct {
	service     domain.QualityService
	formatter   domain.OutputFormatter
	progress    domain.ProgressManager
	performance *config.PerformanceConfig
	history     domain.HistoryStore
	metrics     *service.RunMetrics
	textfile    string
	logger      *log.Logger
	clock       func() time.Time
	newRunID    func() string
}

// NewQualityUseCaseBuilder creates a new builder
func NewQualityUseCaseBuilder() *QualityUseCaseBuilder {
	return &QualityUseCaseBuilder{}
}

// WithService sets the quality service
func (b *QualityUseCaseBuilder) WithService(svc domain.QualityService) *QualityUseCaseBuilder {
	b.service = svc
	return b
}

// WithFormatter sets the output formatter
func (b *QualityUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *QualityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithProgress sets the progress manager
func (b *QualityUseCaseBuilder) WithProgress(pm domain.ProgressManager) *QualityUseCaseBuilder {
	b.progress = pm
	return b
}

// WithPerformance sets the concurrency and timeout settings
func (b *QualityUseCaseBuilder) WithPerformance(cfg config.PerformanceConfig) *QualityUseCaseBuilder {
	b.performance = &cfg
	return b
}

// WithHistory sets the store runs are recorded in
func (b *QualityUseCaseBuilder) WithHistory(store domain.HistoryStore) *QualityUseCaseBuilder {
	b.history = store
	return b
}

// WithMetrics sets the metrics registry and the optional textfile path
func (b *QualityUseCaseBuilder) WithMetrics(metrics *service.RunMetrics, textfile string) *QualityUseCaseBuilder {
	b.metrics = metrics
	b.textfile = textfile
	return b
}

// WithLogger sets the logger
func (b *QualityUseCaseBuilder) WithLogger(logger *log.Logger) *QualityUseCaseBuilder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now, for tests
func (b *QualityUseCaseBuilder) WithClock(clock func() time.Time) *QualityUseCaseBuilder {
	b.clock = clock
	return b
}

// WithRunID replaces the UUID generator, for tests
func (b *QualityUseCaseBuilder) WithRunID(newRunID func() string) *QualityUseCaseBuilder {
	b.newRunID = newRunID
	return b
}

// Build creates the QualityUseCase with the configured dependencies
func (b *QualityUseCaseBuilder) Build() (*QualityUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("quality service is required")
	}

	uc := &QualityUseCase{
		service:   b.service,
		formatter: b.formatter,
		progress:  b.progress,
		history:   b.history,
		metrics:   b.metrics,
		textfile:  b.textfile,
		logger:    b.logger,
		clock:     b.clock,
		newRunID:  b.newRunID,
	}

	if b.performance != nil {
		uc.performance = *b.performance
	} else {
		uc.performance = config.DefaultConfig().Performance
	}
	if uc.progress == nil {
		uc.progress = &service.NoOpProgressManager{}
	}
	if uc.logger == nil {
		uc.logger = log.DefaultLogger()
	}
	if uc.clock == nil {
		uc.clock = time.Now
	}
	if uc.newRunID == nil {
		uc.newRunID = uuid.NewString
	}

	return uc, nil
}
