package service

import (
	"context"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/ludo-technologies/qadash/internal/config"
	"github.com/ludo-technologies/qadash/internal/constants"
	"github.com/ludo-technologies/qadash/internal/log"
)

// QualityServiceImpl evaluates one repository from its tool outputs
type QualityServiceImpl struct {
	artifacts *ArtifactReader
	sources   *SourceCounter
	coverage  *CoverageReader
	logger    *log.Logger
}

// NewQualityService creates a quality service
func NewQualityService(artifacts *ArtifactReader, sources *SourceCounter, coverage *CoverageReader, logger *log.Logger) *QualityServiceImpl {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &QualityServiceImpl{
		artifacts: artifacts,
		sources:   sources,
		coverage:  coverage,
		logger:    logger,
	}
}

// NewQualityServiceFromConfig wires the readers from configuration
func NewQualityServiceFromConfig(cfg *config.Config, logger *log.Logger) *QualityServiceImpl {
	return NewQualityService(
		NewArtifactReader(cfg.Paths.WorkDir, cfg.Analysis.SourceSuffix),
		NewSourceCounter(SourceCounterConfig{
			RepositoriesDir:  cfg.Paths.RepositoriesDir,
			WorkDir:          cfg.Paths.WorkDir,
			SourceSuffix:     cfg.Analysis.SourceSuffix,
			ExcludePatterns:  cfg.Analysis.ExcludePatterns,
			RespectGitignore: cfg.Analysis.RespectGitignore,
		}),
		NewCoverageReader(cfg.Paths.WorkDir),
		logger,
	)
}

// EvaluateRepository reads every artifact of the repository, then runs the
// gate and the remark generator over the gathered metrics.
func (s *QualityServiceImpl) EvaluateRepository(ctx context.Context, repository string, policy domain.Policy) (*domain.RepositoryQualitySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.ValidateRepositoryName(repository); err != nil {
		return nil, err
	}
	start := time.Now()
	logger := s.logger.WithRepository(repository)

	builder := domain.NewSnapshotBuilder(repository)

	files, lines, err := s.sources.Count(ctx, repository)
	if err != nil {
		return nil, err
	}
	builder.WithSourceFiles(files, lines)

	for _, artifact := range CheckLogArtifacts {
		metric, digest, err := s.artifacts.ReadCheckLog(repository, artifact)
		if err != nil {
			return nil, err
		}
		builder.WithArtifactDigest(artifact.Name, digest)
		setCheckLogMetric(builder, artifact.Name, metric)
	}

	cc, digest, err := s.artifacts.ReadComplexity(repository)
	if err != nil {
		return nil, err
	}
	builder.WithCyclomaticComplexity(cc).WithArtifactDigest(constants.ArtifactComplexity, digest)

	mi, digest, err := s.artifacts.ReadMaintainability(repository)
	if err != nil {
		return nil, err
	}
	builder.WithMaintainabilityIndex(mi).WithArtifactDigest(constants.ArtifactMaintainability, digest)

	coverage, err := s.coverage.Coverage(repository)
	if err != nil {
		return nil, err
	}
	builder.WithCoverage(coverage)

	snapshot, err := analyzer.Evaluate(builder, policy)
	if err != nil {
		return nil, domain.NewAnalysisError("cannot finalize snapshot of "+repository, err)
	}

	logger.Debug("repository evaluated",
		"passed", snapshot.OverallStatus(),
		"remarks", len(snapshot.Remarks()),
		"source_files", files,
		"duration", time.Since(start))
	return snapshot, nil
}

func setCheckLogMetric(builder *domain.SnapshotBuilder, name string, metric domain.LinterMetric) {
	switch name {
	case constants.ArtifactLinter:
		builder.WithLinter(metric)
	case constants.ArtifactDocstyle:
		builder.WithDocstyle(metric)
	case constants.ArtifactDeadCode:
		builder.WithDeadCode(metric)
	case constants.ArtifactCommonErrors:
		builder.WithCommonErrors(metric)
	}
}
