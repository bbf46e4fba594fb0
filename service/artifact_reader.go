package service

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/ludo-technologies/qadash/internal/constants"
	"github.com/zeebo/blake3"
)

// CheckLogArtifact names one pass/fail tool output of a repository
type CheckLogArtifact struct {
	Name   string
	Suffix string
}

// CheckLogArtifacts lists the pass/fail tool outputs read for every repository
var CheckLogArtifacts = []CheckLogArtifact{
	{Name: constants.ArtifactLinter, Suffix: constants.LinterArtifactSuffix},
	{Name: constants.ArtifactDocstyle, Suffix: constants.DocstyleArtifactSuffix},
	{Name: constants.ArtifactDeadCode, Suffix: constants.DeadCodeArtifactSuffix},
	{Name: constants.ArtifactCommonErrors, Suffix: constants.CommonErrorsArtifactSuffix},
}

// ArtifactReader reads the tool outputs of repositories from the work directory
type ArtifactReader struct {
	workDir      string
	sourceSuffix string
}

// NewArtifactReader creates a reader for the given work directory
func NewArtifactReader(workDir, sourceSuffix string) *ArtifactReader {
	if sourceSuffix == "" {
		sourceSuffix = analyzer.DefaultSourceSuffix
	}
	return &ArtifactReader{
		workDir:      workDir,
		sourceSuffix: sourceSuffix,
	}
}

// WorkDir returns the directory artifacts are read from
func (r *ArtifactReader) WorkDir() string {
	return r.workDir
}

// Path returns the location of a repository artifact
func (r *ArtifactReader) Path(repository, suffix string) string {
	return filepath.Join(r.workDir, repository+suffix)
}

// Exists reports whether a repository artifact is present
func (r *ArtifactReader) Exists(repository, suffix string) bool {
	info, err := os.Stat(r.Path(repository, suffix))
	return err == nil && !info.IsDir()
}

// ReadCheckLog parses a pass/fail tool output and returns its metric and digest
func (r *ArtifactReader) ReadCheckLog(repository string, artifact CheckLogArtifact) (domain.LinterMetric, string, error) {
	data, digest, err := r.read(repository, artifact.Suffix)
	if err != nil {
		return domain.LinterMetric{}, "", err
	}

	metric, err := analyzer.ParseCheckLog(bytes.NewReader(data), r.sourceSuffix)
	if err != nil {
		return domain.LinterMetric{}, "", domain.NewParseError(r.Path(repository, artifact.Suffix), err)
	}
	return metric, digest, nil
}

// ReadComplexity parses the radon cyclomatic complexity report of a repository
func (r *ArtifactReader) ReadComplexity(repository string) (domain.ComplexityMetric, string, error) {
	data, digest, err := r.read(repository, constants.ComplexityArtifactSuffix)
	if err != nil {
		return domain.ComplexityMetric{}, "", err
	}

	metric, err := analyzer.ParseComplexityRanks(bytes.NewReader(data))
	if err != nil {
		return domain.ComplexityMetric{}, "", fmt.Errorf("%s: %w", r.Path(repository, constants.ComplexityArtifactSuffix), err)
	}
	return metric, digest, nil
}

// ReadMaintainability parses the radon maintainability index report of a repository
func (r *ArtifactReader) ReadMaintainability(repository string) (domain.MaintainabilityMetric, string, error) {
	data, digest, err := r.read(repository, constants.MaintainabilityArtifactSuffix)
	if err != nil {
		return domain.MaintainabilityMetric{}, "", err
	}

	metric, err := analyzer.ParseMaintainabilityRanks(bytes.NewReader(data))
	if err != nil {
		return domain.MaintainabilityMetric{}, "", fmt.Errorf("%s: %w", r.Path(repository, constants.MaintainabilityArtifactSuffix), err)
	}
	return metric, digest, nil
}

func (r *ArtifactReader) read(repository, suffix string) ([]byte, string, error) {
	path := r.Path(repository, suffix)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", domain.NewFileNotFoundError(path, err)
		}
		return nil, "", domain.NewAnalysisError(fmt.Sprintf("cannot read %s", path), err)
	}
	return data, Digest(data), nil
}

// Digest returns the hex BLAKE3 digest of an artifact
func Digest(data []byte) string {
	hasher := blake3.New()
	_, _ = hasher.Write(data)
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
