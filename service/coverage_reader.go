package service

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/constants"
	"gopkg.in/yaml.v3"
)

// CoverageReader resolves the unit test coverage of repositories. A
// per-repository <repo>.coverage file wins over the coverage.yaml map.
type CoverageReader struct {
	workDir string

	once   sync.Once
	byRepo map[string]string
	mapErr error
}

// NewCoverageReader creates a reader for the given work directory
func NewCoverageReader(workDir string) *CoverageReader {
	return &CoverageReader{workDir: workDir}
}

// Coverage returns the coverage percentage of a repository, or nil when no
// coverage data exists.
func (r *CoverageReader) Coverage(repository string) (*float64, error) {
	path := filepath.Join(r.workDir, repository+constants.CoverageArtifactSuffix)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return parseCoverage(path, string(data))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, domain.NewAnalysisError(fmt.Sprintf("cannot read %s", path), err)
	}

	r.once.Do(r.loadMap)
	if r.mapErr != nil {
		return nil, r.mapErr
	}
	raw, ok := r.byRepo[repository]
	if !ok {
		return nil, nil
	}
	return parseCoverage(filepath.Join(r.workDir, constants.CoverageMapFile), raw)
}

func (r *CoverageReader) loadMap() {
	path := filepath.Join(r.workDir, constants.CoverageMapFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.mapErr = domain.NewAnalysisError(fmt.Sprintf("cannot read %s", path), err)
		}
		return
	}

	var byRepo map[string]string
	if err := yaml.Unmarshal(data, &byRepo); err != nil {
		r.mapErr = domain.NewParseError(path, err)
		return
	}
	r.byRepo = byRepo
}

// parseCoverage accepts "87.5" and "87.5%"
func parseCoverage(source, raw string) (*float64, error) {
	value := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if value == "" {
		return nil, nil
	}
	coverage, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, domain.NewParseError(source, err)
	}
	if math.IsNaN(coverage) || math.IsInf(coverage, 0) {
		return nil, domain.NewParseError(source, fmt.Errorf("coverage %q is not a number", value))
	}
	if coverage < 0 || coverage > 100 {
		return nil, domain.NewParseError(source, fmt.Errorf("coverage %g out of range", coverage))
	}
	return &coverage, nil
}
