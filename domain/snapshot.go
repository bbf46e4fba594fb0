package domain

import (
	"encoding/json"
	"errors"
)

// ErrSnapshotFinalized is recorded by a SnapshotBuilder when it is modified
// after Finalize.
var ErrSnapshotFinalized = errors.New("snapshot already finalized")

// QualityMetrics is the metric payload of one repository evaluation. It is
// what the gate and the remark generator read.
type QualityMetrics struct {
	Repository             string                `json:"repository" yaml:"repository"`
	SourceFileCount        int                   `json:"source_file_count" yaml:"source_file_count"`
	SourceLineCount        int                   `json:"source_line_count" yaml:"source_line_count"`
	Linter                 LinterMetric          `json:"linter" yaml:"linter"`
	Docstyle               LinterMetric          `json:"docstyle" yaml:"docstyle"`
	CyclomaticComplexity   ComplexityMetric      `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	MaintainabilityIndex   MaintainabilityMetric `json:"maintainability_index" yaml:"maintainability_index"`
	DeadCode               LinterMetric          `json:"dead_code" yaml:"dead_code"`
	CommonErrors           LinterMetric          `json:"common_errors" yaml:"common_errors"`
	Coverage               *float64              `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	IgnoredPylintFiles     int                   `json:"ignored_pylint_files" yaml:"ignored_pylint_files"`
	IgnoredPydocstyleFiles int                   `json:"ignored_pydocstyle_files" yaml:"ignored_pydocstyle_files"`
}

// Clone returns a deep copy of the metrics
func (m QualityMetrics) Clone() QualityMetrics {
	m.Linter = m.Linter.Clone()
	m.Docstyle = m.Docstyle.Clone()
	m.DeadCode = m.DeadCode.Clone()
	m.CommonErrors = m.CommonErrors.Clone()
	m.CyclomaticComplexity = m.CyclomaticComplexity.Clone()
	m.MaintainabilityIndex = m.MaintainabilityIndex.Clone()
	if m.Coverage != nil {
		c := *m.Coverage
		m.Coverage = &c
	}
	return m
}

// SnapshotBuilder accumulates the metrics of one repository while its tool
// outputs are parsed, and freezes them into a RepositoryQualitySnapshot.
// Setters are chainable; misuse is reported through Err.
type SnapshotBuilder struct {
	metrics   QualityMetrics
	digests   map[string]string
	finalized bool
	err       error
}

// NewSnapshotBuilder creates an empty builder for a repository
func NewSnapshotBuilder(repository string) *SnapshotBuilder {
	return &SnapshotBuilder{
		metrics: QualityMetrics{
			Repository:           repository,
			Linter:               emptyLinterMetric(),
			Docstyle:             emptyLinterMetric(),
			DeadCode:             emptyLinterMetric(),
			CommonErrors:         emptyLinterMetric(),
			CyclomaticComplexity: NewComplexityMetric(nil),
			MaintainabilityIndex: NewMaintainabilityMetric(nil),
		},
		digests: make(map[string]string),
	}
}

func emptyLinterMetric() LinterMetric {
	return LinterMetric{PassPercent: "0", FailPercent: "0", BarWidth: "0%"}
}

// Repository returns the repository the builder collects metrics for
func (b *SnapshotBuilder) Repository() string {
	return b.metrics.Repository
}

// Metrics returns a copy of the metrics gathered so far
func (b *SnapshotBuilder) Metrics() QualityMetrics {
	return b.metrics.Clone()
}

// Err returns the first misuse recorded by the builder
func (b *SnapshotBuilder) Err() error {
	return b.err
}

// IsFinalized reports whether Finalize has already succeeded
func (b *SnapshotBuilder) IsFinalized() bool {
	return b.finalized
}

func (b *SnapshotBuilder) mutable() bool {
	if b.finalized {
		if b.err == nil {
			b.err = ErrSnapshotFinalized
		}
		return false
	}
	return true
}

// WithSourceFiles records the number of source files and their total line count
func (b *SnapshotBuilder) WithSourceFiles(count, lines int) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.SourceFileCount = count
		b.metrics.SourceLineCount = lines
	}
	return b
}

// WithLinter records the linter results
func (b *SnapshotBuilder) WithLinter(m LinterMetric) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.Linter = m.Clone()
	}
	return b
}

// WithDocstyle records the docstyle checker results
func (b *SnapshotBuilder) WithDocstyle(m LinterMetric) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.Docstyle = m.Clone()
	}
	return b
}

// WithCyclomaticComplexity records the complexity rank counts
func (b *SnapshotBuilder) WithCyclomaticComplexity(m ComplexityMetric) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.CyclomaticComplexity = m.Clone()
	}
	return b
}

// WithMaintainabilityIndex records the maintainability rank counts
func (b *SnapshotBuilder) WithMaintainabilityIndex(m MaintainabilityMetric) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.MaintainabilityIndex = m.Clone()
	}
	return b
}

// WithDeadCode records the dead code detector results
func (b *SnapshotBuilder) WithDeadCode(m LinterMetric) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.DeadCode = m.Clone()
	}
	return b
}

// WithCommonErrors records the common errors detector results
func (b *SnapshotBuilder) WithCommonErrors(m LinterMetric) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.CommonErrors = m.Clone()
	}
	return b
}

// WithCoverage records the unit test coverage; nil means unknown
func (b *SnapshotBuilder) WithCoverage(coverage *float64) *SnapshotBuilder {
	if b.mutable() {
		if coverage == nil {
			b.metrics.Coverage = nil
		} else {
			c := *coverage
			b.metrics.Coverage = &c
		}
	}
	return b
}

// WithIgnored records how many files are exempted from pylint and pydocstyle
func (b *SnapshotBuilder) WithIgnored(pylint, pydocstyle int) *SnapshotBuilder {
	if b.mutable() {
		b.metrics.IgnoredPylintFiles = pylint
		b.metrics.IgnoredPydocstyleFiles = pydocstyle
	}
	return b
}

// WithArtifactDigest records the content digest of a tool-output artifact
func (b *SnapshotBuilder) WithArtifactDigest(name, digest string) *SnapshotBuilder {
	if b.mutable() {
		b.digests[name] = digest
	}
	return b
}

// Finalize freezes the builder into a snapshot carrying the verdict and
// remarks. It succeeds once.
func (b *SnapshotBuilder) Finalize(status bool, remarks []string) (*RepositoryQualitySnapshot, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.finalized {
		b.err = ErrSnapshotFinalized
		return nil, b.err
	}
	b.finalized = true

	digests := make(map[string]string, len(b.digests))
	for k, v := range b.digests {
		digests[k] = v
	}
	r := make([]string, len(remarks))
	copy(r, remarks)

	return &RepositoryQualitySnapshot{
		metrics:       b.metrics.Clone(),
		overallStatus: status,
		remarks:       r,
		digests:       digests,
	}, nil
}

// RepositoryQualitySnapshot is the frozen evaluation of one repository in one
// run. All accessors return copies.
type RepositoryQualitySnapshot struct {
	metrics       QualityMetrics
	overallStatus bool
	remarks       []string
	digests       map[string]string
}

// Repository returns the repository name
func (s *RepositoryQualitySnapshot) Repository() string {
	return s.metrics.Repository
}

// Metrics returns a copy of the snapshot metrics
func (s *RepositoryQualitySnapshot) Metrics() QualityMetrics {
	return s.metrics.Clone()
}

// OverallStatus returns the gate verdict
func (s *RepositoryQualitySnapshot) OverallStatus() bool {
	return s.overallStatus
}

// Remarks returns the ordered remediation remarks
func (s *RepositoryQualitySnapshot) Remarks() []string {
	out := make([]string, len(s.remarks))
	copy(out, s.remarks)
	return out
}

// ArtifactDigests returns the artifact name to digest map
func (s *RepositoryQualitySnapshot) ArtifactDigests() map[string]string {
	out := make(map[string]string, len(s.digests))
	for k, v := range s.digests {
		out[k] = v
	}
	return out
}

// SnapshotView is the serializable form of a snapshot
type SnapshotView struct {
	QualityMetrics  `yaml:",inline"`
	OverallStatus   bool              `json:"overall_status" yaml:"overall_status"`
	Remarks         []string          `json:"remarks" yaml:"remarks"`
	ArtifactDigests map[string]string `json:"artifact_digests,omitempty" yaml:"artifact_digests,omitempty"`
}

// View returns a serializable copy of the snapshot
func (s *RepositoryQualitySnapshot) View() SnapshotView {
	return SnapshotView{
		QualityMetrics:  s.Metrics(),
		OverallStatus:   s.overallStatus,
		Remarks:         s.Remarks(),
		ArtifactDigests: s.ArtifactDigests(),
	}
}

// MarshalJSON implements json.Marshaler
func (s *RepositoryQualitySnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}

// MarshalYAML implements yaml.Marshaler
func (s *RepositoryQualitySnapshot) MarshalYAML() (interface{}, error) {
	return s.View(), nil
}
