package domain

// FileCheckResult maps a source file path to whether the checker passed it.
type FileCheckResult map[string]bool

// Clone returns an independent copy of the result
func (r FileCheckResult) Clone() FileCheckResult {
	if r == nil {
		return nil
	}
	out := make(FileCheckResult, len(r))
	for path, ok := range r {
		out[path] = ok
	}
	return out
}

// FailedFiles returns the paths the checker reported as failing, in no particular order
func (r FileCheckResult) FailedFiles() []string {
	var failed []string
	for path, ok := range r {
		if !ok {
			failed = append(failed, path)
		}
	}
	return failed
}

// LinterMetric summarizes the output of one pass/fail checker (linter,
// docstyle checker, dead code detector, common errors detector).
type LinterMetric struct {
	Total          int             `json:"total" yaml:"total"`
	Passed         int             `json:"passed" yaml:"passed"`
	Failed         int             `json:"failed" yaml:"failed"`
	DisplayResults bool            `json:"display_results" yaml:"display_results"`
	PassPercent    string          `json:"pass_percent" yaml:"pass_percent"`
	FailPercent    string          `json:"fail_percent" yaml:"fail_percent"`
	BarStyleClass  string          `json:"bar_style_class" yaml:"bar_style_class"`
	BarWidth       string          `json:"bar_width" yaml:"bar_width"`
	Files          FileCheckResult `json:"files,omitempty" yaml:"files,omitempty"`
}

// Clone returns a deep copy of the metric
func (m LinterMetric) Clone() LinterMetric {
	m.Files = m.Files.Clone()
	return m
}

// ComplexityRank is a radon cyclomatic complexity bucket, A (simple) to F (unmaintainable).
type ComplexityRank string

const (
	ComplexityRankA ComplexityRank = "A"
	ComplexityRankB ComplexityRank = "B"
	ComplexityRankC ComplexityRank = "C"
	ComplexityRankD ComplexityRank = "D"
	ComplexityRankE ComplexityRank = "E"
	ComplexityRankF ComplexityRank = "F"
)

// ComplexityRanks lists the complexity scale in order
var ComplexityRanks = []ComplexityRank{
	ComplexityRankA, ComplexityRankB, ComplexityRankC,
	ComplexityRankD, ComplexityRankE, ComplexityRankF,
}

// IsValid reports whether the rank belongs to the complexity scale
func (r ComplexityRank) IsValid() bool {
	switch r {
	case ComplexityRankA, ComplexityRankB, ComplexityRankC,
		ComplexityRankD, ComplexityRankE, ComplexityRankF:
		return true
	}
	return false
}

// Acceptable reports whether blocks of this rank keep the gate green
func (r ComplexityRank) Acceptable() bool {
	return r == ComplexityRankA || r == ComplexityRankB || r == ComplexityRankC
}

// MaintainabilityRank is a radon maintainability index bucket, A (good) to C (poor).
type MaintainabilityRank string

const (
	MaintainabilityRankA MaintainabilityRank = "A"
	MaintainabilityRankB MaintainabilityRank = "B"
	MaintainabilityRankC MaintainabilityRank = "C"
)

// MaintainabilityRanks lists the maintainability scale in order
var MaintainabilityRanks = []MaintainabilityRank{
	MaintainabilityRankA, MaintainabilityRankB, MaintainabilityRankC,
}

// IsValid reports whether the rank belongs to the maintainability scale
func (r MaintainabilityRank) IsValid() bool {
	switch r {
	case MaintainabilityRankA, MaintainabilityRankB, MaintainabilityRankC:
		return true
	}
	return false
}

// Acceptable reports whether modules of this rank keep the gate green
func (r MaintainabilityRank) Acceptable() bool {
	return r == MaintainabilityRankA
}

// ComplexityMetric holds per-rank block counts. Status is false as soon as
// any D, E or F block was seen.
type ComplexityMetric struct {
	Counts map[ComplexityRank]int `json:"counts" yaml:"counts"`
	Status bool                   `json:"status" yaml:"status"`
}

// NewComplexityMetric builds the metric from raw counts. Every rank of the
// scale is present in the result, unseen ranks counting zero.
func NewComplexityMetric(counts map[ComplexityRank]int) ComplexityMetric {
	m := ComplexityMetric{Counts: make(map[ComplexityRank]int, len(ComplexityRanks)), Status: true}
	for _, rank := range ComplexityRanks {
		m.Counts[rank] = counts[rank]
		if !rank.Acceptable() && counts[rank] > 0 {
			m.Status = false
		}
	}
	return m
}

// Clone returns a deep copy of the metric
func (m ComplexityMetric) Clone() ComplexityMetric {
	if m.Counts == nil {
		return m
	}
	counts := make(map[ComplexityRank]int, len(m.Counts))
	for k, v := range m.Counts {
		counts[k] = v
	}
	m.Counts = counts
	return m
}

// Total returns the number of blocks counted
func (m ComplexityMetric) Total() int {
	total := 0
	for _, c := range m.Counts {
		total += c
	}
	return total
}

// MaintainabilityMetric holds per-rank module counts. Status is false as soon
// as any B or C module was seen.
type MaintainabilityMetric struct {
	Counts map[MaintainabilityRank]int `json:"counts" yaml:"counts"`
	Status bool                        `json:"status" yaml:"status"`
}

// NewMaintainabilityMetric builds the metric from raw counts
func NewMaintainabilityMetric(counts map[MaintainabilityRank]int) MaintainabilityMetric {
	m := MaintainabilityMetric{Counts: make(map[MaintainabilityRank]int, len(MaintainabilityRanks)), Status: true}
	for _, rank := range MaintainabilityRanks {
		m.Counts[rank] = counts[rank]
		if !rank.Acceptable() && counts[rank] > 0 {
			m.Status = false
		}
	}
	return m
}

// Clone returns a deep copy of the metric
func (m MaintainabilityMetric) Clone() MaintainabilityMetric {
	if m.Counts == nil {
		return m
	}
	counts := make(map[MaintainabilityRank]int, len(m.Counts))
	for k, v := range m.Counts {
		counts[k] = v
	}
	m.Counts = counts
	return m
}

// Total returns the number of modules counted
func (m MaintainabilityMetric) Total() int {
	total := 0
	for _, c := range m.Counts {
		total += c
	}
	return total
}
