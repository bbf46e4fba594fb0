package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ludo-technologies/qadash/domain"
)

// rankRecord is the part of a radon block or module record the engine reads
type rankRecord struct {
	Rank  *string `json:"rank"`
	Error *string `json:"error"`
}

// ParseComplexityRanks counts cyclomatic complexity blocks per rank from a
// radon "cc -j" report.
func ParseComplexityRanks(r io.Reader) (domain.ComplexityMetric, error) {
	letters, err := readRankLetters(r, "cyclomatic complexity report")
	if err != nil {
		return domain.ComplexityMetric{}, err
	}

	counts := make(map[domain.ComplexityRank]int)
	for _, l := range letters {
		rank := domain.ComplexityRank(l.letter)
		if !rank.IsValid() {
			return domain.ComplexityMetric{}, domain.NewParseError("cyclomatic complexity report",
				fmt.Errorf("unknown complexity rank %q in %s", l.letter, l.module))
		}
		counts[rank]++
	}
	return domain.NewComplexityMetric(counts), nil
}

// ParseMaintainabilityRanks counts modules per rank from a radon "mi -j" report
func ParseMaintainabilityRanks(r io.Reader) (domain.MaintainabilityMetric, error) {
	letters, err := readRankLetters(r, "maintainability index report")
	if err != nil {
		return domain.MaintainabilityMetric{}, err
	}

	counts := make(map[domain.MaintainabilityRank]int)
	for _, l := range letters {
		rank := domain.MaintainabilityRank(l.letter)
		if !rank.IsValid() {
			return domain.MaintainabilityMetric{}, domain.NewParseError("maintainability index report",
				fmt.Errorf("unknown maintainability rank %q in %s", l.letter, l.module))
		}
		counts[rank]++
	}
	return domain.NewMaintainabilityMetric(counts), nil
}

type rankLetter struct {
	module string
	letter string
}

// readRankLetters flattens a module -> record(s) report into rank letters.
// Empty input yields no letters. Records radon emits for unparsable modules
// ({"error": ...}) are skipped.
func readRankLetters(r io.Reader, source string) ([]rankLetter, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewParseError(source, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var report map[string]json.RawMessage
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, domain.NewParseError(source, err)
	}

	modules := make([]string, 0, len(report))
	for module := range report {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	var letters []rankLetter
	for _, module := range modules {
		raw := bytes.TrimSpace(report[module])

		var records []rankRecord
		switch {
		case len(raw) > 0 && raw[0] == '[':
			if err := json.Unmarshal(raw, &records); err != nil {
				return nil, domain.NewParseError(source, fmt.Errorf("module %s: %w", module, err))
			}
		case len(raw) > 0 && raw[0] == '{':
			var rec rankRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, domain.NewParseError(source, fmt.Errorf("module %s: %w", module, err))
			}
			records = []rankRecord{rec}
		default:
			return nil, domain.NewParseError(source,
				fmt.Errorf("module %s: expected a record or a list of records", module))
		}

		for _, rec := range records {
			if rec.Rank == nil {
				if rec.Error != nil {
					continue
				}
				return nil, domain.NewParseError(source, fmt.Errorf("module %s: record without rank", module))
			}
			letters = append(letters, rankLetter{module: module, letter: *rec.Rank})
		}
	}
	return letters, nil
}
