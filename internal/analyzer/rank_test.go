package analyzer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/qadash/domain"
)

const sampleComplexityReport = `{
  "src/app.py": [
    {"type": "function", "name": "main", "rank": "A", "complexity": 2},
    {"type": "method", "name": "run", "rank": "C", "complexity": 14}
  ],
  "src/util.py": {"type": "function", "name": "helper", "rank": "B"},
  "src/broken.py": {"error": "invalid syntax (<unknown>, line 3)"}
}`

func TestParseComplexityRanks(t *testing.T) {
	m, err := ParseComplexityRanks(strings.NewReader(sampleComplexityReport))
	if err != nil {
		t.Fatalf("ParseComplexityRanks failed: %v", err)
	}

	expected := map[domain.ComplexityRank]int{"A": 1, "B": 1, "C": 1, "D": 0, "E": 0, "F": 0}
	for rank, count := range expected {
		if m.Counts[rank] != count {
			t.Errorf("rank %s: expected %d, got %d", rank, count, m.Counts[rank])
		}
	}
	if !m.Status {
		t.Error("A..C blocks only should pass")
	}
}

func TestParseComplexityRanks_BadRanks(t *testing.T) {
	for _, rank := range []string{"D", "E", "F"} {
		report := `{"a.py": [{"rank": "A"}, {"rank": "` + rank + `"}]}`
		m, err := ParseComplexityRanks(strings.NewReader(report))
		if err != nil {
			t.Fatalf("ParseComplexityRanks failed: %v", err)
		}
		if m.Status {
			t.Errorf("a block ranked %s should fail the complexity status", rank)
		}
	}
}

func TestParseMaintainabilityRanks(t *testing.T) {
	tests := []struct {
		name   string
		report string
		status bool
		a, b   int
	}{
		{"only A", `{"a.py": {"mi": 80.1, "rank": "A"}, "b.py": {"mi": 71.0, "rank": "A"}}`, true, 2, 0},
		{"one B", `{"a.py": {"mi": 80.1, "rank": "A"}, "b.py": {"mi": 15.2, "rank": "B"}}`, false, 1, 1},
		{"one C", `{"c.py": {"mi": 2.0, "rank": "C"}}`, false, 0, 0},
		{"list form", `{"a.py": [{"rank": "A"}]}`, true, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMaintainabilityRanks(strings.NewReader(tt.report))
			if err != nil {
				t.Fatalf("ParseMaintainabilityRanks failed: %v", err)
			}
			if m.Status != tt.status {
				t.Errorf("Expected status %v, got %v", tt.status, m.Status)
			}
			if m.Counts[domain.MaintainabilityRankA] != tt.a || m.Counts[domain.MaintainabilityRankB] != tt.b {
				t.Errorf("Unexpected counts %v", m.Counts)
			}
		})
	}
}

func TestRankScalesAreNotUnified(t *testing.T) {
	// C is acceptable for complexity but not for maintainability
	report := `{"a.py": {"rank": "C"}}`

	cc, err := ParseComplexityRanks(strings.NewReader(report))
	if err != nil {
		t.Fatalf("ParseComplexityRanks failed: %v", err)
	}
	mi, err := ParseMaintainabilityRanks(strings.NewReader(report))
	if err != nil {
		t.Fatalf("ParseMaintainabilityRanks failed: %v", err)
	}

	if !cc.Status {
		t.Error("complexity rank C should pass")
	}
	if mi.Status {
		t.Error("maintainability rank C should fail")
	}
}

func TestParseRanks_Errors(t *testing.T) {
	tests := []struct {
		name   string
		report string
		mi     bool
	}{
		{"unknown complexity rank", `{"a.py": [{"rank": "G"}]}`, false},
		{"lowercase complexity rank", `{"a.py": [{"rank": "a"}]}`, false},
		{"maintainability rank D", `{"a.py": {"rank": "D"}}`, true},
		{"missing rank", `{"a.py": [{"complexity": 3}]}`, false},
		{"not an object", `["a.py"]`, false},
		{"scalar module value", `{"a.py": 3}`, true},
		{"malformed json", `{"a.py": [`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.mi {
				_, err = ParseMaintainabilityRanks(strings.NewReader(tt.report))
			} else {
				_, err = ParseComplexityRanks(strings.NewReader(tt.report))
			}
			if err == nil {
				t.Fatal("Expected a parse error")
			}
			if !domain.HasErrorCode(err, domain.ErrCodeParseError) {
				t.Errorf("Expected %s, got %v", domain.ErrCodeParseError, err)
			}
		})
	}
}

func TestParseRanks_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "  \n", "{}"} {
		cc, err := ParseComplexityRanks(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseComplexityRanks(%q) failed: %v", input, err)
		}
		if !cc.Status || cc.Total() != 0 {
			t.Errorf("empty report should count nothing, got %+v", cc)
		}
	}
}
