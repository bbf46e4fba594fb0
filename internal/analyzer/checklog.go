package analyzer

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/ludo-technologies/qadash/domain"
)

const (
	// DefaultSourceSuffix marks a check-log line as naming a source file
	DefaultSourceSuffix = ".py"

	passSentinel = "    Pass"
	failSentinel = "    Fail"
)

// Event is what a single check-log line means to the parser
type Event int

const (
	// EventNone is a line that is neither a file nor a marker
	EventNone Event = iota
	// EventFile switches the current file
	EventFile
	// EventPass records a pass for the current file
	EventPass
	// EventFail records a fail for the current file
	EventFail
	// EventIgnored is a pass/fail marker seen before any file
	EventIgnored
)

func (e Event) String() string {
	switch e {
	case EventFile:
		return "file"
	case EventPass:
		return "pass"
	case EventFail:
		return "fail"
	case EventIgnored:
		return "ignored"
	default:
		return "none"
	}
}

// CheckLogParser is the two-state line scanner for pass/fail tool logs.
// The state is either "no current file" or "current file = path".
type CheckLogParser struct {
	suffix  string
	current string
	hasFile bool

	files  domain.FileCheckResult
	passed int
	failed int
}

// NewCheckLogParser creates a parser recognizing files by the given suffix.
// An empty suffix selects DefaultSourceSuffix.
func NewCheckLogParser(suffix string) *CheckLogParser {
	if suffix == "" {
		suffix = DefaultSourceSuffix
	}
	return &CheckLogParser{
		suffix: suffix,
		files:  make(domain.FileCheckResult),
	}
}

// CurrentFile returns the file markers are attributed to, if any
func (p *CheckLogParser) CurrentFile() (string, bool) {
	return p.current, p.hasFile
}

// Step feeds one line to the parser and reports how it was interpreted.
// File detection wins over marker detection on the same line.
func (p *CheckLogParser) Step(line string) Event {
	line = strings.TrimRight(line, " \t\r\n")

	if strings.HasSuffix(line, p.suffix) {
		p.current = strings.TrimSpace(line)
		p.hasFile = true
		return EventFile
	}

	var passed bool
	switch {
	case strings.HasSuffix(line, passSentinel):
		passed = true
	case strings.HasSuffix(line, failSentinel):
		passed = false
	default:
		return EventNone
	}

	if !p.hasFile {
		return EventIgnored
	}

	p.files[p.current] = passed
	if passed {
		p.passed++
		return EventPass
	}
	p.failed++
	return EventFail
}

// Metric returns the normalized metric for everything fed so far
func (p *CheckLogParser) Metric() domain.LinterMetric {
	return NewLinterMetric(p.passed, p.failed, p.files)
}

// ParseCheckLog reads a whole pass/fail log and returns its metric
func ParseCheckLog(r io.Reader, suffix string) (domain.LinterMetric, error) {
	p := NewCheckLogParser(suffix)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			p.Step(strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return p.Metric(), nil
		}
		if err != nil {
			return domain.LinterMetric{}, err
		}
	}
}

// ParseCheckLogLines is ParseCheckLog over already split lines
func ParseCheckLogLines(lines []string, suffix string) domain.LinterMetric {
	p := NewCheckLogParser(suffix)
	for _, line := range lines {
		p.Step(line)
	}
	return p.Metric()
}
