package config

import (
	"strconv"
	"strings"

	"github.com/ludo-technologies/qadash/internal/constants"
)

// Strictness represents the gate strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// StrictnessPreset holds policy values for different strictness levels
type StrictnessPreset struct {
	CoverageThreshold float64
	Description       string
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			CoverageThreshold: 70,
			Description:       "Lower coverage bar for legacy code bases",
		},
		StrictnessStandard: {
			CoverageThreshold: DefaultCoverageThreshold,
			Description:       "Balanced thresholds for most projects",
		},
		StrictnessStrict: {
			CoverageThreshold: 95,
			Description:       "High coverage bar, CI/CD enforcement",
		},
	}
}

// TemplateOptions customizes the generated configuration file
type TemplateOptions struct {
	Strictness      Strictness
	Repositories    []string
	WorkDir         string
	RepositoriesDir string
	HistoryBackend  string
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(opts TemplateOptions) string {
	preset, ok := GetStrictnessPresets()[opts.Strictness]
	if !ok {
		preset = GetStrictnessPresets()[StrictnessStandard]
	}
	workDir := valueOr(opts.WorkDir, constants.DefaultWorkDir)
	reposDir := valueOr(opts.RepositoriesDir, constants.DefaultRepositoriesDir)
	backend := valueOr(opts.HistoryBackend, constants.HistoryBackendNone)

	defaults := DefaultConfig()

	return `# qadash configuration
# Documentation: https://github.com/ludo-technologies/qadash

# ============================================================================
# REPOSITORIES
# ============================================================================
# Repositories to evaluate, in report order
repositories:` + formatYAMLList(opts.Repositories, "  ") + `

# ============================================================================
# PATHS
# ============================================================================
paths:
  # Directory holding the tool outputs: <repo>.linter.txt, <repo>.pydocstyle.txt,
  # <repo>.dead_code.txt, <repo>.common_errors.txt, <repo>.cc.json, <repo>.mi.json
  work_dir: ` + strconv.Quote(workDir) + `

  # Directory holding one checkout per repository, used to count source files
  repositories_dir: ` + strconv.Quote(reposDir) + `

# ============================================================================
# QUALITY GATE POLICY
# ============================================================================
policy:
  # Minimal unit test coverage in percent. Repositories without coverage data
  # pass this condition but get an "unit tests not set up" remark.
  coverage_threshold: ` + strconv.FormatFloat(preset.CoverageThreshold, 'f', -1, 64) + `

  # Files exempted from the linter (pylint) and the docstyle checker (pydocstyle)
  # ignores:
  #   - repository: my-service
  #     pylint: ["setup.py"]
  #     pydocstyle: ["setup.py", "tests/conftest.py"]
  ignores: []

# ============================================================================
# SOURCE COUNTING
# ============================================================================
analysis:
  source_suffix: ` + strconv.Quote(defaults.Analysis.SourceSuffix) + `
  respect_gitignore: true
  exclude_patterns:` + formatYAMLList(defaults.Analysis.ExcludePatterns, "    ") + `

# ============================================================================
# OUTPUT
# ============================================================================
output:
  # text, json, yaml, csv, html
  format: "text"
  # Report directory for `+"`qadash report`"+` (empty = .qadash/reports)
  directory: ""

# ============================================================================
# RUN HISTORY
# ============================================================================
history:
  # none, sqlite, mysql, postgresql
  backend: ` + strconv.Quote(backend) + `
  # SQLite file path or database connection string
  dsn: ""

# ============================================================================
# METRICS
# ============================================================================
metrics:
  # node-exporter textfile collector path (empty = disabled)
  textfile: ""

# ============================================================================
# PERFORMANCE
# ============================================================================
performance:
  # Concurrent repository evaluations (0 = number of CPUs)
  max_goroutines: 0
  # Timeout for a whole run in seconds (0 = none)
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `

log:
  level: "info"
  format: "text"
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# qadash configuration (minimal)
# See full options: https://github.com/ludo-technologies/qadash

repositories: []

paths:
  work_dir: "."
  repositories_dir: "repos"

policy:
  coverage_threshold: 90
`
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// formatYAMLList renders a block sequence, or " []" for an empty list
func formatYAMLList(items []string, indent string) string {
	if len(items) == 0 {
		return " []"
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString("- ")
		b.WriteString(strconv.Quote(item))
	}
	return b.String()
}
