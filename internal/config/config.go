package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/qadash/internal/constants"
	"github.com/spf13/viper"
)

// Default policy and runtime settings
const (
	// DefaultCoverageThreshold is the minimal unit test coverage in percent
	DefaultCoverageThreshold = 90.0

	// DefaultSourceSuffix marks source files in check logs and checkouts
	DefaultSourceSuffix = ".py"

	// DefaultTimeoutSeconds bounds a whole run; 0 disables the timeout
	DefaultTimeoutSeconds = 300
)

// Config represents the main configuration structure
type Config struct {
	// Repositories to evaluate, in report order
	Repositories []string `json:"repositories" mapstructure:"repositories" yaml:"repositories"`

	// Paths holds the work directory and checkout locations
	Paths PathsConfig `json:"paths" mapstructure:"paths" yaml:"paths"`

	// Policy holds the gate threshold and ignore lists
	Policy PolicyConfig `json:"policy" mapstructure:"policy" yaml:"policy"`

	// Analysis holds source counting configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// History holds the run history store configuration
	History HistoryConfig `json:"history" mapstructure:"history" yaml:"history"`

	// Metrics holds the Prometheus textfile export configuration
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics" yaml:"metrics"`

	// Performance holds parallelism and timeout settings
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Log holds logger configuration
	Log LogConfig `json:"log" mapstructure:"log" yaml:"log"`
}

// PathsConfig locates the inputs of a run
type PathsConfig struct {
	// WorkDir holds the tool-output artifacts (<repo>.linter.txt, <repo>.cc.json, ...)
	WorkDir string `json:"work_dir" mapstructure:"work_dir" yaml:"work_dir"`

	// RepositoriesDir holds one checkout per repository, used to count source files
	RepositoriesDir string `json:"repositories_dir" mapstructure:"repositories_dir" yaml:"repositories_dir"`
}

// PolicyConfig holds the quality gate policy
type PolicyConfig struct {
	// CoverageThreshold is the minimal coverage in percent (0-100)
	CoverageThreshold float64 `json:"coverage_threshold" mapstructure:"coverage_threshold" yaml:"coverage_threshold"`

	// Ignores lists, per repository, the files exempted from the linter and
	// the docstyle checker. A list is used rather than a map because viper
	// lowercases map keys and repository names are case sensitive.
	Ignores []IgnoreRule `json:"ignores" mapstructure:"ignores" yaml:"ignores"`
}

// IgnoreRule exempts files of one repository from the checkers
type IgnoreRule struct {
	Repository string   `json:"repository" mapstructure:"repository" yaml:"repository"`
	Pylint     []string `json:"pylint" mapstructure:"pylint" yaml:"pylint"`
	Pydocstyle []string `json:"pydocstyle" mapstructure:"pydocstyle" yaml:"pydocstyle"`
}

// IgnoredPylint returns the linter ignore lists keyed by repository
func (p PolicyConfig) IgnoredPylint() map[string][]string {
	out := make(map[string][]string)
	for _, rule := range p.Ignores {
		out[rule.Repository] = append(out[rule.Repository], rule.Pylint...)
	}
	return out
}

// IgnoredPydocstyle returns the docstyle ignore lists keyed by repository
func (p PolicyConfig) IgnoredPydocstyle() map[string][]string {
	out := make(map[string][]string)
	for _, rule := range p.Ignores {
		out[rule.Repository] = append(out[rule.Repository], rule.Pydocstyle...)
	}
	return out
}

// AnalysisConfig holds source counting configuration
type AnalysisConfig struct {
	// SourceSuffix identifies source files (".py")
	SourceSuffix string `json:"source_suffix" mapstructure:"source_suffix" yaml:"source_suffix"`

	// ExcludePatterns specifies gitignore-style patterns skipped while counting
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// RespectGitignore honours the .gitignore of each checkout
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Directory specifies where report files are written (empty = .qadash/reports)
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// HistoryConfig configures the run history store
type HistoryConfig struct {
	// Backend is one of none, sqlite, mysql, postgresql
	Backend string `json:"backend" mapstructure:"backend" yaml:"backend"`

	// DSN is the database path (sqlite) or connection string
	DSN string `json:"dsn" mapstructure:"dsn" yaml:"dsn"`
}

// MetricsConfig configures the Prometheus metrics export
type MetricsConfig struct {
	// Textfile is a node-exporter textfile path; empty disables the export
	Textfile string `json:"textfile" mapstructure:"textfile" yaml:"textfile"`
}

// PerformanceConfig holds parallelism settings
type PerformanceConfig struct {
	// MaxGoroutines bounds concurrent repository evaluations (0 = number of CPUs)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole run (0 = no timeout)
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format is one of text, json
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Repositories: []string{},
		Paths: PathsConfig{
			WorkDir:         constants.DefaultWorkDir,
			RepositoriesDir: constants.DefaultRepositoriesDir,
		},
		Policy: PolicyConfig{
			CoverageThreshold: DefaultCoverageThreshold,
			Ignores:           []IgnoreRule{},
		},
		Analysis: AnalysisConfig{
			SourceSuffix: DefaultSourceSuffix,
			ExcludePatterns: []string{
				// Virtual environments
				"venv",
				".venv",
				".tox",
				// Build outputs
				"build",
				"dist",
				"*.egg-info",
				// Caches
				"__pycache__",
				".mypy_cache",
				".pytest_cache",
			},
			RespectGitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		History: HistoryConfig{
			Backend: constants.HistoryBackendNone,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a config file from
// targetPath upward when configPath is empty.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file. Environment
// variables prefixed with QADASH_ override file values.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()

	setDefaults(v, config)
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("repositories", c.Repositories)
	v.SetDefault("paths.work_dir", c.Paths.WorkDir)
	v.SetDefault("paths.repositories_dir", c.Paths.RepositoriesDir)
	v.SetDefault("policy.coverage_threshold", c.Policy.CoverageThreshold)
	v.SetDefault("analysis.source_suffix", c.Analysis.SourceSuffix)
	v.SetDefault("analysis.exclude_patterns", c.Analysis.ExcludePatterns)
	v.SetDefault("analysis.respect_gitignore", c.Analysis.RespectGitignore)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.directory", c.Output.Directory)
	v.SetDefault("history.backend", c.History.Backend)
	v.SetDefault("history.dsn", c.History.DSN)
	v.SetDefault("metrics.textfile", c.Metrics.Textfile)
	v.SetDefault("performance.max_goroutines", c.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", c.Performance.TimeoutSeconds)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

// configCandidates are the file names searched, in order of preference
var configCandidates = []string{
	"qadash.yaml",
	"qadash.yml",
	".qadash.yaml",
	".qadash.yml",
	".qadash.toml",
	"qadash.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the directory the run is started for (usually the work dir).
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, configCandidates); config != "" {
			return config
		}

		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Repositories))
	for _, repo := range c.Repositories {
		if strings.TrimSpace(repo) == "" {
			return fmt.Errorf("repositories cannot contain an empty name")
		}
		if strings.ContainsAny(repo, `/\`) {
			return fmt.Errorf("repository name %q must not contain a path separator", repo)
		}
		if seen[repo] {
			return fmt.Errorf("repository %q is listed twice", repo)
		}
		seen[repo] = true
	}

	if c.Paths.WorkDir == "" {
		return fmt.Errorf("paths.work_dir cannot be empty")
	}

	if err := c.validatePolicy(); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Analysis.SourceSuffix, ".") || len(c.Analysis.SourceSuffix) < 2 {
		return fmt.Errorf("analysis.source_suffix must look like \".py\", got '%s'", c.Analysis.SourceSuffix)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
		"html": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv, html", c.Output.Format)
	}

	if err := c.validateHistory(); err != nil {
		return err
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format '%s', must be one of: text, json", c.Log.Format)
	}

	return nil
}

func (c *Config) validatePolicy() error {
	if math.IsNaN(c.Policy.CoverageThreshold) || c.Policy.CoverageThreshold < 0 || c.Policy.CoverageThreshold > 100 {
		return fmt.Errorf("policy.coverage_threshold must be between 0 and 100, got %g", c.Policy.CoverageThreshold)
	}

	for i, rule := range c.Policy.Ignores {
		if rule.Repository == "" {
			return fmt.Errorf("policy.ignores[%d].repository cannot be empty", i)
		}
		for _, path := range append(append([]string{}, rule.Pylint...), rule.Pydocstyle...) {
			if strings.TrimSpace(path) == "" {
				return fmt.Errorf("policy.ignores[%d] (%s) contains an empty path", i, rule.Repository)
			}
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	switch c.History.Backend {
	case constants.HistoryBackendNone:
		return nil
	case constants.HistoryBackendSQLite:
		// an empty DSN selects the default database file
		return nil
	case constants.HistoryBackendMySQL, constants.HistoryBackendPostgreSQL:
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for the %s backend", c.History.Backend)
		}
		return nil
	default:
		return fmt.Errorf("invalid history.backend '%s', must be one of: none, sqlite, mysql, postgresql", c.History.Backend)
	}
}

// HistoryDSN returns the configured DSN, or the default SQLite database path
func (c *Config) HistoryDSN() string {
	if c.History.DSN == "" && c.History.Backend == constants.HistoryBackendSQLite {
		return constants.DefaultHistoryDSN
	}
	return c.History.DSN
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("repositories", config.Repositories)
	v.Set("paths", config.Paths)
	v.Set("policy", config.Policy)
	v.Set("analysis", config.Analysis)
	v.Set("output", config.Output)
	v.Set("history", config.History)
	v.Set("metrics", config.Metrics)
	v.Set("performance", config.Performance)
	v.Set("log", config.Log)

	return v.WriteConfig()
}
