package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "qadash"

	// ConfigFileName is the default config file name
	ConfigFileName = "qadash.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "QADASH"

	// ConfigEnvVar points at a config file when none is discovered
	ConfigEnvVar = "QADASH_CONFIG"
)

// Artifact suffixes, appended to the repository name inside the work directory
const (
	LinterArtifactSuffix          = ".linter.txt"
	DocstyleArtifactSuffix        = ".pydocstyle.txt"
	DeadCodeArtifactSuffix        = ".dead_code.txt"
	CommonErrorsArtifactSuffix    = ".common_errors.txt"
	ComplexityArtifactSuffix      = ".cc.json"
	MaintainabilityArtifactSuffix = ".mi.json"
	CountArtifactSuffix           = ".count"
	CoverageArtifactSuffix        = ".coverage"
)

// CoverageMapFile maps repositories to coverage percentages for a whole run
const CoverageMapFile = "coverage.yaml"

// Artifact names used as digest keys and in error messages
const (
	ArtifactLinter          = "linter"
	ArtifactDocstyle        = "pydocstyle"
	ArtifactDeadCode        = "dead_code"
	ArtifactCommonErrors    = "common_errors"
	ArtifactComplexity      = "cyclomatic_complexity"
	ArtifactMaintainability = "maintainability_index"
)

// History backends
const (
	HistoryBackendNone       = "none"
	HistoryBackendSQLite     = "sqlite"
	HistoryBackendMySQL      = "mysql"
	HistoryBackendPostgreSQL = "postgresql"
)

// Default locations
const (
	DefaultWorkDir         = "."
	DefaultRepositoriesDir = "repos"
	DefaultHistoryDSN      = ".qadash/history.db"
	DefaultReportDir       = ".qadash/reports"
)
