package service

import (
	"io"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/config"
)

// ConfigurationLoaderImpl turns configuration files into quality requests
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// RequestOverrides holds values given on the command line. Zero values keep
// the configured setting.
type RequestOverrides struct {
	Repositories      []string
	WorkDir           string
	RepositoriesDir   string
	CoverageThreshold *float64
	OutputFormat      domain.OutputFormat
	OutputWriter      io.Writer
	OutputPath        string
	NoOpen            bool
	ConfigPath        string
}

// LoadConfig loads the configuration at path, or discovers one from target
// upward when path is empty. Without any file the defaults are returned.
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads a discovered configuration, falling back to the
// embedded defaults
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *config.Config {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return cfg
	}
	if embedded, err := config.LoadDefaultConfig(); err == nil {
		return embedded
	}
	return config.DefaultConfig()
}

// ToRequest converts a configuration into a quality request
func (c *ConfigurationLoaderImpl) ToRequest(cfg *config.Config) *domain.QualityRequest {
	repositories := make([]string, len(cfg.Repositories))
	copy(repositories, cfg.Repositories)

	return &domain.QualityRequest{
		Repositories:    repositories,
		WorkDir:         cfg.Paths.WorkDir,
		RepositoriesDir: cfg.Paths.RepositoriesDir,
		Policy: domain.Policy{
			CoverageThreshold: cfg.Policy.CoverageThreshold,
			IgnoredPylint:     cfg.Policy.IgnoredPylint(),
			IgnoredPydocstyle: cfg.Policy.IgnoredPydocstyle(),
		},
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
	}
}

// MergeConfig applies command line overrides on top of a configured request
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.QualityRequest, override RequestOverrides) *domain.QualityRequest {
	merged := *base

	if len(override.Repositories) > 0 {
		merged.Repositories = override.Repositories
	}
	if override.WorkDir != "" {
		merged.WorkDir = override.WorkDir
	}
	if override.RepositoriesDir != "" {
		merged.RepositoriesDir = override.RepositoriesDir
	}

	// CLI argument wins over the config file
	if override.CoverageThreshold != nil {
		merged.Policy.CoverageThreshold = *override.CoverageThreshold
	}

	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.NoOpen {
		merged.NoOpen = true
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}
