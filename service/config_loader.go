package service

import (
	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/config"
)

// DuplicateConfigurationLoaderImpl implements the
// domain.DuplicateConfigurationLoader interface
type DuplicateConfigurationLoaderImpl struct{}

// NewDuplicateConfigurationLoader creates a new configuration loader service
func NewDuplicateConfigurationLoader() *DuplicateConfigurationLoaderImpl {
	return &DuplicateConfigurationLoaderImpl{}
}

// LoadDuplicateConfig loads configuration from the specified path. An empty
// path looks for a default configuration file and falls back to defaults.
func (c *DuplicateConfigurationLoaderImpl) LoadDuplicateConfig(configPath string) (*domain.DuplicateRequest, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	req := ConfigToRequest(cfg)
	req.ConfigPath = configPath
	return req, nil
}

// CreateConfigTemplate writes the default configuration to path
func (c *DuplicateConfigurationLoaderImpl) CreateConfigTemplate(path string) error {
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return domain.NewConfigError("failed to write configuration template", err)
	}
	return nil
}

// ConfigToRequest converts internal config to a domain request
func ConfigToRequest(cfg *config.Config) *domain.DuplicateRequest {
	req := domain.DefaultDuplicateRequest()

	req.Recursive = cfg.Input.Recursive
	req.IncludePatterns = cfg.Input.IncludePatterns
	req.ExcludePatterns = cfg.Input.ExcludePatterns

	req.Scopes = make([]domain.DuplicateScope, 0, len(cfg.Duplicates.Scopes))
	for _, scope := range cfg.Duplicates.Scopes {
		req.Scopes = append(req.Scopes, domain.DuplicateScope(scope))
	}
	req.KeyPolicy = domain.KeyPolicy(cfg.Duplicates.KeyPolicy)
	req.IgnoreGenerated = cfg.Duplicates.IgnoreGenerated
	req.MinSequenceLength = cfg.Duplicates.MinSequenceLength
	req.TypeFilters = cfg.Duplicates.TypeFilters

	if format, err := domain.ParseOutputFormat(cfg.Output.Format); err == nil {
		req.OutputFormat = format
	}
	req.ShowExpressions = cfg.Output.ShowExpressions
	req.FailOnFindings = cfg.Output.FailOnFindings

	return req
}

// MergeDuplicateRequest overlays the command-line request on the one loaded
// from configuration. Only flags recorded in tracker override; paths, the writer
// and the report file always come from the command line.
func MergeDuplicateRequest(base, override *domain.DuplicateRequest, tracker *config.FlagTracker) *domain.DuplicateRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	if tracker == nil {
		tracker = config.NewFlagTracker()
	}

	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	merged.Recursive = tracker.MergeBool(merged.Recursive, override.Recursive, "recursive")
	merged.IncludePatterns = tracker.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = tracker.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, "exclude")

	if tracker.WasSet("scope") && len(override.Scopes) > 0 {
		merged.Scopes = override.Scopes
	}
	merged.KeyPolicy = domain.KeyPolicy(tracker.MergeString(string(merged.KeyPolicy), string(override.KeyPolicy), "key-policy"))
	merged.IgnoreGenerated = tracker.MergeBool(merged.IgnoreGenerated, override.IgnoreGenerated, "ignore-generated")
	merged.MinSequenceLength = tracker.MergeInt(merged.MinSequenceLength, override.MinSequenceLength, "min-length")
	merged.TypeFilters = tracker.MergeStringSlice(merged.TypeFilters, override.TypeFilters, "type")

	merged.OutputFormat = domain.OutputFormat(tracker.MergeString(string(merged.OutputFormat), string(override.OutputFormat), "format"))
	merged.ShowExpressions = tracker.MergeBool(merged.ShowExpressions, override.ShowExpressions, "show-expressions")
	merged.FailOnFindings = tracker.MergeBool(merged.FailOnFindings, override.FailOnFindings, "fail-on-findings")

	return &merged
}
