package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default duplicate detection settings
const (
	// DefaultKeyPolicy keys processed methods and types by simple name
	DefaultKeyPolicy = "name"

	// DefaultMinSequenceLength is the smallest expression count a candidate
	// method needs. Two consecutive equal expressions make a duplicate, so
	// shorter methods can never match.
	DefaultMinSequenceLength = 2

	// DefaultOutputFormat is the report format used when none is configured
	DefaultOutputFormat = "text"
)

// Config represents the main configuration structure
type Config struct {
	// Duplicates holds duplicate code detection configuration
	Duplicates DuplicatesConfig `mapstructure:"duplicates" yaml:"duplicates" toml:"duplicates"`

	// Input holds manifest discovery configuration
	Input InputConfig `mapstructure:"input" yaml:"input" toml:"input"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" toml:"output"`
}

// DuplicatesConfig holds configuration for the duplicate code rules
type DuplicatesConfig struct {
	// Scopes lists the enabled rules: same_type, sibling_types
	Scopes []string `mapstructure:"scopes" yaml:"scopes" toml:"scopes"`

	// KeyPolicy is either name or identity
	KeyPolicy string `mapstructure:"key_policy" yaml:"key_policy" toml:"key_policy"`

	// IgnoreGenerated skips compiler-generated types and methods
	IgnoreGenerated bool `mapstructure:"ignore_generated" yaml:"ignore_generated" toml:"ignore_generated"`

	// MinSequenceLength is the minimum expression count of a compared method
	MinSequenceLength int `mapstructure:"min_sequence_length" yaml:"min_sequence_length" toml:"min_sequence_length"`

	// TypeFilters restricts the scan to types matching one of the globs
	TypeFilters []string `mapstructure:"type_filters" yaml:"type_filters" toml:"type_filters"`
}

// InputConfig holds configuration for manifest discovery
type InputConfig struct {
	// IncludePatterns specifies manifest patterns to include
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns" toml:"include_patterns"`

	// ExcludePatterns specifies manifest patterns to exclude
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" toml:"exclude_patterns"`

	// Recursive controls whether directories are walked recursively
	Recursive bool `mapstructure:"recursive" yaml:"recursive" toml:"recursive"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" yaml:"format" toml:"format"`

	// ShowExpressions adds the expression listing of every flagged method
	ShowExpressions bool `mapstructure:"show_expressions" yaml:"show_expressions" toml:"show_expressions"`

	// FailOnFindings makes the scan exit non-zero when anything is reported
	FailOnFindings bool `mapstructure:"fail_on_findings" yaml:"fail_on_findings" toml:"fail_on_findings"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Duplicates: DuplicatesConfig{
			Scopes:            []string{"same_type", "sibling_types"},
			KeyPolicy:         DefaultKeyPolicy,
			IgnoreGenerated:   true,
			MinSequenceLength: DefaultMinSequenceLength,
			TypeFilters:       []string{},
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*.asm.yaml", "**/*.asm.yml", "**/*.asm.json", "**/*.asm.toml"},
			ExcludePatterns: []string{},
			Recursive:       true,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}

// configCandidates are the file names looked up when no path is given
var configCandidates = []string{
	".ilscn.toml",
	".ilscn.yaml",
	".ilscn.yml",
	".ilscn.json",
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// If no config path specified, try to find default config files
	if configPath == "" {
		configPath = FindDefaultConfig()
	}

	// If still no config found, return default
	if configPath == "" {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// FindDefaultConfig looks for a configuration file in the working directory,
// then in the home directory
func FindDefaultConfig() string {
	for _, candidate := range configCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, candidate := range configCandidates {
			path := filepath.Join(home, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if len(c.Duplicates.Scopes) == 0 {
		return fmt.Errorf("duplicates.scopes cannot be empty")
	}
	for _, scope := range c.Duplicates.Scopes {
		if scope != "same_type" && scope != "sibling_types" {
			return fmt.Errorf("invalid duplicates.scopes entry '%s', must be one of: same_type, sibling_types", scope)
		}
	}

	if c.Duplicates.KeyPolicy != "name" && c.Duplicates.KeyPolicy != "identity" {
		return fmt.Errorf("invalid duplicates.key_policy '%s', must be one of: name, identity", c.Duplicates.KeyPolicy)
	}

	if c.Duplicates.MinSequenceLength < 0 {
		return fmt.Errorf("duplicates.min_sequence_length must be >= 0, got %d", c.Duplicates.MinSequenceLength)
	}

	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.include_patterns cannot be empty")
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	return nil
}

// SaveConfig writes the configuration to path. The encoding follows the file
// extension; TOML is used unless the extension is .yaml or .yml.
func SaveConfig(config *Config, path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = toml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
