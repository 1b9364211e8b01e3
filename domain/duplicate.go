package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Rule names reported with each finding
const (
	RuleSameType     = "AvoidCodeDuplicatedInSameType"
	RuleSiblingTypes = "AvoidCodeDuplicatedInSiblingTypes"
)

// DuplicateScope selects which method pairs are compared
type DuplicateScope string

const (
	// ScopeSameType compares the methods of one type against each other
	ScopeSameType DuplicateScope = "same_type"
	// ScopeSiblingTypes compares methods of types sharing a base type
	ScopeSiblingTypes DuplicateScope = "sibling_types"
)

// KeyPolicy selects how the processed-method and processed-type sets are keyed
type KeyPolicy string

const (
	// KeyByName keys processed entries by simple name. Two same-named methods
	// of different types or overloads shadow each other.
	KeyByName KeyPolicy = "name"
	// KeyByIdentity keys processed entries by full name and signature
	KeyByIdentity KeyPolicy = "identity"
)

// ErrFindingsReported is returned by the use case when findings were
// reported and the request asks to fail on them
var ErrFindingsReported = errors.New("duplicate code reported")

// DuplicateRequest represents a request for duplicate code detection
type DuplicateRequest struct {
	// Input parameters
	Paths           []string `json:"paths" yaml:"paths"`
	Recursive       bool     `json:"recursive" yaml:"recursive"`
	IncludePatterns []string `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`

	// Analysis configuration
	Scopes            []DuplicateScope `json:"scopes" yaml:"scopes"`
	KeyPolicy         KeyPolicy        `json:"key_policy" yaml:"key_policy"`
	IgnoreGenerated   bool             `json:"ignore_generated" yaml:"ignore_generated"`
	MinSequenceLength int              `json:"min_sequence_length" yaml:"min_sequence_length"`
	TypeFilters       []string         `json:"type_filters,omitempty" yaml:"type_filters,omitempty"`

	// Output configuration
	OutputFormat    OutputFormat `json:"output_format" yaml:"output_format"`
	OutputWriter    io.Writer    `json:"-" yaml:"-"`
	OutputPath      string       `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	ShowExpressions bool         `json:"show_expressions" yaml:"show_expressions"`
	FailOnFindings  bool         `json:"fail_on_findings" yaml:"fail_on_findings"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty" yaml:"config_path,omitempty"`
}

// DuplicateStatistics summarizes one detection run
type DuplicateStatistics struct {
	AssembliesAnalyzed int            `json:"assemblies_analyzed" yaml:"assemblies_analyzed"`
	TypesAnalyzed      int            `json:"types_analyzed" yaml:"types_analyzed"`
	MethodsAnalyzed    int            `json:"methods_analyzed" yaml:"methods_analyzed"`
	MethodsWithBody    int            `json:"methods_with_body" yaml:"methods_with_body"`
	Comparisons        int            `json:"comparisons" yaml:"comparisons"`
	TotalFindings      int            `json:"total_findings" yaml:"total_findings"`
	FindingsByRule     map[string]int `json:"findings_by_rule" yaml:"findings_by_rule"`
}

// NewDuplicateStatistics creates an empty statistics instance
func NewDuplicateStatistics() *DuplicateStatistics {
	return &DuplicateStatistics{
		FindingsByRule: make(map[string]int),
	}
}

// MethodExpressions is the extracted expression listing of one method,
// included in responses when ShowExpressions is set
type MethodExpressions struct {
	Method      string   `json:"method" yaml:"method"`
	Expressions []string `json:"expressions" yaml:"expressions"`
}

// DuplicateResponse represents the response from duplicate code detection
type DuplicateResponse struct {
	Findings    []Finding           `json:"findings" yaml:"findings"`
	Expressions []MethodExpressions `json:"expressions,omitempty" yaml:"expressions,omitempty"`
	Statistics  *DuplicateStatistics `json:"statistics" yaml:"statistics"`

	// Metadata
	Request  *DuplicateRequest `json:"request,omitempty" yaml:"request,omitempty"`
	Duration int64             `json:"duration_ms" yaml:"duration_ms"`
	Success  bool              `json:"success" yaml:"success"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// DuplicateService defines the interface for duplicate code detection services
type DuplicateService interface {
	// Detect runs the configured scan rules over every assembly manifest in files
	Detect(ctx context.Context, files []string, req *DuplicateRequest) (*DuplicateResponse, error)

	// ExtractExpressions returns the expression listing of one method
	ExtractExpressions(ctx context.Context, file, method string) (*MethodExpressions, error)
}

// AssemblyReader discovers and loads assembly manifests
type AssemblyReader interface {
	// CollectManifests finds manifest files under the given paths
	CollectManifests(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// LoadAssembly decodes one manifest file
	LoadAssembly(path string) (AssemblyHandle, error)
}

// DuplicateOutputFormatter defines the interface for formatting detection results
type DuplicateOutputFormatter interface {
	// FormatDuplicateResponse writes the response in the requested format
	FormatDuplicateResponse(response *DuplicateResponse, format OutputFormat, writer io.Writer) error
}

// ReportWriter writes a formatted report to outputPath when set, otherwise
// to writer
type ReportWriter interface {
	Write(writer io.Writer, outputPath string, format OutputFormat, writeFunc func(io.Writer) error) error
}

// DuplicateConfigurationLoader loads detection defaults from configuration files
type DuplicateConfigurationLoader interface {
	// LoadDuplicateConfig loads configuration from file; an empty path
	// triggers discovery and falls back to defaults
	LoadDuplicateConfig(configPath string) (*DuplicateRequest, error)
}

// Validate validates a duplicate request
func (req *DuplicateRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewValidationError("paths cannot be empty")
	}

	if len(req.Scopes) == 0 {
		return NewValidationError("at least one scope is required")
	}
	for _, scope := range req.Scopes {
		if scope != ScopeSameType && scope != ScopeSiblingTypes {
			return NewValidationError(fmt.Sprintf("unknown scope: %s", scope))
		}
	}

	if req.KeyPolicy != KeyByName && req.KeyPolicy != KeyByIdentity {
		return NewValidationError(fmt.Sprintf("unknown key policy: %s", req.KeyPolicy))
	}

	if req.MinSequenceLength < 0 {
		return NewValidationError("min_sequence_length must be >= 0")
	}

	switch req.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
	default:
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}

	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer or
// an output file
func (req *DuplicateRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil || req.OutputPath != ""
}

// HasScope reports whether the request enables the given scope
func (req *DuplicateRequest) HasScope(scope DuplicateScope) bool {
	for _, s := range req.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// DefaultDuplicateRequest returns a default duplicate request
func DefaultDuplicateRequest() *DuplicateRequest {
	return &DuplicateRequest{
		Paths:             []string{"."},
		Recursive:         true,
		IncludePatterns:   DefaultManifestPatterns(),
		ExcludePatterns:   []string{},
		Scopes:            []DuplicateScope{ScopeSameType, ScopeSiblingTypes},
		KeyPolicy:         KeyByName,
		IgnoreGenerated:   true,
		MinSequenceLength: 2,
		OutputFormat:      OutputFormatText,
	}
}

// DefaultManifestPatterns returns the glob patterns matching assembly manifests
func DefaultManifestPatterns() []string {
	return []string{"**/*.asm.yaml", "**/*.asm.yml", "**/*.asm.json", "**/*.asm.toml"}
}
