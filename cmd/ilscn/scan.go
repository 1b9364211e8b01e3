package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ludo-technologies/ilscn/app"
	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/config"
	"github.com/ludo-technologies/ilscn/service"
)

// ScanCommand handles the duplicate detection CLI command
type ScanCommand struct {
	// Input parameters
	recursive       bool
	configFile      string
	includePatterns []string
	excludePatterns []string

	// Analysis configuration
	scopes          []string
	keyPolicy       string
	ignoreGenerated bool
	minLength       int
	typeFilters     []string

	// Output options
	format          string
	outputPath      string
	showExpressions bool
	failOnFindings  bool
	noProgress      bool
}

// NewScanCommand creates a new scan command
func NewScanCommand() *ScanCommand {
	defaults := domain.DefaultDuplicateRequest()
	scopes := make([]string, 0, len(defaults.Scopes))
	for _, s := range defaults.Scopes {
		scopes = append(scopes, string(s))
	}

	return &ScanCommand{
		recursive:       defaults.Recursive,
		includePatterns: defaults.IncludePatterns,
		scopes:          scopes,
		keyPolicy:       string(defaults.KeyPolicy),
		ignoreGenerated: defaults.IgnoreGenerated,
		minLength:       defaults.MinSequenceLength,
		format:          string(defaults.OutputFormat),
	}
}

// CreateCobraCommand creates the cobra command for duplicate detection
func (s *ScanCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Report duplicated code in assembly manifests",
		Long: `Scan assembly manifests for duplicated method bodies.

Every method body is folded into a sequence of expressions. Two methods are
reported as duplicates when two consecutive expressions are equal at the same
position in both sequences.

Configuration is read from .ilscn.toml (or .yaml, .yml, .json) in the working
directory or the home directory. Flags given on the command line win.

Examples:
  # Scan the current directory
  ilscn scan

  # Only compare methods of the same type
  ilscn scan --scope same_type bin/

  # Key processed methods by full signature
  ilscn scan --key-policy identity bin/

  # Restrict to one namespace and emit JSON
  ilscn scan --type 'Contoso.Billing.**' --format json bin/

  # Write a CSV report
  ilscn scan --format csv -o reports/duplicates.csv bin/

  # Fail CI when anything is reported
  ilscn scan --fail-on-findings bin/`,
		RunE: s.runScan,
	}

	// Input flags
	cmd.Flags().BoolVarP(&s.recursive, "recursive", "r", s.recursive,
		"Recursively scan directories")
	cmd.Flags().StringVarP(&s.configFile, "config", "c", s.configFile,
		"Path to configuration file")
	cmd.Flags().StringSliceVar(&s.includePatterns, "include", s.includePatterns,
		"Manifest patterns to include")
	cmd.Flags().StringSliceVar(&s.excludePatterns, "exclude", s.excludePatterns,
		"Manifest patterns to exclude")

	// Analysis flags
	cmd.Flags().StringSliceVar(&s.scopes, "scope", s.scopes,
		"Rules to run: same_type, sibling_types")
	cmd.Flags().StringVar(&s.keyPolicy, "key-policy", s.keyPolicy,
		"Key processed methods and types by: name, identity")
	cmd.Flags().BoolVar(&s.ignoreGenerated, "ignore-generated", s.ignoreGenerated,
		"Skip compiler-generated types and methods")
	cmd.Flags().IntVar(&s.minLength, "min-length", s.minLength,
		"Minimum expression count of a compared method")
	cmd.Flags().StringSliceVar(&s.typeFilters, "type", s.typeFilters,
		"Only scan types matching these globs (e.g. 'Contoso.**')")

	// Output flags
	cmd.Flags().StringVarP(&s.format, "format", "f", s.format,
		"Output format: text, json, yaml, csv")
	cmd.Flags().StringVarP(&s.outputPath, "output", "o", s.outputPath,
		"Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&s.showExpressions, "show-expressions", s.showExpressions,
		"Include the expression listing of every reported method")
	cmd.Flags().BoolVar(&s.failOnFindings, "fail-on-findings", s.failOnFindings,
		"Exit with status 1 when duplicates are reported")
	cmd.Flags().BoolVar(&s.noProgress, "no-progress", s.noProgress,
		"Disable the progress bar")

	return cmd
}

// runScan executes the scan command
func (s *ScanCommand) runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	request, err := s.createRequest(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	var progress domain.ProgressManager
	if !s.noProgress {
		pm := service.NewProgressManager()
		pm.SetWriter(cmd.ErrOrStderr())
		progress = pm
	}

	useCase, err := app.NewDuplicateUseCaseBuilder().
		WithService(service.NewDuplicateService(progress, logger)).
		WithAssemblyReader(service.NewAssemblyReader()).
		WithFormatter(newFormatter(request)).
		WithReportWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create scan use case: %w", err)
	}

	return useCase.Execute(cmd.Context(), request)
}

// createRequest loads the configuration and overlays the flags the user set
func (s *ScanCommand) createRequest(cmd *cobra.Command, paths []string) (*domain.DuplicateRequest, error) {
	base, err := service.NewDuplicateConfigurationLoader().LoadDuplicateConfig(s.configFile)
	if err != nil {
		return nil, err
	}

	format, err := domain.ParseOutputFormat(s.format)
	if err != nil {
		return nil, err
	}

	scopes := make([]domain.DuplicateScope, 0, len(s.scopes))
	for _, scope := range s.scopes {
		scopes = append(scopes, domain.DuplicateScope(scope))
	}

	override := &domain.DuplicateRequest{
		Paths:             paths,
		Recursive:         s.recursive,
		IncludePatterns:   s.includePatterns,
		ExcludePatterns:   s.excludePatterns,
		Scopes:            scopes,
		KeyPolicy:         domain.KeyPolicy(s.keyPolicy),
		IgnoreGenerated:   s.ignoreGenerated,
		MinSequenceLength: s.minLength,
		TypeFilters:       s.typeFilters,
		OutputFormat:      format,
		OutputWriter:      cmd.OutOrStdout(),
		OutputPath:        s.outputPath,
		ShowExpressions:   s.showExpressions,
		FailOnFindings:    s.failOnFindings,
		ConfigPath:        s.configFile,
	}

	tracker := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	return service.MergeDuplicateRequest(base, override, tracker), nil
}

// newFormatter colors text output written to a terminal
func newFormatter(req *domain.DuplicateRequest) domain.DuplicateOutputFormatter {
	if req.OutputPath != "" || req.OutputFormat != domain.OutputFormatText {
		return service.NewDuplicateFormatter()
	}
	if file, ok := req.OutputWriter.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return service.NewColorDuplicateFormatter()
	}
	return service.NewDuplicateFormatter()
}

// NewScanCmd creates and returns the scan cobra command
func NewScanCmd() *cobra.Command {
	return NewScanCommand().CreateCobraCommand()
}
