package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ludo-technologies/ilscn/domain"
)

// DuplicateUseCase orchestrates duplicate code detection
type DuplicateUseCase struct {
	service   domain.DuplicateService
	reader    domain.AssemblyReader
	formatter domain.DuplicateOutputFormatter
	output    domain.ReportWriter
	logger    *zap.Logger
}

// NewDuplicateUseCase creates a new duplicate use case with the given dependencies
func NewDuplicateUseCase(
	service domain.DuplicateService,
	reader domain.AssemblyReader,
	formatter domain.DuplicateOutputFormatter,
	logger *zap.Logger,
) *DuplicateUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateUseCase{
		service:   service,
		reader:    reader,
		formatter: formatter,
		logger:    logger,
	}
}

// Execute scans every manifest under req.Paths and writes the report.
// ErrFindingsReported is returned after the report is written when findings
// exist and req.FailOnFindings is set.
func (uc *DuplicateUseCase) Execute(ctx context.Context, req *domain.DuplicateRequest) error {
	response, err := uc.Detect(ctx, req)
	if err != nil {
		return err
	}

	if !req.HasValidOutputWriter() {
		return fmt.Errorf("no valid output writer specified")
	}
	if err := uc.writeReport(response, req); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if req.FailOnFindings && len(response.Findings) > 0 {
		return findingsReportedError(len(response.Findings))
	}
	return nil
}

// writeReport formats the response to the request's writer, or to its output
// file when a report writer is configured
func (uc *DuplicateUseCase) writeReport(response *domain.DuplicateResponse, req *domain.DuplicateRequest) error {
	format := func(w io.Writer) error {
		return uc.formatter.FormatDuplicateResponse(response, req.OutputFormat, w)
	}
	if uc.output == nil {
		if req.OutputWriter == nil {
			return fmt.Errorf("output path %s needs a report writer", req.OutputPath)
		}
		return format(req.OutputWriter)
	}
	return uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, format)
}

// Detect runs the detection and returns the response without formatting it
func (uc *DuplicateUseCase) Detect(ctx context.Context, req *domain.DuplicateRequest) (*domain.DuplicateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("validation failed: request cannot be nil")
	}
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	files, err := uc.reader.CollectManifests(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to collect manifests: %w", err)
	}
	if len(files) == 0 {
		uc.logger.Warn("no assembly manifests found", zap.Strings("paths", req.Paths))
	} else {
		uc.logger.Debug("collected assembly manifests", zap.Int("count", len(files)))
	}

	response, err := uc.service.Detect(ctx, files, req)
	if err != nil {
		return nil, fmt.Errorf("duplicate detection failed: %w", err)
	}
	response.Duration = time.Since(startTime).Milliseconds()

	uc.logger.Info("duplicate detection completed",
		zap.Int("assemblies", len(files)),
		zap.Int("findings", len(response.Findings)),
		zap.Int64("duration_ms", response.Duration))

	return response, nil
}

// ListExpressions writes the expression listing of one method, one expression
// per line
func (uc *DuplicateUseCase) ListExpressions(ctx context.Context, file, method string, writer io.Writer) error {
	if writer == nil {
		return fmt.Errorf("no valid output writer specified")
	}

	listing, err := uc.Expressions(ctx, file, method)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "%s\n", listing.Method); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	for i, expr := range listing.Expressions {
		if _, err := fmt.Fprintf(writer, "%4d  %s\n", i, expr); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
	}
	return nil
}

// Expressions returns the expression listing of one method
func (uc *DuplicateUseCase) Expressions(ctx context.Context, file, method string) (*domain.MethodExpressions, error) {
	listing, err := uc.service.ExtractExpressions(ctx, file, method)
	if err != nil {
		return nil, fmt.Errorf("failed to extract expressions: %w", err)
	}
	return listing, nil
}

// findingsReportedError wraps domain.ErrFindingsReported with the finding count
func findingsReportedError(count int) error {
	return fmt.Errorf("%w: %d finding(s)", domain.ErrFindingsReported, count)
}

// IsFindingsReported reports whether err signals reported findings rather
// than a failure
func IsFindingsReported(err error) bool {
	return errors.Is(err, domain.ErrFindingsReported)
}

// DuplicateUseCaseBuilder helps build DuplicateUseCase with dependencies
type DuplicateUseCaseBuilder struct {
	service   domain.DuplicateService
	reader    domain.AssemblyReader
	formatter domain.DuplicateOutputFormatter
	output    domain.ReportWriter
	logger    *zap.Logger
}

// NewDuplicateUseCaseBuilder creates a new builder for DuplicateUseCase
func NewDuplicateUseCaseBuilder() *DuplicateUseCaseBuilder {
	return &DuplicateUseCaseBuilder{}
}

// WithService sets the duplicate service
func (b *DuplicateUseCaseBuilder) WithService(service domain.DuplicateService) *DuplicateUseCaseBuilder {
	b.service = service
	return b
}

// WithAssemblyReader sets the assembly reader
func (b *DuplicateUseCaseBuilder) WithAssemblyReader(reader domain.AssemblyReader) *DuplicateUseCaseBuilder {
	b.reader = reader
	return b
}

// WithFormatter sets the output formatter
func (b *DuplicateUseCaseBuilder) WithFormatter(formatter domain.DuplicateOutputFormatter) *DuplicateUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithReportWriter sets the writer used for file output
func (b *DuplicateUseCaseBuilder) WithReportWriter(output domain.ReportWriter) *DuplicateUseCaseBuilder {
	b.output = output
	return b
}

// WithLogger sets the logger
func (b *DuplicateUseCaseBuilder) WithLogger(logger *zap.Logger) *DuplicateUseCaseBuilder {
	b.logger = logger
	return b
}

// Build creates the DuplicateUseCase with the configured dependencies
func (b *DuplicateUseCaseBuilder) Build() (*DuplicateUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("duplicate service is required")
	}
	if b.reader == nil {
		return nil, fmt.Errorf("assembly reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := NewDuplicateUseCase(b.service, b.reader, b.formatter, b.logger)
	uc.output = b.output
	return uc, nil
}
