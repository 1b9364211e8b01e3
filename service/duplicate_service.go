package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/analyzer"
)

// DuplicateServiceImpl implements the domain.DuplicateService interface
type DuplicateServiceImpl struct {
	reader    *AssemblyReaderImpl
	progress  domain.ProgressManager
	logger    *zap.Logger
	extractor *analyzer.ExpressionExtractor
}

// NewDuplicateService creates a new duplicate detection service.
// progress and logger can be nil.
func NewDuplicateService(progress domain.ProgressManager, logger *zap.Logger) *DuplicateServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateServiceImpl{
		reader:    NewAssemblyReader(),
		progress:  progress,
		logger:    logger,
		extractor: analyzer.NewExpressionExtractor(),
	}
}

// Detect runs the configured rules over every manifest in files. Manifests
// are decoded in parallel; each assembly is then scanned in file order as an
// independent pass with fresh rules.
func (s *DuplicateServiceImpl) Detect(ctx context.Context, files []string, req *domain.DuplicateRequest) (*domain.DuplicateResponse, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return nil, fmt.Errorf("duplicate request cannot be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid duplicate request: %w", err)
	}

	startTime := time.Now()
	stats := domain.NewDuplicateStatistics()
	collector := NewFindingCollector()

	if s.progress != nil {
		s.progress.Initialize(len(files))
		defer s.progress.Close()
	}

	cache := PopulateAssemblyCache(ctx, s.reader, files, 0)

	for i, file := range files {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("duplicate analysis cancelled: %w", ctx.Err())
		default:
		}

		loaded, ok := cache.Get(file)
		if !ok {
			return nil, domain.NewAnalysisError(fmt.Sprintf("manifest not loaded: %s", file), nil)
		}
		if loaded.Err != nil {
			return nil, loaded.Err
		}

		if err := s.scanAssembly(ctx, selectTypes(loaded.Assembly, req.TypeFilters), req, collector, stats); err != nil {
			return nil, err
		}

		if s.progress != nil {
			s.progress.Update(i+1, len(files))
		}
	}

	findings := collector.Findings()
	stats.TotalFindings = len(findings)
	for _, f := range findings {
		stats.FindingsByRule[f.Rule]++
	}

	response := &domain.DuplicateResponse{
		Findings:   findings,
		Statistics: stats,
		Request:    req,
		Duration:   time.Since(startTime).Milliseconds(),
		Success:    true,
	}

	if req.ShowExpressions {
		for _, m := range collector.FlaggedMethods() {
			response.Expressions = append(response.Expressions, domain.MethodExpressions{
				Method:      m.FullName(),
				Expressions: s.extractor.Extract(m).Strings(),
			})
		}
	}

	s.logger.Debug("duplicate detection completed",
		zap.Int("assemblies", stats.AssembliesAnalyzed),
		zap.Int("types", stats.TypesAnalyzed),
		zap.Int("comparisons", stats.Comparisons),
		zap.Int("findings", stats.TotalFindings),
		zap.Int64("duration_ms", response.Duration))

	return response, nil
}

// scanAssembly runs every enabled rule over one assembly
func (s *DuplicateServiceImpl) scanAssembly(ctx context.Context, asm domain.AssemblyHandle, req *domain.DuplicateRequest, collector *FindingCollector, stats *domain.DuplicateStatistics) error {
	rules := s.createRules(asm.Name(), req, collector)
	for _, rule := range rules {
		rule.BeginAssembly(asm)
	}

	stats.AssembliesAnalyzed++
	for _, t := range asm.Types() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("duplicate analysis cancelled: %w", ctx.Err())
		default:
		}

		stats.TypesAnalyzed++
		for _, m := range t.Methods() {
			stats.MethodsAnalyzed++
			if m.HasBody() {
				stats.MethodsWithBody++
			}
		}

		for _, rule := range rules {
			rule.CheckType(t)
		}
	}

	for _, rule := range rules {
		stats.Comparisons += rule.Comparisons()
	}

	s.logger.Debug("assembly scanned", zap.String("assembly", asm.Name()))
	return nil
}

// createRules builds fresh rules, with fresh locators, for one assembly
func (s *DuplicateServiceImpl) createRules(assembly string, req *domain.DuplicateRequest, collector *FindingCollector) []analyzer.DuplicateRule {
	options := analyzer.DuplicateRuleOptions{
		KeyPolicy:         req.KeyPolicy,
		IgnoreGenerated:   req.IgnoreGenerated,
		MinSequenceLength: req.MinSequenceLength,
	}

	var rules []analyzer.DuplicateRule
	if req.HasScope(domain.ScopeSameType) {
		rules = append(rules, analyzer.NewSameTypeRule(collector.ForRule(domain.RuleSameType, assembly), options))
	}
	if req.HasScope(domain.ScopeSiblingTypes) {
		rules = append(rules, analyzer.NewSiblingTypesRule(collector.ForRule(domain.RuleSiblingTypes, assembly), options))
	}

	for _, rule := range rules {
		rule.SetLogger(s.logger.With(zap.String("rule", rule.Name())))
	}
	return rules
}

// ExtractExpressions returns the expression listing of one method of a
// manifest. method is "Type::Name" or a full name with parameter list.
func (s *DuplicateServiceImpl) ExtractExpressions(ctx context.Context, file, method string) (*domain.MethodExpressions, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asm, err := s.reader.Load(file)
	if err != nil {
		return nil, err
	}

	m, ok := asm.FindMethod(method)
	if !ok {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("method not found or ambiguous: %s", method), nil)
	}

	return &domain.MethodExpressions{
		Method:      m.FullName(),
		Expressions: s.extractor.Extract(m).Strings(),
	}, nil
}

// filteredAssembly restricts an assembly to the types selected by filters
type filteredAssembly struct {
	name  string
	types []domain.TypeHandle
}

func (a *filteredAssembly) Name() string { return a.name }

func (a *filteredAssembly) Types() []domain.TypeHandle { return a.types }

// selectTypes keeps the types whose name matches one of the glob filters.
// Type names are dotted, so '.' is turned into '/' before matching and
// "Sample.**" selects a whole namespace.
func selectTypes(asm domain.AssemblyHandle, filters []string) domain.AssemblyHandle {
	if len(filters) == 0 {
		return asm
	}

	selected := &filteredAssembly{name: asm.Name()}
	for _, t := range asm.Types() {
		if matchesTypeFilter(t.Name(), filters) {
			selected.types = append(selected.types, t)
		}
	}
	return selected
}

func matchesTypeFilter(typeName string, filters []string) bool {
	name := dottedToPath(typeName)
	for _, filter := range filters {
		if matched, _ := doublestar.Match(dottedToPath(filter), name); matched {
			return true
		}
	}
	return false
}

func dottedToPath(s string) string {
	return strings.ReplaceAll(s, ".", "/")
}
