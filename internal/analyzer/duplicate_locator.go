package analyzer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ludo-technologies/ilscn/domain"
)

// ScanState remembers which methods and types have already been compared in
// the current pass.
//
// Under domain.KeyByName entries are keyed by simple name: a method named
// Equals in one type marks every other Equals as processed, overloads
// included, and type names lose their namespace. domain.KeyByIdentity keys
// methods by full name and signature and types by full name.
type ScanState struct {
	policy  domain.KeyPolicy
	methods map[string]struct{}
	types   map[string]struct{}
}

// NewScanState creates an empty scan state
func NewScanState(policy domain.KeyPolicy) *ScanState {
	if policy == "" {
		policy = domain.KeyByName
	}
	return &ScanState{
		policy:  policy,
		methods: make(map[string]struct{}),
		types:   make(map[string]struct{}),
	}
}

// Policy returns the key policy of the state
func (s *ScanState) Policy() domain.KeyPolicy {
	return s.policy
}

// MarkMethod records a method as processed
func (s *ScanState) MarkMethod(m domain.MethodHandle) {
	s.methods[s.methodKey(m)] = struct{}{}
}

// MarkType records a type as processed
func (s *ScanState) MarkType(t domain.TypeHandle) {
	s.types[s.typeKey(t)] = struct{}{}
}

// HasMethod reports whether a method, or one sharing its key, was processed
func (s *ScanState) HasMethod(m domain.MethodHandle) bool {
	_, ok := s.methods[s.methodKey(m)]
	return ok
}

// HasType reports whether a type, or one sharing its key, was processed
func (s *ScanState) HasType(t domain.TypeHandle) bool {
	_, ok := s.types[s.typeKey(t)]
	return ok
}

// IsFresh reports whether nothing has been recorded since creation or Clear
func (s *ScanState) IsFresh() bool {
	return len(s.methods) == 0 && len(s.types) == 0
}

// Clear forgets every processed method and type
func (s *ScanState) Clear() {
	clear(s.methods)
	clear(s.types)
}

func (s *ScanState) methodKey(m domain.MethodHandle) string {
	if s.policy == domain.KeyByIdentity {
		return m.FullName()
	}
	return m.Name()
}

func (s *ScanState) typeKey(t domain.TypeHandle) string {
	if s.policy == domain.KeyByIdentity {
		return t.Name()
	}
	name := t.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// DuplicateLocator compares a candidate method against the methods of a
// target type and reports every duplicate partner.
//
// A locator owns its ScanState and is not safe for concurrent use. Clear must
// be called between independent passes; a state left over from a previous
// pass silently hides methods and types from comparison.
type DuplicateLocator struct {
	state       *ScanState
	extractor   *ExpressionExtractor
	reporter    domain.FindingReporter
	logger      *zap.Logger
	comparisons int
}

// NewDuplicateLocator creates a locator reporting through reporter.
// A nil reporter drops reports; the return values are unaffected.
func NewDuplicateLocator(reporter domain.FindingReporter, policy domain.KeyPolicy) *DuplicateLocator {
	return &DuplicateLocator{
		state:     NewScanState(policy),
		extractor: NewExpressionExtractor(),
		reporter:  reporter,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger used for debug output
func (l *DuplicateLocator) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l.logger = logger
}

// State exposes the scan state of the locator
func (l *DuplicateLocator) State() *ScanState {
	return l.state
}

// Clear resets the scan state for a new independent pass
func (l *DuplicateLocator) Clear() {
	l.state.Clear()
}

// MarkMethodProcessed excludes a method from later comparisons in this pass
func (l *DuplicateLocator) MarkMethodProcessed(m domain.MethodHandle) {
	l.state.MarkMethod(m)
}

// MarkTypeProcessed excludes a type from later comparisons in this pass
func (l *DuplicateLocator) MarkTypeProcessed(t domain.TypeHandle) {
	l.state.MarkType(t)
}

// IsMethodProcessed reports whether a method is excluded from comparison
func (l *DuplicateLocator) IsMethodProcessed(m domain.MethodHandle) bool {
	return l.state.HasMethod(m)
}

// IsTypeProcessed reports whether a type is excluded from comparison
func (l *DuplicateLocator) IsTypeProcessed(t domain.TypeHandle) bool {
	return l.state.HasType(t)
}

// Comparisons returns the number of method pairs compared by this locator
func (l *DuplicateLocator) Comparisons() int {
	return l.comparisons
}

// CompareAgainstTypeMethods compares candidate against every method of
// target, in declaration order, and reports each duplicate found. Methods
// without a body, processed methods and candidate itself are skipped; a
// processed target is not examined at all. Returns whether any duplicate was
// reported.
func (l *DuplicateLocator) CompareAgainstTypeMethods(candidate domain.MethodHandle, target domain.TypeHandle) bool {
	if candidate == nil || target == nil || !candidate.HasBody() {
		return false
	}
	if l.state.HasType(target) {
		return false
	}

	var candidateExpressions ExpressionSequence
	found := false

	for _, method := range target.Methods() {
		if !l.canCompare(candidate, method) {
			continue
		}

		if candidateExpressions == nil {
			candidateExpressions = l.extractor.Extract(candidate)
		}
		l.comparisons++

		if !ContainsDuplicatedRun(candidateExpressions, l.extractor.Extract(method)) {
			continue
		}

		l.logger.Debug("duplicate code found",
			zap.String("method", candidate.FullName()),
			zap.String("partner", method.FullName()))

		if l.reporter != nil {
			l.reporter.Report(candidate, domain.SeverityHigh, domain.ConfidenceNormal,
				fmt.Sprintf("Duplicate code with %s", method.FullName()))
		}
		found = true
	}

	return found
}

func (l *DuplicateLocator) canCompare(candidate, method domain.MethodHandle) bool {
	return method != nil &&
		method.HasBody() &&
		!l.state.HasMethod(method) &&
		method != candidate
}
