package analyzer

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ludo-technologies/ilscn/domain"
)

// DuplicateRuleOptions holds settings shared by the duplicate code rules
type DuplicateRuleOptions struct {
	// KeyPolicy selects how processed methods and types are remembered
	KeyPolicy domain.KeyPolicy

	// IgnoreGenerated skips compiler-generated types and candidate methods
	IgnoreGenerated bool

	// MinSequenceLength is the minimum expression count of a candidate method
	MinSequenceLength int
}

// DefaultDuplicateRuleOptions returns default rule options
func DefaultDuplicateRuleOptions() DuplicateRuleOptions {
	return DuplicateRuleOptions{
		KeyPolicy:         domain.KeyByName,
		IgnoreGenerated:   true,
		MinSequenceLength: 2,
	}
}

// DuplicateRule drives a DuplicateLocator over the types of an assembly.
// BeginAssembly must be called before the first CheckType of each assembly.
type DuplicateRule interface {
	// Name returns the rule name attached to findings
	Name() string

	// BeginAssembly starts a new independent pass
	BeginAssembly(assembly domain.AssemblyHandle)

	// CheckType examines one type and reports whether duplicates were found
	CheckType(t domain.TypeHandle) bool

	// Comparisons returns the number of method pairs compared so far
	Comparisons() int

	// SetLogger sets the logger used for debug output
	SetLogger(logger *zap.Logger)
}

// duplicateRuleBase holds what both rules share
type duplicateRuleBase struct {
	options   DuplicateRuleOptions
	locator   *DuplicateLocator
	extractor *ExpressionExtractor
}

func newDuplicateRuleBase(reporter domain.FindingReporter, options DuplicateRuleOptions) duplicateRuleBase {
	return duplicateRuleBase{
		options:   options,
		locator:   NewDuplicateLocator(reporter, options.KeyPolicy),
		extractor: NewExpressionExtractor(),
	}
}

func (r *duplicateRuleBase) Comparisons() int {
	return r.locator.Comparisons()
}

func (r *duplicateRuleBase) SetLogger(logger *zap.Logger) {
	r.locator.SetLogger(logger)
}

// Locator exposes the underlying locator
func (r *duplicateRuleBase) Locator() *DuplicateLocator {
	return r.locator
}

func (r *duplicateRuleBase) skipType(t domain.TypeHandle) bool {
	return r.options.IgnoreGenerated && IsGeneratedName(t.Name())
}

// excludeGenerated marks the compiler-generated methods of t processed so
// they are never reported as a duplicate partner
func (r *duplicateRuleBase) excludeGenerated(t domain.TypeHandle) {
	if !r.options.IgnoreGenerated {
		return
	}
	for _, m := range t.Methods() {
		if IsGeneratedName(m.Name()) {
			r.locator.MarkMethodProcessed(m)
		}
	}
}

// isCandidate reports whether m should be compared against other methods
func (r *duplicateRuleBase) isCandidate(m domain.MethodHandle) bool {
	if !m.HasBody() {
		return false
	}
	if r.options.IgnoreGenerated && IsGeneratedName(m.Name()) {
		return false
	}
	if r.options.MinSequenceLength > 0 && len(r.extractor.Extract(m)) < r.options.MinSequenceLength {
		return false
	}
	return true
}

// IsGeneratedName reports whether a member name was produced by a compiler,
// such as <Main>b__0_0 or <>c__DisplayClass1
func IsGeneratedName(name string) bool {
	return strings.ContainsRune(name, '<')
}

// SameTypeRule reports methods duplicating code of another method in the
// same type. Every type is its own pass; each method is marked processed
// after it has been compared so a pair is reported once.
type SameTypeRule struct {
	duplicateRuleBase
}

// NewSameTypeRule creates the same type rule
func NewSameTypeRule(reporter domain.FindingReporter, options DuplicateRuleOptions) *SameTypeRule {
	return &SameTypeRule{duplicateRuleBase: newDuplicateRuleBase(reporter, options)}
}

// Name returns the rule name
func (r *SameTypeRule) Name() string {
	return domain.RuleSameType
}

// BeginAssembly starts a new pass
func (r *SameTypeRule) BeginAssembly(domain.AssemblyHandle) {
	r.locator.Clear()
}

// CheckType compares the methods of t against each other
func (r *SameTypeRule) CheckType(t domain.TypeHandle) bool {
	if r.skipType(t) {
		return false
	}

	r.locator.Clear()
	r.excludeGenerated(t)

	found := false
	for _, method := range t.Methods() {
		if r.isCandidate(method) && r.locator.CompareAgainstTypeMethods(method, t) {
			found = true
		}
		r.locator.MarkMethodProcessed(method)
	}
	return found
}

// SiblingTypesRule reports methods duplicating code of a method in a sibling
// type, a type sharing the same base type. The whole assembly is one pass;
// each type is marked processed once its methods have been compared so a
// pair of siblings is scanned in one direction only.
type SiblingTypesRule struct {
	duplicateRuleBase
	siblings map[string][]domain.TypeHandle
}

// NewSiblingTypesRule creates the sibling types rule
func NewSiblingTypesRule(reporter domain.FindingReporter, options DuplicateRuleOptions) *SiblingTypesRule {
	return &SiblingTypesRule{
		duplicateRuleBase: newDuplicateRuleBase(reporter, options),
		siblings:          make(map[string][]domain.TypeHandle),
	}
}

// Name returns the rule name
func (r *SiblingTypesRule) Name() string {
	return domain.RuleSiblingTypes
}

// BeginAssembly clears the scan state and groups the assembly's types by
// base type
func (r *SiblingTypesRule) BeginAssembly(assembly domain.AssemblyHandle) {
	r.locator.Clear()
	clear(r.siblings)

	if assembly == nil {
		return
	}
	for _, t := range assembly.Types() {
		if r.skipType(t) || !hasSiblingBase(t) {
			continue
		}
		r.siblings[t.BaseTypeName()] = append(r.siblings[t.BaseTypeName()], t)
		r.excludeGenerated(t)
	}
}

// CheckType compares the methods of t against the methods of its siblings
func (r *SiblingTypesRule) CheckType(t domain.TypeHandle) bool {
	if r.skipType(t) || !hasSiblingBase(t) {
		return false
	}

	found := false
	for _, method := range t.Methods() {
		if !r.isCandidate(method) {
			continue
		}
		for _, sibling := range r.siblings[t.BaseTypeName()] {
			if sibling == t {
				continue
			}
			if r.locator.CompareAgainstTypeMethods(method, sibling) {
				found = true
			}
		}
	}

	r.locator.MarkTypeProcessed(t)
	return found
}

// hasSiblingBase reports whether the base type of t makes it part of a
// sibling group. Every type derives from System.Object, which says nothing
// about shared behavior.
func hasSiblingBase(t domain.TypeHandle) bool {
	switch t.BaseTypeName() {
	case "", "System.Object", "System.ValueType", "System.Enum":
		return false
	default:
		return true
	}
}
