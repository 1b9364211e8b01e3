package service

import (
	"sync"

	"github.com/ludo-technologies/ilscn/domain"
)

// FindingCollector gathers the findings of every rule of a detection run
type FindingCollector struct {
	mu       sync.Mutex
	findings []domain.Finding
	flagged  []domain.MethodHandle
	seen     map[domain.MethodHandle]struct{}
}

// NewFindingCollector creates an empty collector
func NewFindingCollector() *FindingCollector {
	return &FindingCollector{
		findings: []domain.Finding{},
		seen:     make(map[domain.MethodHandle]struct{}),
	}
}

// ForRule returns a reporter tagging findings with a rule and an assembly
func (c *FindingCollector) ForRule(rule, assembly string) domain.FindingReporter {
	return &ruleReporter{collector: c, rule: rule, assembly: assembly}
}

// Findings returns the findings in report order
func (c *FindingCollector) Findings() []domain.Finding {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// FlaggedMethods returns every reported method once, in first report order
func (c *FindingCollector) FlaggedMethods() []domain.MethodHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.MethodHandle, len(c.flagged))
	copy(out, c.flagged)
	return out
}

func (c *FindingCollector) add(f domain.Finding, location domain.MethodHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.findings = append(c.findings, f)
	if _, ok := c.seen[location]; !ok {
		c.seen[location] = struct{}{}
		c.flagged = append(c.flagged, location)
	}
}

type ruleReporter struct {
	collector *FindingCollector
	rule      string
	assembly  string
}

func (r *ruleReporter) Report(location domain.MethodHandle, severity domain.Severity, confidence domain.Confidence, message string) {
	if location == nil {
		return
	}
	r.collector.add(domain.Finding{
		Rule:       r.rule,
		Assembly:   r.assembly,
		Type:       location.DeclaringTypeName(),
		Method:     location.FullName(),
		Severity:   severity,
		Confidence: confidence,
		Message:    message,
	}, location)
}
