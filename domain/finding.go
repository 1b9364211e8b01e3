package domain

import (
	"fmt"
	"strings"
)

// Severity represents how serious a reported defect is
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

// String returns string representation of Severity
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name for JSON and YAML output
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity name
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return 0, NewValidationError(fmt.Sprintf("unknown severity: %s", name))
	}
}

// Confidence represents how certain the analysis is about a finding
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceNormal
	ConfidenceHigh
)

// String returns string representation of Confidence
func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceNormal:
		return "normal"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText encodes the confidence by name for JSON and YAML output
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a confidence name
func (c *Confidence) UnmarshalText(text []byte) error {
	parsed, err := ParseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseConfidence parses a confidence name
func ParseConfidence(name string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return ConfidenceLow, nil
	case "normal":
		return ConfidenceNormal, nil
	case "high":
		return ConfidenceHigh, nil
	default:
		return 0, NewValidationError(fmt.Sprintf("unknown confidence: %s", name))
	}
}

// FindingReporter receives defects detected by a rule. It is the sink the
// analyzer core reports through; implementations live in the service layer.
type FindingReporter interface {
	Report(location MethodHandle, severity Severity, confidence Confidence, message string)
}

// Finding is one reported defect
type Finding struct {
	Rule       string     `json:"rule" yaml:"rule" csv:"rule"`
	Assembly   string     `json:"assembly" yaml:"assembly" csv:"assembly"`
	Type       string     `json:"type" yaml:"type" csv:"type"`
	Method     string     `json:"method" yaml:"method" csv:"method"`
	Severity   Severity   `json:"severity" yaml:"severity" csv:"severity"`
	Confidence Confidence `json:"confidence" yaml:"confidence" csv:"confidence"`
	Message    string     `json:"message" yaml:"message" csv:"message"`
}

// String returns string representation of Finding
func (f *Finding) String() string {
	return fmt.Sprintf("[%s/%s] %s: %s (%s)", f.Severity, f.Confidence, f.Method, f.Message, f.Rule)
}
