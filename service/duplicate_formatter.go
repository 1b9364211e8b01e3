package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ludo-technologies/ilscn/domain"
)

// DuplicateFormatter implements the domain.DuplicateOutputFormatter interface
type DuplicateFormatter struct {
	utils *FormatUtils
}

// NewDuplicateFormatter creates a new duplicate output formatter
func NewDuplicateFormatter() *DuplicateFormatter {
	return &DuplicateFormatter{utils: NewFormatUtils(false)}
}

// NewColorDuplicateFormatter creates a formatter coloring severities in text
// output
func NewColorDuplicateFormatter() *DuplicateFormatter {
	return &DuplicateFormatter{utils: NewFormatUtils(true)}
}

// FormatDuplicateResponse formats a duplicate response according to the
// specified format
func (f *DuplicateFormatter) FormatDuplicateResponse(response *domain.DuplicateResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("response cannot be nil", nil)
	}

	switch format {
	case domain.OutputFormatText:
		return f.formatAsText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.formatAsCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// formatAsText formats the response as human-readable text
func (f *DuplicateFormatter) formatAsText(response *domain.DuplicateResponse, writer io.Writer) error {
	var b strings.Builder

	if !response.Success {
		fmt.Fprintf(&b, "Duplicate code detection failed: %s\n", response.Error)
		_, err := io.WriteString(writer, b.String())
		return wrapWriteError(err)
	}

	b.WriteString(f.utils.FormatMainHeader("Duplicate Code Report"))

	if stats := response.Statistics; stats != nil {
		b.WriteString(f.utils.FormatSectionHeader("Summary"))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Assemblies analyzed", stats.AssembliesAnalyzed))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Types analyzed", stats.TypesAnalyzed))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Methods analyzed", stats.MethodsAnalyzed))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Methods with body", stats.MethodsWithBody))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Comparisons", stats.Comparisons))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Findings", stats.TotalFindings))

		rules := make([]string, 0, len(stats.FindingsByRule))
		for rule := range stats.FindingsByRule {
			rules = append(rules, rule)
		}
		sort.Strings(rules)
		for _, rule := range rules {
			b.WriteString(f.utils.FormatLabelWithIndent(ItemPadding, rule, stats.FindingsByRule[rule]))
		}

		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duration", f.utils.FormatDuration(response.Duration)))
		b.WriteString("\n")
	}

	if len(response.Findings) == 0 {
		b.WriteString("No duplicate code detected.\n")
		_, err := io.WriteString(writer, b.String())
		return wrapWriteError(err)
	}

	b.WriteString(f.utils.FormatSectionHeader("Findings"))
	for i, finding := range response.Findings {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, f.utils.FormatSeverity(finding.Severity), finding.Method)
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", ItemPadding), finding.Message)
		fmt.Fprintf(&b, "%srule: %s, assembly: %s, confidence: %s\n",
			strings.Repeat(" ", ItemPadding), finding.Rule, finding.Assembly, finding.Confidence)
	}

	if len(response.Expressions) > 0 {
		b.WriteString("\n")
		b.WriteString(f.utils.FormatSectionHeader("Expressions"))
		for _, listing := range response.Expressions {
			fmt.Fprintf(&b, "%s\n", listing.Method)
			for i, expr := range listing.Expressions {
				fmt.Fprintf(&b, "%s%3d  %s\n", strings.Repeat(" ", SectionPadding), i, expr)
			}
		}
	}

	_, err := io.WriteString(writer, b.String())
	return wrapWriteError(err)
}

// formatAsCSV writes one row per finding
func (f *DuplicateFormatter) formatAsCSV(response *domain.DuplicateResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)

	if err := w.Write([]string{"rule", "assembly", "type", "method", "severity", "confidence", "message"}); err != nil {
		return wrapWriteError(err)
	}

	for _, finding := range response.Findings {
		record := []string{
			finding.Rule,
			finding.Assembly,
			finding.Type,
			finding.Method,
			finding.Severity.String(),
			finding.Confidence.String(),
			finding.Message,
		}
		if err := w.Write(record); err != nil {
			return wrapWriteError(err)
		}
	}

	w.Flush()
	return wrapWriteError(w.Error())
}

func wrapWriteError(err error) error {
	if err == nil {
		return nil
	}
	return domain.NewOutputError("failed to write output", err)
}
