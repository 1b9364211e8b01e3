package analyzer

import (
	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/il"
	"github.com/ludo-technologies/ilscn/internal/metadata"
)

// Statement bodies reused across tests. Each folds to exactly one composite.
var (
	stmtX = []string{"ldarg.1", "call void System.Console::WriteLine(int32)"}
	stmtY = []string{"ldarg.2", "call void System.Console::WriteLine(int32)"}
	stmtZ = []string{"ldarg.2", "call void System.Diagnostics.Debug::WriteLine(int32)"}
	stmtW = []string{"ldarg.3", "call void System.Console::WriteLine(int32)"}
)

type report struct {
	location   domain.MethodHandle
	severity   domain.Severity
	confidence domain.Confidence
	message    string
}

type recordingReporter struct {
	reports []report
}

func (r *recordingReporter) Report(location domain.MethodHandle, severity domain.Severity, confidence domain.Confidence, message string) {
	r.reports = append(r.reports, report{
		location:   location,
		severity:   severity,
		confidence: confidence,
		message:    message,
	})
}

func (r *recordingReporter) messages() []string {
	out := make([]string, len(r.reports))
	for i, rep := range r.reports {
		out[i] = rep.message
	}
	return out
}

func (r *recordingReporter) locations() []string {
	out := make([]string, len(r.reports))
	for i, rep := range r.reports {
		out[i] = rep.location.FullName()
	}
	return out
}

func body(statements ...[]string) []il.Instruction {
	var lines []string
	for _, s := range statements {
		lines = append(lines, s...)
	}
	return il.MustParse(lines...)
}

func method(name string, statements ...[]string) *metadata.Method {
	return metadata.NewMethod(name, "void()", body(statements...))
}
