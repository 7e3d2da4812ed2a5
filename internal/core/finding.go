package core

import "fmt"

// Severity ranks a validation finding. Only BLOCK stops a tool call.
type Severity string

const (
	SeverityBlock    Severity = "BLOCK"
	SeverityCritical Severity = "CRITICAL"
	SeverityWarn     Severity = "WARN"
	SeverityInfo     Severity = "INFO"
)

// Finding is a single validator result
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Path     string   `json:"path,omitempty"`
}

// NewFinding creates a finding without location
func NewFinding(sev Severity, format string, args ...any) Finding {
	return Finding{Severity: sev, Message: fmt.Sprintf(format, args...)}
}

// At returns a copy of f located at path:line
func (f Finding) At(path string, line int) Finding {
	f.Path = path
	f.Line = line
	return f
}

// IsBlocking reports whether the finding stops the tool call
func (f Finding) IsBlocking() bool {
	return f.Severity == SeverityBlock
}

// String renders the finding for the validation message list
func (f Finding) String() string {
	switch {
	case f.Line > 0:
		return fmt.Sprintf("%s: %s (line %d)", f.Severity, f.Message, f.Line)
	default:
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
}
