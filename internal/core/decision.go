package core

import "strings"

// Process exit codes understood by the host
const (
	ExitAllow    = 0
	ExitFailOpen = 1
	ExitBlock    = 2
)

// Decision is the single terminal result of one hook invocation.
// Continue is false iff ExitCode is ExitBlock and a BLOCK finding exists.
type Decision struct {
	Event    EventType
	Continue bool
	ExitCode int
	Findings []Finding
	Message  string
}

// Decide derives the decision from the findings alone
func Decide(event EventType, findings []Finding) Decision {
	d := Decision{Event: event, Continue: true, ExitCode: ExitAllow, Findings: findings}
	for _, f := range findings {
		if f.IsBlocking() {
			d.Continue = false
			d.ExitCode = ExitBlock
			break
		}
	}
	return d
}

// Allow is a non-blocking decision carrying only a message
func Allow(event EventType, message string) Decision {
	return Decision{Event: event, Continue: true, ExitCode: ExitAllow, Message: message}
}

// FailOpen is returned when the hook itself malfunctions. The host proceeds.
func FailOpen(event EventType, reason string) Decision {
	return Decision{Event: event, Continue: true, ExitCode: ExitFailOpen, Message: reason}
}

// WithMessage returns d with its free-form message set
func (d Decision) WithMessage(msg string) Decision {
	d.Message = msg
	return d
}

// Blocked reports whether the host must abort the tool call
func (d Decision) Blocked() bool {
	return !d.Continue
}

// Reason joins the messages of all blocking findings
func (d Decision) Reason() string {
	var parts []string
	for _, f := range d.Findings {
		if f.IsBlocking() {
			parts = append(parts, f.Message)
		}
	}
	return strings.Join(parts, "; ")
}

// Validation renders every finding in order
func (d Decision) Validation() []string {
	if len(d.Findings) == 0 {
		return nil
	}
	out := make([]string, len(d.Findings))
	for i, f := range d.Findings {
		out[i] = f.String()
	}
	return out
}

// Output converts the decision to its wire form
func (d Decision) Output() Output {
	out := Output{Continue: d.Continue}
	validation := d.Validation()
	if d.Event == "" && len(validation) == 0 && d.Message == "" {
		return out
	}
	out.HookSpecificOutput = &HookSpecificOutput{
		HookEventName: string(d.Event),
		Validation:    validation,
		Message:       d.Message,
	}
	return out
}
