// Package validate holds the command and file validators. Both are pure
// functions of their input and a snapshot of the project's .env.
package validate

import (
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
)

// Outcome is the terminal classification of a validation
type Outcome string

const (
	OutcomeBlocked   Outcome = "blocked"
	OutcomeWarned    Outcome = "warned"
	OutcomeValidated Outcome = "validated"
)

// CommandContext is what the validator knows about where the command runs
type CommandContext struct {
	Dir           string
	EnvFileExists bool
	InMultiplexer bool
}

// CommandResult holds the findings for one command
type CommandResult struct {
	Outcome  Outcome
	Rule     string
	Findings []core.Finding
}

// Decision converts the result into a hook decision
func (r CommandResult) Decision(event core.EventType) core.Decision {
	d := core.Decide(event, r.Findings)
	if r.Outcome == OutcomeValidated && len(r.Findings) == 0 {
		d.Message = "Command validated"
	}
	return d
}

// CommandValidator classifies shell commands before execution
type CommandValidator struct {
	rules []commandRule
}

// NewCommandValidator returns a validator using the built-in rule table
func NewCommandValidator() *CommandValidator {
	return &CommandValidator{rules: defaultCommandRules()}
}

// Validate checks command. A blocking rule short-circuits; otherwise the
// first non-blocking rule, the env-loading reminder and the informational
// checks are all collected.
func (v *CommandValidator) Validate(command string, cc CommandContext) CommandResult {
	raw := strings.TrimSpace(command)
	if raw == "" {
		return CommandResult{Outcome: OutcomeValidated}
	}
	sh := parseShell(raw)

	for _, r := range v.rules {
		if r.severity == core.SeverityBlock && r.match(raw, sh) {
			return CommandResult{
				Outcome:  OutcomeBlocked,
				Rule:     r.name,
				Findings: []core.Finding{core.NewFinding(core.SeverityBlock, "%s: %s", r.message, raw)},
			}
		}
	}

	var res CommandResult
	for _, r := range v.rules {
		if r.severity != core.SeverityBlock && r.match(raw, sh) {
			res.Rule = r.name
			res.Findings = append(res.Findings, core.NewFinding(r.severity, "%s", r.message))
			break
		}
	}

	if f, ok := envReminder(raw, sh, cc); ok {
		res.Findings = append(res.Findings, f)
	}
	res.Findings = append(res.Findings, advisories(raw, sh, cc)...)

	res.Outcome = OutcomeValidated
	for _, f := range res.Findings {
		if f.Severity == core.SeverityWarn || f.Severity == core.SeverityCritical {
			res.Outcome = OutcomeWarned
			break
		}
	}
	return res
}

// envReminder fires for python/pytest runs that will not see the project .env
func envReminder(raw string, sh *shellScript, cc CommandContext) (core.Finding, bool) {
	if !cc.EnvFileExists {
		return core.Finding{}, false
	}
	if !sh.HasProgram(pythonPrograms...) && !pythonInvocation.MatchString(raw) {
		return core.Finding{}, false
	}
	for _, re := range envLoadingIdioms {
		if re.MatchString(raw) {
			return core.Finding{}, false
		}
	}
	if sh.Parsed {
		if sh.HasAssignPrefix() {
			return core.Finding{}, false
		}
	} else if inlineAssign.MatchString(raw) {
		return core.Finding{}, false
	}
	return core.NewFinding(core.SeverityWarn,
		"A .env file exists but this command does not load it; tests may not see required configuration (use load_dotenv(), source .env or --env-file)"), true
}

func advisories(raw string, sh *shellScript, cc CommandContext) []core.Finding {
	var out []core.Finding

	if !cc.InMultiplexer && !isBackgrounded(raw, sh) {
		for _, re := range devServers {
			if re.MatchString(raw) {
				out = append(out, core.NewFinding(core.SeverityInfo,
					"Long-running dev server: run it in the background or inside tmux so the session is not blocked"))
				break
			}
		}
	}

	if gitPush.MatchString(raw) {
		out = append(out, core.NewFinding(core.SeverityInfo,
			"Before pushing: confirm the review checklist is done and tests pass"))
	}
	if gitCommit.MatchString(raw) {
		out = append(out, core.NewFinding(core.SeverityInfo,
			"Before committing: review the staged diff for secrets and stubs"))
	}
	return out
}

func isBackgrounded(raw string, sh *shellScript) bool {
	if sh.Parsed {
		for _, c := range sh.Calls {
			if c.Background {
				return true
			}
		}
		for _, c := range sh.Calls {
			if c.Name == "nohup" || c.Name == "tmux" || c.Name == "screen" {
				return true
			}
		}
		return false
	}
	return trailingBg.MatchString(raw)
}
