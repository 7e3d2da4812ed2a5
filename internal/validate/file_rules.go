package validate

import (
	"regexp"
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
)

// lineRule is reported at most once per file, at the first matching line
type lineRule struct {
	name     string
	severity core.Severity
	message  string
	match    func(lines []string, i int) bool
	comments bool
	applies  func(path string, c Classification) bool
}

func line(pattern string) func([]string, int) bool {
	re := regexp.MustCompile(pattern)
	return func(lines []string, i int) bool { return re.MatchString(lines[i]) }
}

func language(langs ...string) func(string, Classification) bool {
	return func(_ string, c Classification) bool {
		for _, l := range langs {
			if c.Language == l {
				return true
			}
		}
		return false
	}
}

func nonTest(_ string, c Classification) bool { return !c.Test }

// isComment reports whether a line is entirely a comment
func isComment(l string) bool {
	t := strings.TrimSpace(l)
	return strings.HasPrefix(t, "#") || strings.HasPrefix(t, "//") ||
		strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*")
}

// scanLines applies each rule independently and returns findings in rule
// order. scope is the path the rules' directory conditions are matched on.
func scanLines(path, scope string, c Classification, lines []string, rules []lineRule) []core.Finding {
	var out []core.Finding
	for _, r := range rules {
		if r.applies != nil && !r.applies(scope, c) {
			continue
		}
		for i := range lines {
			if !r.comments && isComment(lines[i]) {
				continue
			}
			if r.match(lines, i) {
				out = append(out, core.NewFinding(r.severity, "%s", r.message).At(path, i+1))
				break
			}
		}
	}
	return out
}

var (
	frameworkDir = regexp.MustCompile(`(?i)(?:^|/)(?:dataflow|nexus|kaizen|workflows?|nodes)/`)
	envRead      = regexp.MustCompile(`\bos\.(?:environ\b|getenv\()|\bprocess\.env\b`)
	envLoad      = regexp.MustCompile(`\bload_dotenv\(|\bdotenv\b`)
	primaryKey   = regexp.MustCompile(`^\s*(\w+)\s*(?::[^=]*)?=\s*.*\bprimary_key\s*=\s*True\b`)
)

func envReadBeforeLoad(lines []string, i int) bool {
	if !envRead.MatchString(lines[i]) {
		return false
	}
	for _, prev := range lines[:i] {
		if envLoad.MatchString(prev) {
			return false
		}
	}
	return true
}

func primaryKeyNotID(lines []string, i int) bool {
	m := primaryKey.FindStringSubmatch(lines[i])
	return m != nil && m[1] != "id"
}

func inFrameworkDir(path string, c Classification) bool {
	return c.Language == "python" && frameworkDir.MatchString(path)
}

func integrationTest(path string, _ Classification) bool {
	return IsIntegrationTest(path)
}

// antiPatternRules flag framework misuse. SQL and dynamic evaluation are
// CRITICAL but still advisory.
var antiPatternRules = []lineRule{
	{
		name:     "execute-order",
		severity: core.SeverityWarn,
		message:  "workflow.execute(runtime) is reversed; use runtime.execute(workflow.build())",
		match:    line(`\bworkflow\.execute\(\s*runtime\b`),
	},
	{
		name:     "missing-build",
		severity: core.SeverityWarn,
		message:  "runtime.execute() needs a built workflow; call workflow.build() first",
		match:    line(`\bruntime\.execute\(\s*workflow\s*[,)]`),
	},
	{
		name:     "relative-import",
		severity: core.SeverityWarn,
		message:  "Relative import inside a framework package; use absolute imports",
		match:    line(`^\s*from\s+\.+[\w.]*\s+import\b`),
		applies:  inFrameworkDir,
	},
	{
		name:     "mock-in-integration",
		severity: core.SeverityWarn,
		message:  "Mocking in an integration or end-to-end test; use real services",
		match:    line(`\bunittest\.mock\b|\bMagicMock\b|\bMock\(|@patch\b|\bmocker\.|\bjest\.mock\(|\bvi\.mock\(|\bsinon\.`),
		applies:  integrationTest,
	},
	{
		name:     "sql-injection",
		severity: core.SeverityCritical,
		message:  "SQL statement built with string formatting or concatenation; use parameterized queries",
		match: line(`(?i)\bf["'][^"']*\b(?:select\s.+\sfrom|insert\s+into|update\s+\w+\s+set|delete\s+from)\b[^"']*\{` +
			`|["'][^"']*\b(?:select\s.+\sfrom|insert\s+into|update\s+\w+\s+set|delete\s+from)\b[^"']*["']\s*\+` +
			"|`[^`]*\\b(?:select\\s.+\\sfrom|insert\\s+into|update\\s+\\w+\\s+set|delete\\s+from)\\b[^`]*\\$\\{"),
	},
	{
		name:     "dynamic-eval",
		severity: core.SeverityCritical,
		message:  "Dynamic evaluation (eval/exec) outside tests",
		match:    line(`(?:^|[^\w.])(?:eval|exec)\s*\(`),
		applies:  nonTest,
	},
	{
		name:     "primary-key-name",
		severity: core.SeverityWarn,
		message:  "Primary key field should be named id",
		match:    primaryKeyNotID,
		applies:  language("python"),
	},
	{
		name:     "env-before-load",
		severity: core.SeverityWarn,
		message:  "Environment read before load_dotenv(); values from .env will be missing",
		match:    envReadBeforeLoad,
		applies:  language("python", "javascript", "typescript"),
	},
}

var (
	exceptPass     = regexp.MustCompile(`^\s*except\b[^:]*:\s*pass\b`)
	bareExceptLine = regexp.MustCompile(`^\s*except(?:\s+[\w.(), ]+(?:\s+as\s+\w+)?)?\s*:\s*$`)
)

// bareExceptPass matches except: pass on one line or split over two
func bareExceptPass(lines []string, i int) bool {
	if exceptPass.MatchString(lines[i]) {
		return true
	}
	if !bareExceptLine.MatchString(lines[i]) {
		return false
	}
	for _, next := range lines[i+1:] {
		if t := strings.TrimSpace(next); t != "" {
			return t == "pass"
		}
	}
	return false
}

// stubRules flag unfinished code. Only the TODO family is looked for in comments.
var stubRules = []lineRule{
	{
		name:     "todo",
		severity: core.SeverityWarn,
		message:  "Stub marker (TODO/FIXME/HACK/STUB/XXX) left in code",
		match:    line(`\b(?:TODO|FIXME|HACK|STUB|XXX)\b`),
		comments: true,
	},
	{
		name:     "not-implemented",
		severity: core.SeverityWarn,
		message:  "Not-implemented placeholder",
		match:    line(`\braise\s+NotImplementedError\b|(?i:throw\s+new\s+Error\(\s*["'\x60]not\s+implemented)|(?i:panic\(\s*"not\s+implemented)`),
	},
	{
		name:     "placeholder-body",
		severity: core.SeverityWarn,
		message:  "Placeholder body (pass or return None marked as a stub)",
		match:    line(`^\s*(?:pass|return\s+None)\s*#.*(?i:placeholder|stub|implement|later|todo)`),
	},
	{
		name:     "simulated-data",
		severity: core.SeverityWarn,
		message:  "Simulated or fake data in production code",
		match:    line(`(?i)\b(?:simulated|fake|dummy|placeholder)[_ -]?(?:data|responses?|results?|values?|users?|records?)\b`),
	},
	{
		name:     "empty-return",
		severity: core.SeverityWarn,
		message:  "Empty return stub",
		match:    line(`^\s*return\s+(?:\{\s*\}|\[\s*\])\s*;?\s*$`),
	},
	{
		name:     "bare-except-pass",
		severity: core.SeverityWarn,
		message:  "Silent failure: exception swallowed with pass",
		match:    bareExceptPass,
	},
	{
		name:     "empty-catch",
		severity: core.SeverityWarn,
		message:  "Silent failure: empty catch block",
		match:    line(`\bcatch\s*(?:\([^)]*\))?\s*\{\s*\}`),
	},
}

// secretPattern is one credential shape. Findings are deduplicated by name.
type secretPattern struct {
	name    string
	pattern *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"Anthropic API key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"OpenAI API key", regexp.MustCompile(`\bsk-(?:proj-)?[A-Za-z0-9]{20,}`)},
	{"Perplexity API key", regexp.MustCompile(`\bpplx-[A-Za-z0-9]{20,}`)},
	{"Google API key", regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}`)},
	{"AWS access key", regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{"GitHub personal token", regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}`)},
	{"GitHub OAuth token", regexp.MustCompile(`\bgho_[A-Za-z0-9]{36}`)},
	{"GitHub app token", regexp.MustCompile(`\b(?:ghu|ghs)_[A-Za-z0-9]{36}`)},
	{"GitHub fine-grained token", regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}`)},
	{"Stripe live key", regexp.MustCompile(`\b(?:sk|rk)_live_[A-Za-z0-9]{20,}`)},
	{"Stripe test key", regexp.MustCompile(`\b(?:sk|rk)_test_[A-Za-z0-9]{20,}`)},
	{"Slack token", regexp.MustCompile(`\bxox[abprs]-[A-Za-z0-9-]{10,}`)},
}

// modelAssignment captures a model-shaped literal assigned to a model key
var modelAssignment = regexp.MustCompile(`(?i)\b(?:\w+_)?model(?:_name|_id)?["']?\s*[:=]\s*["']([a-z][a-z0-9._:/-]*)["']`)

// modelShaped filters out values like "auto" or "default"
var modelShaped = regexp.MustCompile(`(?i)^(?:gpt|chatgpt|o[134]|claude|gemini|text-|dall-e|llama|mistral|mixtral|codestral|open-mistral|command|embed|sonar|pplx|deepseek|grok|qwen|phi)(?:[-.:/0-9a-z]*)$`)
