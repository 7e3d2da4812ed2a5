package validate

import (
	"regexp"
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
)

// commandRule is one entry of the dangerous-command table
type commandRule struct {
	name     string
	severity core.Severity
	message  string
	match    func(raw string, sh *shellScript) bool
}

// rx matches the raw command text
func rx(pattern string) func(string, *shellScript) bool {
	re := regexp.MustCompile(pattern)
	return func(raw string, _ *shellScript) bool { return re.MatchString(raw) }
}

func anyOf(matchers ...func(string, *shellScript) bool) func(string, *shellScript) bool {
	return func(raw string, sh *shellScript) bool {
		for _, m := range matchers {
			if m(raw, sh) {
				return true
			}
		}
		return false
	}
}

// parsedOr uses the structural matcher when the command parsed, so quoted
// text such as commit messages is not mistaken for a command. The regex
// covers text the parser rejects.
func parsedOr(parsed, fallback func(string, *shellScript) bool) func(string, *shellScript) bool {
	return func(raw string, sh *shellScript) bool {
		if sh != nil && sh.Parsed {
			return parsed(raw, sh)
		}
		return fallback(raw, sh)
	}
}

// rmFlags matches any run of flags followed by a flag group containing r
const rmFlags = `(?i)\brm\s+(?:-{1,2}[a-z-]+\s+)*-[a-z]*r[a-z]*(?:\s+-{1,2}[a-z-]+)*\s+`

// cmdEnd terminates a path argument, allowing a closing quote
const cmdEnd = `["']?(?:\s|$|[;&|)])`

// quote is an optional opening quote before a path argument
const quote = `["']?`

var rootTargets = map[string]bool{
	"/": true, "/*": true, "~": true, "~/": true, "~/*": true,
	"$HOME": true, "$HOME/": true, "$HOME/*": true,
}

var systemDirs = []string{"/etc", "/usr", "/bin", "/sbin", "/lib", "/lib64", "/boot", "/var", "/root", "/home", "/sys", "/proc", "/dev", "/opt"}

// recursiveRm inspects parsed rm calls, catching split flags like rm -r -f /
func recursiveRm(targets func(string) bool) func(string, *shellScript) bool {
	return func(_ string, sh *shellScript) bool {
		for _, c := range sh.Calls {
			words := c.Words()
			for i, w := range words {
				if w != "rm" {
					continue
				}
				recursive := false
				var args []string
				for _, a := range words[i+1:] {
					switch {
					case a == "--recursive":
						recursive = true
					case strings.HasPrefix(a, "--"):
					case strings.HasPrefix(a, "-"):
						if strings.ContainsAny(a, "rR") {
							recursive = true
						}
					default:
						args = append(args, a)
					}
				}
				if !recursive {
					continue
				}
				for _, a := range args {
					if targets(a) {
						return true
					}
				}
			}
		}
		return false
	}
}

func isRootTarget(a string) bool { return rootTargets[a] }

func isSystemDir(a string) bool {
	a = strings.TrimSuffix(a, "/")
	for _, d := range systemDirs {
		if strings.EqualFold(a, d) {
			return true
		}
	}
	return false
}

func recursiveFunction(_ string, sh *shellScript) bool {
	return len(sh.RecursiveFns) > 0
}

// defaultCommandRules is ordered; BLOCK rules are always evaluated first
func defaultCommandRules() []commandRule {
	return []commandRule{
		{
			name:     "rm-root",
			severity: core.SeverityBlock,
			message:  "Recursive delete of filesystem root or home directory",
			match: parsedOr(
				recursiveRm(isRootTarget),
				rx(rmFlags+quote+`(?:/\*?|~/?\*?|\$\{?home\}?/?\*?)`+cmdEnd),
			),
		},
		{
			name:     "rm-system",
			severity: core.SeverityBlock,
			message:  "Recursive delete of a system directory",
			match: parsedOr(
				recursiveRm(isSystemDir),
				rx(rmFlags+quote+`/(?:etc|usr|bin|sbin|lib|lib64|boot|var|root|home|sys|proc|dev|opt)/?`+cmdEnd),
			),
		},
		{
			name:     "device-write",
			severity: core.SeverityBlock,
			message:  "Raw write to a block device",
			match: anyOf(
				rx(`(?i)\bdd\b[^|;&]*\bof=/dev/(?:sd|hd|nvme|disk|rdisk|xvd|vd|mmcblk)`),
				rx(`(?i)>\s*/dev/(?:sd|hd|nvme|disk|rdisk|xvd|vd|mmcblk)`),
			),
		},
		{
			name:     "format-filesystem",
			severity: core.SeverityBlock,
			message:  "Filesystem formatting command",
			match: anyOf(
				rx(`(?i)(?:^|[\s;&|(])(?:sudo\s+)?(?:mkfs(?:\.[a-z0-9]+)?|mke2fs|wipefs)\b`),
				rx(`(?i)\bdiskutil\s+(?:erase(?:disk|volume)|apfs\s+erase)`),
			),
		},
		{
			name:     "fork-bomb",
			severity: core.SeverityBlock,
			message:  "Fork bomb",
			match: anyOf(
				rx(`:\s*\(\s*\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;?\s*:`),
				rx(`\b\w+\s*\(\s*\)\s*\{\s*\w+\s*\|\s*\w+\s*&\s*\}`),
				recursiveFunction,
			),
		},
		{
			name:     "chmod-777-root",
			severity: core.SeverityBlock,
			message:  "chmod 777 on the filesystem root",
			match:    rx(`(?i)\bchmod\s+(?:-[a-z]+\s+)*0?777\s+(?:-[a-z]+\s+)*/\*?` + cmdEnd),
		},
		{
			name:     "pipe-to-shell",
			severity: core.SeverityWarn,
			message:  "Piping a download into a shell executes unreviewed code",
			match:    rx(`(?i)\b(?:curl|wget)\b[^|;&]*\|\s*(?:sudo\s+)?(?:ba|z|da|k|fi)?sh\b`),
		},
	}
}

// Secondary and tertiary checks

var pythonPrograms = []string{"python", "python3", "pytest", "py.test"}

var pythonInvocation = regexp.MustCompile(`(?i)(?:^|[\s;&|(])(?:python[0-9.]*|pytest|py\.test)(?:\s|$)`)

// envLoadingIdioms are the ways a command can make .env visible to a python run
var envLoadingIdioms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)dotenv`),
	regexp.MustCompile(`\.env\b`),
	regexp.MustCompile(`--env-file`),
	regexp.MustCompile(`(?:^|[\s;&|(])(?:source|\.)\s+\S`),
	regexp.MustCompile(`\bexport\s+[A-Za-z_]`),
	regexp.MustCompile(`(?:^|[\s;&|(])env\s`),
}

// inlineAssign is the text fallback for KEY=value command prefixes
var inlineAssign = regexp.MustCompile(`(?:^|[\s;&|(])[A-Za-z_][A-Za-z0-9_]*=\S*\s+\S`)

var devServers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:npm|pnpm|bun)\s+(?:run\s+)?(?:dev|start|serve)\b`),
	regexp.MustCompile(`(?i)\byarn\s+(?:run\s+)?(?:dev|start|serve)\b`),
	regexp.MustCompile(`(?i)\b(?:next|nuxt|vite|astro)\s+dev\b`),
	regexp.MustCompile(`(?i)\buvicorn\b|\bgunicorn\b|\bflask\s+run\b|\bmanage\.py\s+runserver\b`),
	regexp.MustCompile(`(?i)\brails\s+(?:server|s)\b|\bnodemon\b|\bcargo\s+watch\b`),
}

var (
	gitPush    = regexp.MustCompile(`(?i)\bgit\s+(?:-\S+\s+)*push\b`)
	gitCommit  = regexp.MustCompile(`(?i)\bgit\s+(?:-\S+\s+)*commit\b`)
	trailingBg = regexp.MustCompile(`&\s*$`)
)
