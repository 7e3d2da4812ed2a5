package validate

import (
	"path/filepath"
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/envstore"
)

// FileResult holds the findings for one proposed file
type FileResult struct {
	Path     string
	Class    Classification
	Skipped  bool
	Findings []core.Finding
}

// Decision converts the result into a hook decision
func (r FileResult) Decision(event core.EventType) core.Decision {
	d := core.Decide(event, r.Findings)
	if r.Skipped {
		d.Message = "Skipped: unrecognized file type"
	}
	return d
}

// FileValidator scans proposed file content, calibrated by file type
type FileValidator struct {
	strict map[string]bool
}

// NewFileValidator returns a validator that blocks on hardcoded models in
// files whose extension is listed in strictExt.
func NewFileValidator(strictExt []string) *FileValidator {
	v := &FileValidator{strict: make(map[string]bool, len(strictExt))}
	for _, ext := range strictExt {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		v.strict[ext] = true
	}
	return v
}

func (v *FileValidator) isStrict(ext string) bool { return v.strict[ext] }

// Classify reports how path would be validated
func (v *FileValidator) Classify(path string) Classification {
	return Classify(path, v.isStrict)
}

// Validate runs every applicable check over content. env is the project's
// parsed .env and is only consulted for hardcoded models.
func (v *FileValidator) Validate(path, content string, env envstore.Record) FileResult {
	return v.ValidateIn("", path, content, env)
}

// ValidateIn is Validate for a file inside projectDir. Directory conventions
// such as tests/ are matched only below projectDir.
func (v *FileValidator) ValidateIn(projectDir, path, content string, env envstore.Record) FileResult {
	scope := projectRelative(projectDir, path)
	res := FileResult{Path: path, Class: v.Classify(scope)}
	if res.Class.Kind == KindUnknown {
		res.Skipped = true
		return res
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if res.Class.Kind == KindSource {
		res.Findings = append(res.Findings, scanLines(path, scope, res.Class, lines, antiPatternRules)...)
		res.Findings = append(res.Findings, v.modelFindings(path, res.Class, lines, env)...)
	}
	res.Findings = append(res.Findings, secretFindings(path, content)...)
	if res.Class.Kind == KindSource && !res.Class.Test {
		res.Findings = append(res.Findings, scanLines(path, scope, res.Class, lines, stubRules)...)
	}

	if len(res.Findings) == 0 {
		res.Findings = []core.Finding{core.NewFinding(core.SeverityInfo, "All patterns validated")}
	}
	return res
}

// projectRelative strips projectDir from an absolute path inside it
func projectRelative(projectDir, path string) string {
	if projectDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(projectDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// modelFindings reports each hardcoded model once. A strict file with a
// known provider and no key is the only blocking case.
func (v *FileValidator) modelFindings(path string, c Classification, lines []string, env envstore.Record) []core.Finding {
	var out []core.Finding
	seen := map[string]bool{}
	for i, l := range lines {
		if isComment(l) {
			continue
		}
		for _, m := range modelAssignment.FindAllStringSubmatch(l, -1) {
			model := m[1]
			key := strings.ToLower(model)
			if seen[key] || !modelShaped.MatchString(model) {
				continue
			}
			seen[key] = true

			b := envstore.Resolve(env, "", model)
			var f core.Finding
			switch {
			case b.Status == envstore.StatusUnknownProvider:
				f = core.NewFinding(core.SeverityWarn, "Hardcoded model %q (unknown provider); read it from an environment variable", model)
			case b.Status == envstore.StatusMissingKey && c.Strict:
				f = core.NewFinding(core.SeverityBlock, "Hardcoded model %q requires %s in .env (%s); set the key and read the model from an environment variable",
					model, strings.Join(b.AcceptableKeys, " or "), b.Provider)
			case b.Status == envstore.StatusMissingKey:
				f = core.NewFinding(core.SeverityWarn, "Hardcoded model %q and no %s in .env (%s)",
					model, strings.Join(b.AcceptableKeys, " or "), b.Provider)
			default:
				f = core.NewFinding(core.SeverityWarn, "Hardcoded model %q; read it from an environment variable", model)
			}
			out = append(out, f.At(path, i+1))
		}
	}
	return out
}

// secretFindings reports each credential shape once, at its first line
func secretFindings(path, content string) []core.Finding {
	var out []core.Finding
	for _, s := range secretPatterns {
		loc := s.pattern.FindStringIndex(content)
		if loc == nil {
			continue
		}
		lineNo := strings.Count(content[:loc[0]], "\n") + 1
		out = append(out, core.NewFinding(core.SeverityCritical, "Hardcoded %s", s.name).At(path, lineNo))
	}
	return out
}
