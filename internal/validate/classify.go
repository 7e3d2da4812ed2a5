package validate

import (
	"path/filepath"
	"regexp"
	"strings"
)

// FileKind is the coarse category that decides which checks apply
type FileKind string

const (
	KindUnknown FileKind = "unknown"
	KindSource  FileKind = "source"
	KindConfig  FileKind = "config"
)

// Classification describes how strictly a path is validated
type Classification struct {
	Kind     FileKind `json:"kind"`
	Language string   `json:"language,omitempty"`
	Strict   bool     `json:"strict"`
	Test     bool     `json:"test"`
}

var sourceLanguages = map[string]string{
	".py":  "python",
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",
	".go":  "go",
}

var configExtensions = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".env": true,
	".sh": true, ".bash": true, ".zsh": true, ".toml": true,
}

var testPath = regexp.MustCompile(`(?i)(?:^|/)(?:tests?|__tests__|spec)/|(?:^|/)test_[^/]*\.py$|_test\.(?:py|go)$|\.(?:test|spec)\.[cm]?[jt]sx?$|(?:^|/)conftest\.py$`)

// integrationTestPath narrows test paths to those that must hit real services
var integrationTestPath = regexp.MustCompile(`(?i)(?:^|/)(?:integration|e2e|tier_?[23])(?:/|_)|(?:integration|e2e)[^/]*$`)

// Classify maps a path to its category. strict reports whether an
// extension is in the blocking set.
func Classify(path string, strict func(ext string) bool) Classification {
	slashed := filepath.ToSlash(path)
	base := strings.ToLower(filepath.Base(slashed))
	ext := strings.ToLower(filepath.Ext(base))

	c := Classification{Kind: KindUnknown, Test: testPath.MatchString(slashed)}
	switch {
	case sourceLanguages[ext] != "":
		c.Kind = KindSource
		c.Language = sourceLanguages[ext]
		c.Strict = strict != nil && strict(ext)
	case configExtensions[ext], base == ".env", strings.HasPrefix(base, ".env."):
		c.Kind = KindConfig
	}
	return c
}

// IsIntegrationTest reports whether path is an integration or end-to-end test
func IsIntegrationTest(path string) bool {
	slashed := filepath.ToSlash(path)
	return testPath.MatchString(slashed) && integrationTestPath.MatchString(slashed)
}
