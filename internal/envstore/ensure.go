package envstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
)

// Sources reported by EnsureFile
const (
	SourceExisting = "existing"
	SourceExample  = "example"
	SourceTemplate = "template"
	SourceFailed   = "failed"
)

// EnsureResult reports what EnsureFile did.
type EnsureResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
	Source  string `json:"source"`
	Error   string `json:"error,omitempty"`
}

const envTemplate = `# Environment configuration for this project.
# Model names and API keys are read from here; never hardcode them in code.
#
# OPENAI_API_KEY=
# ANTHROPIC_API_KEY=
# GOOGLE_API_KEY=
#
# DEFAULT_LLM_MODEL=
`

// EnsureFile makes sure dir/.env exists. It copies .env.example when one is
// present and otherwise writes a commented template. An existing file is
// never touched. Errors are reported in the result, never returned.
func EnsureFile(dir string) EnsureResult {
	target := filepath.Join(dir, constants.EnvFileName)
	res := EnsureResult{Path: target, Source: SourceFailed}

	if _, err := os.Stat(target); err == nil {
		res.Source = SourceExisting
		return res
	} else if !errors.Is(err, fs.ErrNotExist) {
		res.Error = err.Error()
		return res
	}

	content := []byte(envTemplate)
	source := SourceTemplate
	if example, err := os.ReadFile(filepath.Join(dir, constants.EnvExampleFileName)); err == nil { // #nosec G304 - sibling of target
		content = example
		source = SourceExample
	}

	// O_EXCL so a concurrent session start cannot clobber a file created meanwhile
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) // #nosec G304
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			res.Source = SourceExisting
			return res
		}
		res.Error = err.Error()
		return res
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(content); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Created = true
	res.Source = source
	return res
}
