package hooks

import (
	"fmt"
	"path/filepath"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/envstore"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/learning"
)

// Observation types written to the learning log
const (
	ObsSessionStart = "session_start"
	ObsSessionEnd   = "session_end"
	ObsPreCompact   = "pre_compact"
	ObsStop         = "stop"
	ObsUserPrompt   = "user_prompt"
	ObsPreToolUse   = "pre_tool_use"
	ObsPostToolUse  = "post_tool_use"
)

// maxPromptChars bounds how much of a prompt is kept in an observation
const maxPromptChars = 500

func hookConfig(hc *core.HookContext) *config.Config {
	if hc.Config == nil {
		return config.Default()
	}
	return hc.Config
}

// envPath is the .env of projectDir
func envPath(projectDir string) string {
	return filepath.Join(projectDir, constants.EnvFileName)
}

// loadEnv reads the project .env through the hook filesystem. A missing or
// unreadable file yields an empty record.
func loadEnv(hc *core.HookContext, projectDir string) (envstore.Record, bool) {
	data, err := hc.FileSystem.ReadFile(envPath(projectDir))
	if err != nil {
		return envstore.Record{}, false
	}
	return envstore.Parse(string(data)), true
}

// resolvePath makes a tool file path absolute against the project directory
func resolvePath(projectDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

// observe appends one observation. Failures are reported on stderr only.
func observe(h *core.BaseHook, in *core.Input, projectDir, obsType string, data map[string]interface{}) {
	hc := h.Context()
	store := learning.NewStore(hc.LearningDir(projectDir), hookConfig(hc).Observations)
	store.Now = hc.Timestamp

	obs := learning.Observation{Type: obsType, CWD: projectDir, Data: data}
	if in != nil {
		obs.SessionID = in.SessionID
		obs.ToolName = in.ToolName
	}
	if err := store.Append(obs); err != nil {
		warnf(h, "observation not recorded: %v", err)
	}
}

// warnf writes a best-effort diagnostic to stderr
func warnf(h *core.BaseHook, format string, args ...interface{}) {
	fmt.Fprintf(h.Context().ErrWriter(), "[%s] %s\n", h.Key(), fmt.Sprintf(format, args...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
