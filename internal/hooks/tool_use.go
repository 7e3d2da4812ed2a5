package hooks

import (
	"context"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/validate"
)

// Environment variables that indicate a terminal multiplexer session
var multiplexerEnv = []string{"TMUX", "STY", "ZELLIJ"}

// PreToolUseHook validates shell commands and proposed file content
type PreToolUseHook struct {
	*core.BaseHook
	commands *validate.CommandValidator
	files    *validate.FileValidator
}

// NewPreToolUseHook creates the pre-tool-use hook
func NewPreToolUseHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("pre-tool-use", "Pre-Tool-Use Hook",
		"Blocks dangerous commands and hardcoded models before they run", core.PreToolUseEvent, ctx)
	return &PreToolUseHook{
		BaseHook: base,
		commands: validate.NewCommandValidator(),
		files:    validate.NewFileValidator(hookConfig(base.Context()).StrictExtensions),
	}
}

// Run executes the hook
func (h *PreToolUseHook) Run(ctx context.Context) int {
	return h.StandardRun(ctx, h.Handle)
}

// Handle dispatches on the tool name
func (h *PreToolUseHook) Handle(_ context.Context, in *core.Input) (core.Decision, error) {
	if in == nil {
		in = &core.Input{}
	}
	hc := h.Context()
	dir := hc.ProjectDir(in)

	var d core.Decision
	data := map[string]interface{}{}
	switch in.ToolName {
	case constants.ToolBash:
		_, envExists := loadEnv(hc, dir)
		res := h.commands.Validate(in.ToolInput.Command, validate.CommandContext{
			Dir:           dir,
			EnvFileExists: envExists,
			InMultiplexer: h.inMultiplexer(),
		})
		d = res.Decision(h.Event())
		data["outcome"] = string(res.Outcome)
		if res.Rule != "" {
			data["rule"] = res.Rule
		}
	case constants.ToolWrite, constants.ToolEdit, constants.ToolMultiEdit:
		rec, _ := loadEnv(hc, dir)
		res := h.files.ValidateIn(dir, in.ToolInput.FilePath, in.ProposedContent(), rec)
		d = res.Decision(h.Event())
		data["file_kind"] = string(res.Class.Kind)
	default:
		return core.Allow(h.Event(), ""), nil
	}

	data["blocked"] = d.Blocked()
	observe(h.BaseHook, in, dir, ObsPreToolUse, data)
	return d, nil
}

func (h *PreToolUseHook) inMultiplexer() bool {
	getenv := h.Context().Getenv
	if getenv == nil {
		return false
	}
	for _, name := range multiplexerEnv {
		if getenv(name) != "" {
			return true
		}
	}
	return false
}

// PostToolUseHook re-validates files after the tool wrote them
type PostToolUseHook struct {
	*core.BaseHook
	files *validate.FileValidator
}

// NewPostToolUseHook creates the post-tool-use hook
func NewPostToolUseHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("post-tool-use", "Post-Tool-Use Hook",
		"Validates written files for hardcoded models, secrets and stubs", core.PostToolUseEvent, ctx)
	return &PostToolUseHook{
		BaseHook: base,
		files:    validate.NewFileValidator(hookConfig(base.Context()).StrictExtensions),
	}
}

// Run executes the hook
func (h *PostToolUseHook) Run(ctx context.Context) int {
	return h.StandardRun(ctx, h.Handle)
}

// Handle validates the file as it now exists on disk, falling back to the
// content in the tool input when it cannot be read.
func (h *PostToolUseHook) Handle(_ context.Context, in *core.Input) (core.Decision, error) {
	if in == nil {
		in = &core.Input{}
	}
	switch in.ToolName {
	case constants.ToolWrite, constants.ToolEdit, constants.ToolMultiEdit:
	default:
		return core.Allow(h.Event(), ""), nil
	}

	hc := h.Context()
	dir := hc.ProjectDir(in)
	path := in.ToolInput.FilePath

	content := in.ProposedContent()
	source := "tool_input"
	if data, err := hc.FileSystem.ReadFile(resolvePath(dir, path)); err == nil {
		content = string(data)
		source = "disk"
	}

	rec, _ := loadEnv(hc, dir)
	res := h.files.ValidateIn(dir, path, content, rec)
	d := res.Decision(h.Event())

	observe(h.BaseHook, in, dir, ObsPostToolUse, map[string]interface{}{
		"file_kind": string(res.Class.Kind),
		"source":    source,
		"blocked":   d.Blocked(),
	})
	return d, nil
}
