package hooks

import "github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"

// init registers all built-in hooks using batch registration
func init() {
	builtinHooks := map[string]core.HookFactory{
		"session-start": NewSessionStartHook,
		"session-end":   NewSessionEndHook,
		"pre-compact":   NewPreCompactHook,
		"stop":          NewStopHook,
		"prompt-submit": NewPromptSubmitHook,
		"pre-tool-use":  NewPreToolUseHook,
		"post-tool-use": NewPostToolUseHook,
	}
	core.RegisterBuiltinHooks(builtinHooks)
}
