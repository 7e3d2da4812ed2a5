package hooks

import (
	"context"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/envstore"
)

// PromptSubmitHook records prompts and reminds the assistant of the model configuration
type PromptSubmitHook struct {
	*core.BaseHook
}

// NewPromptSubmitHook creates the prompt-submit hook
func NewPromptSubmitHook(ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook("prompt-submit", "Prompt Submit Hook",
		"Records the prompt and returns the model-key summary", core.UserPromptSubmitEvent, ctx)
	return &PromptSubmitHook{BaseHook: base}
}

// Run executes the hook
func (h *PromptSubmitHook) Run(ctx context.Context) int {
	return h.StandardRun(ctx, h.Handle)
}

// Handle appends a prompt observation and returns the env summary as the message
func (h *PromptSubmitHook) Handle(_ context.Context, in *core.Input) (core.Decision, error) {
	if in == nil {
		in = &core.Input{}
	}
	hc := h.Context()
	dir := hc.ProjectDir(in)

	observe(h.BaseHook, in, dir, ObsUserPrompt, map[string]interface{}{
		"prompt":        truncate(in.Prompt, maxPromptChars),
		"prompt_length": len(in.Prompt),
	})

	rec, _ := loadEnv(hc, dir)
	return core.Allow(h.Event(), envstore.Summarize(rec, envstore.Discover(rec))), nil
}
