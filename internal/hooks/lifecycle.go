package hooks

import (
	"context"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/envstore"
)

// LifecycleHook prepares the project at session boundaries. Every side
// effect is best-effort; the decision is always allow.
type LifecycleHook struct {
	*core.BaseHook
	obsType string
}

func newLifecycleHook(key, name, description string, event core.EventType, obsType string, ctx *core.HookContext) core.Hook {
	base := core.NewBaseHook(key, name, description, event, ctx)
	return &LifecycleHook{BaseHook: base, obsType: obsType}
}

// NewSessionStartHook creates the session-start hook
func NewSessionStartHook(ctx *core.HookContext) core.Hook {
	return newLifecycleHook("session-start", "Session Start Hook",
		"Provisions .env and hook directories and reports model-key status", core.SessionStartEvent, ObsSessionStart, ctx)
}

// NewSessionEndHook creates the session-end hook
func NewSessionEndHook(ctx *core.HookContext) core.Hook {
	return newLifecycleHook("session-end", "Session End Hook",
		"Records the end of a session", core.SessionEndEvent, ObsSessionEnd, ctx)
}

// NewPreCompactHook creates the pre-compact hook
func NewPreCompactHook(ctx *core.HookContext) core.Hook {
	return newLifecycleHook("pre-compact", "Pre-Compact Hook",
		"Records context compaction and re-reports model-key status", core.PreCompactEvent, ObsPreCompact, ctx)
}

// NewStopHook creates the stop hook
func NewStopHook(ctx *core.HookContext) core.Hook {
	return newLifecycleHook("stop", "Stop Hook",
		"Records the end of an assistant turn", core.StopEvent, ObsStop, ctx)
}

// Run executes the hook
func (h *LifecycleHook) Run(ctx context.Context) int {
	return h.StandardRun(ctx, h.Handle)
}

// Handle ensures directories and .env exist, appends an observation and
// prints the environment summary to stderr.
func (h *LifecycleHook) Handle(_ context.Context, in *core.Input) (core.Decision, error) {
	if in == nil {
		in = &core.Input{}
	}
	hc := h.Context()
	dir := hc.ProjectDir(in)

	for _, d := range []string{constants.HooksDir(dir), hc.LearningDir(dir)} {
		if err := hc.FileSystem.MkdirAll(d, 0o750); err != nil {
			warnf(h.BaseHook, "could not create %s: %v", d, err)
		}
	}

	ensured := envstore.EnsureFile(dir)
	if ensured.Error != "" {
		warnf(h.BaseHook, "could not provision .env: %s", ensured.Error)
	}

	rec, _ := loadEnv(hc, dir)
	summary := envstore.Summarize(rec, envstore.Discover(rec))

	data := map[string]interface{}{
		"env_source": ensured.Source,
	}
	if in.Source != "" {
		data["source"] = in.Source
	}
	if in.Reason != "" {
		data["reason"] = in.Reason
	}
	if in.Trigger != "" {
		data["trigger"] = in.Trigger
	}
	observe(h.BaseHook, in, dir, h.obsType, data)

	warnf(h.BaseHook, "%s", summary)

	msg := summary
	if ensured.Created {
		msg = ".env created from " + ensured.Source + "; " + summary
	}
	return core.Allow(h.Event(), msg), nil
}
