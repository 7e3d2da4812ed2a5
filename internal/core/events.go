package core

// EventType represents a host hook event
type EventType string

// Hook events handled by this binary
const (
	PreToolUseEvent       EventType = "PreToolUse"
	PostToolUseEvent      EventType = "PostToolUse"
	UserPromptSubmitEvent EventType = "UserPromptSubmit"
	StopEvent             EventType = "Stop"
	PreCompactEvent       EventType = "PreCompact"
	SessionStartEvent     EventType = "SessionStart"
	SessionEndEvent       EventType = "SessionEnd"
)

// HookEvent describes an event and whether the cchooks runner can drive it
type HookEvent struct {
	Type               EventType
	Description        string
	Lifecycle          bool
	SupportedByCCHooks bool
}

// AllHookEvents returns every handled event
func AllHookEvents() []HookEvent {
	return []HookEvent{
		{
			Type:               PreToolUseEvent,
			Description:        "Runs after the assistant creates tool parameters and before the tool call",
			SupportedByCCHooks: true,
		},
		{
			Type:               PostToolUseEvent,
			Description:        "Runs immediately after a tool completes successfully",
			SupportedByCCHooks: true,
		},
		{
			Type:        UserPromptSubmitEvent,
			Description: "Runs when the user submits a prompt",
		},
		{
			Type:        SessionStartEvent,
			Description: "Runs when a session starts or resumes",
			Lifecycle:   true,
		},
		{
			Type:        SessionEndEvent,
			Description: "Runs when a session ends",
			Lifecycle:   true,
		},
		{
			Type:        PreCompactEvent,
			Description: "Runs before the conversation is compacted",
			Lifecycle:   true,
		},
		{
			Type:        StopEvent,
			Description: "Runs when the main agent has finished responding",
			Lifecycle:   true,
		},
	}
}

// LookupEvent returns the metadata for t
func LookupEvent(t EventType) (HookEvent, bool) {
	for _, e := range AllHookEvents() {
		if e.Type == t {
			return e, true
		}
	}
	return HookEvent{}, false
}

