package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
)

// LogEntry is one structured record in <log dir>/<hook key>.log
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	HookKey   string                 `json:"hook_key"`
	Event     string                 `json:"event"`
	ToolName  string                 `json:"tool_name"`
	RawData   map[string]interface{} `json:"raw_data,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// logHookEvent appends one entry through a rotating writer.
// It is a no-op if LoggingEnabled is false; failures go to stderr only.
func logHookEvent(ctx *HookContext, hookKey, event, toolName string,
	rawData map[string]interface{}, details map[string]interface{},
) {
	if ctx == nil || !ctx.LoggingEnabled {
		return
	}

	entry := LogEntry{
		Timestamp: ctx.Timestamp().Format(time.RFC3339),
		HookKey:   hookKey,
		Event:     event,
		ToolName:  toolName,
		RawData:   rawData,
		Details:   details,
	}

	var jsonData []byte
	var err error
	if ctx.LoggingFormat == config.LoggingFormatPretty {
		jsonData, err = json.MarshalIndent(entry, "", "  ")
	} else {
		jsonData, err = json.Marshal(entry)
	}
	if err != nil {
		fmt.Fprintf(ctx.ErrWriter(), "Failed to marshal log entry: %v\n", err)
		return
	}

	rotation := config.DefaultLogRotationConfig()
	if ctx.Config != nil {
		rotation = ctx.Config.Logging.Rotation
	}
	logger := config.SetupLogRotation(config.GetLogPath(ctx.LoggingDir, hookKey), rotation)
	if logger == nil {
		return
	}
	defer func() { _ = logger.Close() }()

	if _, err := logger.Write(append(jsonData, '\n')); err != nil {
		fmt.Fprintf(ctx.ErrWriter(), "Failed to write to log file: %v\n", err)
	}
}

// LogHookEvent records a structured event for this hook
func (h *BaseHook) LogHookEvent(event string, toolName string, rawData map[string]interface{}, details map[string]interface{}) {
	if !h.context.LoggingEnabled {
		return
	}
	logHookEvent(h.context, h.key, event, toolName, rawData, details)
}

// LogDecision records the terminal decision of an invocation
func (h *BaseHook) LogDecision(in *Input, d Decision) {
	if !h.context.LoggingEnabled {
		return
	}
	toolName := ""
	if in != nil {
		toolName = in.ToolName
	}

	event := "allowed"
	switch {
	case d.Blocked():
		event = "blocked"
	case d.ExitCode == ExitFailOpen:
		event = "fail_open"
	}

	raw := map[string]interface{}{
		"continue":  d.Continue,
		"exit_code": d.ExitCode,
	}
	if in != nil && in.ToolInput.FilePath != "" {
		raw["file_path"] = in.ToolInput.FilePath
	}
	var details map[string]interface{}
	if len(d.Findings) > 0 || d.Message != "" {
		details = map[string]interface{}{
			"findings": d.Findings,
			"message":  d.Message,
		}
	}
	h.LogHookEvent(event, toolName, raw, details)
}
