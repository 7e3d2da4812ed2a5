package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/brads3290/cchooks"
)

// Runner dispatches one validated payload to the cchooks handlers
type Runner interface {
	Run(ctx context.Context, payload []byte, stdout io.Writer) error
}

// RunnerFactory creates a Runner with the provided handlers
type RunnerFactory func(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse) Runner

// DefaultRunnerFactory creates a runner that speaks the cchooks event and
// response vocabulary over an already-read payload
func DefaultRunnerFactory(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse,
) Runner {
	return &payloadRunner{pre: preHook, post: postHook, raw: rawHook}
}

// payloadRunner mirrors cchooks.Runner dispatch without owning stdin or
// the process exit
type payloadRunner struct {
	pre  func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface
	post func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface
	raw  func(context.Context, string) *cchooks.RawResponse
}

func (r *payloadRunner) Run(ctx context.Context, payload []byte, stdout io.Writer) error {
	if r.raw != nil {
		if resp := r.raw(ctx, string(payload)); resp != nil {
			if resp.Output != "" {
				_, err := io.WriteString(stdout, resp.Output)
				return err
			}
			return nil
		}
	}

	var response interface{}
	switch {
	case r.pre != nil:
		var event cchooks.PreToolUseEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to parse PreToolUse event: %w", err)
		}
		response = r.pre(ctx, &event)
	case r.post != nil:
		var event cchooks.PostToolUseEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to parse PostToolUse event: %w", err)
		}
		response = r.post(ctx, &event)
	default:
		return nil
	}

	if errResp, ok := response.(*cchooks.ErrorResponse); ok {
		return errResp.Error
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(response); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// runCCHooks reads stdin under the input deadline and only hands a payload
// for this hook's event to the cchooks runner. Anything else fails open.
func (h *BaseHook) runCCHooks(ctx context.Context, handler Handler) int {
	hc := h.context

	readCtx, cancel := context.WithTimeout(ctx, hc.InputTimeout())
	payload, err := readPayload(readCtx, hc.Stdin)
	cancel()

	var in *Input
	if err == nil {
		in, err = DecodeInput(payload)
	}
	if err == nil && in.HookEventName != string(h.event) {
		err = fmt.Errorf("expected %s input, got hook_event_name %q", h.event, in.HookEventName)
	}
	if err != nil {
		return h.failOpen(&Input{}, err)
	}

	// the typed cchooks events carry no cwd or session
	withContext := func(from *Input) *Input {
		from.SessionID = in.SessionID
		from.TranscriptPath = in.TranscriptPath
		from.CWD = in.CWD
		return from
	}

	var pre func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface
	var post func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface

	switch h.event {
	case PreToolUseEvent:
		pre = func(rctx context.Context, event *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface {
			call := withContext(InputFromPreToolUse(event))
			d := SafeHandle(rctx, handler, call, h.event, hc.ErrWriter())
			h.LogDecision(call, d)
			return PreToolResponse(d)
		}
	case PostToolUseEvent:
		post = func(rctx context.Context, event *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface {
			call := withContext(InputFromPostToolUse(event))
			d := SafeHandle(rctx, handler, call, h.event, hc.ErrWriter())
			h.LogDecision(call, d)
			return PostToolResponse(d)
		}
	}

	runner := hc.RunnerFactory(pre, post, h.CreateRawHandler())
	if err := runner.Run(ctx, payload, hc.OutWriter()); err != nil {
		return h.failOpen(in, err)
	}
	return ExitAllow
}

// failOpen writes the fail-open decision for an input that never reached the handler
func (h *BaseHook) failOpen(in *Input, err error) int {
	hc := h.context
	fmt.Fprintf(hc.ErrWriter(), "[%s] %v; allowing\n", h.event, err)
	d := FailOpen(h.event, err.Error())
	h.LogDecision(in, d)
	if werr := WriteOutput(hc.OutWriter(), d.Output()); werr != nil {
		fmt.Fprintf(hc.ErrWriter(), "[%s] %v\n", h.key, werr)
	}
	return d.ExitCode
}

// InputFromPreToolUse maps a cchooks event onto the native Input
func InputFromPreToolUse(event *cchooks.PreToolUseEvent) *Input {
	in := &Input{HookEventName: string(PreToolUseEvent)}
	if event == nil {
		return in
	}
	in.ToolName = event.ToolName

	switch event.ToolName {
	case constants.ToolBash:
		if bash, err := event.AsBash(); err == nil {
			in.ToolInput.Command = bash.Command
			in.ToolInput.Description = bash.Description
		}
	case constants.ToolWrite:
		if write, err := event.AsWrite(); err == nil {
			in.ToolInput.FilePath = write.FilePath
			in.ToolInput.Content = write.Content
		}
	case constants.ToolEdit:
		if edit, err := event.AsEdit(); err == nil {
			in.ToolInput.FilePath = edit.FilePath
			in.ToolInput.OldString = edit.OldString
			in.ToolInput.NewString = edit.NewString
		}
	}
	return in
}

// InputFromPostToolUse maps a cchooks event onto the native Input
func InputFromPostToolUse(event *cchooks.PostToolUseEvent) *Input {
	in := &Input{HookEventName: string(PostToolUseEvent)}
	if event == nil {
		return in
	}
	in.ToolName = event.ToolName

	switch event.ToolName {
	case constants.ToolWrite:
		if write, err := event.InputAsWrite(); err == nil {
			in.ToolInput.FilePath = write.FilePath
			in.ToolInput.Content = write.Content
		}
	case constants.ToolEdit:
		if edit, err := event.InputAsEdit(); err == nil {
			in.ToolInput.FilePath = edit.FilePath
			in.ToolInput.OldString = edit.OldString
			in.ToolInput.NewString = edit.NewString
		}
	}
	return in
}

// CreateRawHandler logs every incoming cchooks payload when logging is enabled
func (h *BaseHook) CreateRawHandler() func(context.Context, string) *cchooks.RawResponse {
	if !h.context.LoggingEnabled {
		return nil
	}

	return func(_ context.Context, rawJSON string) *cchooks.RawResponse {
		var rawEvent map[string]interface{}
		if err := json.Unmarshal([]byte(rawJSON), &rawEvent); err != nil {
			h.LogHookEvent("raw_event_parse_error", "unknown", map[string]interface{}{
				"raw_json_string": rawJSON,
				"error":           err.Error(),
			}, nil)
			return nil
		}

		eventName, _ := rawEvent["hook_event_name"].(string)
		toolName, _ := rawEvent["tool_name"].(string)
		h.LogHookEvent("raw_event", toolName, map[string]interface{}{
			"hook_event_name": eventName,
		}, rawEvent)

		// nil continues with typed dispatch
		return nil
	}
}
