package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
)

// ErrInputTimeout is returned when stdin is not fully read before the deadline
var ErrInputTimeout = errors.New("timed out waiting for hook input")

// EditOp is one replacement of a MultiEdit call
type EditOp struct {
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
}

// ToolInput is the union of the tool parameters the validators inspect
type ToolInput struct {
	Command     string   `json:"command,omitempty"`
	Description string   `json:"description,omitempty"`
	FilePath    string   `json:"file_path,omitempty"`
	Content     string   `json:"content,omitempty"`
	OldString   string   `json:"old_string,omitempty"`
	NewString   string   `json:"new_string,omitempty"`
	Edits       []EditOp `json:"edits,omitempty"`
}

// Input is the JSON document the host writes to stdin
type Input struct {
	HookEventName  string          `json:"hook_event_name,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	TranscriptPath string          `json:"transcript_path,omitempty"`
	CWD            string          `json:"cwd,omitempty"`
	ToolName       string          `json:"tool_name,omitempty"`
	ToolInput      ToolInput       `json:"tool_input"`
	ToolResponse   json.RawMessage `json:"tool_response,omitempty"`
	Prompt         string          `json:"prompt,omitempty"`
	Source         string          `json:"source,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Trigger        string          `json:"trigger,omitempty"`
}

// ProposedContent returns the text a Write or Edit call will introduce
func (in *Input) ProposedContent() string {
	ti := in.ToolInput
	if ti.Content != "" {
		return ti.Content
	}
	if ti.NewString != "" {
		return ti.NewString
	}
	var buf bytes.Buffer
	for i, e := range ti.Edits {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(e.NewString)
	}
	return buf.String()
}

// Messages accepts either a single string or a list of strings
type Messages []string

// UnmarshalJSON implements json.Unmarshaler
func (m *Messages) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = Messages{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("validation must be a string or a list of strings: %w", err)
	}
	*m = list
	return nil
}

// JSONSchema describes the string-or-list shape
func (Messages) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// HookSpecificOutput carries the validator messages
type HookSpecificOutput struct {
	HookEventName string   `json:"hookEventName"`
	Validation    Messages `json:"validation,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// Output is the JSON document written to stdout
type Output struct {
	Continue           bool                `json:"continue"`
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// DecodeInput parses one hook input document. Empty input decodes to a
// zero Input so lifecycle hooks can run without a payload.
func DecodeInput(data []byte) (*Input, error) {
	in := &Input{}
	if len(bytes.TrimSpace(data)) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("failed to parse hook input: %w", err)
	}
	return in, nil
}

// ReadInput reads all of r and decodes it, giving up when ctx is done.
// The reader goroutine is abandoned on timeout; the process exits shortly after.
func ReadInput(ctx context.Context, r io.Reader) (*Input, error) {
	data, err := readPayload(ctx, r)
	if err != nil {
		return nil, err
	}
	return DecodeInput(data)
}

func readPayload(ctx context.Context, r io.Reader) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		ch <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrInputTimeout, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read hook input: %w", res.err)
		}
		return res.data, nil
	}
}

// WriteOutput writes exactly one JSON object followed by a newline
func WriteOutput(w io.Writer, out Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal hook output: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write hook output: %w", err)
	}
	return nil
}

// ParseOutput decodes a hook output document the way the host does
func ParseOutput(data []byte) (Output, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return Output{}, fmt.Errorf("failed to parse hook output: %w", err)
	}
	return out, nil
}
