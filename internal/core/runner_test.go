package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDecideInvariant(t *testing.T) {
	testCases := []struct {
		name     string
		findings []Finding
		cont     bool
		code     int
	}{
		{"no findings", nil, true, ExitAllow},
		{"warn only", []Finding{NewFinding(SeverityWarn, "w")}, true, ExitAllow},
		{"critical is advisory", []Finding{NewFinding(SeverityCritical, "c"), NewFinding(SeverityInfo, "i")}, true, ExitAllow},
		{"block", []Finding{NewFinding(SeverityWarn, "w"), NewFinding(SeverityBlock, "b")}, false, ExitBlock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(PreToolUseEvent, tc.findings)
			if d.Continue != tc.cont || d.ExitCode != tc.code {
				t.Errorf("Expected continue=%v exit=%d, got continue=%v exit=%d", tc.cont, tc.code, d.Continue, d.ExitCode)
			}
			hasBlock := false
			for _, f := range d.Findings {
				hasBlock = hasBlock || f.IsBlocking()
			}
			if !d.Continue != (d.ExitCode == ExitBlock && hasBlock) {
				t.Error("continue=false must hold iff exit=2 with a BLOCK finding")
			}
		})
	}
}

func TestFindingString(t *testing.T) {
	f := NewFinding(SeverityWarn, "Stub marker %s", "TODO").At("a.py", 3)
	if got := f.String(); got != "WARN: Stub marker TODO (line 3)" {
		t.Errorf("Unexpected rendering %q", got)
	}
	if got := NewFinding(SeverityInfo, "ok").String(); got != "INFO: ok" {
		t.Errorf("Unexpected rendering %q", got)
	}
}

func TestOutputRoundTrip(t *testing.T) {
	decisions := []Decision{
		Decide(PreToolUseEvent, []Finding{NewFinding(SeverityBlock, "stop"), NewFinding(SeverityWarn, "hmm")}),
		Decide(PostToolUseEvent, nil),
		Allow(SessionStartEvent, "Models: none"),
		FailOpen(PreToolUseEvent, "timed out"),
	}

	for _, d := range decisions {
		var buf bytes.Buffer
		if err := WriteOutput(&buf, d.Output()); err != nil {
			t.Fatalf("WriteOutput failed: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("Expected exactly one line, got %q", buf.String())
		}
		if err := ValidateOutput(buf.Bytes()); err != nil {
			t.Errorf("Output does not match schema: %v", err)
		}

		parsed, err := ParseOutput(buf.Bytes())
		if err != nil {
			t.Fatalf("ParseOutput failed: %v", err)
		}
		if !reflect.DeepEqual(parsed, d.Output()) {
			t.Errorf("Round trip mismatch: %+v vs %+v", parsed, d.Output())
		}
		if parsed.Continue != d.Continue {
			t.Error("continue flag changed in round trip")
		}
	}
}

func TestParseOutputStringValidation(t *testing.T) {
	out, err := ParseOutput([]byte(`{"continue":true,"hookSpecificOutput":{"hookEventName":"PreToolUse","validation":"single"}}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out.HookSpecificOutput.Validation) != 1 || out.HookSpecificOutput.Validation[0] != "single" {
		t.Errorf("Expected single message list, got %v", out.HookSpecificOutput.Validation)
	}
	if err := ValidateOutput([]byte(`{"continue":true,"hookSpecificOutput":{"hookEventName":"PreToolUse","validation":"single"}}`)); err != nil {
		t.Errorf("String validation should satisfy schema: %v", err)
	}
	if err := ValidateOutput([]byte(`{"hookSpecificOutput":{"hookEventName":"Bogus"}}`)); err == nil {
		t.Error("Expected schema failure for missing continue and unknown event")
	}
}

func TestDecodeInput(t *testing.T) {
	in, err := DecodeInput([]byte("  \n"))
	if err != nil || in == nil {
		t.Fatalf("Expected empty input to decode, got %v", err)
	}

	in, err = DecodeInput([]byte(`{"tool_name":"MultiEdit","tool_input":{"file_path":"a.py","edits":[{"old_string":"a","new_string":"x"},{"old_string":"b","new_string":"y"}]},"cwd":"/p"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if in.CWD != "/p" || in.ToolInput.FilePath != "a.py" {
		t.Errorf("Unexpected input %+v", in)
	}
	if got := in.ProposedContent(); got != "x\ny" {
		t.Errorf("Expected joined edits, got %q", got)
	}

	if _, err := DecodeInput([]byte("{not json")); err == nil {
		t.Error("Expected parse error")
	}
}

// blockingReader never returns, simulating a host that keeps stdin open
type blockingReader struct{ done chan struct{} }

func (b blockingReader) Read([]byte) (int, error) {
	<-b.done
	return 0, io.EOF
}

func TestExecuteFailOpen(t *testing.T) {
	never := func(context.Context, *Input) (Decision, error) {
		t.Error("handler must not run")
		return Decision{}, nil
	}

	t.Run("timeout", func(t *testing.T) {
		r := blockingReader{done: make(chan struct{})}
		defer close(r.done)
		var stdout, stderr bytes.Buffer

		start := time.Now()
		code := Execute(context.Background(), never, RunOptions{
			Event: PreToolUseEvent, Stdin: r, Stdout: &stdout, Stderr: &stderr, Timeout: 20 * time.Millisecond,
		})
		if time.Since(start) > 2*time.Second {
			t.Error("Execute did not honor the input deadline")
		}
		assertFailOpen(t, code, stdout.Bytes(), stderr.String())
		if !strings.Contains(stderr.String(), "timed out") {
			t.Errorf("Expected timeout diagnostic, got %q", stderr.String())
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := Execute(context.Background(), never, RunOptions{
			Event: PreToolUseEvent, Stdin: strings.NewReader("{oops"), Stdout: &stdout, Stderr: &stderr,
		})
		assertFailOpen(t, code, stdout.Bytes(), stderr.String())
	})

	t.Run("handler error", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := Execute(context.Background(), func(context.Context, *Input) (Decision, error) {
			return Decision{}, errors.New("disk on fire")
		}, RunOptions{Event: PostToolUseEvent, Stdin: strings.NewReader("{}"), Stdout: &stdout, Stderr: &stderr})
		assertFailOpen(t, code, stdout.Bytes(), stderr.String())
	})

	t.Run("handler panic", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := Execute(context.Background(), func(context.Context, *Input) (Decision, error) {
			panic("boom")
		}, RunOptions{Event: PostToolUseEvent, Stdin: strings.NewReader("{}"), Stdout: &stdout, Stderr: &stderr})
		assertFailOpen(t, code, stdout.Bytes(), stderr.String())
		if !strings.Contains(stderr.String(), "boom") {
			t.Errorf("Expected panic diagnostic, got %q", stderr.String())
		}
	})
}

func assertFailOpen(t *testing.T, code int, stdout []byte, stderr string) {
	t.Helper()
	if code != ExitFailOpen {
		t.Errorf("Expected fail-open exit %d, got %d", ExitFailOpen, code)
	}
	out, err := ParseOutput(stdout)
	if err != nil {
		t.Fatalf("Expected one valid output object, got %q: %v", stdout, err)
	}
	if !out.Continue {
		t.Error("Fail-open decision must continue")
	}
	if stderr == "" {
		t.Error("Expected a stderr diagnostic")
	}
}

func TestExecuteIdempotent(t *testing.T) {
	handler := func(_ context.Context, in *Input) (Decision, error) {
		if strings.Contains(in.ToolInput.Command, "rm") {
			return Decide(PreToolUseEvent, []Finding{NewFinding(SeverityBlock, "rm")}), nil
		}
		return Decide(PreToolUseEvent, nil), nil
	}

	var outputs []string
	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		code := Execute(context.Background(), handler, RunOptions{
			Event: PreToolUseEvent, Stdin: strings.NewReader(`{"tool_input":{"command":"rm -rf /"}}`),
			Stdout: &stdout, Stderr: &stderr,
		})
		if code != ExitBlock {
			t.Errorf("Expected exit 2, got %d", code)
		}
		outputs = append(outputs, stdout.String())
	}
	if outputs[0] != outputs[1] {
		t.Errorf("Expected identical outputs, got %q and %q", outputs[0], outputs[1])
	}
}
