package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultInputTimeout applies when RunOptions.Timeout is unset
const DefaultInputTimeout = 5 * time.Second

// Handler turns one decoded input into a decision
type Handler func(ctx context.Context, in *Input) (Decision, error)

// RunOptions wires Execute to its streams
type RunOptions struct {
	Event   EventType
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration
	// OnDecision observes the final decision before it is written
	OnDecision func(in *Input, d Decision)
}

func (o RunOptions) withDefaults() RunOptions {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultInputTimeout
	}
	return o
}

// Execute runs one hook invocation end to end and returns the process exit
// code. Input timeouts, malformed input, handler errors and panics all
// degrade to a fail-open decision; exactly one output object is written.
func Execute(ctx context.Context, handler Handler, opts RunOptions) int {
	opts = opts.withDefaults()

	readCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	in, err := ReadInput(readCtx, opts.Stdin)
	cancel()

	var d Decision
	if err != nil {
		fmt.Fprintf(opts.Stderr, "[%s] %v; allowing\n", opts.Event, err)
		d = FailOpen(opts.Event, err.Error())
		in = &Input{}
	} else {
		d = SafeHandle(ctx, handler, in, opts.Event, opts.Stderr)
	}

	if opts.OnDecision != nil {
		opts.OnDecision(in, d)
	}

	if err := WriteOutput(opts.Stdout, d.Output()); err != nil {
		fmt.Fprintf(opts.Stderr, "[%s] %v\n", opts.Event, err)
	}
	if d.Blocked() {
		fmt.Fprintf(opts.Stderr, "BLOCKED: %s\n", d.Reason())
	}
	return d.ExitCode
}

// SafeHandle calls handler and converts any error or panic into FailOpen
func SafeHandle(ctx context.Context, handler Handler, in *Input, event EventType, stderr io.Writer) (d Decision) {
	if stderr == nil {
		stderr = os.Stderr
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "[%s] hook panicked: %v; allowing\n", event, r)
			d = FailOpen(event, fmt.Sprintf("internal error: %v", r))
		}
	}()

	d, err := handler(ctx, in)
	if err != nil {
		fmt.Fprintf(stderr, "[%s] %v; allowing\n", event, err)
		return FailOpen(event, err.Error())
	}
	if d.Event == "" {
		d.Event = event
	}
	return d
}
