// Package core provides the hook interfaces, the stdin/stdout protocol, the
// fail-open execution boundary and the shared execution context.
package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
)

// Wire protocols a hook can speak
const (
	ProtocolNative  = "native"
	ProtocolCCHooks = "cchooks"
)

// Hook defines the interface that all hook implementations must satisfy
type Hook interface {
	// Key returns the unique identifier for this hook
	Key() string
	// Name returns the human-readable name for this hook
	Name() string
	// Description returns a description of what this hook does
	Description() string
	// Event returns the host event this hook is registered for
	Event() EventType
	// Handle decides one invocation; it must not write to stdout
	Handle(ctx context.Context, in *Input) (Decision, error)
	// Run reads stdin, writes the decision and returns the exit code
	Run(ctx context.Context) int
	// IsEnabled checks if this hook is enabled in the current context
	IsEnabled() bool
}

// BaseHook provides common functionality for all hooks
type BaseHook struct {
	key         string
	name        string
	description string
	event       EventType
	context     *HookContext
}

// NewBaseHook creates a new BaseHook with the given metadata
func NewBaseHook(key, name, description string, event EventType, ctx *HookContext) *BaseHook {
	if ctx == nil {
		ctx = DefaultHookContext()
	}
	return &BaseHook{
		key:         key,
		name:        name,
		description: description,
		event:       event,
		context:     ctx,
	}
}

// Key returns the hook key
func (h *BaseHook) Key() string { return h.key }

// Name returns the hook name
func (h *BaseHook) Name() string { return h.name }

// Description returns the hook description
func (h *BaseHook) Description() string { return h.description }

// Event returns the host event
func (h *BaseHook) Event() EventType { return h.event }

// Context returns the hook context
func (h *BaseHook) Context() *HookContext { return h.context }

// IsEnabled consults the settings checker and the disabled list in config
func (h *BaseHook) IsEnabled() bool {
	if h.context.Config != nil && !h.context.Config.IsHookEnabled(h.key) {
		return false
	}
	return h.context.SettingsChecker(h.key)
}

// StandardRun executes handler over the configured protocol.
// Concrete hooks call this from Run.
func (h *BaseHook) StandardRun(ctx context.Context, handler Handler) int {
	hc := h.context
	if !h.IsEnabled() {
		d := Allow(h.event, fmt.Sprintf("%s disabled", h.key))
		if err := WriteOutput(hc.OutWriter(), d.Output()); err != nil {
			fmt.Fprintf(hc.ErrWriter(), "[%s] %v\n", h.key, err)
		}
		return d.ExitCode
	}

	if hc.Protocol == ProtocolCCHooks {
		if ev, ok := LookupEvent(h.event); ok && ev.SupportedByCCHooks {
			return h.runCCHooks(ctx, handler)
		}
	}

	return Execute(ctx, handler, RunOptions{
		Event:      h.event,
		Stdin:      hc.Stdin,
		Stdout:     hc.Stdout,
		Stderr:     hc.Stderr,
		Timeout:    hc.InputTimeout(),
		OnDecision: h.LogDecision,
	})
}

// FileSystem interface for dependency injection in testing
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
}

// RealFileSystem implements FileSystem using the real filesystem
type RealFileSystem struct{}

// ReadFile reads the named file
func (fs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) // #nosec G304 - paths come from the host tool call
}

// WriteFile writes data to a file with the specified permissions
func (fs *RealFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// MkdirAll creates a directory and its parents
func (fs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Stat returns file information for the specified path
func (fs *RealFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// HookContext provides dependencies that hooks may need
type HookContext struct {
	FileSystem      FileSystem
	RunnerFactory   RunnerFactory
	SettingsChecker func(string) bool
	Config          *config.Config
	Getenv          func(string) string
	Now             func() time.Time
	Stdin           io.Reader
	Stdout          io.Writer
	Stderr          io.Writer
	Protocol        string
	LoggingEnabled  bool
	LoggingDir      string
	LoggingFormat   string
}

// DefaultHookContext returns a context with real implementations
func DefaultHookContext() *HookContext {
	return &HookContext{
		FileSystem:      &RealFileSystem{},
		RunnerFactory:   DefaultRunnerFactory,
		SettingsChecker: defaultIsHookEnabled,
		Config:          config.Default(),
		Getenv:          os.Getenv,
		Now:             time.Now,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Protocol:        ProtocolNative,
		LoggingEnabled:  false,
		LoggingDir:      constants.HooksDir("."),
		LoggingFormat:   config.LoggingFormatJSONL,
	}
}

// defaultIsHookEnabled is the default implementation - always returns true
func defaultIsHookEnabled(_ string) bool {
	return true
}

// InputTimeout returns the stdin read budget
func (c *HookContext) InputTimeout() time.Duration {
	if c.Config == nil {
		return DefaultInputTimeout
	}
	return c.Config.Timeout()
}

// ProjectDir resolves the directory a hook invocation applies to:
// the input cwd, then CLAUDE_PROJECT_DIR, then the process working directory.
func (c *HookContext) ProjectDir(in *Input) string {
	if in != nil && in.CWD != "" {
		return in.CWD
	}
	if c.Getenv != nil {
		if dir := c.Getenv(constants.EnvProjectDir); dir != "" {
			return dir
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// LearningDir returns the learning state directory for projectDir
func (c *HookContext) LearningDir(projectDir string) string {
	return c.Config.LearningDirFor(projectDir)
}

// OutWriter returns Stdout or the process stdout
func (c *HookContext) OutWriter() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// ErrWriter returns Stderr or the process stderr
func (c *HookContext) ErrWriter() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

// Timestamp returns the current time from the injected clock
func (c *HookContext) Timestamp() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
