package core

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
	"github.com/brads3290/cchooks"
)

// MockFileSystem implements FileSystem in memory for testing
type MockFileSystem struct {
	Files    map[string][]byte
	Dirs     map[string]bool
	ReadErr  error
	WriteErr error
	MkdirErr error
	StatErr  error
	mu       sync.RWMutex
}

// NewMockFileSystem creates a new mock filesystem for testing
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string][]byte),
		Dirs:  make(map[string]bool),
	}
}

// ReadFile returns the in-memory contents of name
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.Files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

// WriteFile writes data to a mock file in memory
func (m *MockFileSystem) WriteFile(name string, data []byte, _ os.FileMode) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Dirs[filepath.Dir(name)] = true
	m.Files[name] = append([]byte(nil), data...)
	return nil
}

// MkdirAll records the directory
func (m *MockFileSystem) MkdirAll(path string, _ os.FileMode) error {
	if m.MkdirErr != nil {
		return m.MkdirErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirs[path] = true
	return nil
}

// Stat returns file information for the specified path (mock implementation)
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if data, exists := m.Files[name]; exists {
		return &mockFileInfo{name: filepath.Base(name), size: int64(len(data))}, nil
	}
	if m.Dirs[name] {
		return &mockFileInfo{name: filepath.Base(name), dir: true}, nil
	}
	return nil, os.ErrNotExist
}

type mockFileInfo struct {
	name string
	size int64
	dir  bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.dir }
func (m *mockFileInfo) Sys() interface{}   { return nil }
func (m *mockFileInfo) Mode() os.FileMode {
	if m.dir {
		return os.ModeDir | 0o755
	}
	return 0o644
}

// MockRunner records the cchooks handlers instead of reading stdin
type MockRunner struct {
	PreToolUse  func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface
	PostToolUse func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface
	RawHook     func(context.Context, string) *cchooks.RawResponse
	RunCalled   bool
	Payload     []byte
}

// Run records the payload it was handed
func (m *MockRunner) Run(_ context.Context, payload []byte, _ io.Writer) error {
	m.RunCalled = true
	m.Payload = payload
	return nil
}

// MockRunnerRecorder collects the runners a test context creates
type MockRunnerRecorder struct {
	Runners []*MockRunner
}

// Factory returns a RunnerFactory that records into r
func (r *MockRunnerRecorder) Factory() RunnerFactory {
	return func(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
		postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
		rawHook func(context.Context, string) *cchooks.RawResponse,
	) Runner {
		mr := &MockRunner{PreToolUse: preHook, PostToolUse: postHook, RawHook: rawHook}
		r.Runners = append(r.Runners, mr)
		return mr
	}
}

// MockRunnerFactory creates MockRunner instances
func MockRunnerFactory(preHook func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	postHook func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
	rawHook func(context.Context, string) *cchooks.RawResponse,
) Runner {
	return &MockRunner{PreToolUse: preHook, PostToolUse: postHook, RawHook: rawHook}
}

// TestStreams holds the buffers a test context writes to
type TestStreams struct {
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
}

// TestHookContext creates a context suitable for testing: in-memory
// filesystem, empty environment, fixed clock and buffered streams.
func TestHookContext(settingsChecker func(string) bool) *HookContext {
	if settingsChecker == nil {
		settingsChecker = func(string) bool { return true }
	}

	return &HookContext{
		FileSystem:      NewMockFileSystem(),
		RunnerFactory:   MockRunnerFactory,
		SettingsChecker: settingsChecker,
		Config:          config.Default(),
		Getenv:          func(string) string { return "" },
		Now:             func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:           strings.NewReader(""),
		Stdout:          &bytes.Buffer{},
		Stderr:          &bytes.Buffer{},
		Protocol:        ProtocolNative,
		LoggingFormat:   config.LoggingFormatJSONL,
	}
}

// Streams returns the buffers of a context built by TestHookContext
func (c *HookContext) Streams() TestStreams {
	out, _ := c.Stdout.(*bytes.Buffer)
	errOut, _ := c.Stderr.(*bytes.Buffer)
	return TestStreams{Stdout: out, Stderr: errOut}
}
