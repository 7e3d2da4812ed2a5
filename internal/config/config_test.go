package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	project := t.TempDir()
	cfg, err := LoadWithEnv(project, &XDGConfig{BaseDir: t.TempDir()}, noEnv)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Timeout() != DefaultInputTimeout {
		t.Errorf("Expected default timeout, got %v", cfg.Timeout())
	}
	if !slices.Equal(cfg.StrictExtensions, []string{".py"}) {
		t.Errorf("Expected only .py to be strict by default, got %v", cfg.StrictExtensions)
	}
	if got := cfg.LearningDirFor(project); got != filepath.Join(project, ".claude", "learning") {
		t.Errorf("Unexpected learning dir %s", got)
	}
	if cfg.Logging.Dir != filepath.Join(project, ".claude", "hooks") {
		t.Errorf("Unexpected log dir %s", cfg.Logging.Dir)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("Expected no sources, got %v", cfg.Sources)
	}
}

func TestLoadLayering(t *testing.T) {
	project := t.TempDir()
	xdg := &XDGConfig{BaseDir: t.TempDir()}

	writeFile(t, filepath.Join(xdg.BaseDir, "config.yaml"), `
input_timeout: 9
disabled_hooks: [stop]
learning_dir: /global/learning
logging:
  enabled: true
  format: pretty
`)
	writeFile(t, filepath.Join(project, ".claude", "hooks", "kailash-hooks.toml"), `
input_timeout = 3
strict_extensions = [".py", ".pyi"]

[logging.rotation]
max_size = 1
`)

	cfg, err := LoadWithEnv(project, xdg, noEnv)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Timeout() != 3*time.Second {
		t.Errorf("Expected project timeout to win, got %v", cfg.Timeout())
	}
	if cfg.IsHookEnabled("stop") {
		t.Error("Expected global disabled_hooks to survive project overlay")
	}
	if got := cfg.LearningDirFor(project); got != "/global/learning" {
		t.Errorf("Expected global learning dir, got %s", got)
	}
	if !cfg.Logging.Enabled || cfg.Logging.Format != LoggingFormatPretty {
		t.Errorf("Expected global logging settings, got %+v", cfg.Logging)
	}
	if cfg.Logging.Rotation.MaxSize != 1 {
		t.Errorf("Expected project rotation override, got %+v", cfg.Logging.Rotation)
	}
	if !slices.Contains(cfg.StrictExtensions, ".pyi") {
		t.Errorf("Expected .pyi to be strict, got %v", cfg.StrictExtensions)
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("Expected two sources, got %v", cfg.Sources)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	project := t.TempDir()
	env := map[string]string{
		"KAILASH_LEARNING_DIR":   "state/learn",
		"KAILASH_HOOKS_DISABLED": "session-start, stop ,",
		"KAILASH_HOOKS_TIMEOUT":  "7",
	}
	cfg, err := LoadWithEnv(project, nil, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := cfg.LearningDirFor(project); got != filepath.Join(project, "state", "learn") {
		t.Errorf("Expected relative learning dir resolved against project, got %s", got)
	}
	other := t.TempDir()
	if got := cfg.LearningDirFor(other); got != filepath.Join(other, "state", "learn") {
		t.Errorf("Expected relative learning dir to follow the project it is resolved for, got %s", got)
	}
	if cfg.IsHookEnabled("session-start") || cfg.IsHookEnabled("stop") {
		t.Errorf("Expected hooks disabled, got %v", cfg.DisabledHooks)
	}
	if !cfg.IsHookEnabled("pre-tool-use") {
		t.Error("Expected pre-tool-use to stay enabled")
	}
	if cfg.Timeout() != 7*time.Second {
		t.Errorf("Expected 7s timeout, got %v", cfg.Timeout())
	}
}

func TestLoadInvalid(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ".claude", "hooks", "kailash-hooks.yaml"), "input_timeout: [not a number\n")

	cfg, err := LoadWithEnv(project, nil, noEnv)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if cfg == nil || cfg.Timeout() != DefaultInputTimeout {
		t.Error("Expected usable defaults alongside the error")
	}

	_, err = LoadWithEnv(t.TempDir(), nil, func(k string) string {
		if k == "KAILASH_HOOKS_TIMEOUT" {
			return "soon"
		}
		return ""
	})
	if err == nil {
		t.Error("Expected error for invalid timeout override")
	}
}

func TestSetupLogRotation(t *testing.T) {
	path := GetLogPath(filepath.Join(t.TempDir(), "nested"), "pre-tool-use")
	logger := SetupLogRotation(path, DefaultLogRotationConfig())
	if logger == nil {
		t.Fatal("Expected logger")
	}
	defer func() { _ = logger.Close() }()

	if _, err := logger.Write([]byte("line\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected log file at %s: %v", path, err)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "fresh.log")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{old, fresh, other} {
		writeFile(t, p, "x")
	}
	past := time.Now().AddDate(0, 0, -40)
	for _, p := range []string{old, other} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	if err := CleanupOldLogs(dir, 30); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old log removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected fresh log kept")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("Expected non-log file kept")
	}
}
