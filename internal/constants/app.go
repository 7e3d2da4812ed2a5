package constants

import "path/filepath"

// Application constants - single source of truth for naming throughout the codebase
const (
	// Core application identity
	BinaryName = "kailash-hooks"

	// Configuration files
	ConfigFileBase = "kailash-hooks"
	XDGAppDir      = "kailash-hooks"

	// Environment files
	EnvFileName        = ".env"
	EnvExampleFileName = ".env.example"

	// Learning state
	ObservationsFile = "observations.jsonl"
	InstinctsFile    = "instincts.yaml"
	CheckpointsDir   = "checkpoints"
	SkillsDir        = "skills"

	// Directory paths
	ClaudeDir      = ".claude"
	HooksSubDir    = "hooks"
	LearningSubDir = "learning"

	// Command patterns for settings
	CommandPattern = BinaryName + " run"
)

// Environment variables consumed by the hooks
const (
	EnvLearningDir   = "KAILASH_LEARNING_DIR"
	EnvHooksDisabled = "KAILASH_HOOKS_DISABLED"
	EnvHooksTimeout  = "KAILASH_HOOKS_TIMEOUT"
	EnvProjectDir    = "CLAUDE_PROJECT_DIR"
)

// Tool names as sent by the host in tool_name
const (
	ToolBash      = "Bash"
	ToolWrite     = "Write"
	ToolEdit      = "Edit"
	ToolMultiEdit = "MultiEdit"
)

// HooksDir returns <baseDir>/.claude/hooks
func HooksDir(baseDir string) string {
	return filepath.Join(baseDir, ClaudeDir, HooksSubDir)
}

// LearningDir returns the default learning directory under baseDir
func LearningDir(baseDir string) string {
	return filepath.Join(baseDir, ClaudeDir, LearningSubDir)
}
