package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogRotationConfig holds configuration for log rotation
type LogRotationConfig struct {
	MaxAge     int  `toml:"max_age" yaml:"max_age"`         // Maximum number of days to retain log files
	MaxSize    int  `toml:"max_size" yaml:"max_size"`       // Maximum size in megabytes before rotation
	MaxBackups int  `toml:"max_backups" yaml:"max_backups"` // Maximum number of backup files to retain
	Compress   bool `toml:"compress" yaml:"compress"`       // Whether to compress rotated files
}

// DefaultLogRotationConfig returns sensible defaults for log rotation
func DefaultLogRotationConfig() LogRotationConfig {
	return LogRotationConfig{
		MaxAge:     30,
		MaxSize:    10,
		MaxBackups: 5,
		Compress:   true,
	}
}

// LoggingConfig controls the opt-in structured hook event log
type LoggingConfig struct {
	Enabled  bool              `toml:"enabled" yaml:"enabled"`
	Format   string            `toml:"format" yaml:"format"`
	Dir      string            `toml:"dir" yaml:"dir"`
	Rotation LogRotationConfig `toml:"rotation" yaml:"rotation"`
}

// Logging format constants
const (
	LoggingFormatJSONL  = "jsonl"
	LoggingFormatPretty = "pretty"
)

// IsValidLoggingFormat returns true if the provided format is supported.
func IsValidLoggingFormat(f string) bool {
	return f == LoggingFormatJSONL || f == LoggingFormatPretty
}

// GetLogPath returns the standard log path for a given hook key
func GetLogPath(logDir, hookKey string) string {
	return filepath.Join(logDir, fmt.Sprintf("%s.log", hookKey))
}

// SetupLogRotation configures log rotation for a given log file path.
// Returns nil when the directory cannot be created.
func SetupLogRotation(logPath string, cfg LogRotationConfig) *lumberjack.Logger {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		log.Printf("Failed to create log directory: %v", err)
		return nil
	}

	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

// CleanupOldLogs removes .log and .gz files in logDir older than maxAgeDays.
// Lumberjack only prunes backups of files it has open, so stale logs of
// hooks that no longer run are swept here.
func CleanupOldLogs(logDir string, maxAgeDays int) error {
	if maxAgeDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".log") && !strings.HasSuffix(name, ".gz") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			log.Printf("Failed to remove old log file %s: %v", name, err)
		}
	}
	return nil
}

// defaultLogDir is relative to the project directory
func defaultLogDir(projectDir string) string {
	return constants.HooksDir(projectDir)
}
