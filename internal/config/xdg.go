package config

import (
	"os"
	"path/filepath"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
)

// XDGConfig handles XDG Base Directory Specification compliant configuration
type XDGConfig struct {
	BaseDir string
}

// NewXDGConfig creates a new XDG configuration manager
func NewXDGConfig() *XDGConfig {
	baseDir := os.Getenv("XDG_CONFIG_HOME")
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			baseDir = ".config"
		} else {
			baseDir = filepath.Join(homeDir, ".config")
		}
	}

	return &XDGConfig{
		BaseDir: filepath.Join(baseDir, constants.XDGAppDir),
	}
}

// GetConfigDir returns the XDG configuration directory
func (x *XDGConfig) GetConfigDir() string {
	return x.BaseDir
}

// GlobalConfigPaths returns the candidate global config files in priority order
func (x *XDGConfig) GlobalConfigPaths() []string {
	paths := make([]string, 0, len(supportedFormats))
	for _, ext := range supportedFormats {
		paths = append(paths, filepath.Join(x.BaseDir, "config."+ext))
	}
	return paths
}
