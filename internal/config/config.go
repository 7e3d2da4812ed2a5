// Package config loads the layered hook configuration: built-in defaults,
// then the global XDG file, then the project file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	yaml "gopkg.in/yaml.v3"
)

// DefaultInputTimeout bounds the stdin read of every hook
const DefaultInputTimeout = 5 * time.Second

var supportedFormats = []string{"toml", "yaml", "yml"}

// Config is the effective configuration for one hook invocation
type Config struct {
	// InputTimeout is the stdin read budget in seconds
	InputTimeout     int               `toml:"input_timeout" yaml:"input_timeout"`
	StrictExtensions []string          `toml:"strict_extensions" yaml:"strict_extensions"`
	DisabledHooks    []string          `toml:"disabled_hooks" yaml:"disabled_hooks"`
	LearningDir      string            `toml:"learning_dir" yaml:"learning_dir"`
	Logging          LoggingConfig     `toml:"logging" yaml:"logging"`
	Observations     LogRotationConfig `toml:"observations" yaml:"observations"`

	// Sources lists the files that contributed, lowest precedence first
	Sources []string `toml:"-" yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		InputTimeout:     int(DefaultInputTimeout / time.Second),
		StrictExtensions: []string{".py"},
		Logging: LoggingConfig{
			Format:   LoggingFormatJSONL,
			Rotation: DefaultLogRotationConfig(),
		},
		Observations: LogRotationConfig{MaxSize: 5, MaxBackups: 3},
	}
}

// ProjectConfigPaths returns the candidate project config files in priority order
func ProjectConfigPaths(projectDir string) []string {
	dir := constants.HooksDir(projectDir)
	paths := make([]string, 0, len(supportedFormats))
	for _, ext := range supportedFormats {
		paths = append(paths, filepath.Join(dir, constants.ConfigFileBase+"."+ext))
	}
	return paths
}

// Load builds the configuration for projectDir using the process environment
func Load(projectDir string) (*Config, error) {
	return LoadWithEnv(projectDir, NewXDGConfig(), os.Getenv)
}

// LoadWithEnv is Load with injectable XDG location and environment lookup
func LoadWithEnv(projectDir string, xdg *XDGConfig, getenv func(string) string) (*Config, error) {
	cfg := Default()

	layers := [][]string{ProjectConfigPaths(projectDir)}
	if xdg != nil {
		layers = [][]string{xdg.GlobalConfigPaths(), ProjectConfigPaths(projectDir)}
	}
	for _, candidates := range layers {
		path, err := firstExisting(candidates)
		if err != nil {
			return cfg, err
		}
		if path == "" {
			continue
		}
		if err := decodeFile(path, cfg); err != nil {
			return cfg, err
		}
		cfg.Sources = append(cfg.Sources, path)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	cfg.resolvePaths(projectDir)
	return cfg, nil
}

func firstExisting(paths []string) (string, error) {
	for _, p := range paths {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat config %s: %w", p, err)
		}
	}
	return "", nil
}

// decodeFile overlays the file at path onto cfg; unset keys keep their values
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 - controlled config paths
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := strings.TrimSpace(getenv(constants.EnvLearningDir)); v != "" {
		c.LearningDir = v
	}
	if v := strings.TrimSpace(getenv(constants.EnvHooksDisabled)); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.DisabledHooks = append(c.DisabledHooks, s)
			}
		}
	}
	if v := strings.TrimSpace(getenv(constants.EnvHooksTimeout)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q: must be a positive number of seconds", constants.EnvHooksTimeout, v)
		}
		c.InputTimeout = n
	}
	return nil
}

// LearningDirFor resolves the learning directory for one project. A
// relative learning_dir is taken relative to that project, so it follows
// the cwd of each hook input rather than the directory the config was
// loaded from.
func (c *Config) LearningDirFor(projectDir string) string {
	switch {
	case c == nil || c.LearningDir == "":
		return constants.LearningDir(projectDir)
	case filepath.IsAbs(c.LearningDir):
		return c.LearningDir
	default:
		return filepath.Join(projectDir, c.LearningDir)
	}
}

func (c *Config) resolvePaths(projectDir string) {
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaultLogDir(projectDir)
	} else if !filepath.IsAbs(c.Logging.Dir) {
		c.Logging.Dir = filepath.Join(projectDir, c.Logging.Dir)
	}
	if !IsValidLoggingFormat(c.Logging.Format) {
		c.Logging.Format = LoggingFormatJSONL
	}
}

// Timeout returns the stdin read budget
func (c *Config) Timeout() time.Duration {
	if c.InputTimeout <= 0 {
		return DefaultInputTimeout
	}
	return time.Duration(c.InputTimeout) * time.Second
}

// IsHookEnabled reports whether key is absent from the disabled list
func (c *Config) IsHookEnabled(key string) bool {
	for _, d := range c.DisabledHooks {
		if d == key {
			return false
		}
	}
	return true
}

