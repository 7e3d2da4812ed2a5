package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/settings"
	"github.com/urfave/cli/v3"
)

// NewRunCmd creates the run command. newContext supplies the streams and
// filesystem of the invocation; nil uses the process defaults.
func NewRunCmd(newContext func() *core.HookContext) *cli.Command {
	if newContext == nil {
		newContext = core.DefaultHookContext
	}
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a specific hook",
		ArgsUsage: "[hook-key]",
		Description: `Run one hook for the current host event. Reads the event JSON on stdin,
writes one decision JSON on stdout and exits 0 (allow), 2 (block) or 1 (fail-open).`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Value:   false,
				Usage:   "Enable detailed logging to .claude/hooks/<hook-key>.log",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: config.LoggingFormatJSONL,
				Usage: "Log output format: jsonl or pretty",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Seconds to wait for hook input on stdin (overrides config)",
			},
			&cli.StringFlag{
				Name:  "protocol",
				Value: core.ProtocolNative,
				Usage: "Wire protocol: native or cchooks",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Project directory (default: $CLAUDE_PROJECT_DIR or the working directory)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return fmt.Errorf("exactly one argument required: [hook-key]")
			}
			key := args[0]

			hc := newContext()
			logging, err := configureRun(cmd, hc)
			if err != nil {
				return err
			}

			core.SetGlobalContext(hc)
			if logging.Enabled {
				core.SetGlobalLoggingConfig(true, logging.Dir, logging.Format)
				if err := config.CleanupOldLogs(logging.Dir, logging.Rotation.MaxAge); err != nil && !errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintf(hc.ErrWriter(), "Warning: Failed to cleanup old logs: %v\n", err)
				}
			}
			h, err := core.CreateHook(key)
			if err != nil {
				return fmt.Errorf("hook '%s' not found.\nAvailable hooks: %s", key, strings.Join(core.GetHookKeys(), ", "))
			}

			if code := h.Run(ctx); code != core.ExitAllow {
				return &ExitStatus{Code: code}
			}
			return nil
		},
	}
}

// configureRun layers config, settings and flags onto hc and returns the
// effective logging config. Config and settings problems are reported on
// stderr and never stop the hook.
func configureRun(cmd *cli.Command, hc *core.HookContext) (config.LoggingConfig, error) {
	protocol := cmd.String("protocol")
	if protocol != core.ProtocolNative && protocol != core.ProtocolCCHooks {
		return config.LoggingConfig{}, fmt.Errorf("invalid --protocol '%s'. Valid: native, cchooks", protocol)
	}
	hc.Protocol = protocol

	projectDir := cmd.String("dir")
	if projectDir == "" {
		projectDir = hc.ProjectDir(nil)
	}

	cfg, err := config.LoadWithEnv(projectDir, config.NewXDGConfig(), hc.Getenv)
	if err != nil {
		fmt.Fprintf(hc.ErrWriter(), "Warning: %v\n", err)
	}
	if cmd.IsSet("timeout") {
		if n := int(cmd.Int("timeout")); n > 0 {
			cfg.InputTimeout = n
		}
	}
	hc.Config = cfg

	if path, err := settings.Path(projectDir, false); err == nil {
		if s, err := settings.Load(path); err != nil {
			fmt.Fprintf(hc.ErrWriter(), "Warning: %v\n", err)
		} else {
			hc.SettingsChecker = s.IsPluginEnabled
		}
	}

	logging := cfg.Logging
	if cmd.IsSet("log-format") {
		logging.Format = cmd.String("log-format")
	}
	logging.Enabled = cmd.Bool("log") || logging.Enabled
	if logging.Enabled && !config.IsValidLoggingFormat(logging.Format) {
		return logging, fmt.Errorf("invalid --log-format '%s'. Valid: jsonl, pretty", logging.Format)
	}
	return logging, nil
}
