package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/settings"
	"github.com/urfave/cli/v3"
)

// toolMatchers limits tool events to the tools the validators inspect
var toolMatchers = map[core.EventType]string{
	core.PreToolUseEvent: strings.Join([]string{
		constants.ToolBash, constants.ToolWrite, constants.ToolEdit, constants.ToolMultiEdit,
	}, "|"),
	core.PostToolUseEvent: strings.Join([]string{
		constants.ToolWrite, constants.ToolEdit, constants.ToolMultiEdit,
	}, "|"),
}

type installFlags struct {
	binary     string
	logEnabled bool
	logFormat  string
	timeout    int
}

// buildHookCommand returns the settings.json command line for key
func buildHookCommand(key string, flags installFlags) string {
	command := fmt.Sprintf("%s run %s", flags.binary, key)
	if flags.logEnabled {
		command += " --log"
		if flags.logFormat != "" && flags.logFormat != "jsonl" {
			command += " --log-format " + flags.logFormat
		}
	}
	return command
}

// isOwnCommand reports whether a settings command was installed by this binary
func isOwnCommand(command string) bool {
	return strings.Contains(command, constants.CommandPattern+" ")
}

// InstallHooks registers every hook under its event and returns the keys added
func InstallHooks(s *settings.Settings, hooks []core.HookInfo, flags installFlags) []string {
	var timeout *int
	if flags.timeout > 0 {
		t := flags.timeout
		timeout = &t
	}
	var added []string
	for _, info := range hooks {
		if s.AddHook(string(info.Event), toolMatchers[info.Event], buildHookCommand(info.Key, flags), timeout) {
			added = append(added, info.Key)
		}
	}
	return added
}

func scopeFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "global",
		Aliases: []string{"g"},
		Value:   false,
		Usage:   "Use global settings (~/.claude/settings.json)",
	}
}

func settingsPath(cmd *cli.Command) (string, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return "", err
	}
	return settings.Path(dir, cmd.Bool("global"))
}

// NewInstallCmd creates the install command
func NewInstallCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Register every hook in the host settings.json",
		Description: `Add one command entry per hook under its event in .claude/settings.json.
Entries already present are left unchanged.`,
		Flags: []cli.Flag{
			scopeFlag(),
			dirFlag(),
			&cli.StringFlag{
				Name:  "binary",
				Usage: "Command used to invoke this binary (default: the current executable)",
			},
			&cli.BoolFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "Install hooks with --log enabled",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "jsonl",
				Usage: "Log output format for --log: jsonl or pretty",
			},
			&cli.IntFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Host timeout in seconds for each hook (0 for none)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			flags := installFlags{
				binary:     cmd.String("binary"),
				logEnabled: cmd.Bool("log"),
				logFormat:  cmd.String("log-format"),
				timeout:    int(cmd.Int("timeout")),
			}
			if flags.binary == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("failed to get executable path: %w", err)
				}
				flags.binary = exe
			}

			path, err := settingsPath(cmd)
			if err != nil {
				return err
			}
			s, err := settings.Load(path)
			if err != nil {
				return err
			}
			added := InstallHooks(s, core.DescribeHooks(), flags)
			if err := settings.Save(path, s); err != nil {
				return err
			}

			w := stdout(cmd)
			if len(added) == 0 {
				fmt.Fprintf(w, "All hooks already installed in %s\n", path)
				return nil
			}
			fmt.Fprintf(w, "Installed %d hooks in %s:\n", len(added), path)
			for _, key := range added {
				fmt.Fprintf(w, "  %s\n", key)
			}
			return nil
		},
	}
}

// NewUninstallCmd creates the uninstall command
func NewUninstallCmd() *cli.Command {
	return &cli.Command{
		Name:        "uninstall",
		Usage:       "Remove this binary's hooks from settings.json",
		Description: `Remove every command entry that invokes this binary. Other hooks are preserved.`,
		Flags:       []cli.Flag{scopeFlag(), dirFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := settingsPath(cmd)
			if err != nil {
				return err
			}
			s, err := settings.Load(path)
			if err != nil {
				return err
			}
			n := s.RemoveHooks(isOwnCommand)
			if n == 0 {
				fmt.Fprintf(stdout(cmd), "No %s hooks found in %s\n", constants.BinaryName, path)
				return nil
			}
			if err := settings.Save(path, s); err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "Removed %d hooks from %s\n", n, path)
			return nil
		},
	}
}
