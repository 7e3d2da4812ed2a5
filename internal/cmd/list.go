package cmd

import (
	"context"
	"fmt"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/urfave/cli/v3"
)

// NewListCmd creates the list command
func NewListCmd() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List available hooks",
		Description: `List all registered hooks with the host event each one handles.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := stdout(cmd)
			fmt.Fprintln(w, "Available hooks:")
			fmt.Fprintln(w)
			for _, info := range core.DescribeHooks() {
				fmt.Fprintf(w, "  %-14s %-17s %s\n", info.Key, info.Event, info.Description)
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Use '%s run <key>' to run a hook.\n", constants.BinaryName)
			fmt.Fprintf(w, "Use '%s install' to register every hook in .claude/settings.json.\n", constants.BinaryName)
			return nil
		},
	}
}

// NewListEventsCmd creates the list-events command
func NewListEventsCmd() *cli.Command {
	return &cli.Command{
		Name:        "list-events",
		Usage:       "List host hook events",
		Description: `List the host events this binary has hooks for.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := stdout(cmd)
			fmt.Fprintln(w, "Hook events:")
			fmt.Fprintln(w)
			for _, e := range core.AllHookEvents() {
				note := ""
				if e.SupportedByCCHooks {
					note = " (cchooks)"
				}
				fmt.Fprintf(w, "  %-17s %s%s\n", e.Type, e.Description, note)
			}
			return nil
		},
	}
}
