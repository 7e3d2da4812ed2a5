package main

import (
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/cmd"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/urfave/cli/v3"
)

func newRootCmd(versionInfo cmd.VersionInfo) *cli.Command {
	return &cli.Command{
		Name:    constants.BinaryName,
		Usage:   "Validation hooks for AI coding-assistant sessions",
		Version: versionInfo.Version,
		Description: `Runs the session, prompt and tool-use hooks that keep model configuration in
.env, block destructive shell commands and flag hardcoded models, credentials
and placeholder code. Also manages the learning directory fed by the hooks.`,
		Commands: []*cli.Command{
			cmd.NewRunCmd(nil),
			cmd.NewListCmd(),
			cmd.NewListEventsCmd(),
			cmd.NewInstallCmd(),
			cmd.NewUninstallCmd(),
			cmd.NewEnvCmd(),
			cmd.NewSchemaCmd(),
			cmd.NewLearnCmd(),
			cmd.NewVersionCmd(versionInfo),
		},
	}
}
