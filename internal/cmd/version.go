package cmd

import (
	"context"
	"fmt"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/urfave/cli/v3"
)

// VersionInfo holds version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
	GoVer   string
}

// NewVersionCmd creates a new version command
func NewVersionCmd(versionInfo VersionInfo) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Show version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := stdout(cmd)
			fmt.Fprintf(w, "%s version %s\n", constants.BinaryName, versionInfo.Version)
			fmt.Fprintf(w, "commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(w, "date: %s\n", versionInfo.Date)
			fmt.Fprintf(w, "go: %s\n", versionInfo.GoVer)
			return nil
		},
	}
}
