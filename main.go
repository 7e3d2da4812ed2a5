package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/cmd"
	_ "github.com/Integrum-Global/kailash-vibe-cc-setup/internal/hooks"
)

// Set by the linker at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := newRootCmd(cmd.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		GoVer:   runtime.Version(),
	})

	if err := root.Run(context.Background(), os.Args); err != nil {
		var status *cmd.ExitStatus
		if errors.As(err, &status) {
			os.Exit(status.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
