package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/core"
	"github.com/urfave/cli/v3"
)

// NewSchemaCmd creates the schema command
func NewSchemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print or check the hook output JSON schema",
		Description: `Print the JSON schema of the decision document hooks write to stdout.
With --validate, read a decision document from the given file (or - for stdin)
and check it against the schema instead.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "validate",
				Usage: "Validate a hook output document (file path or -)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := stdout(cmd)
			target := cmd.String("validate")
			if target == "" {
				return printJSON(w, core.OutputSchema())
			}

			var data []byte
			var err error
			if target == "-" {
				reader := cmd.Root().Reader
				if reader == nil {
					reader = os.Stdin
				}
				data, err = io.ReadAll(reader)
			} else {
				data, err = os.ReadFile(target) // #nosec G304 - user supplied path
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", target, err)
			}
			if err := core.ValidateOutput(data); err != nil {
				return err
			}
			fmt.Fprintln(w, "valid")
			return nil
		},
	}
}
