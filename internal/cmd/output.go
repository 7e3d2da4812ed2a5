// Package cmd holds the CLI subcommands of the hook binary.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// ExitStatus asks main to exit with Code after the command has already
// written its own output.
type ExitStatus struct {
	Code int
}

func (e *ExitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// stdout returns the writer of the root command
func stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// failJSON prints the uniform failure document and exits non-zero
func failJSON(w io.Writer, err error) error {
	_ = printJSON(w, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
	return &ExitStatus{Code: 1}
}
