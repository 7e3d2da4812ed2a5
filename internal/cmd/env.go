package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/envstore"
	"github.com/urfave/cli/v3"
)

// EnvReport is the output of env check
type EnvReport struct {
	Path      string             `json:"path"`
	Exists    bool               `json:"exists"`
	Discovery envstore.Discovery `json:"discovery"`
	Summary   string             `json:"summary"`
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Project directory (default: working directory)",
	}
}

func projectDir(cmd *cli.Command) (string, error) {
	if dir := cmd.String("dir"); dir != "" {
		return dir, nil
	}
	if dir := os.Getenv(constants.EnvProjectDir); dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return wd, nil
}

// CheckEnv reports the model and key variables of dir/.env
func CheckEnv(dir string) EnvReport {
	path := filepath.Join(dir, constants.EnvFileName)
	_, statErr := os.Stat(path)
	rec := envstore.Load(path)
	d := envstore.Discover(rec)
	return EnvReport{
		Path:      path,
		Exists:    statErr == nil,
		Discovery: d,
		Summary:   envstore.Summarize(rec, d),
	}
}

// NewEnvCmd creates the env command group
func NewEnvCmd() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "Inspect and provision the project .env",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Report model variables and whether their API keys are present",
				Description: `Print the discovered model and key variables as JSON.
Exits 1 when any model variable is missing its API key.`,
				Flags: []cli.Flag{dirFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					dir, err := projectDir(cmd)
					if err != nil {
						return err
					}
					report := CheckEnv(dir)
					if err := printJSON(stdout(cmd), report); err != nil {
						return err
					}
					if len(report.Discovery.Missing()) > 0 {
						return &ExitStatus{Code: 1}
					}
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Create .env from .env.example or a template if it does not exist",
				Flags: []cli.Flag{dirFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					dir, err := projectDir(cmd)
					if err != nil {
						return err
					}
					res := envstore.EnsureFile(dir)
					if err := printJSON(stdout(cmd), res); err != nil {
						return err
					}
					if res.Error != "" {
						return &ExitStatus{Code: 1}
					}
					return nil
				},
			},
		},
	}
}
