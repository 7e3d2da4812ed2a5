package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/learning"
	"github.com/urfave/cli/v3"
)

var errNoAction = errors.New("no action given")

// openStore resolves the learning directory the same way hooks do
func openStore(cmd *cli.Command) (*learning.Store, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithEnv(dir, config.NewXDGConfig(), os.Getenv)
	if err != nil {
		return nil, err
	}
	return learning.NewStore(cfg.LearningDirFor(dir), cfg.Observations), nil
}

// learnAction wraps a learning operation: the result is merged into a
// success document, and any error becomes the failure document.
func learnAction(run func(cmd *cli.Command, s *learning.Store) (map[string]interface{}, error)) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		w := stdout(cmd)
		s, err := openStore(cmd)
		if err != nil {
			return failJSON(w, err)
		}
		result, err := run(cmd, s)
		if err != nil {
			return failJSON(w, err)
		}
		out := map[string]interface{}{"success": true}
		for k, v := range result {
			out[k] = v
		}
		return printJSON(w, out)
	}
}

// NewLearnCmd creates the learn command group
func NewLearnCmd() *cli.Command {
	return &cli.Command{
		Name:  "learn",
		Usage: "Analyze observations, manage instincts, checkpoints and skills",
		Description: `Operate on the learning directory (.claude/learning, or $KAILASH_LEARNING_DIR).
Every subcommand prints one JSON object; failures print {"success": false, "error": ...}.`,
		Commands: []*cli.Command{
			newInstinctsCmd(),
			newCheckpointCmd(),
			newEvolveCmd(),
		},
	}
}

func newInstinctsCmd() *cli.Command {
	return &cli.Command{
		Name:  "instincts",
		Usage: "Analyze observations and generate instincts",
		Flags: []cli.Flag{
			dirFlag(),
			&cli.BoolFlag{Name: "analyze", Usage: "Count observations by type and tool"},
			&cli.BoolFlag{Name: "generate", Usage: "Create or update instincts from frequent patterns"},
			&cli.IntFlag{Name: "threshold", Value: learning.DefaultThreshold, Usage: "Minimum pattern count for --generate"},
			&cli.BoolFlag{Name: "list", Usage: "List stored instincts"},
		},
		Action: learnAction(func(cmd *cli.Command, s *learning.Store) (map[string]interface{}, error) {
			switch {
			case cmd.Bool("analyze"):
				obs, err := s.Observations()
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"observations": len(obs),
					"patterns":     learning.Analyze(obs),
				}, nil
			case cmd.Bool("generate"):
				res, err := s.Generate(int(cmd.Int("threshold")))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"threshold": res.Threshold,
					"created":   res.Created,
					"updated":   res.Updated,
					"instincts": res.Instincts,
				}, nil
			case cmd.Bool("list"):
				instincts, err := s.LoadInstincts()
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"instincts": instincts}, nil
			}
			return nil, fmt.Errorf("%w: use --analyze, --generate or --list", errNoAction)
		}),
	}
}

func newCheckpointCmd() *cli.Command {
	return &cli.Command{
		Name:  "checkpoint",
		Usage: "Save, list and diff snapshots of the learning state",
		Flags: []cli.Flag{
			dirFlag(),
			&cli.BoolFlag{Name: "save", Usage: "Save a checkpoint"},
			&cli.StringFlag{Name: "name", Usage: "Checkpoint name for --save"},
			&cli.BoolFlag{Name: "list", Usage: "List checkpoints"},
			&cli.StringFlag{Name: "diff", Usage: "Compare the current state with checkpoint `ID`"},
		},
		Action: learnAction(func(cmd *cli.Command, s *learning.Store) (map[string]interface{}, error) {
			switch {
			case cmd.Bool("save"):
				name := cmd.String("name")
				if name == "" {
					return nil, errors.New("--save requires --name")
				}
				cp, err := s.SaveCheckpoint(name)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"id":                cp.ID,
					"name":              cp.Name,
					"created":           cp.Created,
					"observation_count": cp.ObservationCount,
					"instinct_count":    len(cp.Instincts),
				}, nil
			case cmd.Bool("list"):
				list, err := s.ListCheckpoints()
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"checkpoints": list}, nil
			case cmd.String("diff") != "":
				diff, err := s.DiffCheckpoint(cmd.String("diff"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"diff": diff}, nil
			}
			return nil, fmt.Errorf("%w: use --save --name N, --list or --diff ID", errNoAction)
		}),
	}
}

func newEvolveCmd() *cli.Command {
	return &cli.Command{
		Name:  "evolve",
		Usage: "Turn high-confidence instincts into skills",
		Flags: []cli.Flag{
			dirFlag(),
			&cli.BoolFlag{Name: "candidates", Usage: "List instincts ready to evolve"},
			&cli.BoolFlag{Name: "auto", Usage: "Evolve every candidate"},
			&cli.StringFlag{Name: "evolve-skill", Usage: "Evolve instinct `ID` into a skill"},
		},
		Action: learnAction(func(cmd *cli.Command, s *learning.Store) (map[string]interface{}, error) {
			switch {
			case cmd.Bool("candidates"):
				c, err := s.Candidates()
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"threshold":  learning.EvolveThreshold,
					"candidates": c,
				}, nil
			case cmd.Bool("auto"):
				skills, err := s.Auto()
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"skills": skills}, nil
			case cmd.String("evolve-skill") != "":
				skill, err := s.EvolveSkill(cmd.String("evolve-skill"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"skill": skill}, nil
			}
			return nil, fmt.Errorf("%w: use --candidates, --auto or --evolve-skill ID", errNoAction)
		}),
	}
}
