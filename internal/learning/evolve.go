package learning

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EvolveThreshold is the confidence an instinct needs before it can become a skill
const EvolveThreshold = 0.7

// SkillResult describes one evolved skill
type SkillResult struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Candidates returns un-evolved instincts at or above EvolveThreshold
func (s *Store) Candidates() ([]Instinct, error) {
	instincts, err := s.LoadInstincts()
	if err != nil {
		return nil, err
	}
	out := []Instinct{}
	for _, in := range instincts {
		if !in.Evolved && in.Confidence >= EvolveThreshold {
			out = append(out, in)
		}
	}
	return out, nil
}

// EvolveSkill writes a skill document for instinct id and marks it evolved
func (s *Store) EvolveSkill(id string) (SkillResult, error) {
	instincts, err := s.LoadInstincts()
	if err != nil {
		return SkillResult{}, err
	}
	i, ok := FindInstinct(instincts, id)
	if !ok {
		return SkillResult{}, fmt.Errorf("instinct not found: %s", id)
	}

	res, err := s.writeSkill(instincts[i])
	if err != nil {
		return SkillResult{}, err
	}
	instincts[i].Evolved = true
	instincts[i].Skill = res.Path
	instincts[i].Updated = s.now().UTC().Format(time.RFC3339)
	if err := s.SaveInstincts(instincts); err != nil {
		return SkillResult{}, err
	}
	return res, nil
}

// Auto evolves every current candidate
func (s *Store) Auto() ([]SkillResult, error) {
	candidates, err := s.Candidates()
	if err != nil {
		return nil, err
	}
	out := []SkillResult{}
	for _, c := range candidates {
		res, err := s.EvolveSkill(c.ID)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Store) writeSkill(in Instinct) (SkillResult, error) {
	if err := os.MkdirAll(s.SkillsDir(), 0o750); err != nil {
		return SkillResult{}, fmt.Errorf("failed to create skills directory: %w", err)
	}
	path := filepath.Join(s.SkillsDir(), in.ID+".md")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", in.ID)
	fmt.Fprintf(&b, "Learned from %d observations of `%s`", in.Count, in.Type)
	if in.ToolName != "" {
		fmt.Fprintf(&b, " using the %s tool", in.ToolName)
	}
	fmt.Fprintf(&b, ".\n\n- Pattern: `%s`\n- Confidence: %.2f\n- First seen: %s\n", in.Pattern, in.Confidence, in.Created)

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return SkillResult{}, fmt.Errorf("failed to write skill: %w", err)
	}
	return SkillResult{ID: in.ID, Path: path}, nil
}
