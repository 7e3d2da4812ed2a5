package learning

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Checkpoint is a snapshot of learning state
type Checkpoint struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Created          string     `json:"created"`
	ObservationCount int        `json:"observation_count"`
	Instincts        []Instinct `json:"instincts"`
}

// CheckpointSummary is a checkpoint without its instinct bodies
type CheckpointSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Created          string `json:"created"`
	ObservationCount int    `json:"observation_count"`
	InstinctCount    int    `json:"instinct_count"`
}

// CheckpointDiff compares a checkpoint with the current state
type CheckpointDiff struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Added            []string `json:"added"`
	Removed          []string `json:"removed"`
	Changed          []string `json:"changed"`
	ObservationDelta int      `json:"observation_delta"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ErrCheckpointNotFound is returned for an unknown checkpoint id
var ErrCheckpointNotFound = errors.New("checkpoint not found")

func (s *Store) checkpointPath(id string) string {
	return filepath.Join(s.CheckpointsDir(), id+".json")
}

// SaveCheckpoint snapshots the observation count and instincts under name
func (s *Store) SaveCheckpoint(name string) (Checkpoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Checkpoint{}, errors.New("checkpoint name is required")
	}
	obs, err := s.Observations()
	if err != nil {
		return Checkpoint{}, err
	}
	instincts, err := s.LoadInstincts()
	if err != nil {
		return Checkpoint{}, err
	}

	now := s.now().UTC()
	cp := Checkpoint{
		ID:               now.Format("20060102-150405"),
		Name:             name,
		Created:          now.Format(time.RFC3339),
		ObservationCount: len(obs),
		Instincts:        instincts,
	}
	if sl := slug(name); sl != "" {
		cp.ID += "-" + sl
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	if err := os.MkdirAll(s.CheckpointsDir(), 0o750); err != nil {
		return Checkpoint{}, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}
	if err := os.WriteFile(s.checkpointPath(cp.ID), data, 0o600); err != nil {
		return Checkpoint{}, fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return cp, nil
}

// LoadCheckpoint reads one checkpoint
func (s *Store) LoadCheckpoint(id string) (Checkpoint, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return Checkpoint{}, fmt.Errorf("%w: %q", ErrCheckpointNotFound, id)
	}
	data, err := os.ReadFile(s.checkpointPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return Checkpoint{}, fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("failed to parse checkpoint %s: %w", id, err)
	}
	return cp, nil
}

// ListCheckpoints returns every readable checkpoint, oldest first
func (s *Store) ListCheckpoints() ([]CheckpointSummary, error) {
	entries, err := os.ReadDir(s.CheckpointsDir())
	if errors.Is(err, os.ErrNotExist) {
		return []CheckpointSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints: %w", err)
	}

	out := []CheckpointSummary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		cp, err := s.LoadCheckpoint(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, CheckpointSummary{
			ID:               cp.ID,
			Name:             cp.Name,
			Created:          cp.Created,
			ObservationCount: cp.ObservationCount,
			InstinctCount:    len(cp.Instincts),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created < out[j].Created
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DiffCheckpoint compares checkpoint id with the current instincts and log
func (s *Store) DiffCheckpoint(id string) (CheckpointDiff, error) {
	cp, err := s.LoadCheckpoint(id)
	if err != nil {
		return CheckpointDiff{}, err
	}
	obs, err := s.Observations()
	if err != nil {
		return CheckpointDiff{}, err
	}
	current, err := s.LoadInstincts()
	if err != nil {
		return CheckpointDiff{}, err
	}

	diff := CheckpointDiff{
		ID:               cp.ID,
		Name:             cp.Name,
		Added:            []string{},
		Removed:          []string{},
		Changed:          []string{},
		ObservationDelta: len(obs) - cp.ObservationCount,
	}

	before := make(map[string]Instinct, len(cp.Instincts))
	for _, in := range cp.Instincts {
		before[in.ID] = in
	}
	for _, in := range current {
		old, ok := before[in.ID]
		switch {
		case !ok:
			diff.Added = append(diff.Added, in.ID)
		case old.Count != in.Count || old.Evolved != in.Evolved:
			diff.Changed = append(diff.Changed, in.ID)
		}
		delete(before, in.ID)
	}
	for id := range before {
		diff.Removed = append(diff.Removed, id)
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff, nil
}
