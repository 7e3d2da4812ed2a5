// Package learning keeps the flat-file learning state: an append-only
// observation log, instincts derived from it, checkpoints and evolved skills.
package learning

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
)

// Observation is one line of the observation log
type Observation struct {
	Timestamp string                 `json:"timestamp"`
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	ToolName  string                 `json:"tool_name,omitempty"`
	CWD       string                 `json:"cwd,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Store is rooted at a learning directory
type Store struct {
	Dir      string
	Rotation config.LogRotationConfig
	Now      func() time.Time
}

// NewStore returns a store for dir with the given observation log rotation
func NewStore(dir string, rotation config.LogRotationConfig) *Store {
	return &Store{Dir: dir, Rotation: rotation, Now: time.Now}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// ObservationsPath is the append-only log
func (s *Store) ObservationsPath() string {
	return filepath.Join(s.Dir, constants.ObservationsFile)
}

// InstinctsPath is the instinct document
func (s *Store) InstinctsPath() string {
	return filepath.Join(s.Dir, constants.InstinctsFile)
}

// CheckpointsDir holds one JSON file per checkpoint
func (s *Store) CheckpointsDir() string {
	return filepath.Join(s.Dir, constants.CheckpointsDir)
}

// SkillsDir holds evolved skill documents
func (s *Store) SkillsDir() string {
	return filepath.Join(s.Dir, constants.SkillsDir)
}

// Append writes obs as a single line. The log rotates by size; concurrent
// writers are not coordinated.
func (s *Store) Append(obs Observation) error {
	if obs.Timestamp == "" {
		obs.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}

	logger := config.SetupLogRotation(s.ObservationsPath(), s.Rotation)
	if logger == nil {
		return fmt.Errorf("failed to create learning directory %s", s.Dir)
	}
	defer func() { _ = logger.Close() }()

	if _, err := logger.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append observation: %w", err)
	}
	return nil
}

// Observations reads the current log. Malformed lines are skipped and a
// missing log is empty.
func (s *Store) Observations() ([]Observation, error) {
	data, err := os.ReadFile(s.ObservationsPath())
	if errors.Is(err, os.ErrNotExist) {
		return []Observation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	out := []Observation{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var obs Observation
		if err := json.Unmarshal(line, &obs); err != nil {
			continue
		}
		out = append(out, obs)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan observations: %w", err)
	}
	return out, nil
}
