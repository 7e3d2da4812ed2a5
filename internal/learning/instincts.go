package learning

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the minimum pattern count that becomes an instinct
const DefaultThreshold = 3

// Pattern is a group of observations sharing type and tool
type Pattern struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	ToolName string `json:"tool_name,omitempty"`
	Count    int    `json:"count"`
}

// Instinct is a pattern seen often enough to act on
type Instinct struct {
	ID         string  `yaml:"id" json:"id"`
	Pattern    string  `yaml:"pattern" json:"pattern"`
	Type       string  `yaml:"type" json:"type"`
	ToolName   string  `yaml:"tool_name,omitempty" json:"tool_name,omitempty"`
	Count      int     `yaml:"count" json:"count"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	Created    string  `yaml:"created" json:"created"`
	Updated    string  `yaml:"updated" json:"updated"`
	Evolved    bool    `yaml:"evolved,omitempty" json:"evolved,omitempty"`
	Skill      string  `yaml:"skill,omitempty" json:"skill,omitempty"`
}

type instinctDocument struct {
	Instincts []Instinct `yaml:"instincts"`
}

// Confidence grows with evidence and is capped below certainty
func Confidence(count int) float64 {
	c := 0.3 + 0.1*float64(count)
	if c > 0.9 {
		c = 0.9
	}
	// two decimals
	return float64(int(c*100+0.5)) / 100
}

func patternKey(obsType, tool string) string {
	if tool == "" {
		return obsType
	}
	return obsType + ":" + tool
}

func instinctID(key string) string {
	id := strings.ToLower(strings.NewReplacer(":", "-", "_", "-", " ", "-", "/", "-").Replace(key))
	return strings.Trim(id, "-")
}

// Analyze groups observations, most frequent first
func Analyze(obs []Observation) []Pattern {
	counts := map[string]*Pattern{}
	for _, o := range obs {
		if o.Type == "" {
			continue
		}
		key := patternKey(o.Type, o.ToolName)
		p, ok := counts[key]
		if !ok {
			p = &Pattern{Key: key, Type: o.Type, ToolName: o.ToolName}
			counts[key] = p
		}
		p.Count++
	}

	out := make([]Pattern, 0, len(counts))
	for _, p := range counts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// LoadInstincts reads the instinct document; a missing file is empty
func (s *Store) LoadInstincts() ([]Instinct, error) {
	data, err := os.ReadFile(s.InstinctsPath())
	if errors.Is(err, os.ErrNotExist) {
		return []Instinct{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read instincts: %w", err)
	}
	var doc instinctDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse instincts: %w", err)
	}
	if doc.Instincts == nil {
		doc.Instincts = []Instinct{}
	}
	return doc.Instincts, nil
}

// SaveInstincts replaces the instinct document
func (s *Store) SaveInstincts(instincts []Instinct) error {
	data, err := yaml.Marshal(instinctDocument{Instincts: instincts})
	if err != nil {
		return fmt.Errorf("failed to marshal instincts: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create learning directory: %w", err)
	}
	if err := os.WriteFile(s.InstinctsPath(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write instincts: %w", err)
	}
	return nil
}

// GenerateResult reports what Generate changed
type GenerateResult struct {
	Threshold int        `json:"threshold"`
	Created   []string   `json:"created"`
	Updated   []string   `json:"updated"`
	Instincts []Instinct `json:"instincts"`
}

// Generate promotes patterns with at least threshold observations to
// instincts. Existing instincts keep their identity and evolved state.
func (s *Store) Generate(threshold int) (GenerateResult, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	res := GenerateResult{Threshold: threshold, Created: []string{}, Updated: []string{}}

	obs, err := s.Observations()
	if err != nil {
		return res, err
	}
	instincts, err := s.LoadInstincts()
	if err != nil {
		return res, err
	}

	index := make(map[string]int, len(instincts))
	for i, in := range instincts {
		index[in.ID] = i
	}

	now := s.now().UTC().Format(time.RFC3339)
	for _, p := range Analyze(obs) {
		if p.Count < threshold {
			continue
		}
		id := instinctID(p.Key)
		if i, ok := index[id]; ok {
			if instincts[i].Count != p.Count {
				instincts[i].Count = p.Count
				instincts[i].Confidence = Confidence(p.Count)
				instincts[i].Updated = now
				res.Updated = append(res.Updated, id)
			}
			continue
		}
		instincts = append(instincts, Instinct{
			ID:         id,
			Pattern:    p.Key,
			Type:       p.Type,
			ToolName:   p.ToolName,
			Count:      p.Count,
			Confidence: Confidence(p.Count),
			Created:    now,
			Updated:    now,
		})
		index[id] = len(instincts) - 1
		res.Created = append(res.Created, id)
	}

	if err := s.SaveInstincts(instincts); err != nil {
		return res, err
	}
	res.Instincts = instincts
	return res, nil
}

// FindInstinct returns the instinct with id
func FindInstinct(instincts []Instinct, id string) (int, bool) {
	for i, in := range instincts {
		if in.ID == id {
			return i, true
		}
	}
	return -1, false
}
