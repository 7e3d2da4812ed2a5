// Package settings reads and edits the host's settings.json hook table.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/constants"
)

// File name of the host settings document
const FileName = "settings.json"

// HookCommand is one command entry under a matcher. Extra keeps fields
// this tool does not model so a rewrite leaves them in place.
type HookCommand struct {
	Type    string                     `json:"type"`
	Command string                     `json:"command"`
	Timeout *int                       `json:"timeout,omitempty"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// HookMatcher groups commands that run for matching tools
type HookMatcher struct {
	Matcher string                     `json:"matcher,omitempty"`
	Hooks   []HookCommand              `json:"hooks"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// PluginConfig stores per-hook settings. A nil Enabled means enabled.
type PluginConfig struct {
	Enabled *bool                      `json:"enabled,omitempty"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the entry and keeps unknown fields in Extra
func (h *HookCommand) UnmarshalJSON(data []byte) error {
	type plain HookCommand
	if err := json.Unmarshal(data, (*plain)(h)); err != nil {
		return err
	}
	extra, err := unknownFields(data, "type", "command", "timeout")
	h.Extra = extra
	return err
}

// MarshalJSON writes the entry followed by its Extra fields
func (h HookCommand) MarshalJSON() ([]byte, error) {
	type plain HookCommand
	return withFields(plain(h), h.Extra)
}

// UnmarshalJSON decodes the matcher and keeps unknown fields in Extra
func (m *HookMatcher) UnmarshalJSON(data []byte) error {
	type plain HookMatcher
	if err := json.Unmarshal(data, (*plain)(m)); err != nil {
		return err
	}
	extra, err := unknownFields(data, "matcher", "hooks")
	m.Extra = extra
	return err
}

// MarshalJSON writes the matcher followed by its Extra fields
func (m HookMatcher) MarshalJSON() ([]byte, error) {
	type plain HookMatcher
	return withFields(plain(m), m.Extra)
}

// UnmarshalJSON decodes the plugin entry and keeps unknown fields in Extra
func (p *PluginConfig) UnmarshalJSON(data []byte) error {
	type plain PluginConfig
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	extra, err := unknownFields(data, "enabled")
	p.Extra = extra
	return err
}

// MarshalJSON writes the plugin entry followed by its Extra fields
func (p PluginConfig) MarshalJSON() ([]byte, error) {
	type plain PluginConfig
	return withFields(plain(p), p.Extra)
}

// unknownFields returns the members of the object in data not named in known
func unknownFields(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withFields marshals v and adds extra members it does not already carry
func withFields(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = raw
		}
	}
	return json.Marshal(obj)
}

// Settings is the subset of settings.json this tool edits. Unknown top-level
// fields are preserved in Other and written back unchanged.
type Settings struct {
	Hooks   map[string][]HookMatcher `json:"hooks,omitempty"`
	Plugins map[string]PluginConfig  `json:"plugins,omitempty"`
	Other   map[string]interface{}   `json:"-"`
}

// Path returns the project or global settings.json location
func Path(projectDir string, global bool) (string, error) {
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, constants.ClaudeDir, FileName), nil
	}
	return filepath.Join(projectDir, constants.ClaudeDir, FileName), nil
}

// Load reads path; a missing file yields empty settings
func Load(path string) (*Settings, error) {
	s := &Settings{
		Hooks:   make(map[string][]HookMatcher),
		Plugins: make(map[string]PluginConfig),
		Other:   make(map[string]interface{}),
	}

	data, err := os.ReadFile(path) // #nosec G304 - settings path is derived from project or home dir
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	delete(raw, "hooks")
	delete(raw, "plugins")
	s.Other = raw
	if s.Hooks == nil {
		s.Hooks = make(map[string][]HookMatcher)
	}
	if s.Plugins == nil {
		s.Plugins = make(map[string]PluginConfig)
	}
	return s, nil
}

// Save writes s to path, creating the directory as needed
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	out := make(map[string]interface{}, len(s.Other)+2)
	for k, v := range s.Other {
		out[k] = v
	}
	if len(s.Hooks) > 0 {
		out["hooks"] = s.Hooks
	}
	if len(s.Plugins) > 0 {
		out["plugins"] = s.Plugins
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// IsPluginEnabled returns false only when key is explicitly disabled
func (s *Settings) IsPluginEnabled(key string) bool {
	if s == nil || s.Plugins == nil {
		return true
	}
	cfg, ok := s.Plugins[key]
	if !ok || cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// AddHook registers command under event and matcher. It reports false when
// the same command is already registered for that event.
func (s *Settings) AddHook(event, matcher, command string, timeout *int) bool {
	if s.Hooks == nil {
		s.Hooks = make(map[string][]HookMatcher)
	}
	for _, m := range s.Hooks[event] {
		for _, h := range m.Hooks {
			if h.Command == command {
				return false
			}
		}
	}

	entry := HookCommand{Type: "command", Command: command, Timeout: timeout}
	matchers := s.Hooks[event]
	for i := range matchers {
		if matchers[i].Matcher == matcher {
			matchers[i].Hooks = append(matchers[i].Hooks, entry)
			return true
		}
	}
	s.Hooks[event] = append(matchers, HookMatcher{Matcher: matcher, Hooks: []HookCommand{entry}})
	return true
}

// RemoveHooks deletes every command for which match returns true and drops
// matchers and events left empty. It returns the number removed.
func (s *Settings) RemoveHooks(match func(command string) bool) int {
	removed := 0
	for event, matchers := range s.Hooks {
		var kept []HookMatcher
		for _, m := range matchers {
			var hooks []HookCommand
			for _, h := range m.Hooks {
				if match(h.Command) {
					removed++
					continue
				}
				hooks = append(hooks, h)
			}
			if len(hooks) > 0 {
				m.Hooks = hooks
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			delete(s.Hooks, event)
		} else {
			s.Hooks[event] = kept
		}
	}
	return removed
}

// Commands lists every registered command containing substr, grouped by event
func (s *Settings) Commands(substr string) map[string][]string {
	found := make(map[string][]string)
	for event, matchers := range s.Hooks {
		for _, m := range matchers {
			for _, h := range m.Hooks {
				if strings.Contains(h.Command, substr) {
					found[event] = append(found[event], h.Command)
				}
			}
		}
	}
	for event := range found {
		sort.Strings(found[event])
	}
	return found
}
