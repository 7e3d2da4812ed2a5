// Package envstore reads .env files and checks that every configured model
// has an API key for its provider.
package envstore

import (
	"os"
	"sort"
	"strings"
)

// Record maps variable names to raw values. Treat it as read-only after Parse.
type Record map[string]string

// Parse turns .env formatted text into a Record. It never fails: lines it
// cannot understand are skipped.
func Parse(text string) Record {
	rec := Record{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(line[len("export "):])
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		rec[key] = parseValue(strings.TrimSpace(val))
	}
	return rec
}

func parseValue(val string) string {
	if isQuoted(val) {
		return val[1 : len(val)-1]
	}
	// Inline comments only apply to unquoted values
	if idx := strings.Index(val, " #"); idx > -1 {
		val = strings.TrimSpace(val[:idx])
	}
	return val
}

func isQuoted(val string) bool {
	if len(val) < 2 {
		return false
	}
	first, last := val[0], val[len(val)-1]
	return (first == '"' && last == '"') || (first == '\'' && last == '\'')
}

// Load reads and parses the file at path. A missing or unreadable file
// yields an empty Record.
func Load(path string) Record {
	data, err := os.ReadFile(path) // #nosec G304 - path is the project .env
	if err != nil {
		return Record{}
	}
	return Parse(string(data))
}

// Has reports whether key is present with a value longer than five
// characters. This is a sanity check, not a credential check.
func (r Record) Has(key string) bool {
	return len(r[key]) > 5
}

// Keys returns the variable names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
