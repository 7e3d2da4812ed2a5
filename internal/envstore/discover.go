package envstore

import (
	"fmt"
	"strings"
)

// Status is the resolution state of a model/key binding
type Status string

const (
	StatusOK              Status = "OK"
	StatusMissingKey      Status = "MISSING_KEY"
	StatusUnknownProvider Status = "UNKNOWN_PROVIDER"
)

// DefaultModelVar is treated as a model variable even though it is named
// like any other setting.
const DefaultModelVar = "DEFAULT_LLM_MODEL"

// Binding ties a model variable to the key variables its provider accepts.
type Binding struct {
	Variable       string   `json:"variable"`
	Model          string   `json:"model"`
	Provider       string   `json:"provider,omitempty"`
	AcceptableKeys []string `json:"acceptable_keys,omitempty"`
	Status         Status   `json:"status"`
}

// Message describes the binding for humans.
func (b Binding) Message() string {
	switch b.Status {
	case StatusOK:
		return fmt.Sprintf("%s=%s (%s key present)", b.Variable, b.Model, b.Provider)
	case StatusMissingKey:
		return fmt.Sprintf("%s=%s requires %s (%s provider) but no key is set", b.Variable, b.Model, keyList(b.AcceptableKeys), b.Provider)
	default:
		return fmt.Sprintf("%s=%s has no known provider", b.Variable, b.Model)
	}
}

func keyList(keys []string) string {
	if len(keys) == 1 {
		return keys[0]
	}
	return "one of " + strings.Join(keys, ", ")
}

// Discovery is everything derived from a Record in one pass.
type Discovery struct {
	Models   []string  `json:"models"`
	Keys     []string  `json:"keys"`
	Bindings []Binding `json:"bindings"`
}

// Missing returns the bindings whose provider key is absent.
func (d Discovery) Missing() []Binding {
	var out []Binding
	for _, b := range d.Bindings {
		if b.Status == StatusMissingKey {
			out = append(out, b)
		}
	}
	return out
}

// IsModelVar reports whether name holds a model name.
func IsModelVar(name string) bool {
	return strings.HasSuffix(name, "_MODEL") || name == DefaultModelVar
}

// IsKeyVar reports whether name holds a credential.
func IsKeyVar(name string) bool {
	return strings.HasSuffix(name, "_API_KEY") || strings.HasSuffix(name, "_SECRET")
}

// Discover finds model and key variables and resolves one Binding per model
// variable. Output is sorted by variable name.
func Discover(rec Record) Discovery {
	d := Discovery{Models: []string{}, Keys: []string{}, Bindings: []Binding{}}
	for _, name := range rec.Keys() {
		if IsModelVar(name) {
			d.Models = append(d.Models, name)
		}
		if IsKeyVar(name) {
			d.Keys = append(d.Keys, name)
		}
	}
	for _, name := range d.Models {
		d.Bindings = append(d.Bindings, Resolve(rec, name, rec[name]))
	}
	return d
}

// Resolve builds the binding for a single model value against rec.
func Resolve(rec Record, variable, model string) Binding {
	b := Binding{Variable: variable, Model: model}
	p := InferProvider(model)
	if p == nil {
		b.Status = StatusUnknownProvider
		return b
	}
	b.Provider = p.Name
	b.AcceptableKeys = p.AcceptableKeys
	b.Status = StatusMissingKey
	for _, k := range p.AcceptableKeys {
		if rec.Has(k) {
			b.Status = StatusOK
			break
		}
	}
	return b
}

// Summarize renders a single line digest of the model configuration.
func Summarize(rec Record, d Discovery) string {
	if len(d.Models) == 0 {
		return "No model variables configured"
	}
	parts := make([]string, 0, len(d.Models))
	for _, name := range d.Models {
		parts = append(parts, name+"="+rec[name])
	}

	status := "All model-key pairings validated"
	if missing := d.Missing(); len(missing) > 0 {
		msgs := make([]string, 0, len(missing))
		for _, b := range missing {
			msgs = append(msgs, b.Message())
		}
		status = strings.Join(msgs, "; ")
	}
	return "Models: " + strings.Join(parts, ", ") + " | " + status
}
