package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// OutputSchema returns the JSON schema of the hook output document
func OutputSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Output{})
	schema.Title = "Hook output"

	if hookSpecific, ok := schema.Properties.Get("hookSpecificOutput"); ok && hookSpecific != nil {
		if name, ok := hookSpecific.Properties.Get("hookEventName"); ok && name != nil {
			enum := make([]any, 0, len(AllHookEvents()))
			for _, e := range AllHookEvents() {
				enum = append(enum, string(e.Type))
			}
			name.Enum = enum
		}
		hookSpecific.Required = []string{"hookEventName"}
		hookSpecific.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	}
	return schema
}

// ValidateOutput checks a serialized output document against OutputSchema
func ValidateOutput(data []byte) error {
	schemaBytes, err := json.Marshal(OutputSchema())
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		return fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schemaMap), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errMsgs []string
		for _, validationErr := range result.Errors() {
			errMsgs = append(errMsgs, validationErr.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(errMsgs, "; "))
	}
	return nil
}
