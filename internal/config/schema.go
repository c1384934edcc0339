package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// schemaJSON is the JSON Schema a decoded config tree is validated against
// before being unmarshalled into Config, giving malformed config files a
// field-level diagnostic instead of a generic mapstructure error.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": true,
  "properties": {
    "rules": {
      "type": "object",
      "properties": {
        "enabled": {"type": "array", "items": {"type": "string"}},
        "disabled": {"type": "array", "items": {"type": "string"}},
        "severity": {"type": "object", "additionalProperties": {"type": "string"}}
      }
    },
    "line_length": {
      "type": "object",
      "properties": {
        "max_line_length": {"type": "integer", "minimum": 0},
        "continuation_indent": {"type": "integer", "minimum": 0}
      }
    },
    "brace_style": {
      "type": "object",
      "properties": {
        "style": {"type": "string", "enum": ["", "same-line", "new-line"]}
      }
    },
    "indentation": {
      "type": "object",
      "properties": {
        "type": {"type": "string", "enum": ["", "spaces", "tabs"]},
        "indent_size": {"type": "integer", "minimum": 0},
        "continuation_multiplier": {"type": "integer", "minimum": 0},
        "tab_width": {"type": "integer", "minimum": 0}
      }
    },
    "whitespace": {
      "type": "object",
      "properties": {
        "around_operators": {"type": "boolean"},
        "after_comma": {"type": "boolean"}
      }
    },
    "imports": {
      "type": "object",
      "properties": {
        "expand_wildcards": {"type": "boolean"}
      }
    },
    "pipeline": {
      "type": "object",
      "properties": {
        "workers": {"type": "integer", "minimum": 0}
      }
    },
    "changed": {
      "type": "object",
      "properties": {
        "against": {"type": "string"},
        "include_untracked": {"type": "boolean"}
      }
    },
    "checkpoint": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "dir": {"type": "string"},
        "resume": {"type": "boolean"},
        "clear_prev": {"type": "boolean"}
      }
    }
  }
}`

// ErrSchemaValidation wraps every schema-level diagnostic so callers can
// distinguish this failure mode (spec.md §7's ConfigValidation error) from
// an unmarshal or semantic Validate error.
type ErrSchemaValidation struct {
	Errors []string
}

func (e *ErrSchemaValidation) Error() string {
	return fmt.Sprintf("config schema validation failed: %s", strings.Join(e.Errors, "; "))
}

// ValidateSchema checks settings (as produced by viper's AllSettings) against
// schemaJSON, catching field-name typos and wrong-typed values before
// Config.Validate ever sees them.
func ValidateSchema(settings map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(settings)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		messages = append(messages, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ErrSchemaValidation{Errors: messages}
}
