package research

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// responseSchema constrains researcher payloads before they are trusted
// by the pipeline: an answer string plus optional evidence items that
// each carry a source and an excerpt.
const responseSchema = `{
	"type": "object",
	"required": ["answer"],
	"properties": {
		"answer": {"type": "string"},
		"evidence": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["sourceId", "excerpt"],
				"properties": {
					"sourceId": {"type": "string"},
					"excerpt": {"type": "string"},
					"locator": {"type": "string"}
				}
			}
		}
	}
}`

// ResponseValidator checks researcher payloads against the response
// schema.
type ResponseValidator struct{}

// NewResponseValidator creates a new response validator.
func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{}
}

// Validate checks a raw payload against the response schema.
func (v *ResponseValidator) Validate(data []byte) error {
	// First check basic JSON validity
	if !json.Valid(data) {
		return fmt.Errorf("data is not valid JSON")
	}

	schemaLoader := gojsonschema.NewBytesLoader([]byte(responseSchema))
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, err := range result.Errors() {
			errors = append(errors, err.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}
