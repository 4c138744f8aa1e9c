// Package validation checks inbound submission payloads against the intake
// form schema before they enter the dispatch pipeline.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/maharani/glowbrief/internal/types"
	"github.com/maharani/glowbrief/schemas"
)

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError represents a payload validation failure with field paths
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("payload validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load submission schema: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load submission schema: %s", e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidatePayload validates raw JSON against the submission payload schema
// and decodes it into a typed payload. The request is accepted or rejected
// as a whole; on failure the returned *ValidationError lists every violated
// field.
func ValidatePayload(raw []byte) (*types.SubmissionPayload, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemas.SubmissionPayload)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// The schema is embedded, so a load error on it is a programming
		// error rather than bad input.
		if _, schemaErr := gojsonschema.NewSchema(schemaLoader); schemaErr != nil {
			return nil, &SchemaLoadError{Message: "schema failed to compile", Cause: schemaErr}
		}
		return nil, &ValidationError{Errors: []FieldError{
			{Field: "(root)", Message: "invalid JSON document: " + err.Error()},
		}}
	}

	if !result.Valid() {
		validationErr := &ValidationError{
			Errors: make([]FieldError, 0, len(result.Errors())),
		}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			validationErr.Errors = append(validationErr.Errors, FieldError{
				Field:   field,
				Message: desc.Description(),
			})
		}
		return nil, validationErr
	}

	var payload types.SubmissionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode validated payload: %w", err)
	}
	return &payload, nil
}
