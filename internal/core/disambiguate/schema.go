package disambiguate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sncix/pinyin-annotation/internal/core/chat"
)

// Bounds of the structured answer.
const (
	MaxResults       = 6
	MaxReadingLength = 10
	MaxReasonLength  = 500
)

// ErrSchemaValidation marks a complete reply that does not match the schema.
var ErrSchemaValidation = errors.New("structured response does not match schema")

// StructuredResponse is the validated second-turn answer. Results is a set:
// duplicates collapse before the size bound is checked.
type StructuredResponse struct {
	Results []string `json:"results" validate:"max=6,dive,max=10"`
	Reason  string   `json:"reason" validate:"max=500"`
}

var validate = validator.New()

// ResponseSchema is the JSON schema sent with the second turn.
func ResponseSchema() chat.Schema {
	return chat.Schema{
		"title": "Response",
		"type":  "object",
		"properties": map[string]any{
			"results": map[string]any{
				"title":       "Results",
				"type":        "array",
				"items":       map[string]any{"type": "string", "maxLength": MaxReadingLength},
				"maxItems":    MaxResults,
				"uniqueItems": true,
			},
			"reason": map[string]any{
				"title":     "Reason",
				"type":      "string",
				"maxLength": MaxReasonLength,
			},
		},
		"required":             []string{"results", "reason"},
		"additionalProperties": false,
	}
}

// ParseStructuredResponse decodes and validates content. Every failure wraps
// ErrSchemaValidation.
func ParseStructuredResponse(content string) (StructuredResponse, error) {
	var raw struct {
		Results *[]*string `json:"results"`
		Reason  *string    `json:"reason"`
	}
	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(&raw); err != nil {
		return StructuredResponse{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return StructuredResponse{}, fmt.Errorf("%w: trailing data after JSON object", ErrSchemaValidation)
	}
	if raw.Results == nil {
		return StructuredResponse{}, fmt.Errorf("%w: field results is required", ErrSchemaValidation)
	}
	if raw.Reason == nil {
		return StructuredResponse{}, fmt.Errorf("%w: field reason is required", ErrSchemaValidation)
	}

	seen := make(map[string]struct{}, len(*raw.Results))
	results := make([]string, 0, len(*raw.Results))
	for i, r := range *raw.Results {
		if r == nil {
			return StructuredResponse{}, fmt.Errorf("%w: results[%d] is null", ErrSchemaValidation, i)
		}
		if _, ok := seen[*r]; ok {
			continue
		}
		seen[*r] = struct{}{}
		results = append(results, *r)
	}

	resp := StructuredResponse{Results: results, Reason: *raw.Reason}
	if err := validate.Struct(resp); err != nil {
		return StructuredResponse{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return resp, nil
}
