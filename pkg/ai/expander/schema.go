package expander

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	ToolName        = "get_follow_up_questions"
	toolDescription = "Generate 3 follow-up questions based on survey responses. The questions should be relevant to the previous responses and help further personalize the story. Each question should have 3-8 options and may optionally allow custom text input."
	systemPrompt    = "Use the function to return structured follow-up questions."
	requestedCount  = 3
)

// requestSchema is what the model is asked to produce
var requestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type":        "array",
			"description": "List of follow-up questions",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The question text",
					},
					"id": map[string]any{
						"type":        "string",
						"description": "Unique key for the question",
					},
					"type": map[string]any{
						"type":        "string",
						"enum":        []string{"single-choice", "multiple-choice"},
						"description": "Type of question",
					},
					"options": map[string]any{
						"type":        "array",
						"description": "Answer options for the question",
						"items":       map[string]any{"type": "string"},
						"minItems":    3,
						"maxItems":    8,
					},
					"allowTextInput": map[string]any{
						"type":        "boolean",
						"description": "Whether to allow custom text input",
					},
				},
				"required": []string{"id", "text", "type", "options"},
			},
		},
	},
	"required": []string{"questions"},
}

// itemSchema is what a single generated question must satisfy to be kept.
// It is looser than requestSchema: id and type may be missing and two
// options are enough.
var itemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"text": map[string]any{"type": "string", "pattern": `\S`},
		"id":   map[string]any{"type": []string{"string", "number"}},
		"type": map[string]any{
			"type": "string",
			"enum": []string{"single-choice", "multiple-choice"},
		},
		"options": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items":    map[string]any{"type": "string"},
		},
		"allowTextInput": map[string]any{"type": "boolean"},
	},
	"required": []string{"text", "options"},
}

var acceptSchema = mustCompile(itemSchema)

func mustCompile(schema map[string]any) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("expander: invalid schema: %v", err))
	}
	return compiled
}

// validateItem checks one raw generated question against itemSchema
func validateItem(raw json.RawMessage) error {
	result, err := acceptSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("question failed validation: %s", strings.Join(details, "; "))
}
