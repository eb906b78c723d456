package expander

import (
	"encoding/json"
	"testing"

	"book-discovery-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		input     *llm.Completion
		wantKind  OutcomeKind
		wantItems int
	}{
		{
			name:     "nil completion",
			input:    nil,
			wantKind: OutcomeMalformed,
		},
		{
			name: "tool call with question list",
			input: &llm.Completion{ToolCalls: []llm.ToolCall{
				{Name: ToolName, Arguments: json.RawMessage(`{"questions":[{"text":"a"},{"text":"b"}]}`)},
			}},
			wantKind:  OutcomeToolResult,
			wantItems: 2,
		},
		{
			name: "tool call with a single question object",
			input: &llm.Completion{ToolCalls: []llm.ToolCall{
				{Name: ToolName, Arguments: json.RawMessage(`{"questions":{"text":"a"}}`)},
			}},
			wantKind:  OutcomeToolResult,
			wantItems: 1,
		},
		{
			name: "double encoded arguments",
			input: &llm.Completion{ToolCalls: []llm.ToolCall{
				{Name: ToolName, Arguments: json.RawMessage(`"{\"questions\":[{\"text\":\"a\"}]}"`)},
			}},
			wantKind:  OutcomeToolResult,
			wantItems: 1,
		},
		{
			name: "unrelated tool among several is ignored",
			input: &llm.Completion{ToolCalls: []llm.ToolCall{
				{Name: "other", Arguments: json.RawMessage(`{}`)},
				{Name: ToolName, Arguments: json.RawMessage(`[{"text":"a"}]`)},
			}},
			wantKind:  OutcomeToolResult,
			wantItems: 1,
		},
		{
			name: "tool call with broken arguments",
			input: &llm.Completion{ToolCalls: []llm.ToolCall{
				{Name: ToolName, Arguments: json.RawMessage(`{"questions": 4}`)},
			}},
			wantKind: OutcomeMalformed,
		},
		{
			name:      "bare JSON text",
			input:     &llm.Completion{TextBlocks: []string{`{"questions":[{"text":"a"}]}`}},
			wantKind:  OutcomeTextResult,
			wantItems: 1,
		},
		{
			name:      "JSON surrounded by prose",
			input:     &llm.Completion{TextBlocks: []string{"Sure! [{\"text\":\"a\"},{\"text\":\"b\"}] Enjoy."}},
			wantKind:  OutcomeTextResult,
			wantItems: 2,
		},
		{
			name:     "truncated JSON",
			input:    &llm.Completion{TextBlocks: []string{`{"questions":[{"text":"a"}`}},
			wantKind: OutcomeMalformed,
		},
		{
			name:     "object without questions",
			input:    &llm.Completion{TextBlocks: []string{`{"answer": 42}`}},
			wantKind: OutcomeMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Len(t, got.Items, tt.wantItems)
			if got.Kind == OutcomeMalformed {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"complete", `{"id":"a","text":"Q?","type":"multiple-choice","options":["x","y","z"],"allowTextInput":true}`, true},
		{"numeric id", `{"id":3,"text":"Q?","options":["x","y"]}`, true},
		{"missing options", `{"text":"Q?"}`, false},
		{"one option", `{"text":"Q?","options":["x"]}`, false},
		{"non string option", `{"text":"Q?","options":["x",2]}`, false},
		{"whitespace text", `{"text":"  ","options":["x","y"]}`, false},
		{"unknown type", `{"text":"Q?","type":"ranking","options":["x","y"]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateItem(json.RawMessage(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
