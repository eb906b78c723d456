package expander

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"book-discovery-be/pkg/llm"
)

// OutcomeKind tags the shape the model actually replied with
type OutcomeKind string

const (
	OutcomeToolResult OutcomeKind = "tool_result"
	OutcomeTextResult OutcomeKind = "text_result"
	OutcomeMalformed  OutcomeKind = "malformed"
)

// Outcome is the single normalized view of a completion. Items holds the raw
// candidate question objects for ToolResult and TextResult; Raw holds what
// was inspected so it can be sent to the diagnostics sink.
type Outcome struct {
	Kind   OutcomeKind
	Items  []json.RawMessage
	Raw    string
	Reason string
}

var errNoQuestions = errors.New("payload holds no question list")

// Normalize inspects tool calls first and falls back to JSON embedded in text
func Normalize(c *llm.Completion) Outcome {
	if c == nil {
		return Outcome{Kind: OutcomeMalformed, Reason: "empty completion"}
	}

	// 1. Structured tool call
	for _, call := range c.ToolCalls {
		if call.Name != ToolName && len(c.ToolCalls) > 1 {
			continue
		}
		items, err := decodeItems(call.Arguments)
		if err != nil {
			return Outcome{Kind: OutcomeMalformed, Raw: string(call.Arguments), Reason: "tool arguments: " + err.Error()}
		}
		return Outcome{Kind: OutcomeToolResult, Items: items, Raw: string(call.Arguments)}
	}

	// 2. JSON written as prose
	text := strings.TrimSpace(strings.Join(c.TextBlocks, "\n"))
	if text == "" {
		return Outcome{Kind: OutcomeMalformed, Reason: "no tool call and no text"}
	}
	payload, ok := extractJSON(text)
	if !ok {
		return Outcome{Kind: OutcomeMalformed, Raw: text, Reason: "no JSON found in text"}
	}
	items, err := decodeItems(payload)
	if err != nil {
		return Outcome{Kind: OutcomeMalformed, Raw: text, Reason: "text payload: " + err.Error()}
	}
	return Outcome{Kind: OutcomeTextResult, Items: items, Raw: text}
}

// decodeItems accepts {"questions":[...]}, {"questions":{...}}, a bare array,
// a bare question object, or any of those double-encoded as a JSON string.
func decodeItems(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errNoQuestions
	}

	switch trimmed[0] {
	case '"':
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, err
		}
		inner = strings.TrimSpace(inner)
		if strings.HasPrefix(inner, `"`) {
			return nil, errNoQuestions
		}
		return decodeItems([]byte(inner))
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, err
		}
		questions, ok := obj["questions"]
		if !ok {
			if _, looksLikeQuestion := obj["text"]; looksLikeQuestion {
				return []json.RawMessage{json.RawMessage(trimmed)}, nil
			}
			return nil, errNoQuestions
		}
		questions = bytes.TrimSpace(questions)
		if len(questions) > 0 && questions[0] == '{' {
			return []json.RawMessage{questions}, nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(questions, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, errNoQuestions
}

// extractJSON pulls the outermost JSON object or array out of free text,
// looking inside a fenced code block first when there is one.
func extractJSON(text string) ([]byte, bool) {
	if fenced, ok := fencedBlock(text); ok {
		text = fenced
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, false
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return nil, false
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, false
	}
	return candidate, true
}

func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	body := text[open+3:]
	// skip the language tag line, e.g. ```json
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	end := strings.Index(body, "```")
	if end < 0 {
		return "", false
	}
	return body[:end], true
}
