package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Tool describes a function the model may call instead of answering in prose.
// Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is one structured invocation returned by the model
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Completion keeps the raw shape of a model reply: prose blocks and tool calls
type Completion struct {
	TextBlocks []string
	ToolCalls  []ToolCall
}

// FirstText returns the first text block, or "" when the reply had none
func (c *Completion) FirstText() string {
	if c == nil || len(c.TextBlocks) == 0 {
		return ""
	}
	return c.TextBlocks[0]
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	System      string
	Tools       []Tool
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithSystem(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

func WithTool(tool Tool) Option {
	return func(o *Options) {
		o.Tools = append(o.Tools, tool)
	}
}

// Apply folds opts over a copy of defaults
func Apply(defaults Options, opts ...Option) *Options {
	o := defaults
	o.Tools = append([]Tool(nil), defaults.Tools...)
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Complete sends a single prompt and returns every text block and tool call
	Complete(ctx context.Context, prompt string, options ...Option) (*Completion, error)
}
