package expander

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/llm"
	"book-discovery-be/pkg/metrics"
	"book-discovery-be/pkg/survey"
)

const (
	DefaultTimeout = 15 * time.Second
	maxTokens      = 1000
	module         = "EXPANDER"
)

// Result is always usable: on any failure Questions holds the fallback set
type Result struct {
	Questions []survey.Question
	Outcome   OutcomeKind
	Fallback  bool
	Reason    string
}

type Expander struct {
	provider    llm.LLMProvider
	timeout     time.Duration
	diagnostics logger.ILogger
}

func NewExpander(provider llm.LLMProvider, timeout time.Duration, diagnostics logger.ILogger) *Expander {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if diagnostics == nil {
		diagnostics = logger.NewNopLogger()
	}
	return &Expander{
		provider:    provider,
		timeout:     timeout,
		diagnostics: diagnostics,
	}
}

// Expand asks the model once for follow-up questions. existing is the current
// question count and seeds generated keys (question<N>). It never returns an
// empty list and never retries.
func (e *Expander) Expand(ctx context.Context, response survey.Response, existing int) Result {
	prompt, err := buildPrompt(response)
	if err != nil {
		return e.fallback(OutcomeMalformed, fmt.Sprintf("build prompt: %v", err))
	}
	e.diagnostics.Debug(module, "Requesting follow-up questions", map[string]interface{}{
		"prompt": prompt,
	})

	start := time.Now()
	completion, err := e.call(ctx, prompt)
	metrics.ObserveCall("llm", "expand_questions", start, err)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("timed out after %s", e.timeout)
		}
		return e.fallback(OutcomeMalformed, reason)
	}

	outcome := Normalize(completion)
	e.diagnostics.Debug(module, "Normalized model output", map[string]interface{}{
		"outcome": string(outcome.Kind),
		"raw":     outcome.Raw,
		"items":   len(outcome.Items),
	})
	if outcome.Kind == OutcomeMalformed {
		return e.fallback(outcome.Kind, outcome.Reason)
	}

	questions := e.accept(outcome.Items, existing)
	if len(questions) == 0 {
		return e.fallback(outcome.Kind, "no structurally valid questions")
	}

	metrics.ObserveExpansion(metrics.OutcomeSuccess)
	return Result{Questions: questions, Outcome: outcome.Kind}
}

// call enforces the timeout even if the provider ignores ctx
func (e *Expander) call(ctx context.Context, prompt string) (*llm.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type reply struct {
		completion *llm.Completion
		err        error
	}
	done := make(chan reply, 1)
	go func() {
		c, err := e.provider.Complete(ctx, prompt,
			llm.WithMaxTokens(maxTokens),
			llm.WithSystem(systemPrompt),
			llm.WithTool(llm.Tool{
				Name:        ToolName,
				Description: toolDescription,
				Parameters:  requestSchema,
			}),
		)
		done <- reply{completion: c, err: err}
	}()

	select {
	case r := <-done:
		return r.completion, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Expander) fallback(kind OutcomeKind, reason string) Result {
	metrics.ObserveExpansion(metrics.OutcomeFallback)
	e.diagnostics.Warn(module, "Using fallback follow-up questions", map[string]interface{}{
		"outcome": string(kind),
		"reason":  reason,
	})
	return Result{
		Questions: FallbackQuestions(),
		Outcome:   kind,
		Fallback:  true,
		Reason:    reason,
	}
}

type generatedQuestion struct {
	Id             json.RawMessage `json:"id"`
	Text           string          `json:"text"`
	Type           string          `json:"type"`
	Options        []string        `json:"options"`
	AllowTextInput bool            `json:"allowTextInput"`
}

// accept keeps the items that pass itemSchema and maps them to questions
func (e *Expander) accept(items []json.RawMessage, existing int) []survey.Question {
	questions := make([]survey.Question, 0, len(items))
	for i, raw := range items {
		if err := validateItem(raw); err != nil {
			e.diagnostics.Debug(module, "Dropped generated question", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			continue
		}

		var g generatedQuestion
		if err := json.Unmarshal(raw, &g); err != nil {
			continue
		}

		q, ok := toQuestion(g, existing+len(questions)+1)
		if !ok {
			e.diagnostics.Debug(module, "Dropped generated question with too few distinct options", map[string]interface{}{
				"index": i,
			})
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func toQuestion(g generatedQuestion, position int) (survey.Question, bool) {
	kind, ok := survey.ParseKind(g.Type)
	if !ok || !kind.IsChoice() {
		kind = survey.KindSingleChoice
	}

	key := idString(g.Id)
	if key == "" {
		key = fmt.Sprintf("question%d", position)
	}

	options := make([]string, 0, len(g.Options))
	seen := make(map[string]struct{}, len(g.Options))
	for _, o := range g.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		options = append(options, o)
	}
	if len(options) < survey.MinOptions {
		return survey.Question{}, false
	}

	return survey.Question{
		Key:             key,
		Text:            strings.TrimSpace(g.Text),
		Kind:            kind,
		Options:         options,
		AllowCustomText: g.AllowTextInput,
	}, true
}

func idString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func buildPrompt(response survey.Response) (string, error) {
	encoded, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Based on these survey responses: %s, generate %d follow-up questions that would help personalize the story further.",
		encoded, requestedCount,
	), nil
}
