package discovery

import (
	"context"
	"time"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/llm"
	"book-discovery-be/pkg/metrics"
	"book-discovery-be/pkg/survey"
)

const describeMaxTokens = 1000

// Describer turns a survey response into a natural-language book description
type Describer struct {
	provider    llm.LLMProvider
	log         logger.ILogger
	diagnostics logger.ILogger
}

func NewDescriber(provider llm.LLMProvider, log, diagnostics logger.ILogger) *Describer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if diagnostics == nil {
		diagnostics = logger.NewNopLogger()
	}
	return &Describer{provider: provider, log: log, diagnostics: diagnostics}
}

// Describe returns the first text block of the model reply verbatim.
// A failed call or a reply without text yields "", which callers treat as
// "no description available".
func (d *Describer) Describe(ctx context.Context, response survey.Response) string {
	prompt := descriptionPrompt(response)
	d.diagnostics.Debug("DESCRIBER", "Description prompt", map[string]interface{}{"prompt": prompt})

	start := time.Now()
	completion, err := d.provider.Complete(ctx, prompt, llm.WithMaxTokens(describeMaxTokens))
	metrics.ObserveCall("llm", "describe", start, err)
	if err != nil {
		d.log.Warn("DESCRIBER", "Description generation failed", map[string]interface{}{"error": err.Error()})
		return ""
	}

	text := completion.FirstText()
	if text == "" {
		d.log.Warn("DESCRIBER", "Model reply had no text block", nil)
	}
	d.diagnostics.Debug("DESCRIBER", "Description reply", map[string]interface{}{"text": text})
	return text
}
