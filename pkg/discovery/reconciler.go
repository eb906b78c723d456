package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/llm"
	"book-discovery-be/pkg/metrics"
)

const (
	MaxRecommendations = 10
	rationaleMaxTokens = 1000
)

var ErrRationaleUnavailable = errors.New("rationale generation failed")

type Reconciler struct {
	provider    llm.LLMProvider
	matcher     RationaleMatcher
	diagnostics logger.ILogger
}

func NewReconciler(provider llm.LLMProvider, matcher RationaleMatcher, diagnostics logger.ILogger) *Reconciler {
	if matcher == nil {
		matcher = TitleSubstringMatcher{}
	}
	if diagnostics == nil {
		diagnostics = logger.NewNopLogger()
	}
	return &Reconciler{provider: provider, matcher: matcher, diagnostics: diagnostics}
}

// Reconcile drops read books, asks the model for rationales and attaches them
// to the first MaxRecommendations unread candidates in retrieval order. The
// model's own ordering is never used for ranking. A failed model call fails
// the whole reconciliation.
func (r *Reconciler) Reconcile(ctx context.Context, candidates []BookCandidate, read ReadSet) ([]Recommendation, error) {
	unread := make([]BookCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !read.Has(c.ID) {
			unread = append(unread, c)
		}
	}
	if len(unread) == 0 {
		return []Recommendation{}, nil
	}

	prompt := rationalePrompt(unread, MaxRecommendations)
	r.diagnostics.Debug("RECONCILER", "Rationale prompt", map[string]interface{}{
		"prompt": prompt,
		"unread": len(unread),
	})

	start := time.Now()
	completion, err := r.provider.Complete(ctx, prompt, llm.WithMaxTokens(rationaleMaxTokens))
	metrics.ObserveCall("llm", "rationale", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRationaleUnavailable, err)
	}

	text := strings.Join(completion.TextBlocks, "\n")
	r.diagnostics.Debug("RECONCILER", "Rationale reply", map[string]interface{}{"text": text})

	if len(unread) > MaxRecommendations {
		unread = unread[:MaxRecommendations]
	}

	out := make([]Recommendation, 0, len(unread))
	matched := 0
	for _, c := range unread {
		rationale, ok := r.matcher.Match(text, c.Title)
		if ok {
			matched++
		} else {
			rationale = NoRationale
		}
		out = append(out, Recommendation{BookCandidate: c, Rationale: rationale})
	}
	metrics.ObserveRationales(matched, len(out)-matched)
	return out, nil
}
