package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"book-discovery-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(n int) []BookCandidate {
	out := make([]BookCandidate, n)
	for i := range out {
		out[i] = BookCandidate{
			ID:          fmt.Sprintf("book-%02d", i+1),
			Title:       fmt.Sprintf("Saga númer %02d", i+1),
			Description: "Lýsing",
		}
	}
	return out
}

func TestReconciler_TwelveUnreadEightMentioned(t *testing.T) {
	books := candidates(12)

	// Mention books 1..6 and 9..10 in a shuffled order; 7 and 8 are missing
	var reply strings.Builder
	for n, idx := range []int{9, 0, 5, 2, 8, 1, 3, 4} {
		fmt.Fprintf(&reply, "%d. %s: Góð bók númer %d.\n", n+1, books[idx].Title, idx+1)
	}
	provider := &fakeLLM{completion: &llm.Completion{TextBlocks: []string{reply.String()}}}

	got, err := NewReconciler(provider, nil, nil).Reconcile(context.Background(), books, NewReadSet())
	require.NoError(t, err)

	require.Len(t, got, 10)
	placeholders := 0
	for i, rec := range got {
		assert.Equal(t, books[i].ID, rec.ID, "retrieval order is kept")
		assert.NotEmpty(t, rec.Rationale)
		if rec.Rationale == NoRationale {
			placeholders++
			continue
		}
		assert.Equal(t, fmt.Sprintf("Góð bók númer %d.", i+1), rec.Rationale)
	}
	assert.Equal(t, 2, placeholders)
	assert.Equal(t, NoRationale, got[6].Rationale)
	assert.Equal(t, NoRationale, got[7].Rationale)
	assert.Equal(t, rationaleMaxTokens, provider.options.MaxTokens)
}

func TestReconciler_FiltersReadBeforePrompting(t *testing.T) {
	books := candidates(4)
	provider := &fakeLLM{completion: &llm.Completion{TextBlocks: []string{"1. Saga númer 02: Frábær."}}}

	got, err := NewReconciler(provider, nil, nil).Reconcile(context.Background(), books, NewReadSet("book-01", "book-03"))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "book-02", got[0].ID)
	assert.Equal(t, "Frábær.", got[0].Rationale)
	assert.Equal(t, "book-04", got[1].ID)
	assert.Equal(t, NoRationale, got[1].Rationale)

	assert.NotContains(t, provider.prompt, "Saga númer 01")
	assert.NotContains(t, provider.prompt, "Saga númer 03")
	assert.Contains(t, provider.prompt, "- Saga númer 02: Lýsing")
}

func TestReconciler_AllRead(t *testing.T) {
	books := candidates(10)
	read := NewReadSet()
	for _, b := range books {
		read.Toggle(b.ID)
	}
	provider := &fakeLLM{completion: &llm.Completion{TextBlocks: []string{"1. Saga númer 01: Góð."}}}

	got, err := NewReconciler(provider, nil, nil).Reconcile(context.Background(), books, read)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestReconciler_ModelFailureSurfaces(t *testing.T) {
	provider := &fakeLLM{err: errors.New("overloaded")}

	got, err := NewReconciler(provider, nil, nil).Reconcile(context.Background(), candidates(3), NewReadSet())
	assert.ErrorIs(t, err, ErrRationaleUnavailable)
	assert.Nil(t, got)
}

func TestReconciler_NoTextUsesPlaceholders(t *testing.T) {
	provider := &fakeLLM{completion: &llm.Completion{}}

	got, err := NewReconciler(provider, nil, nil).Reconcile(context.Background(), candidates(3), NewReadSet())
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, rec := range got {
		assert.Equal(t, NoRationale, rec.Rationale)
	}
}

func TestTitleSubstringMatcher(t *testing.T) {
	text := "Here are my picks\n1. Drekinn: Spennandi saga: með dreka.\n2. Refurinn:\n3. Álfar: Töfrar."

	tests := []struct {
		name   string
		title  string
		want   string
		wantOK bool
	}{
		{"keeps text after first separator", "Drekinn", "Spennandi saga: með dreka.", true},
		{"empty rationale falls back", "Refurinn", "", false},
		{"missing title", "Tröll", "", false},
		{"blank title never matches", "  ", "", false},
		{"renumbered list still matches", "Álfar", "Töfrar.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TitleSubstringMatcher{}.Match(text, tt.title)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadSet(t *testing.T) {
	s := NewReadSet()
	assert.True(t, s.Toggle("a"))
	assert.True(t, s.Toggle("b"))
	assert.False(t, s.Toggle("a"))
	assert.Equal(t, []string{"b"}, s.IDs())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["b"]`, string(data))

	var back ReadSet
	require.NoError(t, back.UnmarshalJSON([]byte(`["x","y"]`)))
	assert.True(t, back.Has("x"))
	assert.True(t, back.Has("y"))
}
