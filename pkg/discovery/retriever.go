package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-discovery-be/pkg/embedding"
	"book-discovery-be/pkg/metrics"
	"book-discovery-be/pkg/vectorindex"
)

const (
	DefaultTopK = 10
	MaxTopK     = 50
)

var (
	ErrEmptyDescription = errors.New("description is empty")
	ErrEmptyVector      = errors.New("embedding service returned an empty vector")
)

// Retriever embeds a description and queries the vector index, always in that order
type Retriever struct {
	embedder    embedding.EmbeddingProvider
	index       vectorindex.Index
	defaultTopK int
	maxTopK     int
}

func NewRetriever(embedder embedding.EmbeddingProvider, index vectorindex.Index, defaultTopK, maxTopK int) *Retriever {
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	if defaultTopK <= 0 || defaultTopK > maxTopK {
		defaultTopK = min(DefaultTopK, maxTopK)
	}
	return &Retriever{
		embedder:    embedder,
		index:       index,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

// TopK resolves a requested result count: non-positive means default, large values clamp to max
func (r *Retriever) TopK(requested int) int {
	if requested <= 0 {
		return r.defaultTopK
	}
	return min(requested, r.maxTopK)
}

// Retrieve returns candidates in exactly the order the index produced them,
// duplicates included.
func (r *Retriever) Retrieve(ctx context.Context, description string, topK int) ([]BookCandidate, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	start := time.Now()
	res, err := r.embedder.Generate(ctx, description, embedding.TaskQuery)
	metrics.ObserveCall("embedding", "embed_description", start, err)
	if err != nil {
		return nil, fmt.Errorf("embed description: %w", err)
	}
	if res == nil || len(res.Embedding.Values) == 0 {
		return nil, ErrEmptyVector
	}

	start = time.Now()
	matches, err := r.index.Query(ctx, vectorindex.Query{
		Vector:          res.Embedding.Values,
		TopK:            r.TopK(topK),
		IncludeMetadata: true,
	})
	metrics.ObserveCall("vector_index", "query", start, err)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	candidates := make([]BookCandidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, toCandidate(m))
	}
	return candidates, nil
}

func toCandidate(m vectorindex.Match) BookCandidate {
	id := m.String(vectorindex.MetaID)
	if id == "" {
		id = m.ID
	}
	return BookCandidate{
		ID:              id,
		Title:           m.String(vectorindex.MetaTitle),
		Description:     m.String(vectorindex.MetaDescription),
		ImageRef:        m.String(vectorindex.MetaImageURL),
		DetailURL:       m.String(vectorindex.MetaURL),
		SimilarityScore: m.Score,
	}
}
