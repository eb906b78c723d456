package pgvector

import (
	"context"
	"fmt"

	"book-discovery-be/internal/repository/contract"
	"book-discovery-be/pkg/vectorindex"
)

// Index serves nearest-neighbor queries from the book_embeddings table
type Index struct {
	repo contract.BookEmbeddingRepository
}

var _ vectorindex.Index = &Index{}

func NewIndex(repo contract.BookEmbeddingRepository) *Index {
	return &Index{repo: repo}
}

func (i *Index) Query(ctx context.Context, q vectorindex.Query) ([]vectorindex.Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	scored, err := i.repo.SearchSimilarWithScore(ctx, q.Vector, q.TopK)
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}

	matches := make([]vectorindex.Match, 0, len(scored))
	for _, s := range scored {
		match := vectorindex.Match{
			ID:    s.Embedding.BookId,
			Score: s.Similarity,
		}
		if q.IncludeMetadata {
			match.Metadata = map[string]any{
				vectorindex.MetaID:          s.Embedding.BookId,
				vectorindex.MetaTitle:       s.Embedding.Title,
				vectorindex.MetaDescription: s.Embedding.Description,
				vectorindex.MetaImageURL:    s.Embedding.ImageUrl,
				vectorindex.MetaURL:         s.Embedding.DetailUrl,
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}
