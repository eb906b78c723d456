package contract

import (
	"context"

	"book-discovery-be/internal/entity"
)

// ScoredBookEmbedding wraps BookEmbedding with its similarity score
type ScoredBookEmbedding struct {
	Embedding  *entity.BookEmbedding
	Similarity float64 // cosine similarity, 1.0 = identical
}

type BookEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.BookEmbedding) error
	// SearchSimilarWithScore returns the nearest books ordered by descending similarity
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredBookEmbedding, error)
}
