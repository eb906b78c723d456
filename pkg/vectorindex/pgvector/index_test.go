package pgvector

import (
	"context"
	"errors"
	"testing"

	"book-discovery-be/internal/entity"
	"book-discovery-be/internal/repository/contract"
	"book-discovery-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	contract.BookEmbeddingRepository
	results []*contract.ScoredBookEmbedding
	err     error
	limit   int
}

func (f *fakeRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredBookEmbedding, error) {
	f.limit = limit
	return f.results, f.err
}

func TestIndex_QueryPreservesOrder(t *testing.T) {
	repo := &fakeRepo{results: []*contract.ScoredBookEmbedding{
		{Embedding: &entity.BookEmbedding{BookId: "b2", Title: "Two", DetailUrl: "/b2"}, Similarity: 0.9},
		{Embedding: &entity.BookEmbedding{BookId: "b1", Title: "One"}, Similarity: 0.95},
		{Embedding: &entity.BookEmbedding{BookId: "b2", Title: "Two"}, Similarity: 0.9},
	}}

	matches, err := NewIndex(repo).Query(context.Background(), vectorindex.Query{
		Vector: []float32{0.1}, TopK: 3, IncludeMetadata: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.limit)

	require.Len(t, matches, 3)
	assert.Equal(t, []string{"b2", "b1", "b2"}, []string{matches[0].ID, matches[1].ID, matches[2].ID})
	assert.Equal(t, "Two", matches[0].String(vectorindex.MetaTitle))
	assert.Equal(t, "/b2", matches[0].String(vectorindex.MetaURL))
}

func TestIndex_QueryErrors(t *testing.T) {
	_, err := NewIndex(&fakeRepo{}).Query(context.Background(), vectorindex.Query{TopK: 3})
	assert.ErrorIs(t, err, vectorindex.ErrEmptyQueryVector)

	boom := errors.New("connection reset")
	_, err = NewIndex(&fakeRepo{err: boom}).Query(context.Background(), vectorindex.Query{Vector: []float32{1}, TopK: 1})
	assert.ErrorIs(t, err, boom)
}
