package implementation

import (
	"context"

	"book-discovery-be/internal/entity"
	"book-discovery-be/internal/mapper"
	"book-discovery-be/internal/model"
	"book-discovery-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookEmbeddingMapper
}

func NewBookEmbeddingRepository(db *gorm.DB) contract.BookEmbeddingRepository {
	return &BookEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookEmbeddingMapper(),
	}
}

// CreateBulk upserts on book_id so re-running an import refreshes vectors and metadata
func (r *BookEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.BookEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "image_url", "detail_url", "embedding_value", "updated_at"}),
		}).
		Create(models).Error
	if err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *BookEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredBookEmbedding, error) {
	if limit <= 0 {
		limit = 10
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type result struct {
		model.BookEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("book_embeddings").
		Select("book_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredBookEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredBookEmbedding{
			Embedding:  r.mapper.ToEntity(&res.BookEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
