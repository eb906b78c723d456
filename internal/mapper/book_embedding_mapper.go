package mapper

import (
	"time"

	"book-discovery-be/internal/entity"
	"book-discovery-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type BookEmbeddingMapper struct{}

func NewBookEmbeddingMapper() *BookEmbeddingMapper {
	return &BookEmbeddingMapper{}
}

func (m *BookEmbeddingMapper) ToEntity(e *model.BookEmbedding) *entity.BookEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.BookEmbedding{
		Id:             e.Id,
		BookId:         e.BookId,
		Title:          e.Title,
		Description:    e.Description,
		ImageUrl:       e.ImageUrl,
		DetailUrl:      e.DetailUrl,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *BookEmbeddingMapper) ToModel(e *entity.BookEmbedding) *model.BookEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.BookEmbedding{
		Id:             e.Id,
		BookId:         e.BookId,
		Title:          e.Title,
		Description:    e.Description,
		ImageUrl:       e.ImageUrl,
		DetailUrl:      e.DetailUrl,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *BookEmbeddingMapper) ToEntities(embeddings []*model.BookEmbedding) []*entity.BookEmbedding {
	entities := make([]*entity.BookEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *BookEmbeddingMapper) ToModels(embeddings []*entity.BookEmbedding) []*model.BookEmbedding {
	models := make([]*model.BookEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
