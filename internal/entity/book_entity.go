package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookEmbedding struct {
	Id             uuid.UUID
	BookId         string
	Title          string
	Description    string
	ImageUrl       string
	DetailUrl      string
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
