package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type BookEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookId         string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Title          string          `gorm:"type:text;not null"`
	Description    string          `gorm:"type:text"`
	ImageUrl       string          `gorm:"type:text"`
	DetailUrl      string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (BookEmbedding) TableName() string {
	return "book_embeddings"
}
