package unitofwork

import (
	"context"

	"book-discovery-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BookEmbeddingRepository() contract.BookEmbeddingRepository
	SurveyRepository() contract.SurveyRepository
}
