package unitofwork

import "context"

// RepositoryFactory hands out a unit of work per consumed message
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
