package contract

import (
	"context"

	"book-discovery-be/internal/entity"

	"github.com/google/uuid"
)

type SurveyRepository interface {
	CreateSession(ctx context.Context, session *entity.SurveySession) error
	UpdateSession(ctx context.Context, session *entity.SurveySession) error
	CreateResponses(ctx context.Context, responses []*entity.SurveyResponse) error
	DeleteResponses(ctx context.Context, sessionId uuid.UUID) error
	FindSession(ctx context.Context, id uuid.UUID) (*entity.SurveySession, error)
	FindResponses(ctx context.Context, sessionId uuid.UUID) ([]*entity.SurveyResponse, error)
}
