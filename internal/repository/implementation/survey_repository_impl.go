package implementation

import (
	"context"
	"errors"

	"book-discovery-be/internal/entity"
	"book-discovery-be/internal/mapper"
	"book-discovery-be/internal/model"
	"book-discovery-be/internal/repository/contract"
	"book-discovery-be/internal/repository/scope"
	"book-discovery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SurveyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SurveyMapper
}

func NewSurveyRepository(db *gorm.DB) contract.SurveyRepository {
	return &SurveyRepositoryImpl{
		db:     db,
		mapper: mapper.NewSurveyMapper(),
	}
}

func (r *SurveyRepositoryImpl) CreateSession(ctx context.Context, session *entity.SurveySession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SurveyRepositoryImpl) UpdateSession(ctx context.Context, session *entity.SurveySession) error {
	m := r.mapper.SessionToModel(session)
	return specification.ByID{ID: session.Id}.Apply(r.db.WithContext(ctx).Model(&model.SurveySession{})).
		Updates(map[string]interface{}{
			"question_count": m.QuestionCount,
			"expanded":       m.Expanded,
			"revision":       m.Revision,
			"completed_at":   m.CompletedAt,
		}).Error
}

func (r *SurveyRepositoryImpl) DeleteResponses(ctx context.Context, sessionId uuid.UUID) error {
	query := specification.Filter("session_id", sessionId).Apply(r.db.WithContext(ctx))
	return query.Delete(&model.SurveyResponse{}).Error
}

func (r *SurveyRepositoryImpl) CreateResponses(ctx context.Context, responses []*entity.SurveyResponse) error {
	if len(responses) == 0 {
		return nil
	}
	models := make([]*model.SurveyResponse, len(responses))
	for i, resp := range responses {
		m, err := r.mapper.ResponseToModel(resp)
		if err != nil {
			return err
		}
		models[i] = m
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		responses[i].Id = m.Id
		responses[i].CreatedAt = m.CreatedAt
	}
	return nil
}

func (r *SurveyRepositoryImpl) FindSession(ctx context.Context, id uuid.UUID) (*entity.SurveySession, error) {
	var m model.SurveySession
	query := specification.ByID{ID: id}.Apply(r.db.WithContext(ctx))
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SurveyRepositoryImpl) FindResponses(ctx context.Context, sessionId uuid.UUID) ([]*entity.SurveyResponse, error) {
	var models []*model.SurveyResponse
	query := specification.Filter("session_id", sessionId).Apply(r.db.WithContext(ctx))
	if err := query.Scopes(scope.OrderByPositionAsc, scope.OrderByCreatedAsc).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SurveyResponse, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ResponseToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
