package mapper

import (
	"encoding/json"

	"book-discovery-be/internal/entity"
	"book-discovery-be/internal/model"

	"gorm.io/datatypes"
)

type SurveyMapper struct{}

func NewSurveyMapper() *SurveyMapper {
	return &SurveyMapper{}
}

func (m *SurveyMapper) SessionToEntity(s *model.SurveySession) *entity.SurveySession {
	if s == nil {
		return nil
	}
	return &entity.SurveySession{
		Id:            s.Id,
		QuestionCount: s.QuestionCount,
		Expanded:      s.Expanded,
		Revision:      s.Revision,
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *SurveyMapper) SessionToModel(s *entity.SurveySession) *model.SurveySession {
	if s == nil {
		return nil
	}
	return &model.SurveySession{
		Id:            s.Id,
		QuestionCount: s.QuestionCount,
		Expanded:      s.Expanded,
		Revision:      s.Revision,
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *SurveyMapper) ResponseToEntity(r *model.SurveyResponse) (*entity.SurveyResponse, error) {
	if r == nil {
		return nil, nil
	}
	var value any
	if len(r.Value) > 0 {
		if err := json.Unmarshal(r.Value, &value); err != nil {
			return nil, err
		}
	}
	return &entity.SurveyResponse{
		Id:          r.Id,
		SessionId:   r.SessionId,
		QuestionKey: r.QuestionKey,
		Position:    r.Position,
		Value:       value,
		CreatedAt:   r.CreatedAt,
	}, nil
}

func (m *SurveyMapper) ResponseToModel(r *entity.SurveyResponse) (*model.SurveyResponse, error) {
	if r == nil {
		return nil, nil
	}
	raw, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}
	return &model.SurveyResponse{
		Id:          r.Id,
		SessionId:   r.SessionId,
		QuestionKey: r.QuestionKey,
		Position:    r.Position,
		Value:       datatypes.JSON(raw),
		CreatedAt:   r.CreatedAt,
	}, nil
}
