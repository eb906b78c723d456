package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SurveySession struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	QuestionCount int       `gorm:"not null;default:0"`
	Expanded      bool      `gorm:"not null;default:false"`
	Revision      int       `gorm:"not null;default:1"`
	CompletedAt   time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	Responses []SurveyResponse `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (SurveySession) TableName() string {
	return "survey_sessions"
}

type SurveyResponse struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	QuestionKey string         `gorm:"type:varchar(100);not null"`
	Position    int            `gorm:"not null;default:0"`
	Value       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}
