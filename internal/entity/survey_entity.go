package entity

import (
	"time"

	"github.com/google/uuid"
)

// SurveySession is the archived header of a completed survey. Revision grows
// each time an edited survey is completed again.
type SurveySession struct {
	Id            uuid.UUID
	QuestionCount int
	Expanded      bool
	Revision      int
	CompletedAt   time.Time
	CreatedAt     time.Time
}

// SurveyResponse is one (session, question key, value) row; Value is a string or []string
type SurveyResponse struct {
	Id          uuid.UUID
	SessionId   uuid.UUID
	QuestionKey string
	Position    int
	Value       any
	CreatedAt   time.Time
}
