package dto

import (
	"time"

	"book-discovery-be/pkg/survey"
)

type SessionResponse struct {
	Id             string            `json:"id"`
	State          string            `json:"state"`
	Step           int               `json:"step"`
	HighestVisited int               `json:"highest_visited"`
	Frontier       int               `json:"frontier"`
	Total          int               `json:"total"`
	Expanded       bool              `json:"expanded"`
	IsComplete     bool              `json:"is_complete"`
	Current        survey.Question   `json:"current"`
	Questions      []survey.Question `json:"questions"`
	Answers        survey.Response   `json:"answers"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// AnswerRequest selects (or toggles) an option on choice questions and sets the text of free-text ones
type AnswerRequest struct {
	Value string `json:"value" validate:"required,max=500"`
}

type CustomTextRequest struct {
	Text string `json:"text" validate:"max=200"`
}

type GoToRequest struct {
	Step int `json:"step"`
}

type ExpansionResponse struct {
	Added    []survey.Question `json:"added"`
	Outcome  string            `json:"outcome"`
	Fallback bool              `json:"fallback"`
}

type TransitionResponse struct {
	Transition string             `json:"transition"`
	Session    *SessionResponse   `json:"session"`
	Expansion  *ExpansionResponse `json:"expansion,omitempty"`
}

type SurveyResponseResponse struct {
	SessionId  string          `json:"session_id"`
	IsComplete bool            `json:"is_complete"`
	Response   survey.Response `json:"response"`
}

// PersistSurveyMessage is the payload of the survey persistence topic.
// Keys lists the answered question keys in question order; Revision grows
// each time the session is completed with a changed response.
type PersistSurveyMessage struct {
	SessionId     string         `json:"session_id"`
	Revision      int            `json:"revision"`
	QuestionCount int            `json:"question_count"`
	Expanded      bool           `json:"expanded"`
	Responses     map[string]any `json:"responses"`
	Keys          []string       `json:"keys"`
	CompletedAt   time.Time      `json:"completed_at"`
}
