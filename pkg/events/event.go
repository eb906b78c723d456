package events

import "time"

// Event types published on the bus as events.<type>
const (
	TypeSurveyExpanded           = "SURVEY_EXPANDED"
	TypeSurveyCompleted          = "SURVEY_COMPLETED"
	TypeRecommendationsGenerated = "RECOMMENDATIONS_GENERATED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New stamps an event with the current time and records it in the payload
func New(eventType string, data map[string]interface{}) BaseEvent {
	now := time.Now()
	if data == nil {
		data = make(map[string]interface{})
	}
	data["occurred_at"] = now
	return BaseEvent{Type: eventType, Data: data, OccurredAt: now}
}
