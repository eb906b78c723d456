package bus

import (
	"context"
	"time"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/events"
	pktNats "book-discovery-be/pkg/nats"
)

// Publisher emits domain events. Publishing is best effort: failures are
// logged and never reach the caller.
type Publisher interface {
	PublishSurveyExpanded(ctx context.Context, sessionId string, added int, outcome string, fallback bool)
	PublishSurveyCompleted(ctx context.Context, sessionId string, response map[string]any, questionCount int, expanded bool)
	PublishRecommendationsGenerated(ctx context.Context, sessionId string, bookIds []string, placeholders int)
}

type eventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

// NatsPublisher implements Publisher using NATS JetStream
type NatsPublisher struct {
	sink    eventSink
	logger  logger.ILogger
	timeout time.Duration
}

var _ eventSink = &pktNats.Publisher{}

// NewNatsPublisher accepts a nil publisher, in which case every call is a no-op
func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	p := &NatsPublisher{logger: logger, timeout: 3 * time.Second}
	if publisher != nil {
		p.sink = publisher
	}
	return p
}

func (p *NatsPublisher) PublishSurveyExpanded(ctx context.Context, sessionId string, added int, outcome string, fallback bool) {
	p.publish(ctx, events.New(events.TypeSurveyExpanded, map[string]interface{}{
		"session_id":  sessionId,
		"added":       added,
		"outcome":     outcome,
		"fallback":    fallback,
		"entity_type": "survey_session",
		"entity_id":   sessionId,
	}))
}

func (p *NatsPublisher) PublishSurveyCompleted(ctx context.Context, sessionId string, response map[string]any, questionCount int, expanded bool) {
	p.publish(ctx, events.New(events.TypeSurveyCompleted, map[string]interface{}{
		"session_id":     sessionId,
		"response":       response,
		"question_count": questionCount,
		"expanded":       expanded,
		"entity_type":    "survey_session",
		"entity_id":      sessionId,
	}))
}

func (p *NatsPublisher) PublishRecommendationsGenerated(ctx context.Context, sessionId string, bookIds []string, placeholders int) {
	p.publish(ctx, events.New(events.TypeRecommendationsGenerated, map[string]interface{}{
		"session_id":   sessionId,
		"book_ids":     bookIds,
		"count":        len(bookIds),
		"placeholders": placeholders,
		"entity_type":  "survey_session",
		"entity_id":    sessionId,
	}))
}

func (p *NatsPublisher) publish(ctx context.Context, evt events.BaseEvent) {
	if p.sink == nil {
		return
	}

	// Detached from the request so a finished response does not cancel the publish
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.sink.Publish(pubCtx, evt); err != nil {
		p.logger.Error("BUS", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}
