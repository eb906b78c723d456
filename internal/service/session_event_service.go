package service

import (
	"context"
	"encoding/json"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/events"
	pktNats "book-discovery-be/pkg/nats"
)

// SessionDelivery pushes real-time updates to the readers following a session.
// Typically implemented by the WebSocket Hub.
type SessionDelivery interface {
	Send(sessionID string, message []byte)
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

const sessionStreamDurable = "session-stream-worker"

type SessionEventService struct {
	subscriber EventSubscriber
	delivery   SessionDelivery
	logger     logger.ILogger
}

type sessionEventMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func NewSessionEventService(sub EventSubscriber, delivery SessionDelivery, log logger.ILogger) *SessionEventService {
	return &SessionEventService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start listens to every domain event with a durable consumer shared by all instances.
// The hub fans each message out to the instance holding the connection.
func (s *SessionEventService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.Subject(">"), sessionStreamDurable, s.handleEvent); err != nil {
		s.logger.Error("SessionEvents", "Failed to start session event subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("SessionEvents", "Session event stream started", map[string]interface{}{"durable": sessionStreamDurable})
	return nil
}

func (s *SessionEventService) handleEvent(ctx context.Context, event events.Event) error {
	sessionID, _ := event.Payload()["session_id"].(string)
	if sessionID == "" {
		s.logger.Warn("SessionEvents", "Event without session_id skipped", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	data, err := json.Marshal(sessionEventMessage{Type: event.EventType(), Data: event.Payload()})
	if err != nil {
		// Redelivery cannot fix an unencodable payload
		s.logger.Error("SessionEvents", "Failed to encode event", map[string]interface{}{"error": err.Error()})
		return nil
	}

	s.delivery.Send(sessionID, data)
	return nil
}
