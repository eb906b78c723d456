package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"book-discovery-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher writes session events to the JetStream events stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(url string) (*Publisher, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, js: js}, nil
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event.EventType())
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID(event))); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// msgID lets JetStream drop duplicates when a publish is retried
func msgID(event events.Event) string {
	if id, ok := event.Payload()["session_id"]; ok {
		return fmt.Sprintf("%s-%v-%d", event.EventType(), id, event.Timestamp().UnixNano())
	}
	return fmt.Sprintf("%s-%d", event.EventType(), event.Timestamp().UnixNano())
}
