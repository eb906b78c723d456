package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"book-discovery-be/pkg/events"
	pktNats "book-discovery-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
	err     error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error {
	f.subject = subject
	f.durable = durableName
	f.handler = handler
	return f.err
}

type recordingDelivery struct {
	sessions []string
	messages [][]byte
}

func (r *recordingDelivery) Send(sessionID string, message []byte) {
	r.sessions = append(r.sessions, sessionID)
	r.messages = append(r.messages, message)
}

func TestSessionEventService_RoutesBySession(t *testing.T) {
	sub := &fakeSubscriber{}
	delivery := &recordingDelivery{}
	svc := NewSessionEventService(sub, delivery, nopLogger)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, "session-stream-worker", sub.durable)

	evt := events.New(events.TypeSurveyExpanded, map[string]interface{}{"session_id": "s-1", "added": 3})
	require.NoError(t, sub.handler(context.Background(), evt))

	require.Equal(t, []string{"s-1"}, delivery.sessions)
	var msg struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(delivery.messages[0], &msg))
	assert.Equal(t, events.TypeSurveyExpanded, msg.Type)
	assert.Equal(t, float64(3), msg.Data["added"])
}

func TestSessionEventService_SkipsEventsWithoutSession(t *testing.T) {
	sub := &fakeSubscriber{}
	delivery := &recordingDelivery{}
	svc := NewSessionEventService(sub, delivery, nopLogger)
	require.NoError(t, svc.Start(context.Background()))

	require.NoError(t, sub.handler(context.Background(), events.New("BOOKS_INDEXED", nil)))
	assert.Empty(t, delivery.sessions)
}

func TestSessionEventService_StartFailure(t *testing.T) {
	sub := &fakeSubscriber{err: errors.New("stream missing")}
	svc := NewSessionEventService(sub, &recordingDelivery{}, nopLogger)
	assert.Error(t, svc.Start(context.Background()))
}
