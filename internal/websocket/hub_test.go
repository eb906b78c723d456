package websocket

import (
	"context"
	"testing"
	"time"

	"book-discovery-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func TestHub_SendReachesOnlyThatSession(t *testing.T) {
	hub := newRunningHub(t)

	first := &Client{hub: hub, sessionID: "s-1", send: make(chan []byte, 4)}
	second := &Client{hub: hub, sessionID: "s-1", send: make(chan []byte, 4)}
	other := &Client{hub: hub, sessionID: "s-2", send: make(chan []byte, 4)}
	hub.register <- first
	hub.register <- second
	hub.register <- other

	require.Eventually(t, func() bool { return hub.Listeners("s-1") == 2 }, time.Second, 10*time.Millisecond)

	hub.Send("s-1", []byte(`{"type":"SURVEY_EXPANDED"}`))

	assert.Equal(t, `{"type":"SURVEY_EXPANDED"}`, string(<-first.send))
	assert.Equal(t, `{"type":"SURVEY_EXPANDED"}`, string(<-second.send))
	assert.Empty(t, other.send)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := newRunningHub(t)

	slow := &Client{hub: hub, sessionID: "s-1", send: make(chan []byte, 1)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.Listeners("s-1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Send("s-1", []byte("one"))
	hub.Send("s-1", []byte("two"))

	require.Eventually(t, func() bool { return hub.Listeners("s-1") == 0 }, time.Second, 10*time.Millisecond)

	msg, ok := <-slow.send
	assert.True(t, ok)
	assert.Equal(t, "one", string(msg))
	_, ok = <-slow.send
	assert.False(t, ok)
}
