package nats

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"book-discovery-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRoundTrip(t *testing.T) {
	subject := Subject(events.TypeSurveyCompleted)
	assert.Equal(t, "events.SURVEY_COMPLETED", subject)
	assert.Equal(t, events.TypeSurveyCompleted, EventType(subject))
}

func TestMsgID(t *testing.T) {
	withSession := events.New(events.TypeSurveyExpanded, map[string]interface{}{"session_id": "s-1"})
	assert.True(t, strings.HasPrefix(msgID(withSession), "SURVEY_EXPANDED-s-1-"))

	bare := events.New("BOOKS_INDEXED", nil)
	assert.True(t, strings.HasPrefix(msgID(bare), "BOOKS_INDEXED-"))
	assert.NotContains(t, msgID(bare), "s-1")
}

func TestOccurredAt(t *testing.T) {
	event := events.New(events.TypeSurveyCompleted, map[string]interface{}{"session_id": "s-1"})
	raw, err := json.Marshal(event.Payload())
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.True(t, occurredAt(payload).Equal(event.Timestamp()))

	before := time.Now()
	assert.False(t, occurredAt(map[string]interface{}{"occurred_at": "yesterday"}).Before(before))
}
