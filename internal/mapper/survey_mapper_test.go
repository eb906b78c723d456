package mapper

import (
	"testing"

	"book-discovery-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyMapper_ResponseRoundTrip(t *testing.T) {
	m := NewSurveyMapper()
	sessionId := uuid.New()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"single value", "Ævintýri", "Ævintýri"},
		{"multiple values", []string{"Hugrakkur", "Fyndinn"}, []any{"Hugrakkur", "Fyndinn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := m.ResponseToModel(&entity.SurveyResponse{
				SessionId:   sessionId,
				QuestionKey: "story-plot",
				Position:    4,
				Value:       tt.value,
			})
			require.NoError(t, err)

			back, err := m.ResponseToEntity(row)
			require.NoError(t, err)
			assert.Equal(t, sessionId, back.SessionId)
			assert.Equal(t, "story-plot", back.QuestionKey)
			assert.Equal(t, 4, back.Position)
			assert.Equal(t, tt.want, back.Value)
		})
	}
}
