package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	questions, err := DefaultCatalog()
	require.NoError(t, err)
	require.Len(t, questions, 6)

	wantKeys := []string{KeyReaderGender, KeyReaderAge, KeyFavoriteGenre, KeyCharacterTrait, KeyStoryPlot, KeyStoryLocation}
	for i, q := range questions {
		assert.Equal(t, wantKeys[i], q.Key)
		assert.Equal(t, i+1, q.Id)
		assert.NoError(t, q.Validate())
	}

	assert.Equal(t, KindSingleChoice, questions[0].Kind)
	assert.False(t, questions[1].AllowCustomText)
	assert.Equal(t, KindMultipleChoice, questions[5].Kind)
	assert.True(t, questions[5].AllowCustomText)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "questions: []"},
		{"unknown type", "questions:\n  - key: a\n    text: A?\n    type: slider\n    options: [x, y]"},
		{"too few options", "questions:\n  - key: a\n    text: A?\n    type: single-choice\n    options: [x]"},
		{"duplicate key", "questions:\n  - key: a\n    text: A?\n    type: text\n  - key: a\n    text: B?\n    type: text"},
		{"not yaml", "questions: [::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
