package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SURVEY_EXPANSION_TIMEOUT", "")
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("VECTOR_INDEX", "")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.Survey.ExpansionTimeout)
	assert.Equal(t, DefaultTopK, cfg.Retrieval.TopK)
	assert.Equal(t, MaxTopK, cfg.Retrieval.MaxTopK)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SURVEY_EXPANSION_TIMEOUT", "3s")
	t.Setenv("RETRIEVAL_TOP_K", "500")
	t.Setenv("VECTOR_INDEX", "Qdrant")
	t.Setenv("DIAGNOSTICS_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.Survey.ExpansionTimeout)
	assert.Equal(t, MaxTopK, cfg.Retrieval.TopK)
	assert.Equal(t, "qdrant", cfg.Retrieval.IndexKind)
	assert.True(t, cfg.App.DiagnosticsEnabled)
}

func TestClampTopK(t *testing.T) {
	tests := []struct {
		name string
		topK int
		max  int
		want int
	}{
		{"zero uses default", 0, 50, DefaultTopK},
		{"negative uses default", -3, 50, DefaultTopK},
		{"within range", 25, 50, 25},
		{"above max", 80, 50, 50},
		{"missing max uses ceiling", 80, 0, MaxTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampTopK(tt.topK, tt.max))
		})
	}
}
