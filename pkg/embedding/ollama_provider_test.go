package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	got := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, got[0], 1e-6)
	assert.InDelta(t, 0.8, got[1], 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}

func TestOllamaProvider_Generate(t *testing.T) {
	var inputs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var body ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		inputs = append(inputs, body.Input)
		_, _ = w.Write([]byte(`{"embeddings":[[0,3,4]]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "")
	res, err := p.Generate(context.Background(), "story", TaskQuery)
	require.NoError(t, err)

	var norm float64
	for _, v := range res.Embedding.Values {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)

	_, err = p.Generate(context.Background(), "a book", TaskDocument)
	require.NoError(t, err)
	_, err = NewOllamaProvider(srv.URL, "mxbai-embed-large").Generate(context.Background(), "plain", TaskQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{"search_query: story", "search_document: a book", "plain"}, inputs)
}

func TestOllamaProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")

	_, err := p.Generate(context.Background(), "   ", TaskQuery)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.Generate(context.Background(), "story", TaskQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
