package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"book-discovery-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/books/points/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.Limit)
		assert.True(t, req.WithPayload)

		_, _ = w.Write([]byte(`{"status":"ok","result":[
			{"id":7,"score":0.8,"payload":{"title":"Numbered"}},
			{"id":"6f1c","score":0.7,"payload":{"id":"book-9","title":"Keyed"}}
		]}`))
	}))
	defer srv.Close()

	idx := NewIndex(Config{URL: srv.URL + "/", APIKey: "secret", Collection: "books"})
	matches, err := idx.Query(context.Background(), vectorindex.Query{Vector: []float32{1, 0}, TopK: 2, IncludeMetadata: true})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "7", matches[0].ID)
	assert.Equal(t, "book-9", matches[1].ID)
	assert.Equal(t, "Keyed", matches[1].String(vectorindex.MetaTitle))
}

func TestIndex_QueryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewIndex(Config{URL: srv.URL, Collection: "missing"}).
		Query(context.Background(), vectorindex.Query{Vector: []float32{1}, TopK: 1})
	assert.Error(t, err)
}
