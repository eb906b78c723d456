package huggingface

import (
	"book-discovery-be/pkg/llm"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceProvider_CompleteDecodesToolArguments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","tool_calls":[
			{"function":{"name":"pick","arguments":"{\"a\":1}"}}
		]}}]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("hf-key", srv.URL, "model")
	completion, err := p.Complete(context.Background(), "hi", llm.WithTool(llm.Tool{Name: "pick"}))
	require.NoError(t, err)

	assert.Empty(t, completion.TextBlocks)
	require.Len(t, completion.ToolCalls, 1)
	assert.Equal(t, "pick", completion.ToolCalls[0].Name)
	assert.JSONEq(t, `{"a":1}`, string(completion.ToolCalls[0].Arguments))
}

func TestHuggingFaceProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewHuggingFaceProvider("", srv.URL, "model").Generate(context.Background(), "hi")
	assert.Error(t, err)
}
