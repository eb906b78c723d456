package ollama

import (
	"book-discovery-be/pkg/llm"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Complete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama","done":true,"message":{"role":"assistant","content":"ok",
			"tool_calls":[{"function":{"name":"pick","arguments":{"n":2}}}]}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama")
	completion, err := p.Complete(context.Background(), "question",
		llm.WithSystem("sys"),
		llm.WithMaxTokens(64),
		llm.WithTool(llm.Tool{Name: "pick", Parameters: map[string]any{"type": "object"}}),
	)
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, 64, got.Options.NumPredict)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "function", got.Tools[0].Type)

	assert.Equal(t, "ok", completion.FirstText())
	require.Len(t, completion.ToolCalls, 1)
	assert.JSONEq(t, `{"n":2}`, string(completion.ToolCalls[0].Arguments))
}
