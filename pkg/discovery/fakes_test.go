package discovery

import (
	"context"
	"errors"

	"book-discovery-be/pkg/embedding"
	"book-discovery-be/pkg/llm"
	"book-discovery-be/pkg/vectorindex"
)

type fakeLLM struct {
	completion *llm.Completion
	err        error
	calls      int
	prompt     string
	options    *llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	f.calls++
	f.prompt = prompt
	f.options = llm.Apply(llm.Options{}, opts...)
	return f.completion, f.err
}

type fakeEmbedder struct {
	values []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: f.values}}, nil
}

type fakeIndex struct {
	matches []vectorindex.Match
	err     error
	calls   int
	query   vectorindex.Query
}

func (f *fakeIndex) Query(ctx context.Context, q vectorindex.Query) ([]vectorindex.Match, error) {
	f.calls++
	f.query = q
	return f.matches, f.err
}
