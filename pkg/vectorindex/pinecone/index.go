package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"book-discovery-be/pkg/vectorindex"
)

// Index queries a Pinecone index host over its data plane REST API
type Index struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

var _ vectorindex.Index = &Index{}

func NewIndex(host, apiKey, namespace string) (*Index, error) {
	if host == "" {
		return nil, errors.New("pinecone index host is required")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return &Index{
		host:      strings.TrimRight(host, "/"),
		apiKey:    apiKey,
		namespace: namespace,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (i *Index) Query(ctx context.Context, q vectorindex.Query) ([]vectorindex.Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(queryRequest{
		Vector:          q.Vector,
		TopK:            q.TopK,
		IncludeMetadata: q.IncludeMetadata,
		Namespace:       i.namespace,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.host+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", i.apiKey)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pinecone query failed (status %d): %s", resp.StatusCode, string(msg))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pinecone decode: %w", err)
	}

	matches := make([]vectorindex.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, vectorindex.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}
