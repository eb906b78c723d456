package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"book-discovery-be/pkg/vectorindex"
)

// Index is a minimal REST client for Qdrant's points search
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ vectorindex.Index = &Index{}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		ID      json.RawMessage `json:"id"`
		Score   float64         `json:"score"`
		Payload map[string]any  `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

func (i *Index) Query(ctx context.Context, q vectorindex.Query) ([]vectorindex.Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(searchRequest{Vector: q.Vector, Limit: q.TopK, WithPayload: q.IncludeMetadata})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/search", i.url, i.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if i.apiKey != "" {
		req.Header.Set("api-key", i.apiKey)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("qdrant search failed: %s: %s", resp.Status, string(msg))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("qdrant decode: %w", err)
	}

	matches := make([]vectorindex.Match, 0, len(out.Result))
	for _, r := range out.Result {
		match := vectorindex.Match{
			ID:       pointID(r.ID),
			Score:    r.Score,
			Metadata: r.Payload,
		}
		// Books are keyed by payload id when points use generated uuids
		if id := match.String(vectorindex.MetaID); id != "" {
			match.ID = id
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// pointID accepts Qdrant's numeric or uuid point ids
func pointID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
