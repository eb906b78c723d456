package vectorindex

import (
	"context"
	"errors"
	"fmt"
)

// Metadata keys every adapter fills for a book match
const (
	MetaID          = "id"
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaImageURL    = "image_url"
	MetaURL         = "url"
)

var ErrEmptyQueryVector = errors.New("query vector is empty")

type Query struct {
	Vector          []float32
	TopK            int
	IncludeMetadata bool
}

// Match is one nearest neighbor; adapters return matches in the service's order
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type Index interface {
	Query(ctx context.Context, q Query) ([]Match, error)
}

// String reads a metadata value as text, tolerating numeric ids
func (m Match) String(key string) string {
	v, ok := m.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

func (q Query) Validate() error {
	if len(q.Vector) == 0 {
		return ErrEmptyQueryVector
	}
	if q.TopK <= 0 {
		return fmt.Errorf("topK must be positive, got %d", q.TopK)
	}
	return nil
}
