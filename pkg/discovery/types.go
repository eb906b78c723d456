package discovery

import (
	"encoding/json"
	"sort"
)

// BookCandidate is one retrieval result, in the order the index returned it
type BookCandidate struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	ImageRef        string  `json:"image_url,omitempty"`
	DetailURL       string  `json:"url"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Recommendation always carries a rationale, possibly NoRationale
type Recommendation struct {
	BookCandidate
	Rationale string `json:"rationale"`
}

// ReadSet holds the ids of books the reader marked as already read
type ReadSet map[string]struct{}

func NewReadSet(ids ...string) ReadSet {
	s := make(ReadSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ReadSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips the read mark and reports whether the book is now read
func (s ReadSet) Toggle(id string) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s ReadSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s ReadSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *ReadSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewReadSet(ids...)
	return nil
}
