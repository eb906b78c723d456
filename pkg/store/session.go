package store

import (
	"time"

	"book-discovery-be/pkg/discovery"
	"book-discovery-be/pkg/survey"
)

// Session is one reader's pass through survey, retrieval and recommendation.
// The survey machine is kept as a snapshot so any store can serialize it.
type Session struct {
	ID     string          `json:"id"`
	Survey survey.Snapshot `json:"survey"`

	// Set by the discovery stage. SearchGeneration counts searches so
	// results computed from older candidates can be recognised.
	Description      string                     `json:"description"`
	Candidates       []discovery.BookCandidate  `json:"candidates"`
	SearchGeneration int                        `json:"search_generation"`
	ReadSet          discovery.ReadSet          `json:"read_set"`
	Recommendations  []discovery.Recommendation `json:"recommendations"`

	// PersistedResponse is the encoded response last handed to the durable
	// store as revision PersistedRevision
	PersistedResponse string     `json:"persisted_response,omitempty"`
	PersistedRevision int        `json:"persisted_revision,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Reads returns the session's read set, creating it on first use
func (s *Session) Reads() discovery.ReadSet {
	if s.ReadSet == nil {
		s.ReadSet = discovery.NewReadSet()
	}
	return s.ReadSet
}

func (s *Session) IsCompleted() bool {
	return s.CompletedAt != nil
}
