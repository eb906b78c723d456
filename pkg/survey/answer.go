package survey

import (
	"encoding/json"
	"strings"
)

// Answer holds the reader's current value for one question.
// Single-choice and free-text questions use Text. Multiple-choice questions
// keep catalog options in Selected and at most one custom entry in Custom.
type Answer struct {
	QuestionId int      `json:"question_id"`
	Kind       Kind     `json:"kind"`
	Text       string   `json:"text,omitempty"`
	Selected   []string `json:"selected,omitempty"`
	Custom     string   `json:"custom,omitempty"`
}

// Valid is true for a non-empty string or a set with at least one member
func (a *Answer) Valid() bool {
	if a == nil {
		return false
	}
	if a.Kind == KindMultipleChoice {
		return len(a.Values()) > 0
	}
	return strings.TrimSpace(a.Text) != ""
}

// Values returns the multiple-choice set with the custom entry unioned in
func (a *Answer) Values() []string {
	values := make([]string, 0, len(a.Selected)+1)
	values = append(values, a.Selected...)
	if a.Custom != "" && !contains(a.Selected, a.Custom) {
		values = append(values, a.Custom)
	}
	return values
}

// Value returns string for single/free-text answers and []string for sets
func (a *Answer) Value() any {
	if a.Kind == KindMultipleChoice {
		return a.Values()
	}
	return a.Text
}

func (a *Answer) clone() *Answer {
	c := *a
	c.Selected = append([]string(nil), a.Selected...)
	return &c
}

// AnswerStore is an insertion-ordered mapping from question id to answer.
type AnswerStore struct {
	order   []int
	answers map[int]*Answer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[int]*Answer)}
}

func (s *AnswerStore) Get(questionId int) (*Answer, bool) {
	a, ok := s.answers[questionId]
	return a, ok
}

// Put overwrites the answer, keeping the original insertion position
func (s *AnswerStore) Put(a *Answer) {
	if _, exists := s.answers[a.QuestionId]; !exists {
		s.order = append(s.order, a.QuestionId)
	}
	s.answers[a.QuestionId] = a
}

func (s *AnswerStore) Delete(questionId int) {
	if _, exists := s.answers[questionId]; !exists {
		return
	}
	delete(s.answers, questionId)
	for i, id := range s.order {
		if id == questionId {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *AnswerStore) Len() int {
	return len(s.order)
}

// Entries returns copies of all answers in insertion order
func (s *AnswerStore) Entries() []*Answer {
	out := make([]*Answer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.answers[id].clone())
	}
	return out
}

func (s *AnswerStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}

func (s *AnswerStore) UnmarshalJSON(data []byte) error {
	var entries []*Answer
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.order = nil
	s.answers = make(map[int]*Answer, len(entries))
	for _, a := range entries {
		if a != nil {
			s.Put(a)
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
