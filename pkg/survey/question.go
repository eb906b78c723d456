package survey

import (
	"fmt"
	"strings"
)

// Kind is the answer shape a question expects
type Kind string

const (
	KindSingleChoice   Kind = "single-choice"
	KindMultipleChoice Kind = "multiple-choice"
	KindFreeText       Kind = "text"
)

// MinOptions is the smallest option list a choice question may carry
const MinOptions = 2

// Question is immutable once it has been placed in a Machine.
type Question struct {
	Id              int      `json:"id"`
	Key             string   `json:"key"`
	Text            string   `json:"text"`
	Kind            Kind     `json:"type"`
	Options         []string `json:"options,omitempty"`
	AllowCustomText bool     `json:"allow_text_input,omitempty"`
}

// ParseKind maps loose kind names onto a Kind
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "single-choice", "single_choice", "single":
		return KindSingleChoice, true
	case "multiple-choice", "multiple_choice", "multiple", "multi":
		return KindMultipleChoice, true
	case "text", "free-text", "free_text":
		return KindFreeText, true
	}
	return "", false
}

// IsChoice reports whether answers are drawn from the option list
func (k Kind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultipleChoice
}

// Validate checks the structural rules every question must satisfy
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %q: empty text", q.Key)
	}
	if strings.TrimSpace(q.Key) == "" {
		return fmt.Errorf("question %d: empty key", q.Id)
	}
	if _, ok := ParseKind(string(q.Kind)); !ok {
		return fmt.Errorf("question %q: unknown kind %q", q.Key, q.Kind)
	}
	if q.Kind.IsChoice() && len(q.Options) < MinOptions {
		return fmt.Errorf("question %q: %d options, need at least %d", q.Key, len(q.Options), MinOptions)
	}
	return nil
}

// HasOption reports whether option is one of the catalog options
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

func (q Question) clone() Question {
	c := q
	c.Options = append([]string(nil), q.Options...)
	return c
}
