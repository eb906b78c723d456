package survey

import (
	"errors"
	"fmt"
	"strings"
)

type State string

const (
	StateInProgress        State = "in_progress"
	StateAwaitingExpansion State = "awaiting_expansion"
	StateComplete          State = "complete"
)

// Transition reports what an Advance or Skip call did
type Transition string

const (
	TransitionAdvanced           Transition = "advanced"
	TransitionExpansionRequested Transition = "expansion_requested"
	TransitionCompleted          Transition = "completed"
)

var (
	ErrAnswerRequired       = errors.New("current question has no valid answer")
	ErrSkipNotAllowed       = errors.New("skip is only allowed while the current question is unanswered")
	ErrAwaitingExpansion    = errors.New("survey is waiting for follow-up questions")
	ErrNotAwaitingExpansion = errors.New("survey is not waiting for follow-up questions")
	ErrEmptyExpansion       = errors.New("expansion must add at least one question")
	ErrIncomplete           = errors.New("survey still has unanswered questions")
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrQuestionNotReached   = errors.New("question has not been reached yet")
	ErrInvalidOption        = errors.New("option is not offered by this question")
	ErrCustomTextNotAllowed = errors.New("question does not accept custom text")
	ErrEmptyCatalog         = errors.New("survey needs at least one question")
)

// Machine walks a reader through an append-only question list.
// Questions [0, frontier) come from the static catalog, the rest are
// appended once by ApplyExpansion. A Machine is not safe for concurrent
// use; callers serialize access per session.
type Machine struct {
	questions      []Question
	frontier       int
	answers        *AnswerStore
	step           int
	highestVisited int
	state          State
	expanded       bool
}

// NewMachine starts at InProgress(0) over a copy of the static catalog
func NewMachine(catalog []Question) (*Machine, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	m := &Machine{
		answers: NewAnswerStore(),
		state:   StateInProgress,
	}
	for _, q := range catalog {
		if _, err := m.appendQuestion(q); err != nil {
			return nil, err
		}
	}
	m.frontier = len(m.questions)
	return m, nil
}

func (m *Machine) State() State { return m.state }
func (m *Machine) Step() int { return m.step }
func (m *Machine) HighestVisited() int { return m.highestVisited }
func (m *Machine) Frontier() int { return m.frontier }
func (m *Machine) Expanded() bool { return m.expanded }
func (m *Machine) Len() int { return len(m.questions) }
func (m *Machine) Answers() *AnswerStore { return m.answers }

// Questions returns a copy of the question list in position order
func (m *Machine) Questions() []Question {
	out := make([]Question, len(m.questions))
	for i, q := range m.questions {
		out[i] = q.clone()
	}
	return out
}

func (m *Machine) Current() Question {
	return m.questions[m.step].clone()
}

// Response regenerates the semantic response from the answer store
func (m *Machine) Response() Response {
	return ToResponse(m.questions, m.answers)
}

// IsComplete is true iff every question in the current list has a valid answer
func (m *Machine) IsComplete() bool {
	for _, q := range m.questions {
		a, ok := m.answers.Get(q.Id)
		if !ok || !a.Valid() {
			return false
		}
	}
	return true
}

// Advance moves past a validly answered current question
func (m *Machine) Advance() (Transition, error) {
	switch m.state {
	case StateAwaitingExpansion:
		return "", ErrAwaitingExpansion
	case StateComplete:
		// a completed survey stays complete while the reader reviews it
		if m.step < len(m.questions)-1 {
			m.step++
			if m.step > m.highestVisited {
				m.highestVisited = m.step
			}
			return TransitionAdvanced, nil
		}
		return TransitionCompleted, nil
	}
	if !m.currentAnswered() {
		return "", ErrAnswerRequired
	}
	return m.move()
}

// Skip behaves like Advance but is only permitted when the current answer is empty
func (m *Machine) Skip() (Transition, error) {
	if m.state == StateAwaitingExpansion {
		return "", ErrAwaitingExpansion
	}
	if m.currentAnswered() {
		return "", ErrSkipNotAllowed
	}
	return m.move()
}

func (m *Machine) move() (Transition, error) {
	if m.step == m.frontier-1 && !m.expanded {
		m.state = StateAwaitingExpansion
		return TransitionExpansionRequested, nil
	}
	if m.step == len(m.questions)-1 {
		if !m.IsComplete() {
			return "", ErrIncomplete
		}
		m.state = StateComplete
		return TransitionCompleted, nil
	}
	m.step++
	if m.step > m.highestVisited {
		m.highestVisited = m.step
	}
	return TransitionAdvanced, nil
}

// GoTo jumps to a previously visited or already answered step.
// Out of range targets are clamped; unreachable targets clamp to the
// highest visited step. While parked for expansion the machine stays
// parked and nothing past the highest visited step can be shown.
// It returns the step actually taken.
func (m *Machine) GoTo(step int) (int, error) {
	if step < 0 {
		step = 0
	}
	if m.state == StateAwaitingExpansion {
		if step > m.highestVisited {
			step = m.highestVisited
		}
		m.step = step
		return m.step, nil
	}
	if step > len(m.questions)-1 {
		step = len(m.questions) - 1
	}
	if step > m.highestVisited {
		if _, answered := m.answers.Get(m.questions[step].Id); !answered {
			step = m.highestVisited
		}
	}
	m.step = step
	if step > m.highestVisited {
		m.highestVisited = step
	}
	return m.step, nil
}

// RequestExpansion parks the machine while follow-up questions are generated.
// It is a no-op once expansion has run.
func (m *Machine) RequestExpansion() bool {
	if m.expanded {
		return false
	}
	m.state = StateAwaitingExpansion
	return true
}

// ApplyExpansion appends generated questions after the existing list and
// resumes at the first of them. Ids and duplicate keys are assigned here.
func (m *Machine) ApplyExpansion(generated []Question) ([]Question, error) {
	if m.state != StateAwaitingExpansion || m.expanded {
		return nil, ErrNotAwaitingExpansion
	}
	if len(generated) == 0 {
		return nil, ErrEmptyExpansion
	}
	for _, q := range generated {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}

	start := len(m.questions)
	for _, q := range generated {
		if _, err := m.appendQuestion(q); err != nil {
			m.questions = m.questions[:start]
			return nil, err
		}
	}
	m.expanded = true
	m.state = StateInProgress
	m.step = start
	if m.step > m.highestVisited {
		m.highestVisited = m.step
	}

	out := make([]Question, 0, len(m.questions)-start)
	for _, q := range m.questions[start:] {
		out = append(out, q.clone())
	}
	return out, nil
}

// SelectOption sets a single-choice value or toggles a multiple-choice option
func (m *Machine) SelectOption(questionId int, option string) error {
	q, err := m.answerable(questionId)
	if err != nil {
		return err
	}

	switch q.Kind {
	case KindSingleChoice:
		if !q.HasOption(option) && !(q.AllowCustomText && strings.TrimSpace(option) != "") {
			return ErrInvalidOption
		}
		m.answers.Put(&Answer{QuestionId: q.Id, Kind: q.Kind, Text: option})
	case KindMultipleChoice:
		if !q.HasOption(option) {
			return ErrInvalidOption
		}
		a := m.answerFor(q)
		if contains(a.Selected, option) {
			a.Selected = remove(a.Selected, option)
		} else {
			a.Selected = append(a.Selected, option)
		}
		m.storeOrDrop(a)
	default:
		return ErrInvalidOption
	}
	m.settle()
	return nil
}

// SetText writes free text. On a multiple-choice question it replaces the
// single custom slot; an empty value clears the answer or the slot.
func (m *Machine) SetText(questionId int, text string) error {
	q, err := m.answerable(questionId)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)

	switch q.Kind {
	case KindFreeText:
		m.storeOrDrop(&Answer{QuestionId: q.Id, Kind: q.Kind, Text: text})
	case KindSingleChoice:
		if !q.AllowCustomText {
			return ErrCustomTextNotAllowed
		}
		m.storeOrDrop(&Answer{QuestionId: q.Id, Kind: q.Kind, Text: text})
	case KindMultipleChoice:
		if !q.AllowCustomText {
			return ErrCustomTextNotAllowed
		}
		a := m.answerFor(q)
		a.Custom = text
		m.storeOrDrop(a)
	}
	m.settle()
	return nil
}

// ClearAnswer removes whatever is stored for the question
func (m *Machine) ClearAnswer(questionId int) error {
	if _, err := m.answerable(questionId); err != nil {
		return err
	}
	m.answers.Delete(questionId)
	m.settle()
	return nil
}

func (m *Machine) currentAnswered() bool {
	a, ok := m.answers.Get(m.questions[m.step].Id)
	return ok && a.Valid()
}

func (m *Machine) answerable(questionId int) (Question, error) {
	idx := questionId - 1
	if idx < 0 || idx >= len(m.questions) {
		return Question{}, fmt.Errorf("%w: %d", ErrUnknownQuestion, questionId)
	}
	if idx > m.highestVisited {
		return Question{}, fmt.Errorf("%w: %d", ErrQuestionNotReached, questionId)
	}
	return m.questions[idx], nil
}

func (m *Machine) answerFor(q Question) *Answer {
	if a, ok := m.answers.Get(q.Id); ok {
		return a
	}
	return &Answer{QuestionId: q.Id, Kind: q.Kind}
}

func (m *Machine) storeOrDrop(a *Answer) {
	if !a.Valid() {
		m.answers.Delete(a.QuestionId)
		return
	}
	m.answers.Put(a)
}

// settle drops a Complete survey back to InProgress once an edit breaks completeness
func (m *Machine) settle() {
	if m.state == StateComplete && !m.IsComplete() {
		m.state = StateInProgress
	}
}

func (m *Machine) appendQuestion(q Question) (Question, error) {
	q = q.clone()
	q.Id = len(m.questions) + 1
	q.Key = m.uniqueKey(strings.TrimSpace(q.Key))
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	m.questions = append(m.questions, q)
	return q, nil
}

func (m *Machine) uniqueKey(key string) string {
	taken := make(map[string]struct{}, len(m.questions))
	for _, q := range m.questions {
		taken[q.Key] = struct{}{}
	}
	if _, used := taken[key]; !used {
		return key
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", key, n)
		if _, used := taken[candidate]; !used {
			return candidate
		}
	}
}

func remove(values []string, value string) []string {
	out := values[:0]
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
