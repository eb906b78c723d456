package survey

import "fmt"

// Snapshot is the serializable form of a Machine, used by session stores
type Snapshot struct {
	Questions      []Question   `json:"questions"`
	Frontier       int          `json:"frontier"`
	Answers        *AnswerStore `json:"answers"`
	Step           int          `json:"step"`
	HighestVisited int          `json:"highest_visited"`
	State          State        `json:"state"`
	Expanded       bool         `json:"expanded"`
}

func (m *Machine) Snapshot() Snapshot {
	answers := NewAnswerStore()
	for _, a := range m.answers.Entries() {
		answers.Put(a)
	}
	return Snapshot{
		Questions:      m.Questions(),
		Frontier:       m.frontier,
		Answers:        answers,
		Step:           m.step,
		HighestVisited: m.highestVisited,
		State:          m.state,
		Expanded:       m.expanded,
	}
}

// Restore rebuilds a Machine, rejecting snapshots whose positions do not fit the question list
func Restore(s Snapshot) (*Machine, error) {
	n := len(s.Questions)
	if n == 0 {
		return nil, ErrEmptyCatalog
	}
	if s.Frontier < 1 || s.Frontier > n {
		return nil, fmt.Errorf("snapshot frontier %d out of range [1, %d]", s.Frontier, n)
	}
	if s.Step < 0 || s.Step >= n || s.HighestVisited < s.Step || s.HighestVisited >= n {
		return nil, fmt.Errorf("snapshot step %d/%d out of range for %d questions", s.Step, s.HighestVisited, n)
	}
	switch s.State {
	case StateInProgress, StateAwaitingExpansion, StateComplete:
	default:
		return nil, fmt.Errorf("snapshot has unknown state %q", s.State)
	}

	m := &Machine{
		frontier:       s.Frontier,
		answers:        NewAnswerStore(),
		step:           s.Step,
		highestVisited: s.HighestVisited,
		state:          s.State,
		expanded:       s.Expanded,
	}
	for i, q := range s.Questions {
		if q.Id != i+1 {
			return nil, fmt.Errorf("snapshot question at position %d has id %d", i, q.Id)
		}
		m.questions = append(m.questions, q.clone())
	}
	if s.Answers != nil {
		for _, a := range s.Answers.Entries() {
			if a.QuestionId < 1 || a.QuestionId > n {
				return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, a.QuestionId)
			}
			m.answers.Put(a)
		}
	}
	return m, nil
}
