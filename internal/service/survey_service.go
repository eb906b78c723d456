package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"book-discovery-be/internal/dto"
	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/ai/expander"
	"book-discovery-be/pkg/bus"
	"book-discovery-be/pkg/discovery"
	"book-discovery-be/pkg/metrics"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/store"
	"book-discovery-be/pkg/survey"

	"github.com/google/uuid"
)

var (
	ErrExpansionInFlight = errors.New("follow-up questions are already being generated")
	ErrAlreadyExpanded   = errors.New("follow-up questions were already added to this survey")
)

// IQuestionExpander generates follow-up questions; it must always return a usable set
type IQuestionExpander interface {
	Expand(ctx context.Context, response survey.Response, existing int) expander.Result
}

type ISurveyService interface {
	Start(ctx context.Context) (*dto.SessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, error)
	Answer(ctx context.Context, id string, questionId int, value string) (*dto.SessionResponse, error)
	SetCustomText(ctx context.Context, id string, questionId int, text string) (*dto.SessionResponse, error)
	ClearAnswer(ctx context.Context, id string, questionId int) (*dto.SessionResponse, error)
	Advance(ctx context.Context, id string) (*dto.TransitionResponse, error)
	Skip(ctx context.Context, id string) (*dto.TransitionResponse, error)
	GoTo(ctx context.Context, id string, step int) (*dto.SessionResponse, error)
	Expand(ctx context.Context, id string) (*dto.TransitionResponse, error)
	Response(ctx context.Context, id string) (*dto.SurveyResponseResponse, error)
}

type surveyService struct {
	sessions         *session.Manager
	catalog          []survey.Question
	expander         IQuestionExpander
	publisherService IPublisherService
	eventPublisher   bus.Publisher
	persistTopic     string
	logger           logger.ILogger
	inflight         *inflightSet
}

type expansionJob struct {
	response survey.Response
	existing int
}

func NewSurveyService(
	sessions *session.Manager,
	catalog []survey.Question,
	expander IQuestionExpander,
	publisherService IPublisherService,
	eventPublisher bus.Publisher,
	persistTopic string,
	logger logger.ILogger,
) ISurveyService {
	return &surveyService{
		sessions:         sessions,
		catalog:          catalog,
		expander:         expander,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		persistTopic:     persistTopic,
		logger:           logger,
		inflight:         newInflightSet(),
	}
}

func (s *surveyService) Start(ctx context.Context) (*dto.SessionResponse, error) {
	m, err := survey.NewMachine(s.catalog)
	if err != nil {
		return nil, err
	}

	sess := &store.Session{
		ID:      uuid.NewString(),
		Survey:  m.Snapshot(),
		ReadSet: discovery.NewReadSet(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("SURVEY", "Session started", map[string]interface{}{
		"session_id": sess.ID,
		"questions":  m.Len(),
	})
	return toSessionResponse(sess, m), nil
}

func (s *surveyService) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	var res *dto.SessionResponse
	err := s.sessions.View(ctx, id, func(sess *store.Session) error {
		m, err := survey.Restore(sess.Survey)
		if err != nil {
			return err
		}
		res = toSessionResponse(sess, m)
		return nil
	})
	return res, err
}

func (s *surveyService) Answer(ctx context.Context, id string, questionId int, value string) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		q, err := questionAt(m, questionId)
		if err != nil {
			return err
		}
		if q.Kind.IsChoice() {
			return m.SelectOption(questionId, value)
		}
		return m.SetText(questionId, value)
	})
}

func (s *surveyService) SetCustomText(ctx context.Context, id string, questionId int, text string) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		return m.SetText(questionId, text)
	})
}

func (s *surveyService) ClearAnswer(ctx context.Context, id string, questionId int) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		return m.ClearAnswer(questionId)
	})
}

func (s *surveyService) GoTo(ctx context.Context, id string, step int) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		_, err := m.GoTo(step)
		return err
	})
}

func (s *surveyService) Advance(ctx context.Context, id string) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, (*survey.Machine).Advance)
}

func (s *surveyService) Skip(ctx context.Context, id string) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, (*survey.Machine).Skip)
}

// Expand triggers follow-up generation by hand. A second trigger while one is
// running is rejected, never queued.
func (s *surveyService) Expand(ctx context.Context, id string) (*dto.TransitionResponse, error) {
	if !s.inflight.claim(id, opExpand) {
		return nil, ErrExpansionInFlight
	}

	var job expansionJob
	_, err := s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		if m.Expanded() {
			return ErrAlreadyExpanded
		}
		m.RequestExpansion()
		job = expansionJob{response: m.Response(), existing: m.Len()}
		return nil
	})
	if err != nil {
		s.inflight.release(id, opExpand)
		return nil, err
	}

	metrics.ObserveTransition(string(survey.TransitionExpansionRequested))
	return s.runExpansion(ctx, id, job)
}

func (s *surveyService) Response(ctx context.Context, id string) (*dto.SurveyResponseResponse, error) {
	var res *dto.SurveyResponseResponse
	err := s.sessions.View(ctx, id, func(sess *store.Session) error {
		m, err := survey.Restore(sess.Survey)
		if err != nil {
			return err
		}
		res = &dto.SurveyResponseResponse{
			SessionId:  sess.ID,
			IsComplete: m.IsComplete(),
			Response:   m.Response(),
		}
		return nil
	})
	return res, err
}

func (s *surveyService) transition(ctx context.Context, id string, move func(*survey.Machine) (survey.Transition, error)) (*dto.TransitionResponse, error) {
	var (
		tr        survey.Transition
		completed *dto.PersistSurveyMessage
	)

	res, err := s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		t, err := move(m)
		if err != nil {
			return err
		}
		tr = t

		if t == survey.TransitionCompleted {
			completed = completionMessage(sess, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveTransition(string(tr))

	if completed != nil {
		s.onCompleted(ctx, completed)
	}

	if tr == survey.TransitionExpansionRequested {
		return s.startExpansion(ctx, id, res)
	}

	return &dto.TransitionResponse{Transition: string(tr), Session: res}, nil
}

// startExpansion runs the expansion a transition parked the survey for. Between
// the park and the claim an Expand call may already have applied questions, so
// the job is read again once the claim is held.
func (s *surveyService) startExpansion(ctx context.Context, id string, parked *dto.SessionResponse) (*dto.TransitionResponse, error) {
	tr := string(survey.TransitionExpansionRequested)
	if !s.inflight.claim(id, opExpand) {
		// Someone else's Expand call is already generating for this session
		return &dto.TransitionResponse{Transition: tr, Session: parked}, nil
	}

	var (
		job     expansionJob
		pending bool
		current *dto.SessionResponse
	)
	err := s.sessions.View(ctx, id, func(sess *store.Session) error {
		m, err := survey.Restore(sess.Survey)
		if err != nil {
			return err
		}
		pending = m.State() == survey.StateAwaitingExpansion && !m.Expanded()
		job = expansionJob{response: m.Response(), existing: m.Len()}
		current = toSessionResponse(sess, m)
		return nil
	})
	if err != nil || !pending {
		s.inflight.release(id, opExpand)
		if err != nil {
			return nil, err
		}
		return &dto.TransitionResponse{Transition: tr, Session: current}, nil
	}
	return s.runExpansion(ctx, id, job)
}

// completionMessage stamps the first completion and returns the persistence
// message whenever the completed response differs from the one last persisted
func completionMessage(sess *store.Session, m *survey.Machine) *dto.PersistSurveyMessage {
	response := m.Response()
	encoded, err := json.Marshal(response)
	if err != nil {
		return nil
	}
	if sess.CompletedAt != nil && sess.PersistedResponse == string(encoded) {
		return nil
	}

	if sess.CompletedAt == nil {
		now := time.Now()
		sess.CompletedAt = &now
	}
	sess.PersistedResponse = string(encoded)
	sess.PersistedRevision++

	keys := make([]string, 0, len(response))
	for _, q := range m.Questions() {
		if _, ok := response[q.Key]; ok {
			keys = append(keys, q.Key)
		}
	}
	return &dto.PersistSurveyMessage{
		SessionId:     sess.ID,
		Revision:      sess.PersistedRevision,
		QuestionCount: m.Len(),
		Expanded:      m.Expanded(),
		Responses:     response,
		Keys:          keys,
		CompletedAt:   *sess.CompletedAt,
	}
}

// runExpansion calls the model without holding the session lock, then applies
// the result. The caller must hold the in-flight claim; it is released here.
func (s *surveyService) runExpansion(ctx context.Context, id string, job expansionJob) (*dto.TransitionResponse, error) {
	defer s.inflight.release(id, opExpand)

	// The survey must not be left parked if the client goes away mid-call
	ctx = context.WithoutCancel(ctx)
	result := s.expander.Expand(ctx, job.response, job.existing)

	var added []survey.Question
	res, err := s.mutate(ctx, id, func(sess *store.Session, m *survey.Machine) error {
		a, err := m.ApplyExpansion(result.Questions)
		if err != nil && !errors.Is(err, survey.ErrNotAwaitingExpansion) {
			s.logger.Warn("SURVEY", "Generated questions rejected, using fallback", map[string]interface{}{
				"session_id": sess.ID,
				"error":      err.Error(),
			})
			result.Fallback = true
			a, err = m.ApplyExpansion(expander.FallbackQuestions())
		}
		if err != nil {
			return err
		}
		added = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SURVEY", "Follow-up questions added", map[string]interface{}{
		"session_id": id,
		"added":      len(added),
		"outcome":    string(result.Outcome),
		"fallback":   result.Fallback,
		"reason":     result.Reason,
	})
	metrics.ObserveTransition(string(survey.TransitionAdvanced))
	s.eventPublisher.PublishSurveyExpanded(ctx, id, len(added), string(result.Outcome), result.Fallback)

	return &dto.TransitionResponse{
		Transition: string(survey.TransitionExpansionRequested),
		Session:    res,
		Expansion: &dto.ExpansionResponse{
			Added:    added,
			Outcome:  string(result.Outcome),
			Fallback: result.Fallback,
		},
	}, nil
}

// onCompleted hands the response to the durable store and the event bus.
// Neither may fail the survey.
func (s *surveyService) onCompleted(ctx context.Context, msg *dto.PersistSurveyMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("SURVEY", "Failed to encode completed survey", map[string]interface{}{"error": err.Error()})
	} else if err := s.publisherService.Publish(ctx, s.persistTopic, payload); err != nil {
		s.logger.Error("SURVEY", "Failed to queue survey persistence", map[string]interface{}{
			"session_id": msg.SessionId,
			"error":      err.Error(),
		})
	}

	s.eventPublisher.PublishSurveyCompleted(ctx, msg.SessionId, msg.Responses, msg.QuestionCount, msg.Expanded)
	s.logger.Info("SURVEY", "Survey completed", map[string]interface{}{
		"session_id": msg.SessionId,
		"questions":  msg.QuestionCount,
		"answered":   len(msg.Responses),
	})
}

func (s *surveyService) mutate(ctx context.Context, id string, fn func(*store.Session, *survey.Machine) error) (*dto.SessionResponse, error) {
	var res *dto.SessionResponse
	err := s.sessions.Update(ctx, id, func(sess *store.Session) error {
		m, err := survey.Restore(sess.Survey)
		if err != nil {
			return err
		}
		if err := fn(sess, m); err != nil {
			return err
		}
		sess.Survey = m.Snapshot()
		res = toSessionResponse(sess, m)
		return nil
	})
	return res, err
}

func questionAt(m *survey.Machine, questionId int) (survey.Question, error) {
	questions := m.Questions()
	if questionId < 1 || questionId > len(questions) {
		return survey.Question{}, survey.ErrUnknownQuestion
	}
	return questions[questionId-1], nil
}

func toSessionResponse(sess *store.Session, m *survey.Machine) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:             sess.ID,
		State:          string(m.State()),
		Step:           m.Step(),
		HighestVisited: m.HighestVisited(),
		Frontier:       m.Frontier(),
		Total:          m.Len(),
		Expanded:       m.Expanded(),
		IsComplete:     m.IsComplete(),
		Current:        m.Current(),
		Questions:      m.Questions(),
		Answers:        m.Response(),
		CompletedAt:    sess.CompletedAt,
		CreatedAt:      sess.CreatedAt,
	}
}
