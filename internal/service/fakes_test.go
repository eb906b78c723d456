package service

import (
	"context"
	"sync"
	"time"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/internal/repository/memory"
	"book-discovery-be/pkg/ai/expander"
	"book-discovery-be/pkg/discovery"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/survey"
)

func newTestManager() *session.Manager {
	return session.NewManager(memory.NewSessionRepository(time.Hour))
}

func testCatalog() []survey.Question {
	return []survey.Question{
		{Key: "genre", Text: "Hvaða tegund?", Kind: survey.KindSingleChoice, Options: []string{"Glæpasaga", "Ljóð"}},
		{Key: "mood", Text: "Lýstu stemningunni", Kind: survey.KindFreeText},
	}
}

var nopLogger logger.ILogger = logger.NewNopLogger()

type fakeExpander struct {
	mu      sync.Mutex
	once    sync.Once
	result  expander.Result
	calls   int
	started chan struct{}
	block   chan struct{}
}

func (f *fakeExpander) Expand(ctx context.Context, response survey.Response, existing int) expander.Result {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

type publishedMessage struct {
	topic   string
	payload []byte
}

type recordingPublisherService struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (p *recordingPublisherService) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{topic: topic, payload: payload})
	return nil
}

type recordingEvents struct {
	mu           sync.Mutex
	expanded     []string
	completed    []string
	generated    [][]string
	placeholders []int
}

func (e *recordingEvents) PublishSurveyExpanded(ctx context.Context, sessionId string, added int, outcome string, fallback bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expanded = append(e.expanded, sessionId)
}

func (e *recordingEvents) PublishSurveyCompleted(ctx context.Context, sessionId string, response map[string]any, questionCount int, expanded bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = append(e.completed, sessionId)
}

func (e *recordingEvents) PublishRecommendationsGenerated(ctx context.Context, sessionId string, bookIds []string, placeholders int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generated = append(e.generated, bookIds)
	e.placeholders = append(e.placeholders, placeholders)
}

type fakeDescriber struct {
	description string
}

func (f *fakeDescriber) Describe(ctx context.Context, response survey.Response) string {
	return f.description
}

type fakeRetriever struct {
	candidates  []discovery.BookCandidate
	err         error
	description string
	topK        int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, description string, topK int) ([]discovery.BookCandidate, error) {
	f.description = description
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	if description == "" {
		return nil, discovery.ErrEmptyDescription
	}
	return f.candidates, nil
}

func (f *fakeRetriever) TopK(requested int) int {
	if requested <= 0 {
		return discovery.DefaultTopK
	}
	return requested
}

type fakeReconciler struct {
	mu      sync.Mutex
	once    sync.Once
	err     error
	read    discovery.ReadSet
	calls   int
	started chan struct{}
	block   chan struct{}
}

func (f *fakeReconciler) Reconcile(ctx context.Context, candidates []discovery.BookCandidate, read discovery.ReadSet) ([]discovery.Recommendation, error) {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.read = read
	if f.err != nil {
		return nil, f.err
	}
	out := make([]discovery.Recommendation, 0, len(candidates))
	for i, c := range candidates {
		if read.Has(c.ID) {
			continue
		}
		rationale := "because " + c.Title
		if i%2 == 1 {
			rationale = discovery.NoRationale
		}
		out = append(out, discovery.Recommendation{BookCandidate: c, Rationale: rationale})
	}
	return out, nil
}
