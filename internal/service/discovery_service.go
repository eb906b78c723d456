package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"book-discovery-be/internal/dto"
	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/pkg/bus"
	"book-discovery-be/pkg/discovery"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/store"
	"book-discovery-be/pkg/survey"
)

var (
	ErrSurveyNotComplete = errors.New("survey must be completed first")
	ErrNoCandidates      = errors.New("run a search before asking for recommendations")
	ErrUnknownBook       = errors.New("book is not among the search results")
	ErrOperationInFlight = errors.New("this step is already running for the session")
	ErrCandidatesChanged = errors.New("search results changed while recommendations were generated")
)

type IDescriber interface {
	Describe(ctx context.Context, response survey.Response) string
}

type IRetriever interface {
	Retrieve(ctx context.Context, description string, topK int) ([]discovery.BookCandidate, error)
	TopK(requested int) int
}

type IReconciler interface {
	Reconcile(ctx context.Context, candidates []discovery.BookCandidate, read discovery.ReadSet) ([]discovery.Recommendation, error)
}

type IDiscoveryService interface {
	Describe(ctx context.Context, id string) (*dto.DescriptionResponse, error)
	Search(ctx context.Context, id string, req *dto.SearchRequest) (*dto.SearchResponse, error)
	ToggleRead(ctx context.Context, id string, bookId string) (*dto.ToggleReadResponse, error)
	Recommend(ctx context.Context, id string) (*dto.RecommendationsResponse, error)
	IndexBooks(ctx context.Context, req *dto.IndexBooksRequest) (*dto.IndexBooksResponse, error)
}

type discoveryService struct {
	sessions         *session.Manager
	describer        IDescriber
	retriever        IRetriever
	reconciler       IReconciler
	publisherService IPublisherService
	eventPublisher   bus.Publisher
	indexTopic       string
	logger           logger.ILogger
	inflight         *inflightSet
}

func NewDiscoveryService(
	sessions *session.Manager,
	describer IDescriber,
	retriever IRetriever,
	reconciler IReconciler,
	publisherService IPublisherService,
	eventPublisher bus.Publisher,
	indexTopic string,
	logger logger.ILogger,
) IDiscoveryService {
	return &discoveryService{
		sessions:         sessions,
		describer:        describer,
		retriever:        retriever,
		reconciler:       reconciler,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		indexTopic:       indexTopic,
		logger:           logger,
		inflight:         newInflightSet(),
	}
}

// Describe generates the book description for a completed survey. An empty
// description is a valid result, reported as not available.
func (ds *discoveryService) Describe(ctx context.Context, id string) (*dto.DescriptionResponse, error) {
	if !ds.inflight.claim(id, opDescribe) {
		return nil, ErrOperationInFlight
	}
	defer ds.inflight.release(id, opDescribe)

	var response survey.Response
	err := ds.sessions.View(ctx, id, func(sess *store.Session) error {
		m, err := survey.Restore(sess.Survey)
		if err != nil {
			return err
		}
		if m.State() != survey.StateComplete {
			return ErrSurveyNotComplete
		}
		response = m.Response()
		return nil
	})
	if err != nil {
		return nil, err
	}

	description := ds.describer.Describe(ctx, response)

	err = ds.sessions.Update(ctx, id, func(sess *store.Session) error {
		sess.Description = description
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.DescriptionResponse{
		Description: description,
		Available:   strings.TrimSpace(description) != "",
	}, nil
}

// Search retrieves candidates for the given or stored description and
// replaces any previous results. The read set survives new searches.
func (ds *discoveryService) Search(ctx context.Context, id string, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	if !ds.inflight.claim(id, opSearch) {
		return nil, ErrOperationInFlight
	}
	defer ds.inflight.release(id, opSearch)

	var description string
	err := ds.sessions.View(ctx, id, func(sess *store.Session) error {
		description = sess.Description
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.Description != nil {
		description = *req.Description
	}

	topK := ds.retriever.TopK(req.TopK)
	candidates, err := ds.retriever.Retrieve(ctx, description, topK)
	if err != nil {
		ds.logger.Warn("DISCOVERY", "Retrieval failed", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	err = ds.sessions.Update(ctx, id, func(sess *store.Session) error {
		sess.Description = description
		sess.Candidates = candidates
		sess.SearchGeneration++
		sess.Recommendations = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	ds.logger.Info("DISCOVERY", "Candidates retrieved", map[string]interface{}{
		"session_id": id,
		"top_k":      topK,
		"count":      len(candidates),
	})
	return &dto.SearchResponse{Description: description, TopK: topK, Candidates: candidates}, nil
}

func (ds *discoveryService) ToggleRead(ctx context.Context, id string, bookId string) (*dto.ToggleReadResponse, error) {
	var res *dto.ToggleReadResponse
	err := ds.sessions.Update(ctx, id, func(sess *store.Session) error {
		if !hasCandidate(sess.Candidates, bookId) {
			return ErrUnknownBook
		}
		read := sess.Reads().Toggle(bookId)
		res = &dto.ToggleReadResponse{BookId: bookId, Read: read, ReadSet: sess.Reads().IDs()}
		return nil
	})
	return res, err
}

// Recommend filters read books out of the last search before asking for
// rationales. Results are dropped if a search replaced the candidates meanwhile.
func (ds *discoveryService) Recommend(ctx context.Context, id string) (*dto.RecommendationsResponse, error) {
	if !ds.inflight.claim(id, opRecommend) {
		return nil, ErrOperationInFlight
	}
	defer ds.inflight.release(id, opRecommend)

	var (
		candidates []discovery.BookCandidate
		read       discovery.ReadSet
		generation int
	)
	err := ds.sessions.View(ctx, id, func(sess *store.Session) error {
		if len(sess.Candidates) == 0 {
			return ErrNoCandidates
		}
		generation = sess.SearchGeneration
		candidates = append(candidates, sess.Candidates...)
		read = discovery.NewReadSet(sess.Reads().IDs()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	recommendations, err := ds.reconciler.Reconcile(ctx, candidates, read)
	if err != nil {
		ds.logger.Warn("DISCOVERY", "Reconciliation failed", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	err = ds.sessions.Update(ctx, id, func(sess *store.Session) error {
		if sess.SearchGeneration != generation {
			return ErrCandidatesChanged
		}
		sess.Recommendations = recommendations
		return nil
	})
	if err != nil {
		return nil, err
	}

	placeholders := 0
	bookIds := make([]string, 0, len(recommendations))
	for _, r := range recommendations {
		bookIds = append(bookIds, r.ID)
		if r.Rationale == discovery.NoRationale {
			placeholders++
		}
	}
	ds.eventPublisher.PublishRecommendationsGenerated(ctx, id, bookIds, placeholders)

	return &dto.RecommendationsResponse{Recommendations: recommendations, Placeholders: placeholders}, nil
}

// IndexBooks queues books for embedding; the consumer writes them to the index
func (ds *discoveryService) IndexBooks(ctx context.Context, req *dto.IndexBooksRequest) (*dto.IndexBooksResponse, error) {
	payload, err := json.Marshal(dto.IndexBooksMessage{Books: req.Books})
	if err != nil {
		return nil, err
	}
	if err := ds.publisherService.Publish(ctx, ds.indexTopic, payload); err != nil {
		return nil, err
	}

	ds.logger.Info("DISCOVERY", "Books queued for indexing", map[string]interface{}{"count": len(req.Books)})
	return &dto.IndexBooksResponse{Queued: len(req.Books)}, nil
}

func hasCandidate(candidates []discovery.BookCandidate, id string) bool {
	for _, c := range candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}
