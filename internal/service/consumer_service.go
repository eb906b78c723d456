// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"book-discovery-be/internal/dto"
	"book-discovery-be/internal/entity"
	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/internal/repository/unitofwork"
	"book-discovery-be/pkg/embedding"
	"book-discovery-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	persistTopic      string
	indexTopic        string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	persistTopic string,
	indexTopic string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		persistTopic:      persistTopic,
		indexTopic:        indexTopic,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	surveys, err := cs.subscriber.Subscribe(ctx, cs.persistTopic)
	if err != nil {
		return err
	}
	books, err := cs.subscriber.Subscribe(ctx, cs.indexTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range surveys {
			cs.processSurvey(ctx, msg)
		}
	}()
	go func() {
		for msg := range books {
			cs.processBooks(ctx, msg)
		}
	}()

	return nil
}

// processSurvey writes a completed survey as one session row plus one row per
// answered question. A higher revision of a stored session replaces its rows.
// Failures are logged and never reach the reader.
func (cs *consumerService) processSurvey(ctx context.Context, msg *message.Message) {
	var payload dto.PersistSurveyMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal survey message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads would fail forever
		return
	}

	sessionId, err := uuid.Parse(payload.SessionId)
	if err != nil {
		cs.logger.Error("CONSUMER", "Survey message has invalid session id", map[string]interface{}{"session_id": payload.SessionId})
		msg.Ack()
		return
	}
	if payload.Revision < 1 {
		payload.Revision = 1
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.SurveyRepository().FindSession(ctx, sessionId)
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to look up survey session", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if existing != nil && existing.Revision >= payload.Revision {
		// Redelivered, or overtaken by a newer revision
		msg.Ack()
		return
	}

	session := &entity.SurveySession{
		Id:            sessionId,
		QuestionCount: payload.QuestionCount,
		Expanded:      payload.Expanded,
		Revision:      payload.Revision,
		CompletedAt:   payload.CompletedAt,
	}
	responses := responseRows(sessionId, payload)

	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("CONSUMER", "Failed to begin transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if existing == nil {
		err = uow.SurveyRepository().CreateSession(ctx, session)
	} else {
		err = uow.SurveyRepository().UpdateSession(ctx, session)
		if err == nil {
			err = uow.SurveyRepository().DeleteResponses(ctx, sessionId)
		}
	}
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to store survey session", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if err := uow.SurveyRepository().CreateResponses(ctx, responses); err != nil {
		cs.logger.Error("CONSUMER", "Failed to store survey responses", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		cs.logger.Error("CONSUMER", "Failed to commit survey", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("CONSUMER", "Survey persisted", map[string]interface{}{
		"session_id": payload.SessionId,
		"revision":   payload.Revision,
		"responses":  len(responses),
	})
	msg.Ack()
}

// responseRows orders the rows by the message's question keys. Keys the list
// does not mention follow in lexical order.
func responseRows(sessionId uuid.UUID, payload dto.PersistSurveyMessage) []*entity.SurveyResponse {
	ordered := make([]string, 0, len(payload.Responses))
	seen := make(map[string]bool, len(payload.Responses))
	for _, key := range payload.Keys {
		if _, ok := payload.Responses[key]; ok && !seen[key] {
			ordered = append(ordered, key)
			seen[key] = true
		}
	}
	rest := make([]string, 0)
	for key := range payload.Responses {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	rows := make([]*entity.SurveyResponse, 0, len(ordered))
	for i, key := range ordered {
		rows = append(rows, &entity.SurveyResponse{
			SessionId:   sessionId,
			QuestionKey: key,
			Position:    i,
			Value:       payload.Responses[key],
		})
	}
	return rows
}

// processBooks embeds each book's title and description and upserts it into the index table
func (cs *consumerService) processBooks(ctx context.Context, msg *message.Message) {
	var payload dto.IndexBooksMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal index message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	embeddings := make([]*entity.BookEmbedding, 0, len(payload.Books))
	for _, book := range payload.Books {
		start := time.Now()
		res, err := cs.embeddingProvider.Generate(ctx, bookDocument(book), embedding.TaskDocument)
		metrics.ObserveCall("embedding", "embed_book", start, err)
		if err != nil {
			cs.logger.Error("CONSUMER", "Failed to embed book", map[string]interface{}{
				"book_id": book.Id,
				"error":   err.Error(),
			})
			msg.Nack()
			return
		}

		embeddings = append(embeddings, &entity.BookEmbedding{
			Id:             uuid.New(),
			BookId:         book.Id,
			Title:          book.Title,
			Description:    book.Description,
			ImageUrl:       book.ImageUrl,
			DetailUrl:      book.Url,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BookEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		cs.logger.Error("CONSUMER", "Failed to store book embeddings", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("CONSUMER", "Books indexed", map[string]interface{}{"count": len(embeddings)})
	msg.Ack()
}

func bookDocument(book dto.IndexBookItem) string {
	return strings.TrimSpace(fmt.Sprintf("%s\n\n%s", book.Title, book.Description))
}
