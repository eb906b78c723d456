package controller

import (
	"errors"

	"book-discovery-be/internal/pkg/serverutils"
	"book-discovery-be/internal/service"
	"book-discovery-be/pkg/discovery"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/survey"

	"github.com/gofiber/fiber/v2"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{session.ErrSessionNotFound, fiber.StatusNotFound},
	{survey.ErrUnknownQuestion, fiber.StatusNotFound},
	{service.ErrUnknownBook, fiber.StatusNotFound},

	{survey.ErrAnswerRequired, fiber.StatusUnprocessableEntity},
	{survey.ErrSkipNotAllowed, fiber.StatusUnprocessableEntity},
	{survey.ErrIncomplete, fiber.StatusUnprocessableEntity},
	{survey.ErrQuestionNotReached, fiber.StatusUnprocessableEntity},
	{survey.ErrInvalidOption, fiber.StatusUnprocessableEntity},
	{survey.ErrCustomTextNotAllowed, fiber.StatusUnprocessableEntity},

	{survey.ErrAwaitingExpansion, fiber.StatusConflict},
	{survey.ErrNotAwaitingExpansion, fiber.StatusConflict},
	{service.ErrExpansionInFlight, fiber.StatusConflict},
	{service.ErrAlreadyExpanded, fiber.StatusConflict},
	{service.ErrSurveyNotComplete, fiber.StatusConflict},
	{service.ErrNoCandidates, fiber.StatusConflict},
	{service.ErrOperationInFlight, fiber.StatusConflict},
	{service.ErrCandidatesChanged, fiber.StatusConflict},

	{discovery.ErrEmptyDescription, fiber.StatusBadRequest},
}

// mapError converts domain sentinels into HTTP errors; anything else passes through as a 500
func mapError(err error) error {
	if appErr, ok := lookupSentinel(err); ok {
		return appErr
	}
	return err
}

// mapUpstreamError is mapError for calls that reach external services:
// unknown failures become a retryable 502
func mapUpstreamError(err error, message string) error {
	if appErr, ok := lookupSentinel(err); ok {
		return appErr
	}
	return serverutils.NewUpstreamError(message, err)
}

func lookupSentinel(err error) (*serverutils.AppError, bool) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return serverutils.NewAppError(s.status, s.err.Error(), err), true
		}
	}
	return nil, false
}
