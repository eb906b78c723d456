package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"book-discovery-be/internal/dto"
	"book-discovery-be/pkg/ai/expander"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPersistTopic = "SURVEY_COMPLETED"

func followUpResult() expander.Result {
	return expander.Result{
		Questions: []survey.Question{
			{Key: "question3", Text: "Uppáhalds höfundur?", Kind: survey.KindFreeText},
		},
		Outcome: expander.OutcomeToolResult,
	}
}

func newTestSurveyService(exp IQuestionExpander) (ISurveyService, *recordingPublisherService, *recordingEvents) {
	publisher := &recordingPublisherService{}
	events := &recordingEvents{}
	svc := NewSurveyService(newTestManager(), testCatalog(), exp, publisher, events, testPersistTopic, nopLogger)
	return svc, publisher, events
}

// completeSurvey answers both catalog questions, runs the expansion and answers the follow-up
func completeSurvey(t *testing.T, svc ISurveyService) string {
	t.Helper()
	ctx := context.Background()

	started, err := svc.Start(ctx)
	require.NoError(t, err)
	id := started.Id

	_, err = svc.Answer(ctx, id, 1, "Glæpasaga")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, id)
	require.NoError(t, err)
	_, err = svc.Answer(ctx, id, 2, "dimm og köld")
	require.NoError(t, err)

	tr, err := svc.Advance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, string(survey.TransitionExpansionRequested), tr.Transition)

	_, err = svc.Answer(ctx, id, 3, "Arnaldur")
	require.NoError(t, err)
	tr, err = svc.Advance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, string(survey.TransitionCompleted), tr.Transition)

	return id
}

func TestSurveyService_FullFlow(t *testing.T) {
	ctx := context.Background()
	exp := &fakeExpander{result: followUpResult()}
	svc, publisher, events := newTestSurveyService(exp)

	started, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(survey.StateInProgress), started.State)
	assert.Equal(t, 2, started.Total)
	assert.Equal(t, 0, started.Step)
	id := started.Id

	_, err = svc.Advance(ctx, id)
	assert.ErrorIs(t, err, survey.ErrAnswerRequired)

	_, err = svc.Answer(ctx, id, 1, "Skáldsaga")
	assert.ErrorIs(t, err, survey.ErrInvalidOption)

	_, err = svc.Answer(ctx, id, 1, "Glæpasaga")
	require.NoError(t, err)

	tr, err := svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionAdvanced), tr.Transition)
	assert.Equal(t, 1, tr.Session.Step)

	_, err = svc.Answer(ctx, id, 2, "dimm og köld")
	require.NoError(t, err)

	tr, err = svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionExpansionRequested), tr.Transition)
	require.NotNil(t, tr.Expansion)
	assert.False(t, tr.Expansion.Fallback)
	require.Len(t, tr.Expansion.Added, 1)
	assert.Equal(t, 3, tr.Expansion.Added[0].Id)
	assert.Equal(t, string(survey.StateInProgress), tr.Session.State)
	assert.Equal(t, 3, tr.Session.Total)
	assert.Equal(t, 2, tr.Session.Step)
	assert.True(t, tr.Session.Expanded)
	assert.Equal(t, 1, exp.calls)

	_, err = svc.Answer(ctx, id, 3, "Arnaldur")
	require.NoError(t, err)

	tr, err = svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionCompleted), tr.Transition)
	assert.True(t, tr.Session.IsComplete)
	assert.NotNil(t, tr.Session.CompletedAt)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, testPersistTopic, publisher.messages[0].topic)

	var msg dto.PersistSurveyMessage
	require.NoError(t, json.Unmarshal(publisher.messages[0].payload, &msg))
	assert.Equal(t, id, msg.SessionId)
	assert.Equal(t, 3, msg.QuestionCount)
	assert.True(t, msg.Expanded)
	assert.Equal(t, "Glæpasaga", msg.Responses["genre"])
	assert.Equal(t, "Arnaldur", msg.Responses["question3"])

	assert.Equal(t, []string{id}, events.expanded)
	assert.Equal(t, []string{id}, events.completed)

	res, err := svc.Response(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.IsComplete)
	assert.Len(t, res.Response, 3)
}

func TestSurveyService_CompletionPublishedOnce(t *testing.T) {
	ctx := context.Background()
	svc, publisher, events := newTestSurveyService(&fakeExpander{result: followUpResult()})
	id := completeSurvey(t, svc)

	tr, err := svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionCompleted), tr.Transition)

	assert.Len(t, publisher.messages, 1)
	assert.Len(t, events.completed, 1)
}

func TestSurveyService_EditedCompletionIsPublishedAgain(t *testing.T) {
	ctx := context.Background()
	svc, publisher, events := newTestSurveyService(&fakeExpander{result: followUpResult()})
	id := completeSurvey(t, svc)

	first, err := svc.Get(ctx, id)
	require.NoError(t, err)

	res, err := svc.Answer(ctx, id, 2, "björt og hlý")
	require.NoError(t, err)
	assert.True(t, res.IsComplete)

	tr, err := svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionCompleted), tr.Transition)
	assert.Equal(t, first.CompletedAt, tr.Session.CompletedAt)

	_, err = svc.Advance(ctx, id)
	require.NoError(t, err)

	require.Len(t, publisher.messages, 2)
	assert.Len(t, events.completed, 2)

	var msg dto.PersistSurveyMessage
	require.NoError(t, json.Unmarshal(publisher.messages[1].payload, &msg))
	assert.Equal(t, 2, msg.Revision)
	assert.Equal(t, "björt og hlý", msg.Responses["mood"])
	assert.Equal(t, []string{"genre", "mood", "question3"}, msg.Keys)
}

func TestSurveyService_LateClaimAfterExpansionApplied(t *testing.T) {
	ctx := context.Background()
	exp := &fakeExpander{result: followUpResult()}
	svc, _, events := newTestSurveyService(exp)

	started, err := svc.Start(ctx)
	require.NoError(t, err)
	id := started.Id

	// Expand wins the race and applies its questions before the parked
	// transition gets to claim the session
	expanded, err := svc.Expand(ctx, id)
	require.NoError(t, err)
	require.True(t, expanded.Session.Expanded)

	parked := *started
	parked.State = string(survey.StateAwaitingExpansion)
	tr, err := svc.(*surveyService).startExpansion(ctx, id, &parked)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionExpansionRequested), tr.Transition)
	assert.Nil(t, tr.Expansion)
	assert.Equal(t, string(survey.StateInProgress), tr.Session.State)
	assert.Equal(t, 3, tr.Session.Total)

	assert.Equal(t, 1, exp.calls)
	assert.Len(t, events.expanded, 1)

	_, err = svc.Expand(ctx, id)
	assert.ErrorIs(t, err, ErrAlreadyExpanded, "the claim is released")
}

func TestSurveyService_PublishFailureDoesNotFailSurvey(t *testing.T) {
	svc, publisher, events := newTestSurveyService(&fakeExpander{result: followUpResult()})
	publisher.err = errors.New("broker down")

	id := completeSurvey(t, svc)

	res, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.StateComplete), res.State)
	assert.Len(t, events.completed, 1)
}

func TestSurveyService_RejectedExpansionUsesFallback(t *testing.T) {
	ctx := context.Background()
	exp := &fakeExpander{result: expander.Result{
		Questions: []survey.Question{
			{Key: "broken", Text: "Veldu", Kind: survey.KindSingleChoice, Options: []string{"bara einn"}},
		},
		Outcome: expander.OutcomeTextResult,
	}}
	svc, _, _ := newTestSurveyService(exp)

	started, err := svc.Start(ctx)
	require.NoError(t, err)
	id := started.Id

	tr, err := svc.Expand(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, tr.Expansion)
	assert.True(t, tr.Expansion.Fallback)
	assert.Len(t, tr.Expansion.Added, len(expander.FallbackQuestions()))
	assert.Equal(t, string(survey.StateInProgress), tr.Session.State)
}

func TestSurveyService_ExpandGuards(t *testing.T) {
	ctx := context.Background()
	exp := &fakeExpander{
		result:  followUpResult(),
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	svc, _, _ := newTestSurveyService(exp)

	started, err := svc.Start(ctx)
	require.NoError(t, err)
	id := started.Id

	done := make(chan error, 1)
	go func() {
		_, err := svc.Expand(ctx, id)
		done <- err
	}()
	<-exp.started

	_, err = svc.Expand(ctx, id)
	assert.ErrorIs(t, err, ErrExpansionInFlight)

	parked, err := svc.GoTo(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, string(survey.StateAwaitingExpansion), parked.State)
	assert.Equal(t, 0, parked.Step)

	_, err = svc.Advance(ctx, id)
	assert.ErrorIs(t, err, survey.ErrAwaitingExpansion)

	close(exp.block)
	require.NoError(t, <-done)

	_, err = svc.Expand(ctx, id)
	assert.ErrorIs(t, err, ErrAlreadyExpanded)
	assert.Equal(t, 1, exp.calls)
}

func TestSurveyService_EditAfterCompletion(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestSurveyService(&fakeExpander{result: followUpResult()})
	id := completeSurvey(t, svc)

	res, err := svc.ClearAnswer(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, string(survey.StateInProgress), res.State)
	assert.False(t, res.IsComplete)

	resp, err := svc.Response(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, resp.Response, "mood")
}

func TestSurveyService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestSurveyService(&fakeExpander{result: followUpResult()})

	started, err := svc.Start(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "unknown session",
			call: func() error { _, err := svc.Get(ctx, "missing"); return err },
			want: session.ErrSessionNotFound,
		},
		{
			name: "unknown question",
			call: func() error { _, err := svc.Answer(ctx, started.Id, 9, "x"); return err },
			want: survey.ErrUnknownQuestion,
		},
		{
			name: "question not reached",
			call: func() error { _, err := svc.Answer(ctx, started.Id, 2, "x"); return err },
			want: survey.ErrQuestionNotReached,
		},
		{
			name: "custom text not allowed",
			call: func() error { _, err := svc.SetCustomText(ctx, started.Id, 1, "annað"); return err },
			want: survey.ErrCustomTextNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}
}

func TestSurveyService_SkipOnlyWhenUnanswered(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestSurveyService(&fakeExpander{result: followUpResult()})

	started, err := svc.Start(ctx)
	require.NoError(t, err)
	id := started.Id

	_, err = svc.Answer(ctx, id, 1, "Ljóð")
	require.NoError(t, err)
	_, err = svc.Skip(ctx, id)
	assert.ErrorIs(t, err, survey.ErrSkipNotAllowed)

	_, err = svc.ClearAnswer(ctx, id, 1)
	require.NoError(t, err)
	tr, err := svc.Skip(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(survey.TransitionAdvanced), tr.Transition)
	assert.Equal(t, 1, tr.Session.Step)
}
