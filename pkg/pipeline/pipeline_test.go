/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/jmoiron/sqlx"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/ai"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/vector"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

type stubClassifier struct {
	classification *ai.Classification
	usage          *ai.TokenUsage
	err            error
}

func (s *stubClassifier) Classify(ctx context.Context, title, description string) (*ai.Classification, *ai.TokenUsage, error) {
	return s.classification, s.usage, s.err
}

func (s *stubClassifier) ModelName() string { return "stub-classify" }

type stubIndex struct {
	upserted []*vector.Record
	matches  []*vector.Match
	fetched  *vector.Record
	queryErr error
}

func (s *stubIndex) Upsert(records []*vector.Record) error {
	s.upserted = append(s.upserted, records...)
	return nil
}

func (s *stubIndex) Query(req *vector.QueryRequest) ([]*vector.Match, error) {
	return s.matches, s.queryErr
}

func (s *stubIndex) Fetch(id string) (*vector.Record, error) {
	return s.fetched, nil
}

func newTestPipeline(t *testing.T, embedder ai.Embedder, classifier ai.Classifier, index VectorIndex) (*Pipeline, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Pipeline{
		db:          client.NewClientWith(sqlx.NewDb(db, "postgres"), nil),
		embedder:    embedder,
		classifier:  classifier,
		index:       index,
		retrier:     NewRetrier(&RetryConfig{MaxAttempts: 1}),
		scoreCutoff: 0.85,
		topK:        5,
		maxTextLen:  2000,
	}, mock
}

func expectFeedbackRow(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"feedback_id", "workspace_id", "board_id", "title", "body", "status", "create_time"}).
		AddRow("fb_1", 7, 2, "App crashes on save", "crash every time", client.StatusOpen, time.Now())
	mock.ExpectQuery(`SELECT \* FROM feedback`).WillReturnRows(rows)
}

func TestProcessFullPipelineCompleted(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1, 0.2}}
	classifier := &stubClassifier{
		classification: &ai.Classification{
			Type:           ai.TypeBug,
			Urgency:        ai.UrgencyCritical,
			SentimentScore: -0.8,
			Confidence:     0.9,
			Summary:        "Crash on save",
		},
		usage: &ai.TokenUsage{Input: 120, Output: 40},
	}
	index := &stubIndex{matches: []*vector.Match{
		{Id: "fb_1", Score: 1.0},
		{Id: "fb_9", Score: 0.91},
		{Id: "fb_5", Score: 0.40},
	}}

	pipeline, mock := newTestPipeline(t, embedder, classifier, index)
	expectFeedbackRow(mock)
	mock.ExpectExec(`INSERT INTO duplicate_suggestions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(weight\), 0\) FROM votes`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(30))
	mock.ExpectExec(`UPDATE feedback SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO ai_usage`).WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := pipeline.Process(context.Background(), taskqueue.TopicFullPipeline,
		&taskqueue.PipelinePayload{FeedbackId: "fb_1", WorkspaceId: 7})
	require.NoError(t, err)

	assert.Equal(t, client.AIStatusCompleted, result.Status)
	require.Len(t, result.Stages, 5)
	assert.Equal(t, OutcomeSuccess, result.Stages[0].Outcome)
	assert.Equal(t, OutcomeSuccess, result.Stages[1].Outcome)
	assert.Equal(t, OutcomeSuccess, result.Stages[2].Outcome)
	assert.Equal(t, OutcomeSuccess, result.Stages[3].Outcome)
	assert.Equal(t, OutcomeSkipped, result.Stages[4].Outcome)

	require.Len(t, index.upserted, 1)
	assert.Equal(t, "fb_1", index.upserted[0].Id)
	assert.Equal(t, "App crashes on save", index.upserted[0].Metadata["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessPartialWhenClassifyFails(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	classifier := &stubClassifier{err: ErrProviderFailure}
	index := &stubIndex{}

	pipeline, mock := newTestPipeline(t, embedder, classifier, index)
	pipeline.retrier = NewRetrier(&RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 1})

	expectFeedbackRow(mock)
	mock.ExpectExec(`UPDATE feedback SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO ai_usage`).WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := pipeline.Process(context.Background(), taskqueue.TopicFullPipeline,
		&taskqueue.PipelinePayload{FeedbackId: "fb_1", WorkspaceId: 7})
	require.NoError(t, err)

	assert.Equal(t, client.AIStatusPartial, result.Status)
	assert.True(t, result.Retryable)
	assert.Equal(t, OutcomeError, result.Stages[2].Outcome)
	// classify failed, so priority has no sentiment to work with
	assert.Equal(t, OutcomeSkipped, result.Stages[3].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessFailedWhenEverythingFails(t *testing.T) {
	embedder := &stubEmbedder{err: ErrConnectionFailed}
	classifier := &stubClassifier{err: ErrProviderFailure}

	pipeline, mock := newTestPipeline(t, embedder, classifier, &stubIndex{queryErr: ErrConnectionFailed})
	expectFeedbackRow(mock)
	mock.ExpectExec(`UPDATE feedback SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := pipeline.Process(context.Background(), taskqueue.TopicFullPipeline,
		&taskqueue.PipelinePayload{FeedbackId: "fb_1", WorkspaceId: 7})
	require.NoError(t, err)

	assert.Equal(t, client.AIStatusFailed, result.Status)
	assert.True(t, result.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSingleStageDuplicateUsesStoredVector(t *testing.T) {
	index := &stubIndex{
		fetched: &vector.Record{Id: "fb_1", Values: []float32{0.3}},
		matches: []*vector.Match{{Id: "fb_2", Score: 0.88}},
	}

	pipeline, mock := newTestPipeline(t, nil, nil, index)
	expectFeedbackRow(mock)
	mock.ExpectExec(`INSERT INTO duplicate_suggestions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE feedback SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := pipeline.Process(context.Background(), taskqueue.TopicDuplicate,
		&taskqueue.PipelinePayload{FeedbackId: "fb_1", WorkspaceId: 7})
	require.NoError(t, err)

	require.Len(t, result.Stages, 1)
	assert.Equal(t, OutcomeSuccess, result.Stages[0].Outcome)
	assert.Equal(t, client.AIStatusCompleted, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessMissingFeedback(t *testing.T) {
	pipeline, mock := newTestPipeline(t, nil, nil, nil)
	mock.ExpectQuery(`SELECT \* FROM feedback`).
		WillReturnRows(sqlmock.NewRows([]string{"feedback_id"}))

	_, err := pipeline.Process(context.Background(), taskqueue.TopicFullPipeline,
		&taskqueue.PipelinePayload{FeedbackId: "fb_missing"})
	assert.ErrorIs(t, err, ErrFeedbackNotFound)
	assert.True(t, IsFatalError(err))
}

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		name      string
		votes     int64
		sentiment float64
		urgency   string
		want      int
	}{
		{"critical negative with votes", 100, -1.0, ai.UrgencyCritical, 100},
		{"normal neutral no votes", 0, 0, ai.UrgencyNormal, 25},
		{"urgent mildly negative", 50, -0.5, ai.UrgencyUrgent, 65},
		{"votes saturate at 100", 10000, 0, ai.UrgencyNormal, 55},
		{"praise never urgent", 0, 1.0, ai.UrgencyNormal, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityScore(tt.votes, tt.sentiment, tt.urgency))
		})
	}
}

func TestUrgencyLevelScore(t *testing.T) {
	assert.Equal(t, 1.0, UrgencyLevelScore(ai.UrgencyCritical))
	assert.Equal(t, 0.7, UrgencyLevelScore(ai.UrgencyUrgent))
	assert.Equal(t, 0.3, UrgencyLevelScore(ai.UrgencyNormal))
	assert.Equal(t, 0.3, UrgencyLevelScore("unknown"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText("  a\n\tb   c  ", 2000))
	assert.Equal(t, "abc", NormalizeText("abcdef", 3))
	assert.Equal(t, "", NormalizeText("   \n\t ", 2000))
}

func TestEmbedInput(t *testing.T) {
	assert.Equal(t, "Title: Dark mode. Description: please", EmbedInput("Dark mode", "please", 2000))
	assert.Equal(t, "Title: Dark mode.", EmbedInput("Dark mode", "", 2000))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(ErrRateLimited))
	assert.True(t, IsRetryableError(ErrTimeout))
	assert.True(t, IsRetryableError(ErrConnectionFailed))
	assert.True(t, IsRetryableError(context.DeadlineExceeded))

	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(ErrParseFailure))
	assert.False(t, IsRetryableError(ErrDimensionMismatch))
	assert.False(t, IsRetryableError(errors.New("some business error")))
}

func TestIsRetryableErrorProviderStatus(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"anthropic 429", &anthropic.Error{StatusCode: 429}, true},
		{"anthropic 500", &anthropic.Error{StatusCode: 500}, true},
		{"anthropic 400", &anthropic.Error{StatusCode: 400}, false},
		{"embedding 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"embedding 503", &openai.APIError{HTTPStatusCode: 503}, true},
		{"embedding 401", &openai.APIError{HTTPStatusCode: 401}, false},
		{"embedding transport 502", &openai.RequestError{HTTPStatusCode: 502}, true},
		{"embedding transport 404", &openai.RequestError{HTTPStatusCode: 404}, false},
		{"index 429", &vector.StatusError{StatusCode: 429}, true},
		{"index 503", &vector.StatusError{StatusCode: 503}, true},
		{"index 400", &vector.StatusError{StatusCode: 400}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
		})
	}
}

func TestRetrierStopsOnFatal(t *testing.T) {
	retrier := NewRetrier(&RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1})

	calls := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return ErrParseFailure
	})
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Equal(t, 1, calls)

	calls = 0
	err = retrier.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return ErrRateLimited
	})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, calls)
}

func TestRetrierRecoversFromRateLimit(t *testing.T) {
	retrier := NewRetrier(&RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1})

	calls := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls <= 2 {
			return &openai.APIError{HTTPStatusCode: 429}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
