/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package pipeline

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/ai"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/metrics"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/vector"
)

// Stage outcomes
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// VectorIndex is the subset of the vector index the pipeline needs.
type VectorIndex interface {
	Upsert(records []*vector.Record) error
	Query(req *vector.QueryRequest) ([]*vector.Match, error)
	Fetch(id string) (*vector.Record, error)
}

// StageResult records the outcome of one stage for one feedback item.
type StageResult struct {
	Stage   string `json:"stage"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of processing one feedback item. Status is
// completed when every non-skipped stage succeeded, partial when at least
// one succeeded and one failed, failed when none succeeded.
type Result struct {
	FeedbackId string        `json:"feedback_id"`
	Status     string        `json:"status"`
	Stages     []StageResult `json:"stages"`
	Retryable  bool          `json:"-"`
}

// Pipeline runs the AI stage sequence over feedback items. Stages within
// one item run sequentially because later stages consume earlier results;
// parallelism happens across items, in the consumer.
type Pipeline struct {
	db         *client.Client
	embedder   ai.Embedder
	classifier ai.Classifier
	index      VectorIndex
	retrier    *Retrier

	scoreCutoff float64
	topK        int
	maxTextLen  int
}

// New creates a pipeline. Embedder, classifier and index may each be nil;
// stages missing their provider are skipped rather than failed.
func New(db *client.Client, embedder ai.Embedder, classifier ai.Classifier, index VectorIndex) *Pipeline {
	return &Pipeline{
		db:          db,
		embedder:    embedder,
		classifier:  classifier,
		index:       index,
		retrier:     NewRetrier(nil),
		scoreCutoff: config.GetDuplicateScoreCutoff(),
		topK:        config.GetDuplicateTopK(),
		maxTextLen:  config.GetNormalizedTextLength(),
	}
}

// stageState carries intermediate results between stages of one item.
type stageState struct {
	feedback       *client.Feedback
	vec            []float32
	classification *ai.Classification
	usage          client.AIUsage
	fields         map[string]interface{}
}

// Process runs the stage sequence the topic stands for over one feedback
// item. The resulting AI fields and the overall status land on the
// feedback row in a single update.
func (p *Pipeline) Process(ctx context.Context, topic string, payload *taskqueue.PipelinePayload) (*Result, error) {
	feedback, err := p.db.GetFeedbackById(ctx, payload.FeedbackId)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFeedbackNotFound, payload.FeedbackId)
	}

	state := &stageState{
		feedback: feedback,
		fields:   map[string]interface{}{},
	}

	result := &Result{FeedbackId: feedback.FeedbackId}
	succeeded, failed := 0, 0
	for _, stage := range taskqueue.ExpandTopic(topic) {
		outcome, stageErr := p.runStage(ctx, stage, state)
		metrics.IncPipelineStageCount(stage, outcome)
		sr := StageResult{Stage: stage, Outcome: outcome}
		if stageErr != nil {
			sr.Error = stageErr.Error()
			failed++
			if IsRetryableError(stageErr) {
				result.Retryable = true
			}
			klog.ErrorS(stageErr, "pipeline stage failed", "stage", stage, "feedback", feedback.FeedbackId)
		} else if outcome == OutcomeSuccess {
			succeeded++
		}
		result.Stages = append(result.Stages, sr)
	}

	switch {
	case failed == 0:
		result.Status = client.AIStatusCompleted
	case succeeded > 0:
		result.Status = client.AIStatusPartial
	default:
		result.Status = client.AIStatusFailed
	}

	state.fields["ai_status"] = result.Status
	state.fields["ai_processed_at"] = time.Now()
	if err = p.db.UpdateFeedbackFields(ctx, feedback.FeedbackId, state.fields); err != nil {
		return nil, err
	}

	if state.usage != (client.AIUsage{}) {
		state.usage.WorkspaceId = feedback.WorkspaceId
		state.usage.Date = time.Now().Format("2006-01-02")
		if err = p.db.AddAIUsage(ctx, &state.usage); err != nil {
			klog.ErrorS(err, "failed to record ai usage", "workspace", feedback.WorkspaceId)
		}
	}

	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage string, state *stageState) (string, error) {
	switch stage {
	case taskqueue.TopicEmbed:
		return p.runEmbed(ctx, state)
	case taskqueue.TopicDuplicate:
		return p.runDuplicate(ctx, state)
	case taskqueue.TopicClassify:
		return p.runClassify(ctx, state)
	case taskqueue.TopicPriority:
		return p.runPriority(ctx, state)
	case taskqueue.TopicTheme:
		// Reserved for theme clustering.
		return OutcomeSkipped, nil
	}
	return OutcomeError, fmt.Errorf("%w: %s", ErrStageNotKnown, stage)
}

func (p *Pipeline) runEmbed(ctx context.Context, state *stageState) (string, error) {
	if p.embedder == nil || p.index == nil {
		return OutcomeSkipped, nil
	}
	feedback := state.feedback
	input := EmbedInput(feedback.Title, feedback.Body.String, p.maxTextLen)
	if input == "" {
		return OutcomeError, ErrEmptyInput
	}

	vec, err := DoWithResult(ctx, p.retrier, func(ctx context.Context) ([]float32, error) {
		return p.embedder.Embed(ctx, input)
	})
	if err != nil {
		return OutcomeError, err
	}
	state.usage.EmbedCalls++
	if len(vec) == 0 {
		return OutcomeSkipped, nil
	}

	record := &vector.Record{
		Id:     feedback.FeedbackId,
		Values: vec,
		Metadata: map[string]interface{}{
			"feedback_id":  feedback.FeedbackId,
			"board_id":     feedback.BoardId,
			"workspace_id": feedback.WorkspaceId,
			"created_at":   feedback.CreateTime.Time.Format(time.RFC3339),
			"title":        TruncateTitle(feedback.Title, 100),
		},
	}
	if err = p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.index.Upsert([]*vector.Record{record})
	}); err != nil {
		return OutcomeError, err
	}
	state.vec = vec
	return OutcomeSuccess, nil
}

func (p *Pipeline) runDuplicate(ctx context.Context, state *stageState) (string, error) {
	if p.index == nil {
		return OutcomeSkipped, nil
	}
	feedback := state.feedback

	vec := state.vec
	if vec == nil {
		// Targeted reprocessing: the vector was written by an earlier run.
		record, err := p.index.Fetch(feedback.FeedbackId)
		if err != nil {
			return OutcomeError, err
		}
		if record == nil {
			return OutcomeSkipped, nil
		}
		vec = record.Values
	}

	matches, err := DoWithResult(ctx, p.retrier, func(ctx context.Context) ([]*vector.Match, error) {
		return p.index.Query(&vector.QueryRequest{
			Vector:          vec,
			TopK:            p.topK + 1, // the item itself comes back as its own best match
			Filter:          map[string]interface{}{"workspace_id": feedback.WorkspaceId},
			IncludeMetadata: true,
		})
	})
	if err != nil {
		return OutcomeError, err
	}

	for _, match := range matches {
		if match.Id == feedback.FeedbackId || match.Score < p.scoreCutoff {
			continue
		}
		suggestion := &client.DuplicateSuggestion{
			FeedbackId:  feedback.FeedbackId,
			SuggestedId: match.Id,
			Score:       match.Score,
			Status:      client.DuplicatePending,
		}
		if err = p.db.UpsertDuplicateSuggestion(ctx, suggestion); err != nil {
			return OutcomeError, err
		}
	}
	return OutcomeSuccess, nil
}

func (p *Pipeline) runClassify(ctx context.Context, state *stageState) (string, error) {
	if p.classifier == nil {
		return OutcomeSkipped, nil
	}
	feedback := state.feedback

	type classifyOut struct {
		classification *ai.Classification
		usage          *ai.TokenUsage
	}
	out, err := DoWithResult(ctx, p.retrier, func(ctx context.Context) (classifyOut, error) {
		classification, usage, err := p.classifier.Classify(ctx, feedback.Title, feedback.Body.String)
		return classifyOut{classification, usage}, err
	})
	if out.usage != nil {
		state.usage.ClassifyCalls++
		state.usage.TokensIn += out.usage.Input
		state.usage.TokensOut += out.usage.Output
	}
	if err != nil {
		return OutcomeError, err
	}

	classification := out.classification
	state.classification = classification
	state.fields["ai_category"] = classification.Type
	state.fields["ai_sentiment"] = classification.SentimentScore
	state.fields["ai_urgency"] = classification.Urgency
	if classification.Summary != "" {
		state.fields["ai_summary"] = classification.Summary
	}
	return OutcomeSuccess, nil
}

func (p *Pipeline) runPriority(ctx context.Context, state *stageState) (string, error) {
	feedback := state.feedback

	sentiment, urgency, ok := p.priorityInputs(state)
	if !ok {
		return OutcomeSkipped, nil
	}

	votes, err := p.db.CountVotes(ctx, feedback.FeedbackId)
	if err != nil {
		return OutcomeError, err
	}
	state.fields["ai_priority"] = PriorityScore(votes, sentiment, urgency)
	return OutcomeSuccess, nil
}

// priorityInputs resolves sentiment and urgency from this run's
// classification, falling back to values persisted by an earlier run.
func (p *Pipeline) priorityInputs(state *stageState) (float64, string, bool) {
	if state.classification != nil {
		return state.classification.SentimentScore, state.classification.Urgency, true
	}
	feedback := state.feedback
	if feedback.AISentiment.Valid && feedback.AIUrgency.Valid {
		return feedback.AISentiment.Float64, feedback.AIUrgency.String, true
	}
	return 0, "", false
}
