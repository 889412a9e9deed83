/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

const (
	TPDuplicateSuggestion = "duplicate_suggestions"
)

// UpsertDuplicateSuggestion records a duplicate pair found by the pipeline.
// Re-scanning the same pair refreshes the score but never reopens a
// reviewed suggestion.
func (c *Client) UpsertDuplicateSuggestion(ctx context.Context, suggestion *DuplicateSuggestion) error {
	if suggestion == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `INSERT INTO ` + TPDuplicateSuggestion + ` (feedback_id, suggested_duplicate_id, score, status, create_time)
		VALUES (:feedback_id, :suggested_duplicate_id, :score, :status, NOW())
		ON CONFLICT (feedback_id, suggested_duplicate_id) DO UPDATE SET
			score = EXCLUDED.score
		WHERE ` + TPDuplicateSuggestion + `.status = 'pending';`
	_, err = db.NamedExecContext(ctx, cmd, suggestion)
	if err != nil {
		return fmt.Errorf("failed to upsert duplicate suggestion: %v", err)
	}
	return nil
}

// GetDuplicateSuggestion fetches one suggestion by its pair.
func (c *Client) GetDuplicateSuggestion(ctx context.Context, feedbackId, suggestedId string) (*DuplicateSuggestion, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPDuplicateSuggestion).
		Where(sqrl.Eq{"feedback_id": feedbackId, "suggested_duplicate_id": suggestedId}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select suggestion query: %v", err)
	}
	var suggestion DuplicateSuggestion
	err = db.GetContext(ctx, &suggestion, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("duplicate suggestion", feedbackId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select suggestion from db: %v", err)
	}
	return &suggestion, nil
}

// GetDuplicateSuggestionById fetches one suggestion by row id, scoped to a
// workspace through the feedback join.
func (c *Client) GetDuplicateSuggestionById(ctx context.Context, workspaceId, id int64) (*DuplicateSuggestion, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("d.*").From(TPDuplicateSuggestion + " d").
		Join(TPFeedback + " f ON f.feedback_id = d.feedback_id").
		Where(sqrl.Eq{"d.id": id, "f.workspace_id": workspaceId}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select suggestion query: %v", err)
	}
	var suggestion DuplicateSuggestion
	err = db.GetContext(ctx, &suggestion, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("duplicate suggestion", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select suggestion from db: %v", err)
	}
	return &suggestion, nil
}

// SelectDuplicateSuggestions lists suggestions, optionally filtered by
// status or feedback item, newest first.
func (c *Client) SelectDuplicateSuggestions(ctx context.Context, workspaceId int64, status, feedbackId string, limit, offset int) ([]*DuplicateSuggestion, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("d.*").From(TPDuplicateSuggestion + " d").
		Join(TPFeedback + " f ON f.feedback_id = d.feedback_id").
		Where(sqrl.Eq{"f.workspace_id": workspaceId}).
		OrderBy("d.create_time " + DESC)
	if status != "" {
		builder = builder.Where(sqrl.Eq{"d.status": status})
	}
	if feedbackId != "" {
		builder = builder.Where(sqrl.Eq{"d.feedback_id": feedbackId})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select suggestions query: %v", err)
	}
	var suggestions []*DuplicateSuggestion
	err = db.SelectContext(ctx, &suggestions, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select suggestions from db: %v", err)
	}
	return suggestions, nil
}

// ReviewDuplicateSuggestion stamps a pending suggestion dismissed or merged.
func (c *Client) ReviewDuplicateSuggestion(ctx context.Context, feedbackId, suggestedId, status, reviewerId string) error {
	if status != DuplicateDismissed && status != DuplicateMerged {
		return cverrors.NewBadRequest(fmt.Sprintf("invalid review status %q", status))
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `UPDATE ` + TPDuplicateSuggestion + `
		SET status = $1, reviewed_by = $2, review_time = NOW()
		WHERE feedback_id = $3 AND suggested_duplicate_id = $4 AND status = 'pending';`
	result, err := db.ExecContext(ctx, cmd, status, reviewerId, feedbackId, suggestedId)
	if err != nil {
		return fmt.Errorf("failed to review suggestion: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("duplicate suggestion", feedbackId)
	}
	return nil
}
