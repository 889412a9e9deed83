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
	TPFeedback = "feedback"
	TPVote     = "votes"
)

var (
	insertFeedbackFormat = `INSERT INTO ` + TPFeedback + ` (%s) VALUES (%s);`
)

// InsertFeedback inserts a new feedback row.
func (c *Client) InsertFeedback(ctx context.Context, feedback *Feedback) error {
	if feedback == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*feedback, insertFeedbackFormat, "id"), feedback)
	if err != nil {
		return fmt.Errorf("failed to insert feedback to db: %v", err)
	}
	return nil
}

// GetFeedbackById fetches one feedback row by business id.
func (c *Client) GetFeedbackById(ctx context.Context, feedbackId string) (*Feedback, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPFeedback).Where(sqrl.Eq{"feedback_id": feedbackId}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select feedback query: %v", err)
	}
	var feedback Feedback
	err = db.GetContext(ctx, &feedback, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("feedback", feedbackId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select feedback from db: %v", err)
	}
	return &feedback, nil
}

// SelectFeedback retrieves feedback rows based on query conditions.
func (c *Client) SelectFeedback(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*Feedback, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPFeedback)
	if query != nil {
		builder = builder.Where(query)
	}
	for _, order := range orderBy {
		builder = builder.OrderBy(order)
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select feedback query: %v", err)
	}
	var items []*Feedback
	err = db.SelectContext(ctx, &items, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select feedback from db: %v", err)
	}
	return items, nil
}

// CountFeedback counts feedback rows based on query conditions.
func (c *Client) CountFeedback(ctx context.Context, query sqrl.Sqlizer) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("COUNT(*)").From(TPFeedback)
	if query != nil {
		builder = builder.Where(query)
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count feedback query: %v", err)
	}
	var count int
	err = db.GetContext(ctx, &count, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback from db: %v", err)
	}
	return count, nil
}

// SelectFeedbackWithVotes retrieves feedback rows decorated with the vote
// total, ordered by votes then recency. This backs the public board view:
// only approved, visible, unmerged rows appear.
func (c *Client) SelectFeedbackWithVotes(ctx context.Context, boardId int64, status string, limit, offset int) ([]*FeedbackWithVotes, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("f.*", "COALESCE(SUM(v.weight), 0) AS vote_count").
		From(TPFeedback+" f").
		LeftJoin(TPVote+" v ON v.feedback_id = f.feedback_id").
		Where(sqrl.Eq{"f.board_id": boardId, "f.moderation": ModerationApproved, "f.hidden": false}).
		Where("f.merged_into IS NULL").
		GroupBy("f.id").
		OrderBy("vote_count " + DESC).
		OrderBy("f.create_time " + DESC)
	if status != "" {
		builder = builder.Where(sqrl.Eq{"f.status": status})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select feedback with votes query: %v", err)
	}
	var items []*FeedbackWithVotes
	err = db.SelectContext(ctx, &items, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select feedback with votes from db: %v", err)
	}
	return items, nil
}

// CountVotes sums vote weights for one feedback item.
func (c *Client) CountVotes(ctx context.Context, feedbackId string) (int64, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	const cmd = `SELECT COALESCE(SUM(weight), 0) FROM ` + TPVote + ` WHERE feedback_id = $1;`
	var total int64
	err = db.GetContext(ctx, &total, cmd, feedbackId)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes from db: %v", err)
	}
	return total, nil
}

// SelectVoteCounts sums vote weights for a batch of feedback items. Items
// without votes are absent from the result.
func (c *Client) SelectVoteCounts(ctx context.Context, feedbackIds []string) (map[string]int64, error) {
	if len(feedbackIds) == 0 {
		return map[string]int64{}, nil
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("feedback_id", "COALESCE(SUM(weight), 0) AS vote_count").
		From(TPVote).
		Where(sqrl.Eq{"feedback_id": feedbackIds}).
		GroupBy("feedback_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select vote counts query: %v", err)
	}
	rows := []struct {
		FeedbackId string `db:"feedback_id"`
		VoteCount  int64  `db:"vote_count"`
	}{}
	if err = db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("failed to select vote counts from db: %v", err)
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.FeedbackId] = row.VoteCount
	}
	return result, nil
}

// UpdateFeedbackFields updates the given columns of one feedback row.
func (c *Client) UpdateFeedbackFields(ctx context.Context, feedbackId string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return cverrors.NewBadRequest("no fields to update")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPFeedback).Where(sqrl.Eq{"feedback_id": feedbackId})
	for col, val := range fields {
		builder = builder.Set(col, val)
	}
	builder = builder.Set("update_time", sqrl.Expr("NOW()"))
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update feedback query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update feedback in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("feedback", feedbackId)
	}
	return nil
}

// BulkRowResult reports the per-row outcome of a bulk update.
type BulkRowResult struct {
	FeedbackId string `json:"id"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// BulkUpdateFeedback applies the same field set to up to 100 feedback rows
// of one workspace inside a single transaction. Rows that do not exist or
// belong to another workspace fail individually without aborting the rest.
func (c *Client) BulkUpdateFeedback(ctx context.Context, workspaceId int64, feedbackIds []string, fields map[string]interface{}) ([]BulkRowResult, error) {
	if len(feedbackIds) == 0 || len(fields) == 0 {
		return nil, cverrors.NewBadRequest("ids and fields must not be empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bulk update tx: %v", err)
	}
	defer tx.Rollback()

	results := make([]BulkRowResult, 0, len(feedbackIds))
	for _, id := range feedbackIds {
		builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
			Update(TPFeedback).
			Where(sqrl.Eq{"feedback_id": id, "workspace_id": workspaceId})
		for col, val := range fields {
			builder = builder.Set(col, val)
		}
		builder = builder.Set("update_time", sqrl.Expr("NOW()"))
		sqlStr, args, err := builder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build bulk update query: %v", err)
		}
		result, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to bulk update feedback %s: %v", id, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			results = append(results, BulkRowResult{FeedbackId: id, OK: false, Error: "not found"})
		} else {
			results = append(results, BulkRowResult{FeedbackId: id, OK: true})
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bulk update tx: %v", err)
	}
	return results, nil
}

// MergeFeedback merges source into target in one transaction: votes move
// with duplicate voters dropped, comments move, and the source row is
// stamped with merged_into/merged_at. The target must not itself be merged,
// and the source must not be reachable from the target through merged_into.
func (c *Client) MergeFeedback(ctx context.Context, workspaceId int64, sourceId, targetId string) error {
	if sourceId == targetId {
		return cverrors.NewConflict(cverrors.MergeCycle, "cannot merge feedback into itself")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin merge tx: %v", err)
	}
	defer tx.Rollback()

	var source, target Feedback
	const lockCmd = `SELECT * FROM ` + TPFeedback + ` WHERE feedback_id = $1 AND workspace_id = $2 FOR UPDATE;`
	if err := tx.GetContext(ctx, &source, lockCmd, sourceId, workspaceId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cverrors.NewNotFound("feedback", sourceId)
		}
		return fmt.Errorf("failed to lock source feedback: %v", err)
	}
	if err := tx.GetContext(ctx, &target, lockCmd, targetId, workspaceId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cverrors.NewNotFound("feedback", targetId)
		}
		return fmt.Errorf("failed to lock target feedback: %v", err)
	}
	if source.MergedInto.Valid {
		return cverrors.NewConflict(cverrors.AlreadyMerged, fmt.Sprintf("feedback %s is already merged", sourceId))
	}
	if target.MergedInto.Valid {
		return cverrors.NewConflict(cverrors.AlreadyMerged, fmt.Sprintf("feedback %s is already merged", targetId))
	}

	// walk the merge chain upward from the target; reaching the source
	// would close a cycle
	cursor := target.MergedInto
	for depth := 0; cursor.Valid && depth < 64; depth++ {
		if cursor.String == sourceId {
			return cverrors.NewConflict(cverrors.MergeCycle, "merge would create a cycle")
		}
		var next Feedback
		if err := tx.GetContext(ctx, &next, `SELECT * FROM `+TPFeedback+` WHERE feedback_id = $1;`, cursor.String); err != nil {
			break
		}
		cursor = next.MergedInto
	}

	const moveVotes = `INSERT INTO ` + TPVote + ` (feedback_id, voter_id, weight, create_time)
		SELECT $1, voter_id, weight, create_time FROM ` + TPVote + ` WHERE feedback_id = $2
		ON CONFLICT (feedback_id, voter_id) DO NOTHING;`
	if _, err := tx.ExecContext(ctx, moveVotes, targetId, sourceId); err != nil {
		return fmt.Errorf("failed to move votes: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+TPVote+` WHERE feedback_id = $1;`, sourceId); err != nil {
		return fmt.Errorf("failed to delete source votes: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+TPComment+` SET feedback_id = $1 WHERE feedback_id = $2;`, targetId, sourceId); err != nil {
		return fmt.Errorf("failed to move comments: %v", err)
	}
	const stampSource = `UPDATE ` + TPFeedback + `
		SET merged_into = $1, merged_at = NOW(), update_time = NOW() WHERE feedback_id = $2;`
	if _, err := tx.ExecContext(ctx, stampSource, targetId, sourceId); err != nil {
		return fmt.Errorf("failed to stamp source feedback: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit merge tx: %v", err)
	}
	return nil
}

// DeleteFeedback removes one feedback row with its votes and comments.
func (c *Client) DeleteFeedback(ctx context.Context, workspaceId int64, feedbackId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete tx: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+TPVote+` WHERE feedback_id = $1;`, feedbackId); err != nil {
		return fmt.Errorf("failed to delete votes: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+TPComment+` WHERE feedback_id = $1;`, feedbackId); err != nil {
		return fmt.Errorf("failed to delete comments: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+TPFeedbackTag+` WHERE feedback_id = $1;`, feedbackId); err != nil {
		return fmt.Errorf("failed to delete feedback tags: %v", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM `+TPFeedback+` WHERE feedback_id = $1 AND workspace_id = $2;`, feedbackId, workspaceId)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("feedback", feedbackId)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete tx: %v", err)
	}
	return nil
}

// UpsertVote records a vote idempotently; voting twice keeps one row.
func (c *Client) UpsertVote(ctx context.Context, vote *Vote) error {
	if vote == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `INSERT INTO ` + TPVote + ` (feedback_id, voter_id, weight, create_time)
		VALUES (:feedback_id, :voter_id, :weight, NOW())
		ON CONFLICT (feedback_id, voter_id) DO NOTHING;`
	_, err = db.NamedExecContext(ctx, cmd, vote)
	if err != nil {
		return fmt.Errorf("failed to upsert vote to db: %v", err)
	}
	return nil
}

// DeleteVote removes one voter's vote from a feedback item.
func (c *Client) DeleteVote(ctx context.Context, feedbackId, voterId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM `+TPVote+` WHERE feedback_id = $1 AND voter_id = $2;`, feedbackId, voterId)
	if err != nil {
		return fmt.Errorf("failed to delete vote from db: %v", err)
	}
	return nil
}
