/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"
)

// StatusCount is one bucket of the status breakdown.
type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// TrendPoint is one day of feedback volume.
type TrendPoint struct {
	Day   string `db:"day"`
	Count int64  `db:"count"`
}

// EndUserActivity joins an end user with their activity counters.
type EndUserActivity struct {
	EndUser
	FeedbackCount int64 `db:"feedback_count"`
	VoteCount     int64 `db:"vote_count"`
}

// CountFeedbackByStatus returns the status breakdown of one workspace,
// excluding merged rows.
func (c *Client) CountFeedbackByStatus(ctx context.Context, workspaceId int64) ([]*StatusCount, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("status", "COUNT(*) AS count").
		From(TPFeedback).
		Where(sqrl.Eq{"workspace_id": workspaceId}).
		Where("merged_into IS NULL").
		GroupBy("status")
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status breakdown query: %v", err)
	}
	var counts []*StatusCount
	err = db.SelectContext(ctx, &counts, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select status breakdown from db: %v", err)
	}
	return counts, nil
}

// SelectFeedbackTrend returns daily feedback volume for the last N days.
func (c *Client) SelectFeedbackTrend(ctx context.Context, workspaceId int64, days int) ([]*TrendPoint, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	const cmd = `SELECT TO_CHAR(DATE_TRUNC('day', create_time), 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM ` + TPFeedback + `
		WHERE workspace_id = $1 AND create_time >= NOW() - ($2 || ' days')::interval
		GROUP BY day ORDER BY day;`
	var points []*TrendPoint
	err = db.SelectContext(ctx, &points, cmd, workspaceId, days)
	if err != nil {
		return nil, fmt.Errorf("failed to select feedback trend from db: %v", err)
	}
	return points, nil
}

// SelectEndUserActivity lists end users of a workspace with their feedback
// and vote counts, most active first.
func (c *Client) SelectEndUserActivity(ctx context.Context, workspaceId int64, limit, offset int) ([]*EndUserActivity, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("e.*",
			"(SELECT COUNT(*) FROM "+TPFeedback+" f WHERE f.author_end_user_id = e.end_user_id) AS feedback_count",
			"(SELECT COUNT(*) FROM "+TPVote+" v WHERE v.voter_id = e.end_user_id) AS vote_count").
		From(TPEndUser + " e").
		Where(sqrl.Eq{"e.workspace_id": workspaceId}).
		OrderBy("feedback_count " + DESC).
		OrderBy("e.create_time " + DESC)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build end user activity query: %v", err)
	}
	var activity []*EndUserActivity
	err = db.SelectContext(ctx, &activity, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select end user activity from db: %v", err)
	}
	return activity, nil
}

// CountEndUsers counts end users of one workspace.
func (c *Client) CountEndUsers(ctx context.Context, workspaceId int64) (int, error) {
	db, err := c.getDB()
	if err != nil {
		return 0, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("COUNT(*)").From(TPEndUser).
		Where(sqrl.Eq{"workspace_id": workspaceId})
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count end users query: %v", err)
	}
	var count int
	err = db.GetContext(ctx, &count, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count end users from db: %v", err)
	}
	return count, nil
}
