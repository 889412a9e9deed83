/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

const (
	TPComment = "comments"
)

var (
	insertCommentFormat = `INSERT INTO ` + TPComment + ` (%s) VALUES (%s);`
)

// InsertComment inserts a new comment row.
func (c *Client) InsertComment(ctx context.Context, comment *Comment) error {
	if comment == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*comment, insertCommentFormat, "id"), comment)
	if err != nil {
		return fmt.Errorf("failed to insert comment to db: %v", err)
	}
	return nil
}

// SelectComments retrieves comments of one feedback item in creation order.
// When includeInternal is false, internal notes are filtered out; the public
// surface never sees them.
func (c *Client) SelectComments(ctx context.Context, feedbackId string, includeInternal bool) ([]*Comment, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPComment).
		Where(sqrl.Eq{"feedback_id": feedbackId}).
		OrderBy("create_time " + ASC)
	if !includeInternal {
		builder = builder.Where(sqrl.Eq{"is_internal": false})
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select comments query: %v", err)
	}
	var comments []*Comment
	err = db.SelectContext(ctx, &comments, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments from db: %v", err)
	}
	return comments, nil
}

// DeleteComment removes one comment row.
func (c *Client) DeleteComment(ctx context.Context, commentId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM `+TPComment+` WHERE comment_id = $1;`, commentId)
	if err != nil {
		return fmt.Errorf("failed to delete comment from db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("comment", commentId)
	}
	return nil
}
