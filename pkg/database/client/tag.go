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
	"github.com/lib/pq"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

const (
	TPTag         = "tags"
	TPFeedbackTag = "feedback_tags"
)

var (
	insertTagFormat = `INSERT INTO ` + TPTag + ` (%s) VALUES (%s);`
)

// InsertTag inserts a new tag row. A duplicate (workspace, name) pair maps
// to an already-exists error.
func (c *Client) InsertTag(ctx context.Context, tag *Tag) error {
	if tag == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*tag, insertTagFormat, "id"), tag)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return cverrors.NewAlreadyExist(fmt.Sprintf("tag %s already exists", tag.Name))
		}
		return fmt.Errorf("failed to insert tag to db: %v", err)
	}
	return nil
}

// GetTagById fetches one tag by business id within a workspace.
func (c *Client) GetTagById(ctx context.Context, workspaceId int64, tagId string) (*Tag, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPTag).
		Where(sqrl.Eq{"workspace_id": workspaceId, "tag_id": tagId}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select tag query: %v", err)
	}
	var tag Tag
	err = db.GetContext(ctx, &tag, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("tag", tagId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select tag from db: %v", err)
	}
	return &tag, nil
}

// SelectTags lists the tags of one workspace by name.
func (c *Client) SelectTags(ctx context.Context, workspaceId int64) ([]*Tag, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPTag).
		Where(sqrl.Eq{"workspace_id": workspaceId}).
		OrderBy("name " + ASC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select tags query: %v", err)
	}
	var tags []*Tag
	err = db.SelectContext(ctx, &tags, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags from db: %v", err)
	}
	return tags, nil
}

// UpdateTagFields updates the given columns of one tag row.
func (c *Client) UpdateTagFields(ctx context.Context, workspaceId int64, tagId string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return cverrors.NewBadRequest("no fields to update")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPTag).Where(sqrl.Eq{"workspace_id": workspaceId, "tag_id": tagId})
	for col, val := range fields {
		builder = builder.Set(col, val)
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update tag query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return cverrors.NewAlreadyExist("tag name already exists")
		}
		return fmt.Errorf("failed to update tag in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("tag", tagId)
	}
	return nil
}

// DeleteTag removes one tag and its feedback associations.
func (c *Client) DeleteTag(ctx context.Context, workspaceId int64, tagId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete tag tx: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+TPFeedbackTag+` WHERE tag_id = $1;`, tagId); err != nil {
		return fmt.Errorf("failed to delete feedback tags: %v", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM `+TPTag+` WHERE workspace_id = $1 AND tag_id = $2;`, workspaceId, tagId)
	if err != nil {
		return fmt.Errorf("failed to delete tag from db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("tag", tagId)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete tag tx: %v", err)
	}
	return nil
}

// SelectFeedbackTags returns the tags attached to one feedback item.
func (c *Client) SelectFeedbackTags(ctx context.Context, feedbackId string) ([]*Tag, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("t.*").From(TPTag + " t").
		Join(TPFeedbackTag + " ft ON ft.tag_id = t.tag_id").
		Where(sqrl.Eq{"ft.feedback_id": feedbackId}).
		OrderBy("t.name " + ASC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select feedback tags query: %v", err)
	}
	var tags []*Tag
	err = db.SelectContext(ctx, &tags, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select feedback tags from db: %v", err)
	}
	return tags, nil
}

// ReplaceFeedbackTags replaces the tag set of a feedback item inside a
// single transaction. All tag ids must belong to the workspace.
func (c *Client) ReplaceFeedbackTags(ctx context.Context, workspaceId int64, feedbackId string, tagIds []string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace tags tx: %v", err)
	}
	defer tx.Rollback()

	if len(tagIds) > 0 {
		builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
			Select("COUNT(*)").From(TPTag).
			Where(sqrl.Eq{"workspace_id": workspaceId, "tag_id": tagIds})
		sqlStr, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build tag ownership query: %v", err)
		}
		var count int
		if err := tx.GetContext(ctx, &count, sqlStr, args...); err != nil {
			return fmt.Errorf("failed to verify tag ownership: %v", err)
		}
		if count != len(tagIds) {
			return cverrors.NewBadRequest("one or more tags do not exist in this workspace")
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+TPFeedbackTag+` WHERE feedback_id = $1;`, feedbackId); err != nil {
		return fmt.Errorf("failed to clear feedback tags: %v", err)
	}
	for _, tagId := range tagIds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+TPFeedbackTag+` (feedback_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`,
			feedbackId, tagId); err != nil {
			return fmt.Errorf("failed to attach tag %s: %v", tagId, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace tags tx: %v", err)
	}
	return nil
}
