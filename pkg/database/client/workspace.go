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
	TPWorkspace = "workspaces"
	TPBoard     = "boards"
	TPEndUser   = "end_users"
)

// GetWorkspaceBySlug fetches one workspace by slug.
func (c *Client) GetWorkspaceBySlug(ctx context.Context, slug string) (*Workspace, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPWorkspace).Where(sqrl.Eq{"slug": slug}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select workspace query: %v", err)
	}
	var ws Workspace
	err = db.GetContext(ctx, &ws, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("workspace", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select workspace from db: %v", err)
	}
	return &ws, nil
}

// UpsertWorkspace inserts the workspace when the slug is new and returns the
// stored row either way. Concurrent auto-provisions converge on one row.
func (c *Client) UpsertWorkspace(ctx context.Context, ws *Workspace) (*Workspace, error) {
	if ws == nil {
		return nil, cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	const cmd = `INSERT INTO ` + TPWorkspace + ` (slug, name, owner_user_id, api_key_hash, create_time)
		VALUES (:slug, :name, :owner_user_id, :api_key_hash, NOW())
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING *;`
	rows, err := db.NamedQueryContext(ctx, cmd, ws)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert workspace: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, fmt.Errorf("upsert workspace returned no row")
	}
	var stored Workspace
	if err := rows.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %v", err)
	}
	return &stored, nil
}

// GetWorkspaceById fetches one workspace by numeric id.
func (c *Client) GetWorkspaceById(ctx context.Context, id int64) (*Workspace, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPWorkspace).Where(sqrl.Eq{"id": id}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select workspace query: %v", err)
	}
	var ws Workspace
	err = db.GetContext(ctx, &ws, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("workspace", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select workspace from db: %v", err)
	}
	return &ws, nil
}

// GetWorkspaceByApiKeyHash fetches a workspace by hashed API key.
func (c *Client) GetWorkspaceByApiKeyHash(ctx context.Context, hash string) (*Workspace, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPWorkspace).Where(sqrl.Eq{"api_key_hash": hash}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select workspace query: %v", err)
	}
	var ws Workspace
	err = db.GetContext(ctx, &ws, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("workspace", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select workspace from db: %v", err)
	}
	return &ws, nil
}

// GetBoard fetches one board of a workspace by slug.
func (c *Client) GetBoard(ctx context.Context, workspaceId int64, slug string) (*Board, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPBoard).
		Where(sqrl.Eq{"workspace_id": workspaceId, "slug": slug}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select board query: %v", err)
	}
	var board Board
	err = db.GetContext(ctx, &board, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("board", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select board from db: %v", err)
	}
	return &board, nil
}

// SelectBoards lists boards of one workspace.
func (c *Client) SelectBoards(ctx context.Context, workspaceId int64) ([]*Board, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPBoard).
		Where(sqrl.Eq{"workspace_id": workspaceId}).
		OrderBy("create_time " + ASC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select boards query: %v", err)
	}
	var boards []*Board
	err = db.SelectContext(ctx, &boards, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select boards from db: %v", err)
	}
	return boards, nil
}

// UpsertBoard inserts the board when (workspace, slug) is new and returns
// the stored row either way.
func (c *Client) UpsertBoard(ctx context.Context, board *Board) (*Board, error) {
	if board == nil {
		return nil, cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	const cmd = `INSERT INTO ` + TPBoard + ` (workspace_id, slug, name, moderation_policy, archived, create_time)
		VALUES (:workspace_id, :slug, :name, :moderation_policy, :archived, NOW())
		ON CONFLICT (workspace_id, slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING *;`
	rows, err := db.NamedQueryContext(ctx, cmd, board)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert board: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, fmt.Errorf("upsert board returned no row")
	}
	var stored Board
	if err := rows.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("failed to scan board: %v", err)
	}
	return &stored, nil
}

// UpdateBoardFields updates the given columns of one board row.
func (c *Client) UpdateBoardFields(ctx context.Context, boardId int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return cverrors.NewBadRequest("no fields to update")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPBoard).Where(sqrl.Eq{"id": boardId})
	for col, val := range fields {
		builder = builder.Set(col, val)
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update board query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update board in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("board", fmt.Sprintf("%d", boardId))
	}
	return nil
}

// UpsertEndUser inserts the end user when (workspace, external id) is new,
// refreshes email/name otherwise, and returns the stored row.
func (c *Client) UpsertEndUser(ctx context.Context, endUser *EndUser) (*EndUser, error) {
	if endUser == nil {
		return nil, cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	const cmd = `INSERT INTO ` + TPEndUser + ` (end_user_id, workspace_id, external_user_id, email, name, create_time)
		VALUES (:end_user_id, :workspace_id, :external_user_id, :email, :name, NOW())
		ON CONFLICT (workspace_id, external_user_id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, ` + TPEndUser + `.email),
			name = COALESCE(EXCLUDED.name, ` + TPEndUser + `.name)
		RETURNING *;`
	rows, err := db.NamedQueryContext(ctx, cmd, endUser)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert end_user: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, fmt.Errorf("upsert end_user returned no row")
	}
	var stored EndUser
	if err := rows.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("failed to scan end_user: %v", err)
	}
	return &stored, nil
}
