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
	TPTheme = "themes"
)

var (
	insertThemeFormat = `INSERT INTO ` + TPTheme + ` (%s) VALUES (%s);`
)

// InsertTheme inserts a new theme row.
func (c *Client) InsertTheme(ctx context.Context, theme *Theme) error {
	if theme == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*theme, insertThemeFormat, "id"), theme)
	if err != nil {
		return fmt.Errorf("failed to insert theme to db: %v", err)
	}
	return nil
}

// GetThemeById fetches one theme by business id within a workspace.
func (c *Client) GetThemeById(ctx context.Context, workspaceId int64, themeId string) (*Theme, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPTheme).
		Where(sqrl.Eq{"workspace_id": workspaceId, "theme_id": themeId}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select theme query: %v", err)
	}
	var theme Theme
	err = db.GetContext(ctx, &theme, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("theme", themeId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select theme from db: %v", err)
	}
	return &theme, nil
}

// SelectThemes lists themes of one workspace by name.
func (c *Client) SelectThemes(ctx context.Context, workspaceId int64) ([]*Theme, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPTheme).
		Where(sqrl.Eq{"workspace_id": workspaceId}).
		OrderBy("name " + ASC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select themes query: %v", err)
	}
	var themes []*Theme
	err = db.SelectContext(ctx, &themes, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select themes from db: %v", err)
	}
	return themes, nil
}

// UpdateThemeFields updates the given columns of one theme row.
func (c *Client) UpdateThemeFields(ctx context.Context, workspaceId int64, themeId string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return cverrors.NewBadRequest("no fields to update")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPTheme).Where(sqrl.Eq{"workspace_id": workspaceId, "theme_id": themeId})
	for col, val := range fields {
		builder = builder.Set(col, val)
	}
	builder = builder.Set("update_time", sqrl.Expr("NOW()"))
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update theme query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update theme in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("theme", themeId)
	}
	return nil
}

// DeleteTheme removes one theme row.
func (c *Client) DeleteTheme(ctx context.Context, workspaceId int64, themeId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM `+TPTheme+` WHERE workspace_id = $1 AND theme_id = $2;`, workspaceId, themeId)
	if err != nil {
		return fmt.Errorf("failed to delete theme from db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("theme", themeId)
	}
	return nil
}
