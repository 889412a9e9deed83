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
	TPAIUsage = "ai_usage"
)

// AddAIUsage adds counters to the (workspace, date) usage row, creating it
// on first use. Counters only ever grow.
func (c *Client) AddAIUsage(ctx context.Context, usage *AIUsage) error {
	if usage == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `INSERT INTO ` + TPAIUsage + ` (workspace_id, date, embed_calls, classify_calls, tokens_in, tokens_out)
		VALUES (:workspace_id, :date, :embed_calls, :classify_calls, :tokens_in, :tokens_out)
		ON CONFLICT (workspace_id, date) DO UPDATE SET
			embed_calls = ` + TPAIUsage + `.embed_calls + EXCLUDED.embed_calls,
			classify_calls = ` + TPAIUsage + `.classify_calls + EXCLUDED.classify_calls,
			tokens_in = ` + TPAIUsage + `.tokens_in + EXCLUDED.tokens_in,
			tokens_out = ` + TPAIUsage + `.tokens_out + EXCLUDED.tokens_out;`
	_, err = db.NamedExecContext(ctx, cmd, usage)
	if err != nil {
		return fmt.Errorf("failed to add ai_usage to db: %v", err)
	}
	return nil
}

// SelectAIUsage lists usage rows of one workspace within a date range,
// newest first. Dates are inclusive ISO day strings.
func (c *Client) SelectAIUsage(ctx context.Context, workspaceId int64, from, to string) ([]*AIUsage, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPAIUsage).
		Where(sqrl.Eq{"workspace_id": workspaceId}).
		OrderBy("date " + DESC)
	if from != "" {
		builder = builder.Where(sqrl.GtOrEq{"date": from})
	}
	if to != "" {
		builder = builder.Where(sqrl.LtOrEq{"date": to})
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select ai_usage query: %v", err)
	}
	var usage []*AIUsage
	err = db.SelectContext(ctx, &usage, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select ai_usage from db: %v", err)
	}
	return usage, nil
}
