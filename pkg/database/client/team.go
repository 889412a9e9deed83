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
	TPTeamMembership = "team_memberships"
)

// GetMembership fetches one membership by user and workspace.
func (c *Client) GetMembership(ctx context.Context, userId string, workspaceId int64) (*TeamMembership, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPTeamMembership).
		Where(sqrl.Eq{"user_id": userId, "workspace_id": workspaceId}).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select membership query: %v", err)
	}
	var membership TeamMembership
	err = db.GetContext(ctx, &membership, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("membership", userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select membership from db: %v", err)
	}
	return &membership, nil
}

// SelectTeamMembers lists memberships of one workspace joined with user
// profiles, owner first then by join time.
func (c *Client) SelectTeamMembers(ctx context.Context, workspaceId int64) ([]*TeamMember, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("m.*", "u.email", "u.name").
		From(TPTeamMembership + " m").
		Join(TPUser + " u ON u.user_id = m.user_id").
		Where(sqrl.Eq{"m.workspace_id": workspaceId}).
		OrderBy("CASE m.role WHEN 'owner' THEN 0 ELSE 1 END").
		OrderBy("m.create_time " + ASC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select team members query: %v", err)
	}
	var members []*TeamMember
	err = db.SelectContext(ctx, &members, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select team members from db: %v", err)
	}
	return members, nil
}

// SelectMembershipsByUser lists all workspaces one user belongs to.
func (c *Client) SelectMembershipsByUser(ctx context.Context, userId string) ([]*TeamMembership, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPTeamMembership).
		Where(sqrl.Eq{"user_id": userId}).
		OrderBy("create_time " + ASC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select memberships query: %v", err)
	}
	var memberships []*TeamMembership
	err = db.SelectContext(ctx, &memberships, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select memberships from db: %v", err)
	}
	return memberships, nil
}

// InsertMembership adds a user to a workspace team and fills in the
// generated row id.
func (c *Client) InsertMembership(ctx context.Context, membership *TeamMembership) error {
	if membership == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `INSERT INTO ` + TPTeamMembership + ` (user_id, workspace_id, role, create_time)
		VALUES (:user_id, :workspace_id, :role, NOW())
		RETURNING *;`
	rows, err := db.NamedQueryContext(ctx, cmd, membership)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return cverrors.NewConflict(cverrors.AlreadyMember, "user is already a team member")
		}
		return fmt.Errorf("failed to insert membership to db: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return fmt.Errorf("insert membership returned no row")
	}
	if err = rows.StructScan(membership); err != nil {
		return fmt.Errorf("failed to scan membership: %v", err)
	}
	return nil
}

// UpdateMembershipRole changes one member's role.
func (c *Client) UpdateMembershipRole(ctx context.Context, userId string, workspaceId int64, role string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPTeamMembership).
		Set("role", role).
		Set("update_time", sqrl.Expr("NOW()")).
		Where(sqrl.Eq{"user_id": userId, "workspace_id": workspaceId})
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update membership query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update membership in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("membership", userId)
	}
	return nil
}

// DeleteMembership removes one member from a workspace team.
func (c *Client) DeleteMembership(ctx context.Context, userId string, workspaceId int64) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM `+TPTeamMembership+` WHERE user_id = $1 AND workspace_id = $2;`, userId, workspaceId)
	if err != nil {
		return fmt.Errorf("failed to delete membership from db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("membership", userId)
	}
	return nil
}
