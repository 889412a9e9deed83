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
	TPInvitation = "invitations"
)

var (
	insertInvitationFormat = `INSERT INTO ` + TPInvitation + ` (%s) VALUES (%s);`
)

// InsertInvitation inserts a new invitation row. Only the token hash is
// stored; the plaintext travels once in the invitation email.
func (c *Client) InsertInvitation(ctx context.Context, invitation *Invitation) error {
	if invitation == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*invitation, insertInvitationFormat, "id"), invitation)
	if err != nil {
		return fmt.Errorf("failed to insert invitation to db: %v", err)
	}
	return nil
}

// GetInvitationByTokenHash fetches one invitation by hashed token.
func (c *Client) GetInvitationByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error) {
	return c.getInvitation(ctx, sqrl.Eq{"token_hash": tokenHash})
}

// GetInvitationById fetches one invitation by business id within a workspace.
func (c *Client) GetInvitationById(ctx context.Context, workspaceId int64, invitationId string) (*Invitation, error) {
	return c.getInvitation(ctx, sqrl.Eq{"workspace_id": workspaceId, "invitation_id": invitationId})
}

// GetPendingInvitation fetches the live invitation for an email in a
// workspace, if any: not accepted, not revoked, not expired.
func (c *Client) GetPendingInvitation(ctx context.Context, workspaceId int64, email string) (*Invitation, error) {
	return c.getInvitation(ctx, sqrl.And{
		sqrl.Eq{"workspace_id": workspaceId},
		sqrl.Expr("LOWER(email) = LOWER(?)", email),
		sqrl.Expr("accept_time IS NULL"),
		sqrl.Expr("revoke_time IS NULL"),
		sqrl.Expr("expire_time > NOW()"),
	})
}

func (c *Client) getInvitation(ctx context.Context, query sqrl.Sqlizer) (*Invitation, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPInvitation).Where(query).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select invitation query: %v", err)
	}
	var invitation Invitation
	err = db.GetContext(ctx, &invitation, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFoundWithReason(cverrors.InvitationNotFound, "invitation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select invitation from db: %v", err)
	}
	return &invitation, nil
}

// SelectInvitations lists pending invitations of one workspace.
func (c *Client) SelectInvitations(ctx context.Context, workspaceId int64) ([]*Invitation, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPInvitation).
		Where(sqrl.Eq{"workspace_id": workspaceId}).
		Where("accept_time IS NULL").
		Where("revoke_time IS NULL").
		OrderBy("create_time " + DESC)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select invitations query: %v", err)
	}
	var invitations []*Invitation
	err = db.SelectContext(ctx, &invitations, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select invitations from db: %v", err)
	}
	return invitations, nil
}

// MarkInvitationAccepted stamps an invitation accepted. Accepting twice
// fails, which surfaces as an already-accepted conflict upstream.
func (c *Client) MarkInvitationAccepted(ctx context.Context, invitationId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `UPDATE ` + TPInvitation + `
		SET accept_time = NOW() WHERE invitation_id = $1 AND accept_time IS NULL AND revoke_time IS NULL;`
	result, err := db.ExecContext(ctx, cmd, invitationId)
	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewConflict(cverrors.AlreadyExists, "invitation already used")
	}
	return nil
}

// RevokeInvitation stamps an invitation revoked.
func (c *Client) RevokeInvitation(ctx context.Context, workspaceId int64, invitationId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	const cmd = `UPDATE ` + TPInvitation + `
		SET revoke_time = NOW() WHERE workspace_id = $1 AND invitation_id = $2 AND accept_time IS NULL AND revoke_time IS NULL;`
	result, err := db.ExecContext(ctx, cmd, workspaceId, invitationId)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFoundWithReason(cverrors.InvitationNotFound, "invitation not found")
	}
	return nil
}
