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
	TPSession   = "sessions"
	TPAuthToken = "auth_tokens"
)

var (
	insertSessionFormat   = `INSERT INTO ` + TPSession + ` (%s) VALUES (%s);`
	insertAuthTokenFormat = `INSERT INTO ` + TPAuthToken + ` (%s) VALUES (%s);`
)

// InsertSession inserts a new session row.
func (c *Client) InsertSession(ctx context.Context, session *Session) error {
	if session == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*session, insertSessionFormat, "id"), session)
	if err != nil {
		return fmt.Errorf("failed to insert session to db: %v", err)
	}
	return nil
}

// GetSessionByTokenHash fetches a live session by the hash of its access
// token. Revoked sessions never match.
func (c *Client) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	return c.getSession(ctx, sqrl.And{
		sqrl.Eq{"token_hash": tokenHash},
		sqrl.Expr("revoke_time IS NULL"),
	})
}

// GetSessionByRefreshHash fetches a live session by refresh token hash.
func (c *Client) GetSessionByRefreshHash(ctx context.Context, refreshHash string) (*Session, error) {
	return c.getSession(ctx, sqrl.And{
		sqrl.Eq{"refresh_token_hash": refreshHash},
		sqrl.Expr("revoke_time IS NULL"),
	})
}

func (c *Client) getSession(ctx context.Context, query sqrl.Sqlizer) (*Session, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPSession).Where(query).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select session query: %v", err)
	}
	var session Session
	err = db.GetContext(ctx, &session, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFoundWithReason(cverrors.SessionNotFound, "session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select session from db: %v", err)
	}
	return &session, nil
}

// RotateSessionToken swaps the access token hash of a session in place,
// extending its expiry. Used by the refresh flow.
func (c *Client) RotateSessionToken(ctx context.Context, sessionId, newTokenHash string, newExpire interface{}) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPSession).
		Set("token_hash", newTokenHash).
		Set("expire_time", newExpire).
		Where(sqrl.Eq{"session_id": sessionId}).
		Where("revoke_time IS NULL")
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rotate session query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to rotate session token in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFoundWithReason(cverrors.SessionNotFound, "session not found")
	}
	return nil
}

// RevokeSession marks a session revoked. Revoking twice is a no-op.
func (c *Client) RevokeSession(ctx context.Context, sessionId string) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPSession).
		Set("revoke_time", sqrl.Expr("NOW()")).
		Where(sqrl.Eq{"session_id": sessionId}).
		Where("revoke_time IS NULL")
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke session query: %v", err)
	}
	_, err = db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to revoke session in db: %v", err)
	}
	return nil
}

// InsertAuthToken inserts an email-verification or password-reset token row.
func (c *Client) InsertAuthToken(ctx context.Context, token *AuthToken) error {
	if token == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*token, insertAuthTokenFormat, "id"), token)
	if err != nil {
		return fmt.Errorf("failed to insert auth_token to db: %v", err)
	}
	return nil
}

// ConsumeAuthToken atomically marks an unused, unexpired token of the given
// kind as used and returns it. A second consume of the same token fails.
func (c *Client) ConsumeAuthToken(ctx context.Context, kind, tokenHash string) (*AuthToken, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	const cmd = `UPDATE ` + TPAuthToken + `
		SET used_time = NOW()
		WHERE kind = $1 AND token_hash = $2 AND used_time IS NULL AND expire_time > NOW()
		RETURNING *;`
	var token AuthToken
	err = db.GetContext(ctx, &token, cmd, kind, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("token", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume auth_token: %v", err)
	}
	return &token, nil
}
