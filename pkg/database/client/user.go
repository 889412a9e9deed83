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
	TPUser = "users"
)

var (
	insertUserFormat = `INSERT INTO ` + TPUser + ` (%s) VALUES (%s);`
)

// InsertUser inserts a new user row.
func (c *Client) InsertUser(ctx context.Context, user *User) error {
	if user == nil {
		return cverrors.NewBadRequest("the input is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, generateCommand(*user, insertUserFormat, "id"), user)
	if err != nil {
		return fmt.Errorf("failed to insert user to db: %v", err)
	}
	return nil
}

// GetUserById fetches one user by business id.
func (c *Client) GetUserById(ctx context.Context, userId string) (*User, error) {
	return c.getUser(ctx, sqrl.Eq{"user_id": userId})
}

// GetUserByEmail fetches one user by email, matched case-insensitively.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return c.getUser(ctx, sqrl.Expr("LOWER(email) = LOWER(?)", email))
}

// GetUserByProvider fetches one user by OAuth provider identity.
func (c *Client) GetUserByProvider(ctx context.Context, provider, providerId string) (*User, error) {
	return c.getUser(ctx, sqrl.Eq{"provider": provider, "provider_id": providerId})
}

func (c *Client) getUser(ctx context.Context, query sqrl.Sqlizer) (*User, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPUser).Where(query).Limit(1)
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select user query: %v", err)
	}
	var user User
	err = db.GetContext(ctx, &user, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cverrors.NewNotFound("user", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user from db: %v", err)
	}
	return &user, nil
}

// SelectUsers retrieves users based on query conditions.
func (c *Client) SelectUsers(ctx context.Context, query sqrl.Sqlizer, orderBy []string, limit, offset int) ([]*User, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TPUser)
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
		return nil, fmt.Errorf("failed to build select users query: %v", err)
	}
	var users []*User
	err = db.SelectContext(ctx, &users, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select users from db: %v", err)
	}
	return users, nil
}

// UpdateUserFields updates the given columns of one user row.
func (c *Client) UpdateUserFields(ctx context.Context, userId string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return cverrors.NewBadRequest("no fields to update")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Update(TPUser).Where(sqrl.Eq{"user_id": userId})
	for col, val := range fields {
		builder = builder.Set(col, val)
	}
	builder = builder.Set("update_time", sqrl.Expr("NOW()"))
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %v", err)
	}
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to update user in db: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return cverrors.NewNotFound("user", userId)
	}
	return nil
}
