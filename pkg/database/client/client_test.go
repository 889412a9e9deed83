/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sqrl "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewClientWith(sqlx.NewDb(db, "postgres"), nil), mock
}

func TestInsertFeedbackNilInput(t *testing.T) {
	client := &Client{}
	err := client.InsertFeedback(context.Background(), nil)
	assert.ErrorContains(t, err, "the input is empty")
}

func TestInsertFeedbackNoDBConnection(t *testing.T) {
	client := &Client{}
	err := client.InsertFeedback(context.Background(), &Feedback{FeedbackId: "fb_1"})
	assert.ErrorContains(t, err, "db has not been initialized")
}

func TestSelectFeedbackNoDBConnection(t *testing.T) {
	client := &Client{}
	_, err := client.SelectFeedback(context.Background(), sqrl.Eq{"status": StatusOpen}, nil, 10, 0)
	assert.ErrorContains(t, err, "db has not been initialized")
}

func TestGetFeedbackById(t *testing.T) {
	client, mock := newMockClient(t)

	rows := sqlmock.NewRows([]string{"feedback_id", "workspace_id", "board_id", "title", "status", "moderation", "source", "hidden"}).
		AddRow("fb_1", 1, 2, "Dark mode", StatusOpen, ModerationApproved, SourceWidget, false)
	mock.ExpectQuery(`SELECT \* FROM feedback WHERE feedback_id = \$1 LIMIT 1`).
		WithArgs("fb_1").WillReturnRows(rows)

	feedback, err := client.GetFeedbackById(context.Background(), "fb_1")
	require.NoError(t, err)
	assert.Equal(t, "Dark mode", feedback.Title)
	assert.Equal(t, StatusOpen, feedback.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFeedbackByIdNotFound(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT \* FROM feedback`).
		WithArgs("fb_missing").
		WillReturnRows(sqlmock.NewRows([]string{"feedback_id"}))

	_, err := client.GetFeedbackById(context.Background(), "fb_missing")
	assert.ErrorContains(t, err, "not found")
}

func TestUpsertVote(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectExec(`INSERT INTO votes .*ON CONFLICT \(feedback_id, voter_id\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := client.UpsertVote(context.Background(), &Vote{FeedbackId: "fb_1", VoterId: "eu_1", Weight: 1})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMembershipReturnsId(t *testing.T) {
	client, mock := newMockClient(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "workspace_id", "role"}).
		AddRow(42, "usr_1", 1, RoleMember)
	mock.ExpectQuery(`INSERT INTO team_memberships`).
		WithArgs("usr_1", int64(1), RoleMember).
		WillReturnRows(rows)

	membership := &TeamMembership{UserId: "usr_1", WorkspaceId: 1, Role: RoleMember}
	require.NoError(t, client.InsertMembership(context.Background(), membership))
	assert.EqualValues(t, 42, membership.Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateFeedbackPerRowResults(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE feedback SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE feedback SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	results, err := client.BulkUpdateFeedback(context.Background(), 1,
		[]string{"fb_1", "fb_2"}, map[string]interface{}{"status": StatusPlanned})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.Equal(t, "not found", results[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateFeedbackEmptyInput(t *testing.T) {
	client := &Client{}
	_, err := client.BulkUpdateFeedback(context.Background(), 1, nil, map[string]interface{}{"status": StatusOpen})
	assert.ErrorContains(t, err, "must not be empty")
}

func TestMergeFeedbackSelfMerge(t *testing.T) {
	client := &Client{}
	err := client.MergeFeedback(context.Background(), 1, "fb_1", "fb_1")
	assert.ErrorContains(t, err, "cannot merge feedback into itself")
}

func TestGetFeedbackFieldTags(t *testing.T) {
	tags := GetFeedbackFieldTags()

	assert.Equal(t, "feedback_id", tags["feedbackid"])
	assert.Equal(t, "merged_into", tags["mergedinto"])
	assert.Equal(t, "ai_priority", tags["aipriority"])
	assert.Equal(t, "create_time", tags["createtime"])
}

func TestTableConstants(t *testing.T) {
	assert.Equal(t, "feedback", TPFeedback)
	assert.Equal(t, "votes", TPVote)
	assert.Equal(t, "audit_logs", TPAuditLog)
	assert.Equal(t, "team_memberships", TPTeamMembership)
}
