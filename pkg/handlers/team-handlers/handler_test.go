/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package teamhandlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
)

func TestInviteExistingUserDirectAdd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	client := dbclient.NewClientWith(sqlx.NewDb(db, "postgres"), nil)

	mock.ExpectQuery(`SELECT \* FROM users WHERE LOWER\(email\)`).
		WithArgs("dev@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email"}).
			AddRow("usr_9", "dev@example.com"))
	mock.ExpectQuery(`SELECT \* FROM team_memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM invitations`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO team_memberships`).
		WithArgs("usr_9", int64(1), dbclient.RoleMember).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "workspace_id", "role"}).
			AddRow(42, "usr_9", 1, dbclient.RoleMember))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"email":"dev@example.com","role":"member"}`)
	c.Request = httptest.NewRequest(http.MethodPost, "/team/invites", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(common.WorkspaceId, int64(1))
	c.Set(common.UserId, "usr_admin")
	c.Set(common.MemberRole, dbclient.RoleOwner)

	h := NewHandler(client, nil)
	h.Invite(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 42, resp["membership_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
