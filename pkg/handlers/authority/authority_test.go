/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package authority

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/crypto"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
)

func TestRoleRank(t *testing.T) {
	assert.Equal(t, 3, RoleRank(dbclient.RoleOwner))
	assert.Equal(t, 2, RoleRank(dbclient.RoleAdmin))
	assert.Equal(t, 1, RoleRank(dbclient.RoleMember))
	assert.Equal(t, 0, RoleRank(dbclient.RoleViewer))
	assert.Equal(t, -1, RoleRank("superuser"))
}

func newTestController(t *testing.T) (*AccessController, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccessController(dbclient.NewClientWith(sqlx.NewDb(db, "postgres"), nil)), mock
}

func newTestRouter(controller *AccessController, minRole string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/workspaces/:slug", controller.Authenticate(), controller.RequireRole(minRole))
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": CurrentRole(c), "workspace_id": CurrentWorkspaceId(c)})
	})
	return engine
}

func signTestToken(t *testing.T, userId string) string {
	token, err := crypto.SignJWT([]byte(config.GetJwtSecret()), userId, "dana@example.com", time.Minute)
	require.NoError(t, err)
	return token
}

func TestAuthenticateMissingBearer(t *testing.T) {
	controller, _ := newTestController(t)
	engine := newTestRouter(controller, dbclient.RoleViewer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces/acme/ping", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthenticateTamperedToken(t *testing.T) {
	controller, _ := newTestController(t)
	engine := newTestRouter(controller, dbclient.RoleViewer)

	token := signTestToken(t, "usr_1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces/acme/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")
}

func TestAuthenticateExpiredToken(t *testing.T) {
	controller, _ := newTestController(t)
	engine := newTestRouter(controller, dbclient.RoleViewer)

	token, err := crypto.SignJWT([]byte(config.GetJwtSecret()), "usr_1", "dana@example.com", -time.Minute)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces/acme/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func expectAuthenticated(mock sqlmock.Sqlmock, userId, tokenHash string) {
	sessionRows := sqlmock.NewRows([]string{"session_id", "user_id", "token_hash", "expire_time"}).
		AddRow("ses_1", userId, tokenHash, time.Now().Add(time.Hour))
	mock.ExpectQuery(`SELECT \* FROM sessions`).WillReturnRows(sessionRows)

	userRows := sqlmock.NewRows([]string{"user_id", "email", "email_verified"}).
		AddRow(userId, "dana@example.com", true)
	mock.ExpectQuery(`SELECT \* FROM users`).WillReturnRows(userRows)
}

func TestRequireRoleAllowed(t *testing.T) {
	controller, mock := newTestController(t)
	engine := newTestRouter(controller, dbclient.RoleAdmin)

	token := signTestToken(t, "usr_1")
	expectAuthenticated(mock, "usr_1", crypto.HashToken(token))

	wsRows := sqlmock.NewRows([]string{"id", "slug", "name"}).AddRow(7, "acme", "Acme")
	mock.ExpectQuery(`SELECT \* FROM workspaces`).WillReturnRows(wsRows)
	memberRows := sqlmock.NewRows([]string{"user_id", "workspace_id", "role"}).
		AddRow("usr_1", 7, dbclient.RoleOwner)
	mock.ExpectQuery(`SELECT \* FROM team_memberships`).WillReturnRows(memberRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces/acme/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"owner"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireRoleInsufficient(t *testing.T) {
	controller, mock := newTestController(t)
	engine := newTestRouter(controller, dbclient.RoleAdmin)

	token := signTestToken(t, "usr_1")
	expectAuthenticated(mock, "usr_1", crypto.HashToken(token))

	wsRows := sqlmock.NewRows([]string{"id", "slug", "name"}).AddRow(7, "acme", "Acme")
	mock.ExpectQuery(`SELECT \* FROM workspaces`).WillReturnRows(wsRows)
	memberRows := sqlmock.NewRows([]string{"user_id", "workspace_id", "role"}).
		AddRow("usr_1", 7, dbclient.RoleViewer)
	mock.ExpectQuery(`SELECT \* FROM team_memberships`).WillReturnRows(memberRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces/acme/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestRequireRoleNonMemberLooksLikeMissingWorkspace(t *testing.T) {
	controller, mock := newTestController(t)
	engine := newTestRouter(controller, dbclient.RoleViewer)

	token := signTestToken(t, "usr_2")
	expectAuthenticated(mock, "usr_2", crypto.HashToken(token))

	wsRows := sqlmock.NewRows([]string{"id", "slug", "name"}).AddRow(7, "acme", "Acme")
	mock.ExpectQuery(`SELECT \* FROM workspaces`).WillReturnRows(wsRows)
	mock.ExpectQuery(`SELECT \* FROM team_memberships`).WillReturnError(sql.ErrNoRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces/acme/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
