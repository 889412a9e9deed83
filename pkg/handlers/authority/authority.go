/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package authority

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/crypto"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	apiutils "github.com/AMD-AIG-AIMA/clearvoice/pkg/utils"
)

const (
	bearerPrefix = "Bearer "

	workspaceCacheTTL = 30 * time.Second
)

// RoleRank maps a workspace role to its rank for comparison. Unknown roles
// rank below viewer so a bad row can never grant access.
func RoleRank(role string) int {
	switch role {
	case dbclient.RoleOwner:
		return 3
	case dbclient.RoleAdmin:
		return 2
	case dbclient.RoleMember:
		return 1
	case dbclient.RoleViewer:
		return 0
	}
	return -1
}

// AccessController authenticates bearer tokens and resolves workspace
// membership for scoped routes.
type AccessController struct {
	dbClient *dbclient.Client
	wsCache  *gocache.Cache
}

// NewAccessController creates an access controller backed by the database.
func NewAccessController(dbClient *dbclient.Client) *AccessController {
	return &AccessController{
		dbClient: dbClient,
		wsCache:  gocache.New(workspaceCacheTTL, 10*workspaceCacheTTL),
	}
}

// Authenticate verifies the bearer token and the session behind it, and
// stores the caller identity in the request context.
func (a *AccessController) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil {
			apiutils.AbortWithApiError(c, err)
		}
	}
}

func (a *AccessController) authenticate(c *gin.Context) error {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return cverrors.NewUnauthorized("missing bearer token")
	}
	token := strings.TrimPrefix(header, bearerPrefix)

	claims, outcome := crypto.VerifyJWT([]byte(config.GetJwtSecret()), token)
	switch outcome {
	case crypto.TokenExpired:
		return cverrors.NewUnauthorizedWithReason(cverrors.TokenExpired, "access token has expired")
	case crypto.TokenInvalidSignature:
		return cverrors.NewUnauthorizedWithReason(cverrors.InvalidSignature, "access token signature is invalid")
	case crypto.TokenMalformed:
		return cverrors.NewUnauthorizedWithReason(cverrors.MalformedToken, "access token is malformed")
	}

	ctx := c.Request.Context()
	session, err := a.dbClient.GetSessionByTokenHash(ctx, crypto.HashToken(token))
	if err != nil {
		return cverrors.NewUnauthorizedWithReason(cverrors.SessionNotFound, "session not found")
	}
	if session.RevokeTime.Valid {
		return cverrors.NewUnauthorizedWithReason(cverrors.SessionNotFound, "session has been revoked")
	}
	if session.ExpireTime.Valid && time.Now().After(session.ExpireTime.Time) {
		return cverrors.NewUnauthorizedWithReason(cverrors.SessionExpired, "session has expired")
	}
	if session.UserId != claims.Subject {
		return cverrors.NewUnauthorizedWithReason(cverrors.SessionNotFound, "session does not match token subject")
	}

	user, err := a.dbClient.GetUserById(ctx, claims.Subject)
	if err != nil {
		return cverrors.NewUnauthorized("user not found")
	}

	c.Set(common.UserId, user.UserId)
	c.Set(common.UserEmail, user.Email)
	c.Set(common.SessionId, session.SessionId)
	return nil
}

// RequireRole resolves the workspace from the :slug route param, joins the
// caller's membership and enforces the minimum role. A workspace the caller
// cannot access is indistinguishable from a missing one.
func (a *AccessController) RequireRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.requireRole(c, minRole); err != nil {
			apiutils.AbortWithApiError(c, err)
		}
	}
}

func (a *AccessController) requireRole(c *gin.Context, minRole string) error {
	slug := c.Param("slug")
	if slug == "" {
		return cverrors.NewBadRequest("workspace slug is required")
	}
	userId := c.GetString(common.UserId)
	if userId == "" {
		return cverrors.NewUnauthorized("missing bearer token")
	}

	ctx := c.Request.Context()
	workspace, err := a.getWorkspace(ctx, slug)
	if err != nil {
		return cverrors.NewNotFound("workspace", slug)
	}
	membership, err := a.dbClient.GetMembership(ctx, userId, workspace.Id)
	if err != nil {
		return cverrors.NewNotFound("workspace", slug)
	}
	if RoleRank(membership.Role) < RoleRank(minRole) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions,
			fmt.Sprintf("role %s is required", minRole))
	}

	c.Set(common.WorkspaceId, workspace.Id)
	c.Set(common.WorkspaceSlug, slug)
	c.Set(common.MemberRole, membership.Role)
	return nil
}

func (a *AccessController) getWorkspace(ctx context.Context, slug string) (*dbclient.Workspace, error) {
	if cached, ok := a.wsCache.Get(slug); ok {
		return cached.(*dbclient.Workspace), nil
	}
	workspace, err := a.dbClient.GetWorkspaceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	a.wsCache.SetDefault(slug, workspace)
	return workspace, nil
}

// CurrentWorkspaceId returns the workspace id resolved by RequireRole.
func CurrentWorkspaceId(c *gin.Context) int64 {
	return c.GetInt64(common.WorkspaceId)
}

// CurrentUserId returns the authenticated caller's user id.
func CurrentUserId(c *gin.Context) string {
	return c.GetString(common.UserId)
}

// CurrentRole returns the caller's role in the resolved workspace.
func CurrentRole(c *gin.Context) string {
	return c.GetString(common.MemberRole)
}
