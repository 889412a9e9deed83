/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package authhandlers

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/common"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/idgen"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/oauth"
)

// OAuthStart redirects the browser to the provider's consent screen.
func (h *Handler) OAuthStart(c *gin.Context) {
	adapter, err := oauth.NewProviderAdapter(c.Param("provider"))
	if err != nil {
		handle(c, func(*gin.Context) (interface{}, error) { return nil, err })
		return
	}
	state, err := oauth.NewState()
	if err != nil {
		handle(c, func(*gin.Context) (interface{}, error) { return nil, err })
		return
	}
	c.Redirect(http.StatusFound, adapter.AuthorizeURL(state))
}

// OAuthCallback finishes the provider flow and opens a session.
func (h *Handler) OAuthCallback(c *gin.Context) {
	handle(c, h.oauthCallback)
}

func (h *Handler) oauthCallback(c *gin.Context) (interface{}, error) {
	adapter, err := oauth.NewProviderAdapter(c.Param("provider"))
	if err != nil {
		return nil, err
	}
	if !oauth.VerifyState(c.Query("state")) {
		return nil, cverrors.NewBadRequestWithReason(cverrors.OAuthStateMismatch, "oauth state is invalid")
	}

	ctx := c.Request.Context()
	profile, err := adapter.Exchange(ctx, c.Query("code"))
	if err != nil {
		return nil, err
	}

	user, err := h.findOrCreateOAuthUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	return h.openSession(ctx, user)
}

// findOrCreateOAuthUser resolves the provider profile to a local account,
// linking by email when the account predates the social login.
func (h *Handler) findOrCreateOAuthUser(ctx context.Context, profile *oauth.Profile) (*dbclient.User, error) {
	if user, err := h.dbClient.GetUserByProvider(ctx, profile.Provider, profile.ProviderId); err == nil {
		return user, nil
	}

	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, cverrors.NewBadRequestWithReason(cverrors.OAuthEmailMissing,
			"provider returned no usable email")
	}

	if user, err := h.dbClient.GetUserByEmail(ctx, email); err == nil {
		fields := map[string]interface{}{
			"provider":    profile.Provider,
			"provider_id": profile.ProviderId,
		}
		if profile.EmailVerified && !user.EmailVerified {
			fields["email_verified"] = true
		}
		if err = h.dbClient.UpdateUserFields(ctx, user.UserId, fields); err != nil {
			return nil, err
		}
		return h.dbClient.GetUserById(ctx, user.UserId)
	}

	user := &dbclient.User{
		UserId:        idgen.New(common.UserIdPrefix),
		Email:         email,
		Name:          sql.NullString{String: profile.Name, Valid: profile.Name != ""},
		AvatarUrl:     sql.NullString{String: profile.AvatarURL, Valid: profile.AvatarURL != ""},
		Provider:      sql.NullString{String: profile.Provider, Valid: true},
		ProviderId:    sql.NullString{String: profile.ProviderId, Valid: true},
		EmailVerified: profile.EmailVerified,
	}
	if err := h.dbClient.InsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
