/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package oauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/httpclient"
)

const googleIssuer = "https://accounts.google.com"

// GoogleAdapter implements ProviderAdapter over Google's OIDC flow. The
// profile comes out of the verified ID token, no userinfo call needed.
type GoogleAdapter struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	httpClient  httpclient.Interface
}

// NewGoogleAdapter builds the adapter from the loaded configuration. OIDC
// discovery runs once at construction.
func NewGoogleAdapter() (*GoogleAdapter, error) {
	httpClient := httpclient.NewHttpClient()
	ctx := oidc.ClientContext(context.Background(), httpClient.GetBaseClient())
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google oidc provider: %v", err)
	}

	clientID := config.GetGoogleClientID()
	return &GoogleAdapter{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: config.GetGoogleClientSecret(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			RedirectURL:  config.GetOAuthRedirectBaseURL() + "/api/v1/auth/oauth/google/callback",
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: clientID}),
		httpClient: httpClient,
	}, nil
}

// Name returns the provider name
func (a *GoogleAdapter) Name() string {
	return ProviderGoogle
}

// AuthorizeURL builds the authorize redirect carrying the CSRF state.
func (a *GoogleAdapter) AuthorizeURL(state string) string {
	return a.oauthConfig.AuthCodeURL(state)
}

// Exchange trades the callback code for tokens and reads the identity out
// of the verified ID token.
func (a *GoogleAdapter) Exchange(ctx context.Context, code string) (*Profile, error) {
	if code == "" {
		return nil, cverrors.NewBadRequest("no code in request")
	}
	ctx = oidc.ClientContext(ctx, a.httpClient.GetBaseClient())

	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, cverrors.NewUpstreamUnavailable(fmt.Sprintf("failed to exchange google code: %v", err))
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, cverrors.NewUpstreamUnavailable("no id_token in google token response")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, cverrors.NewUnauthorized(fmt.Sprintf("failed to verify google id token: %v", err))
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode google id token claims: %v", err)
	}
	if claims.Email == "" {
		return nil, cverrors.NewBadRequestWithReason(cverrors.OAuthEmailMissing,
			"google account has no email")
	}

	return &Profile{
		Provider:      ProviderGoogle,
		ProviderId:    claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		AvatarURL:     claims.Picture,
	}, nil
}
