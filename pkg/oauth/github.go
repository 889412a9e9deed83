/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/httpclient"
)

const githubAPIBase = "https://api.github.com"

// GithubAdapter implements ProviderAdapter over GitHub's OAuth flow.
// GitHub is not OIDC, so the profile comes from the REST API, with a
// second call to the emails endpoint when the profile hides the email.
type GithubAdapter struct {
	oauthConfig *oauth2.Config
	httpClient  httpclient.Interface
	apiBase     string
}

// NewGithubAdapter builds the adapter from the loaded configuration.
func NewGithubAdapter() *GithubAdapter {
	return &GithubAdapter{
		oauthConfig: &oauth2.Config{
			ClientID:     config.GetGithubClientID(),
			ClientSecret: config.GetGithubClientSecret(),
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
			RedirectURL:  config.GetOAuthRedirectBaseURL() + "/api/v1/auth/oauth/github/callback",
		},
		httpClient: httpclient.NewHttpClient(),
		apiBase:    githubAPIBase,
	}
}

// Name returns the provider name
func (a *GithubAdapter) Name() string {
	return ProviderGithub
}

// AuthorizeURL builds the authorize redirect carrying the CSRF state.
func (a *GithubAdapter) AuthorizeURL(state string) string {
	return a.oauthConfig.AuthCodeURL(state)
}

type githubUser struct {
	Id        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the callback code for a token and fetches the profile.
// An account whose email cannot be resolved fails the flow.
func (a *GithubAdapter) Exchange(ctx context.Context, code string) (*Profile, error) {
	if code == "" {
		return nil, cverrors.NewBadRequest("no code in request")
	}
	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, cverrors.NewUpstreamUnavailable(fmt.Sprintf("failed to exchange github code: %v", err))
	}

	user := &githubUser{}
	if err = a.getJSON(token.AccessToken, "/user", user); err != nil {
		return nil, err
	}

	email := user.Email
	emailVerified := email != ""
	if email == "" {
		email, emailVerified, err = a.resolveEmail(token.AccessToken)
		if err != nil {
			return nil, err
		}
	}
	if email == "" {
		return nil, cverrors.NewBadRequestWithReason(cverrors.OAuthEmailMissing,
			"github account has no usable email")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return &Profile{
		Provider:      ProviderGithub,
		ProviderId:    strconv.FormatInt(user.Id, 10),
		Email:         email,
		EmailVerified: emailVerified,
		Name:          name,
		AvatarURL:     user.AvatarURL,
	}, nil
}

// resolveEmail picks the primary verified email, falling back to any
// verified one.
func (a *GithubAdapter) resolveEmail(accessToken string) (string, bool, error) {
	var emails []githubEmail
	if err := a.getJSON(accessToken, "/user/emails", &emails); err != nil {
		return "", false, err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true, nil
		}
	}
	return "", false, nil
}

func (a *GithubAdapter) getJSON(accessToken, uri string, out interface{}) error {
	req, err := httpclient.BuildRequest(a.apiBase+uri, http.MethodGet, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return cverrors.NewUpstreamUnavailable(fmt.Sprintf("failed to request github api: %v", err))
	}
	if !resp.IsSuccess() {
		return cverrors.NewUpstreamUnavailable(fmt.Sprintf("github api returned %d: %s", resp.StatusCode, string(resp.Body)))
	}
	if err = json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to parse github api response: %v", err)
	}
	return nil
}
