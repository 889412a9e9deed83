/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/httpclient"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := NewState()
	require.NoError(t, err)
	assert.True(t, VerifyState(state))
	assert.Len(t, strings.Split(state, "."), 3)
}

func TestStateTampered(t *testing.T) {
	state, err := NewState()
	require.NoError(t, err)

	parts := strings.Split(state, ".")
	tampered := "x" + parts[0][1:] + "." + parts[1] + "." + parts[2]
	assert.False(t, VerifyState(tampered))
}

func TestStateMalformed(t *testing.T) {
	assert.False(t, VerifyState(""))
	assert.False(t, VerifyState("only-one-part"))
	assert.False(t, VerifyState("a.b"))
	assert.False(t, VerifyState("a.notanumber.c"))
}

func TestNewProviderAdapterUnknown(t *testing.T) {
	_, err := NewProviderAdapter("gitlab")
	assert.ErrorContains(t, err, "unknown oauth provider")
}

func TestGithubAuthorizeURL(t *testing.T) {
	adapter := NewGithubAdapter()
	url := adapter.AuthorizeURL("state123")
	assert.Contains(t, url, "github.com/login/oauth/authorize")
	assert.Contains(t, url, "state=state123")
}

func TestGithubResolveEmailPrefersPrimaryVerified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/emails", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]githubEmail{
			{Email: "old@example.com", Primary: false, Verified: true},
			{Email: "me@example.com", Primary: true, Verified: true},
			{Email: "spam@example.com", Primary: false, Verified: false},
		})
	}))
	defer server.Close()

	adapter := &GithubAdapter{httpClient: httpclient.NewHttpClient(), apiBase: server.URL}
	email, verified, err := adapter.resolveEmail("tok")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", email)
	assert.True(t, verified)
}

func TestGithubResolveEmailFallsBackToVerified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]githubEmail{
			{Email: "alt@example.com", Primary: false, Verified: true},
		})
	}))
	defer server.Close()

	adapter := &GithubAdapter{httpClient: httpclient.NewHttpClient(), apiBase: server.URL}
	email, verified, err := adapter.resolveEmail("tok")
	require.NoError(t, err)
	assert.Equal(t, "alt@example.com", email)
	assert.True(t, verified)
}

func TestGithubExchangeEmptyCode(t *testing.T) {
	adapter := NewGithubAdapter()
	_, err := adapter.Exchange(context.Background(), "")
	assert.ErrorContains(t, err, "no code in request")
}
