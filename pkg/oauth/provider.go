/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package oauth

import (
	"context"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

// Provider names
const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// Profile is the identity a provider reports after a successful exchange.
type Profile struct {
	Provider      string
	ProviderId    string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// ProviderAdapter hides the differences between OAuth providers behind one
// authorize-exchange surface.
type ProviderAdapter interface {
	Name() string
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// NewProviderAdapter returns the adapter for the named provider.
func NewProviderAdapter(provider string) (ProviderAdapter, error) {
	switch provider {
	case ProviderGoogle:
		return NewGoogleAdapter()
	case ProviderGithub:
		return NewGithubAdapter(), nil
	}
	return nil, cverrors.NewBadRequest("unknown oauth provider: " + provider)
}
