/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const tokenEntropyBytes = 32

// API key prefixes identify the key environment at a glance without
// weakening the stored form.
const (
	APIKeyPrefixLive = "cv_live_"
	APIKeyPrefixTest = "cv_test_"
)

// GenerateToken returns a new opaque token: 32 random bytes encoded with
// unpadded base64url. The plaintext is shown to the caller exactly once;
// only HashToken output is ever stored.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateAPIKey returns a prefixed opaque key, cv_live_* or cv_test_*.
func GenerateAPIKey(live bool) (string, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if live {
		return APIKeyPrefixLive + token, nil
	}
	return APIKeyPrefixTest + token, nil
}

// HashToken returns the stored form of any opaque token: lowercase hex of
// its SHA-256 digest. Lookups always go plaintext -> HashToken -> row.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two strings without leaking the mismatch
// position through timing.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
