/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package crypto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		wantErr   bool
	}{
		{name: "valid", plaintext: "correct-horse-battery", wantErr: false},
		{name: "minimum length", plaintext: "12345678", wantErr: false},
		{name: "too short", plaintext: "1234567", wantErr: true},
		{name: "too long", plaintext: strings.Repeat("a", 129), wantErr: true},
		{name: "empty", plaintext: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.plaintext, 10)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2"))
			assert.True(t, VerifyPassword(hash, tt.plaintext))
			assert.False(t, VerifyPassword(hash, tt.plaintext+"x"))
		})
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "whatever-password"))
	assert.False(t, VerifyPassword("", "whatever-password"))
	assert.False(t, VerifyPassword("$2a$10$garbage", ""))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 32 bytes -> 43 chars of unpadded base64url
	assert.Len(t, a, 43)
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

func TestGenerateAPIKey(t *testing.T) {
	live, err := GenerateAPIKey(true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(live, "cv_live_"))

	test, err := GenerateAPIKey(false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(test, "cv_test_"))
}

func TestHashToken(t *testing.T) {
	h := HashToken("some-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("some-token"))
	assert.NotEqual(t, h, HashToken("some-other-token"))
	assert.Equal(t, strings.ToLower(h), h)
}

func TestSignAndVerifyJWT(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := SignJWT(secret, "usr_123", "dev@example.com", 15*time.Minute)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, outcome := VerifyJWT(secret, token)
	require.Equal(t, TokenValid, outcome)
	assert.Equal(t, "usr_123", claims.Subject)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Greater(t, claims.Expires, claims.IssuedAt)
}

func TestVerifyJWTExpired(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := SignJWT(secret, "usr_123", "dev@example.com", -time.Minute)
	require.NoError(t, err)

	claims, outcome := VerifyJWT(secret, token)
	assert.Equal(t, TokenExpired, outcome)
	assert.Equal(t, "usr_123", claims.Subject)
}

func TestVerifyJWTWrongSecret(t *testing.T) {
	token, err := SignJWT([]byte("secret-a"), "usr_123", "dev@example.com", time.Minute)
	require.NoError(t, err)

	_, outcome := VerifyJWT([]byte("secret-b"), token)
	assert.Equal(t, TokenInvalidSignature, outcome)
}

func TestVerifyJWTTampered(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := SignJWT(secret, "usr_123", "dev@example.com", time.Minute)
	require.NoError(t, err)

	// flip one character of the claims segment
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, outcome := VerifyJWT(secret, tampered)
	assert.Equal(t, TokenInvalidSignature, outcome)
}

func TestVerifyJWTMalformed(t *testing.T) {
	secret := []byte("unit-test-secret")
	for _, token := range []string{
		"",
		"only-one-part",
		"two.parts",
		"a.b.c.d",
		"!!!.???.***",
	} {
		_, outcome := VerifyJWT(secret, token)
		assert.Equal(t, TokenMalformed, outcome, "token %q", token)
	}
}
