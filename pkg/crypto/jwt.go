/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// JWT claims carried by access tokens. The token is a compact HS256 JWS:
// base64url(header).base64url(claims).base64url(signature), no padding.
type Claims struct {
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
}

// VerifyOutcome classifies a verification failure so callers can map it to
// a distinct reason code.
type VerifyOutcome int

const (
	TokenValid VerifyOutcome = iota
	TokenExpired
	TokenInvalidSignature
	TokenMalformed
)

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// SignJWT produces a compact HS256 token for the given subject and email,
// valid for ttl from now.
func SignJWT(secret []byte, subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject:  subject,
		Email:    email,
		IssuedAt: now.Unix(),
		Expires:  now.Add(ttl).Unix(),
	}
	headerJSON, err := json.Marshal(jwtHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	signingInput := b64(headerJSON) + "." + b64(claimsJSON)
	return signingInput + "." + sign(secret, signingInput), nil
}

// VerifyJWT parses and verifies a compact HS256 token. The signature is
// checked before expiry so a tampered token never reports TokenExpired.
func VerifyJWT(secret []byte, token string) (*Claims, VerifyOutcome) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, TokenMalformed
	}
	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, TokenMalformed
	}
	var header jwtHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil || header.Alg != "HS256" {
		return nil, TokenMalformed
	}
	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, TokenMalformed
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, TokenMalformed
	}
	expected := sign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, TokenInvalidSignature
	}
	if time.Now().Unix() >= claims.Expires {
		return &claims, TokenExpired
	}
	return &claims, TokenValid
}

func sign(secret []byte, input string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func b64(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}
