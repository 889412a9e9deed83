/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package oauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
)

// StateTTL bounds how long an authorize redirect may take before the
// callback is rejected.
const StateTTL = 10 * time.Minute

// NewState builds a signed CSRF state: nonce.timestamp.signature. The
// state is self-contained so no server-side storage is needed between the
// authorize redirect and the callback.
func NewState() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %v", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(nonce)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	return encoded + "." + timestamp + "." + signState(encoded, timestamp), nil
}

// VerifyState checks the signature and age of a state from a callback.
func VerifyState(state string) bool {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return false
	}
	expected := signState(parts[0], parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return false
	}
	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(issued, 0))
	return age >= 0 && age <= StateTTL
}

func signState(nonce, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(config.GetJwtSecret()))
	mac.Write([]byte(nonce + "." + timestamp))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
