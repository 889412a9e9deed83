/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
	MinBcryptCost  = 10
)

// HashPassword hashes a plaintext password with bcrypt. The plaintext length
// is bounded on both ends: bcrypt truncates silently past 72 bytes, and the
// upper bound keeps pathological inputs out before hashing.
func HashPassword(plaintext string, cost int) (string, error) {
	if len(plaintext) < MinPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	if len(plaintext) > MaxPasswordLen {
		return "", fmt.Errorf("password must be at most %d characters", MaxPasswordLen)
	}
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored bcrypt
// hash. A malformed stored hash yields false, never a panic.
func VerifyPassword(hash, plaintext string) bool {
	if hash == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
