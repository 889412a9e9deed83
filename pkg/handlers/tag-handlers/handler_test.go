/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package taghandlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorPattern(t *testing.T) {
	valid := []string{"#3b82f6", "#FFFFFF", "#000000", "#AbCdEf"}
	for _, color := range valid {
		assert.True(t, colorPattern.MatchString(color), color)
	}
	invalid := []string{"3b82f6", "#3b82f", "#3b82f67", "#3b82fg", "blue", "#fff", ""}
	for _, color := range invalid {
		assert.False(t, colorPattern.MatchString(color), color)
	}
}

func TestValidateName(t *testing.T) {
	name, err := validateName("  Bug report  ")
	assert.NoError(t, err)
	assert.Equal(t, "Bug report", name)

	_, err = validateName("   ")
	assert.Error(t, err)

	_, err = validateName(strings.Repeat("x", maxTagNameLength+1))
	assert.Error(t, err)

	name, err = validateName(strings.Repeat("x", maxTagNameLength))
	assert.NoError(t, err)
	assert.Len(t, name, maxTagNameLength)
}
