/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New(PrefixFeedback)
	b := New(PrefixFeedback)
	assert.NotEqual(t, a, b)
	assert.Equal(t, PrefixFeedback, Prefix(a))
	assert.Len(t, a, len(PrefixFeedback)+1+20)
}

func TestNewSortsByTime(t *testing.T) {
	a := New(PrefixUser)
	time.Sleep(2 * time.Millisecond)
	b := New(PrefixUser)
	assert.Less(t, a, b)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "fb", Prefix("fb_06bhq3w2a0k2rjfyz8tn"))
	assert.Equal(t, "", Prefix("noseparator"))
	assert.Equal(t, "", Prefix("_leading"))
}
