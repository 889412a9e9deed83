/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package feedbackhandlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
)

func TestForwardTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{dbclient.StatusOpen, dbclient.StatusUnderReview, true},
		{dbclient.StatusOpen, dbclient.StatusPlanned, true},
		{dbclient.StatusOpen, dbclient.StatusDeclined, true},
		{dbclient.StatusOpen, dbclient.StatusDone, true},
		{dbclient.StatusPlanned, dbclient.StatusInProg, true},
		{dbclient.StatusInProg, dbclient.StatusDone, true},
		{dbclient.StatusOpen, dbclient.StatusInProg, false},
		{dbclient.StatusDone, dbclient.StatusOpen, false},
		{dbclient.StatusDeclined, dbclient.StatusDone, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsForwardTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestReverseTransitionsAreAllowed(t *testing.T) {
	assert.True(t, CanTransition(dbclient.StatusDone, dbclient.StatusInProg))
	assert.True(t, IsReverseTransition(dbclient.StatusDone, dbclient.StatusInProg))
	assert.True(t, CanTransition(dbclient.StatusPlanned, dbclient.StatusOpen))
	assert.True(t, IsReverseTransition(dbclient.StatusPlanned, dbclient.StatusOpen))
	assert.False(t, IsReverseTransition(dbclient.StatusOpen, dbclient.StatusPlanned))
}

func TestSelfTransitionIsNoop(t *testing.T) {
	assert.True(t, CanTransition(dbclient.StatusOpen, dbclient.StatusOpen))
}

func TestUnrelatedTransitionRejected(t *testing.T) {
	assert.False(t, CanTransition(dbclient.StatusUnderReview, dbclient.StatusInProg))
}

func TestIsKnownStatus(t *testing.T) {
	assert.True(t, IsKnownStatus(dbclient.StatusOpen))
	assert.True(t, IsKnownStatus(dbclient.StatusUnderReview))
	assert.False(t, IsKnownStatus("archived"))
}
