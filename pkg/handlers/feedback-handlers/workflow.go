/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package feedbackhandlers

import (
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
)

// forwardTransitions is the status workflow DAG. Reverse transitions are
// allowed as well but leave an audit trail entry.
var forwardTransitions = map[string][]string{
	dbclient.StatusOpen:        {dbclient.StatusUnderReview, dbclient.StatusPlanned, dbclient.StatusDeclined, dbclient.StatusDone},
	dbclient.StatusUnderReview: {dbclient.StatusPlanned, dbclient.StatusDeclined, dbclient.StatusDone},
	dbclient.StatusPlanned:     {dbclient.StatusInProg, dbclient.StatusDeclined, dbclient.StatusDone},
	dbclient.StatusInProg:      {dbclient.StatusDeclined, dbclient.StatusDone},
	dbclient.StatusDeclined:    {},
	dbclient.StatusDone:        {},
}

// IsKnownStatus reports whether the value is one of the workflow states.
func IsKnownStatus(status string) bool {
	_, ok := forwardTransitions[status]
	return ok
}

// IsForwardTransition reports whether from -> to follows the workflow DAG.
func IsForwardTransition(from, to string) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsReverseTransition reports whether from -> to walks the DAG backwards.
func IsReverseTransition(from, to string) bool {
	return IsForwardTransition(to, from)
}

// CanTransition reports whether the status change is allowed at all.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return IsForwardTransition(from, to) || IsReverseTransition(from, to)
}
