/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package pipeline

import (
	"math"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/ai"
)

// Priority weights. Votes prove demand, negative sentiment signals pain,
// urgency dominates.
const (
	voteWeight      = 0.3
	sentimentWeight = 0.2
	urgencyWeight   = 0.5

	voteSaturation = 100.0
)

// UrgencyLevelScore maps an urgency level to its contribution factor.
func UrgencyLevelScore(urgency string) float64 {
	switch urgency {
	case ai.UrgencyCritical:
		return 1.0
	case ai.UrgencyUrgent:
		return 0.7
	default:
		return 0.3
	}
}

// PriorityScore computes the 0-100 priority of a feedback item. Vote count
// saturates at 100 votes; sentiment contributes more the more negative it
// is, mapped from [-1,1] onto [1,0].
func PriorityScore(votes int64, sentimentScore float64, urgency string) int {
	voteFactor := math.Min(float64(votes)/voteSaturation, 1.0)
	sentimentFactor := (1 - sentimentScore) / 2
	score := voteWeight*voteFactor + sentimentWeight*sentimentFactor + urgencyWeight*UrgencyLevelScore(urgency)
	return int(math.Round(100 * score))
}
