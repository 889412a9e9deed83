/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	raw := `{"type":"bug","product_area":"billing","urgency":"urgent","confidence":0.92,"sentiment_score":-0.6,"urgency_keywords":["broken"],"summary":"Checkout fails"}`

	c, err := ParseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeBug, c.Type)
	assert.Equal(t, "billing", c.ProductArea)
	assert.Equal(t, UrgencyUrgent, c.Urgency)
	assert.InDelta(t, 0.92, c.Confidence, 1e-9)
	assert.InDelta(t, -0.6, c.SentimentScore, 1e-9)
	assert.Equal(t, []string{"broken"}, c.UrgencyKeywords)
}

func TestParseClassificationFenced(t *testing.T) {
	raw := "```json\n{\"type\":\"feature_request\",\"urgency\":\"normal\",\"confidence\":0.8,\"sentiment_score\":0.1,\"urgency_keywords\":[]}\n```"

	c, err := ParseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeFeatureRequest, c.Type)
}

func TestParseClassificationClampsRanges(t *testing.T) {
	raw := `{"type":"bug","urgency":"normal","confidence":1.7,"sentiment_score":-3,"urgency_keywords":[]}`

	c, err := ParseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Confidence)
	assert.Equal(t, -1.0, c.SentimentScore)
}

func TestParseClassificationUnknownUrgencyDefaultsNormal(t *testing.T) {
	raw := `{"type":"bug","urgency":"severe","confidence":0.5,"sentiment_score":0,"urgency_keywords":[]}`

	c, err := ParseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, UrgencyNormal, c.Urgency)
}

func TestParseClassificationErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no json", "the feedback looks like a bug"},
		{"invalid json", "{type: bug"},
		{"unknown type", `{"type":"rant","urgency":"normal"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClassification(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestDetectUrgencyKeywords(t *testing.T) {
	keywords, level := DetectUrgencyKeywords("App crash on save, losing work. This is urgent!")
	assert.Equal(t, UrgencyCritical, level)
	assert.Contains(t, keywords, "crash")
	assert.Contains(t, keywords, "urgent")

	keywords, level = DetectUrgencyKeywords("Blocking our production rollout")
	assert.Equal(t, UrgencyUrgent, level)
	assert.Contains(t, keywords, "blocking")

	keywords, level = DetectUrgencyKeywords("Would love a dark mode")
	assert.Equal(t, UrgencyNormal, level)
	assert.Empty(t, keywords)
}

func TestMergeDetectedUrgencyEscalatesOnly(t *testing.T) {
	c := &Classification{Type: TypeBug, Urgency: UrgencyCritical, UrgencyKeywords: []string{"security"}}
	MergeDetectedUrgency(c, "this is urgent")
	assert.Equal(t, UrgencyCritical, c.Urgency)
	assert.ElementsMatch(t, []string{"security", "urgent"}, c.UrgencyKeywords)

	c = &Classification{Type: TypeBug, Urgency: UrgencyNormal}
	MergeDetectedUrgency(c, "app crash on login")
	assert.Equal(t, UrgencyCritical, c.Urgency)
}

func TestHeuristicClassify(t *testing.T) {
	c := HeuristicClassify("Error saving document", "the app fails every time")
	assert.Equal(t, TypeBug, c.Type)
	assert.InDelta(t, -0.5, c.SentimentScore, 1e-9)
	assert.InDelta(t, 0.3, c.Confidence, 1e-9)

	c = HeuristicClassify("How do I export data?", "")
	assert.Equal(t, TypeQuestion, c.Type)

	c = HeuristicClassify("Love the new editor", "thank you!")
	assert.Equal(t, TypePraise, c.Type)

	c = HeuristicClassify("Please add SSO support", "")
	assert.Equal(t, TypeFeatureRequest, c.Type)

	c = HeuristicClassify("The sidebar could be wider", "")
	assert.Equal(t, TypeImprovement, c.Type)
}
