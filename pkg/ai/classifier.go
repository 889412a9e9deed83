/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
)

// Feedback types
const (
	TypeBug            = "bug"
	TypeFeatureRequest = "feature_request"
	TypeImprovement    = "improvement"
	TypeQuestion       = "question"
	TypePraise         = "praise"
	TypeComplaint      = "complaint"
)

// Urgency levels, in ascending order
const (
	UrgencyNormal   = "normal"
	UrgencyUrgent   = "urgent"
	UrgencyCritical = "critical"
)

// Classification is the structured result of classifying one feedback item.
type Classification struct {
	Type            string   `json:"type"`
	ProductArea     string   `json:"product_area,omitempty"`
	Urgency         string   `json:"urgency"`
	Confidence      float64  `json:"confidence"`
	SentimentScore  float64  `json:"sentiment_score"`
	UrgencyKeywords []string `json:"urgency_keywords"`
	Summary         string   `json:"summary,omitempty"`
}

// TokenUsage is the token count reported by the LLM provider for one call.
type TokenUsage struct {
	Input  int64
	Output int64
}

// Classifier classifies feedback text into a Classification.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (*Classification, *TokenUsage, error)
	ModelName() string
}

// ClaudeClassifier implements Classifier on the Anthropic API.
type ClaudeClassifier struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// NewClaudeClassifier creates a classifier from the loaded configuration.
// Returns nil when no API key is configured.
func NewClaudeClassifier() *ClaudeClassifier {
	apiKey := config.GetClaudeAPIKey()
	if apiKey == "" {
		return nil
	}
	return &ClaudeClassifier{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   anthropic.Model(config.GetClaudeModel()),
		timeout: time.Duration(config.GetAIRequestTimeoutSecond()) * time.Second,
	}
}

// Classify calls the LLM with a strict-JSON prompt. A malformed response
// falls back to the keyword heuristic instead of failing the stage, and
// deterministically detected urgency keywords are merged into the result
// either way.
func (c *ClaudeClassifier) Classify(ctx context.Context, title, description string) (*Classification, *TokenUsage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := buildClassifyPrompt(title, description)
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, nil, err
	}

	usage := &TokenUsage{
		Input:  message.Usage.InputTokens,
		Output: message.Usage.OutputTokens,
	}

	raw := ""
	if len(message.Content) > 0 && message.Content[0].Type == "text" {
		raw = message.Content[0].Text
	}

	classification, parseErr := ParseClassification(raw)
	if parseErr != nil {
		klog.Warningf("classification response unparseable, using heuristic: %v", parseErr)
		classification = HeuristicClassify(title, description)
	}
	MergeDetectedUrgency(classification, title+" "+description)
	return classification, usage, nil
}

// ModelName returns the model name
func (c *ClaudeClassifier) ModelName() string {
	return string(c.model)
}

func buildClassifyPrompt(title, description string) string {
	var b strings.Builder
	b.WriteString("You classify product feedback. Respond with a single JSON object and nothing else, using exactly these fields:\n")
	b.WriteString(`{"type": one of ["bug","feature_request","improvement","question","praise","complaint"], "product_area": short string or null, "urgency": one of ["normal","urgent","critical"], "confidence": number 0..1, "sentiment_score": number -1..1, "urgency_keywords": array of strings found in the text, "summary": one sentence}`)
	b.WriteString("\n\nTitle: ")
	b.WriteString(title)
	if description != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(description)
	}
	return b.String()
}

// ParseClassification parses the LLM response. Fenced code blocks around
// the JSON are tolerated; anything that does not yield a valid object with
// a known type is an error so the caller can fall back.
func ParseClassification(raw string) (*Classification, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	classification := &Classification{}
	if err := json.Unmarshal([]byte(text[start:end+1]), classification); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %v", err)
	}
	if !isKnownType(classification.Type) {
		return nil, fmt.Errorf("unknown feedback type %q", classification.Type)
	}
	if !isKnownUrgency(classification.Urgency) {
		classification.Urgency = UrgencyNormal
	}
	classification.Confidence = clamp(classification.Confidence, 0, 1)
	classification.SentimentScore = clamp(classification.SentimentScore, -1, 1)
	return classification, nil
}

func isKnownType(t string) bool {
	switch t {
	case TypeBug, TypeFeatureRequest, TypeImprovement, TypeQuestion, TypePraise, TypeComplaint:
		return true
	}
	return false
}

func isKnownUrgency(u string) bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyCritical:
		return true
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Keyword tables for the heuristic fallback and the deterministic urgency
// scan. Matching is case-insensitive substring matching.
var (
	criticalKeywords = []string{
		"crash", "data loss", "security", "vulnerability", "outage",
		"cannot log in", "can't log in", "unusable", "down for everyone",
	}
	urgentKeywords = []string{
		"urgent", "asap", "blocker", "blocking", "broken",
		"immediately", "production", "deadline",
	}
	bugKeywords     = []string{"bug", "error", "crash", "broken", "fails", "doesn't work", "does not work", "wrong"}
	featureKeywords = []string{"feature", "add", "support", "would be great", "please add", "request", "wish"}
	questionLeads   = []string{"how do", "how can", "what is", "why does", "is there", "can i"}
	praiseKeywords  = []string{"love", "great", "awesome", "thank", "amazing", "excellent"}
)

// DetectUrgencyKeywords scans the text for the deterministic keyword tables
// and returns the matches with the highest urgency level they imply.
func DetectUrgencyKeywords(text string) ([]string, string) {
	lower := strings.ToLower(text)
	var found []string
	level := UrgencyNormal
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
			level = UrgencyCritical
		}
	}
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
			if level != UrgencyCritical {
				level = UrgencyUrgent
			}
		}
	}
	return found, level
}

// MergeDetectedUrgency merges deterministically detected urgency keywords
// into a classification. Urgency only ever escalates.
func MergeDetectedUrgency(c *Classification, text string) {
	keywords, level := DetectUrgencyKeywords(text)
	if urgencyRank(level) > urgencyRank(c.Urgency) {
		c.Urgency = level
	}
	seen := make(map[string]bool, len(c.UrgencyKeywords))
	for _, kw := range c.UrgencyKeywords {
		seen[strings.ToLower(kw)] = true
	}
	for _, kw := range keywords {
		if !seen[kw] {
			c.UrgencyKeywords = append(c.UrgencyKeywords, kw)
			seen[kw] = true
		}
	}
}

func urgencyRank(u string) int {
	switch u {
	case UrgencyCritical:
		return 2
	case UrgencyUrgent:
		return 1
	default:
		return 0
	}
}

// HeuristicClassify is the keyword fallback used when the LLM response
// cannot be parsed. It is intentionally coarse.
func HeuristicClassify(title, description string) *Classification {
	text := strings.ToLower(title + " " + description)

	feedbackType := TypeImprovement
	sentiment := 0.0
	switch {
	case containsAny(text, bugKeywords):
		feedbackType = TypeBug
		sentiment = -0.5
	case containsAny(text, questionLeads):
		feedbackType = TypeQuestion
	case containsAny(text, praiseKeywords):
		feedbackType = TypePraise
		sentiment = 0.7
	case containsAny(text, featureKeywords):
		feedbackType = TypeFeatureRequest
		sentiment = 0.2
	}

	classification := &Classification{
		Type:           feedbackType,
		Urgency:        UrgencyNormal,
		Confidence:     0.3,
		SentimentScore: sentiment,
	}
	return classification
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
