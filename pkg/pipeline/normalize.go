/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package pipeline

import (
	"strings"
)

// NormalizeText collapses all whitespace runs to single spaces, trims, and
// truncates to maxLen runes. maxLen <= 0 disables truncation.
func NormalizeText(text string, maxLen int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if maxLen > 0 {
		runes := []rune(normalized)
		if len(runes) > maxLen {
			normalized = string(runes[:maxLen])
		}
	}
	return normalized
}

// EmbedInput builds the text handed to the embedding provider for one
// feedback item.
func EmbedInput(title, body string, maxLen int) string {
	text := "Title: " + title + "."
	if body != "" {
		text += " Description: " + body
	}
	return NormalizeText(text, maxLen)
}

// TruncateTitle shortens a title for vector metadata.
func TruncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return title
}
