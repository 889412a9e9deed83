/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseIntQuery reads an integer query parameter, falling back to def when
// absent or unparsable and clamping the result into [min, max].
func ParseIntQuery(c *gin.Context, name string, def, min, max int) int {
	value := def
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			value = parsed
		}
	}
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}
