/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/metrics"
)

// Logger returns a gin middleware that logs each request through klog and
// feeds the HTTP request metrics. The route template is used as the metric
// path label to keep cardinality bounded.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		metrics.IncHTTPRequestCount(c.Request.Method, path, strconv.Itoa(code))
		metrics.ObserveHTTPRequestDuration(c.Request.Method, path, latency.Seconds())

		if code >= 500 {
			klog.Errorf("%s %s %d %v %s", c.Request.Method, c.Request.URL.Path, code, latency, c.Errors.String())
		} else {
			klog.V(2).Infof("%s %s %d %v", c.Request.Method, c.Request.URL.Path, code, latency)
		}
	}
}
