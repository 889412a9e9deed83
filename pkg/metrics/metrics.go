/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestCount    *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
)

func init() {
	httpRequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "http",
			Name:      "request_total",
			Help:      "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "code"},
	)
	prometheus.MustRegister(httpRequestCount)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP request processing in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	prometheus.MustRegister(httpRequestDuration)
}

// Pipeline metrics
var (
	pipelineStageCount *prometheus.CounterVec
	pipelineTaskCount  *prometheus.CounterVec
)

func init() {
	pipelineStageCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Total number of pipeline stage executions",
		},
		[]string{"stage", "outcome"}, // outcome: success/skipped/error
	)
	prometheus.MustRegister(pipelineStageCount)

	pipelineTaskCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "pipeline",
			Name:      "task_total",
			Help:      "Total number of pipeline tasks by terminal status",
		},
		[]string{"topic", "status"}, // status: completed/partial/failed
	)
	prometheus.MustRegister(pipelineTaskCount)
}

// Provider metrics
var (
	providerCallCount    *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec
)

func init() {
	providerCallCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "provider",
			Name:      "call_total",
			Help:      "Total number of external provider calls",
		},
		[]string{"provider", "outcome"}, // provider: embedding/llm/vector/email/oauth, outcome: ok/error
	)
	prometheus.MustRegister(providerCallCount)

	providerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Duration of external provider calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)
	prometheus.MustRegister(providerCallDuration)
}

func IncHTTPRequestCount(method, path, code string) {
	httpRequestCount.WithLabelValues(method, path, code).Inc()
}

func ObserveHTTPRequestDuration(method, path string, durationSeconds float64) {
	httpRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

func IncPipelineStageCount(stage, outcome string) {
	pipelineStageCount.WithLabelValues(stage, outcome).Inc()
}

func IncPipelineTaskCount(topic, status string) {
	pipelineTaskCount.WithLabelValues(topic, status).Inc()
}

func IncProviderCallCount(provider, outcome string) {
	providerCallCount.WithLabelValues(provider, outcome).Inc()
}

func ObserveProviderCallDuration(provider string, durationSeconds float64) {
	providerCallDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
