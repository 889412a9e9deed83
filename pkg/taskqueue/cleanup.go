/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package taskqueue

import (
	"context"
	"time"

	"k8s.io/klog/v2"
)

// CleanupJob handles periodic cleanup of old tasks
type CleanupJob struct {
	queue  Queue
	config *CleanupConfig
	stopCh chan struct{}
	doneCh chan struct{}
}

// CleanupConfig contains configuration for the cleanup job
type CleanupConfig struct {
	// How long to keep completed tasks
	RetentionPeriod time.Duration

	// How often to run cleanup
	Interval time.Duration
}

// DefaultCleanupConfig returns default cleanup configuration
func DefaultCleanupConfig() *CleanupConfig {
	return &CleanupConfig{
		RetentionPeriod: 7 * 24 * time.Hour,
		Interval:        1 * time.Hour,
	}
}

// NewCleanupJob creates a new cleanup job
func NewCleanupJob(queue Queue, config *CleanupConfig) *CleanupJob {
	if config == nil {
		config = DefaultCleanupConfig()
	}
	return &CleanupJob{
		queue:  queue,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start starts the cleanup job in a goroutine
func (j *CleanupJob) Start(ctx context.Context) {
	go j.run(ctx)
}

// Stop stops the cleanup job
func (j *CleanupJob) Stop() {
	close(j.stopCh)
	<-j.doneCh
}

func (j *CleanupJob) run(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.runCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.runCleanup(ctx)
		}
	}
}

func (j *CleanupJob) runCleanup(ctx context.Context) {
	count, err := j.queue.Cleanup(ctx, j.config.RetentionPeriod)
	if err != nil {
		klog.ErrorS(err, "task cleanup failed")
		return
	}
	if count > 0 {
		klog.Infof("task cleanup removed %d terminal tasks", count)
	}
}

// RunOnce runs the cleanup once
func (j *CleanupJob) RunOnce(ctx context.Context) (int, error) {
	return j.queue.Cleanup(ctx, j.config.RetentionPeriod)
}

// TimeoutHandler handles task timeout processing
type TimeoutHandler struct {
	queue  Queue
	config *TimeoutConfig
	stopCh chan struct{}
	doneCh chan struct{}
}

// TimeoutConfig contains configuration for the timeout handler
type TimeoutConfig struct {
	// How often to check for timeouts
	CheckInterval time.Duration
}

// DefaultTimeoutConfig returns default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		CheckInterval: 1 * time.Minute,
	}
}

// NewTimeoutHandler creates a new timeout handler
func NewTimeoutHandler(queue Queue, config *TimeoutConfig) *TimeoutHandler {
	if config == nil {
		config = DefaultTimeoutConfig()
	}
	return &TimeoutHandler{
		queue:  queue,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start starts the timeout handler in a goroutine
func (h *TimeoutHandler) Start(ctx context.Context) {
	go h.run(ctx)
}

// Stop stops the timeout handler
func (h *TimeoutHandler) Stop() {
	close(h.stopCh)
	<-h.doneCh
}

func (h *TimeoutHandler) run(ctx context.Context) {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.handleTimeouts(ctx)
		}
	}
}

func (h *TimeoutHandler) handleTimeouts(ctx context.Context) {
	count, err := h.queue.HandleTimeouts(ctx)
	if err != nil {
		klog.ErrorS(err, "timeout sweep failed")
		return
	}
	if count > 0 {
		klog.Infof("timeout sweep requeued %d tasks", count)
	}
}

// RunOnce runs the timeout handling once
func (h *TimeoutHandler) RunOnce(ctx context.Context) (int, error) {
	return h.queue.HandleTimeouts(ctx)
}

// QueueStats contains statistics about the queue
type QueueStats struct {
	PendingCount    int64
	ProcessingCount int64
	CompletedCount  int64
	FailedCount     int64
	CancelledCount  int64
	TotalCount      int64
}

// GetStats retrieves queue statistics
func GetStats(ctx context.Context, queue Queue) (*QueueStats, error) {
	stats := &QueueStats{}
	for _, status := range []TaskStatus{
		TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusCancelled,
	} {
		s := status
		count, err := queue.CountTasks(ctx, &TaskFilter{Status: &s})
		if err != nil {
			return nil, err
		}
		switch status {
		case TaskStatusPending:
			stats.PendingCount = count
		case TaskStatusProcessing:
			stats.ProcessingCount = count
		case TaskStatusCompleted:
			stats.CompletedCount = count
		case TaskStatusFailed:
			stats.FailedCount = count
		case TaskStatusCancelled:
			stats.CancelledCount = count
		}
		stats.TotalCount += count
	}
	return stats, nil
}
