/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package taskqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpandTopic(t *testing.T) {
	stages := ExpandTopic(TopicFullPipeline)
	assert.Equal(t, []string{TopicEmbed, TopicDuplicate, TopicClassify, TopicPriority, TopicTheme}, stages)

	assert.Equal(t, []string{TopicEmbed}, ExpandTopic(TopicEmbed))
	assert.Equal(t, []string{"custom"}, ExpandTopic("custom"))
}

func TestTaskIsCompleted(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, false},
		{TaskStatusProcessing, false},
		{TaskStatusCompleted, true},
		{TaskStatusFailed, true},
		{TaskStatusCancelled, true},
	}
	for _, tt := range tests {
		task := &Task{Status: tt.status}
		assert.Equal(t, tt.want, task.IsCompleted(), "status %s", tt.status)
	}
}

func TestTaskIsRetryable(t *testing.T) {
	task := &Task{Status: TaskStatusFailed, RetryCount: 1, MaxRetries: 3}
	assert.True(t, task.IsRetryable())

	task.RetryCount = 3
	assert.False(t, task.IsRetryable())

	task.Status = TaskStatusCompleted
	assert.False(t, task.IsRetryable())
}

func TestDefaultQueueConfig(t *testing.T) {
	config := DefaultQueueConfig()
	assert.Equal(t, 5*time.Minute, config.DefaultTimeout)
	assert.Equal(t, 3, config.DefaultMaxRetries)
	assert.Equal(t, 7, config.RetentionDays)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "ai_tasks", Task{}.TableName())
	assert.Equal(t, "ai_dead_letters", DeadLetter{}.TableName())
}
