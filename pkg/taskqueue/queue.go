/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskNotCompleted = errors.New("task not completed yet")
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Topics. TopicFullPipeline expands into the stage set at execution time;
// the single-stage topics exist for targeted reprocessing.
const (
	TopicFullPipeline = "full_pipeline"
	TopicEmbed        = "embed"
	TopicDuplicate    = "duplicate"
	TopicClassify     = "classify"
	TopicPriority     = "priority"
	TopicTheme        = "theme"
)

// ExpandTopic returns the stage set a topic stands for. Unknown topics
// expand to themselves so a future stage name flows through untouched.
func ExpandTopic(topic string) []string {
	if topic == TopicFullPipeline {
		return []string{TopicEmbed, TopicDuplicate, TopicClassify, TopicPriority, TopicTheme}
	}
	return []string{topic}
}

// PipelinePayload is the input payload of every pipeline task.
type PipelinePayload struct {
	FeedbackId  string `json:"feedback_id"`
	WorkspaceId int64  `json:"workspace_id"`
}

// Task represents an async task in the queue
type Task struct {
	ID            string          `json:"id" gorm:"primaryKey;size:64"`
	Topic         string          `json:"topic" gorm:"size:128;index"`
	Status        TaskStatus      `json:"status" gorm:"size:32;index"`
	Priority      int             `json:"priority" gorm:"default:0"`
	InputPayload  json.RawMessage `json:"input_payload" gorm:"type:jsonb"`
	OutputPayload json.RawMessage `json:"output_payload,omitempty" gorm:"type:jsonb"`
	ErrorMessage  string          `json:"error_message,omitempty" gorm:"size:1024"`
	RetryCount    int             `json:"retry_count" gorm:"default:0"`
	MaxRetries    int             `json:"max_retries" gorm:"default:3"`
	WorkerID      string          `json:"worker_id,omitempty" gorm:"size:128"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	TimeoutAt     time.Time       `json:"timeout_at" gorm:"index"`
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "ai_tasks"
}

// IsCompleted returns true if the task is in a terminal state
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted ||
		t.Status == TaskStatusFailed ||
		t.Status == TaskStatusCancelled
}

// IsRetryable returns true if the task can be retried
func (t *Task) IsRetryable() bool {
	return t.Status == TaskStatusFailed && t.RetryCount < t.MaxRetries
}

// DeadLetter is a terminally failed task, retained with its original job
// for operator inspection and manual replay.
type DeadLetter struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskID        string          `json:"task_id" gorm:"size:64;index"`
	Topic         string          `json:"topic" gorm:"size:128"`
	OriginalJob   json.RawMessage `json:"original_job" gorm:"type:jsonb"`
	FailureReason string          `json:"failure_reason" gorm:"size:256"`
	LastError     string          `json:"last_error" gorm:"size:1024"`
	FailedAt      time.Time       `json:"failed_at" gorm:"index"`
}

// TableName returns the table name for GORM
func (DeadLetter) TableName() string {
	return "ai_dead_letters"
}

// Queue defines the interface for task queue operations
type Queue interface {
	// Publish adds a new task to the queue
	Publish(ctx context.Context, topic string, payload json.RawMessage) (taskID string, err error)

	// PublishWithOptions adds a new task with options
	PublishWithOptions(ctx context.Context, opts *PublishOptions) (taskID string, err error)

	// GetTask retrieves a task by ID
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ClaimTask claims a pending task for processing
	ClaimTask(ctx context.Context, topics []string, workerID string) (*Task, error)

	// CompleteTask marks a task as completed with result
	CompleteTask(ctx context.Context, taskID string, output json.RawMessage) error

	// FailTask marks a task as failed; exhausted tasks move to the
	// dead-letter table
	FailTask(ctx context.Context, taskID string, errorMsg string, retryable bool) error

	// CancelTask cancels a pending task
	CancelTask(ctx context.Context, taskID string) error

	// ListTasks lists tasks with optional filters
	ListTasks(ctx context.Context, filter *TaskFilter) ([]*Task, error)

	// CountTasks counts tasks by status
	CountTasks(ctx context.Context, filter *TaskFilter) (int64, error)

	// ListDeadLetters lists dead-letter rows, newest first
	ListDeadLetters(ctx context.Context, limit, offset int) ([]*DeadLetter, error)

	// HandleTimeouts moves timed-out tasks back to pending
	HandleTimeouts(ctx context.Context) (count int, err error)

	// Cleanup removes old terminal tasks
	Cleanup(ctx context.Context, olderThan time.Duration) (count int, err error)
}

// PublishOptions contains options for publishing a task
type PublishOptions struct {
	Topic      string
	Payload    json.RawMessage
	Priority   int
	MaxRetries int
	Timeout    time.Duration
}

// TaskFilter contains filters for listing tasks
type TaskFilter struct {
	Status        *TaskStatus
	Topic         string
	Topics        []string
	WorkerID      string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// QueueConfig contains configuration for the task queue
type QueueConfig struct {
	// Default timeout for tasks
	DefaultTimeout time.Duration `json:"default_timeout" yaml:"default_timeout"`

	// Default max retries
	DefaultMaxRetries int `json:"default_max_retries" yaml:"default_max_retries"`

	// Cleanup settings
	RetentionDays   int           `json:"retention_days" yaml:"retention_days"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`

	// Timeout check interval
	TimeoutCheckInterval time.Duration `json:"timeout_check_interval" yaml:"timeout_check_interval"`
}

// DefaultQueueConfig returns default queue configuration
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		DefaultTimeout:       5 * time.Minute,
		DefaultMaxRetries:    3,
		RetentionDays:        7,
		CleanupInterval:      1 * time.Hour,
		TimeoutCheckInterval: 1 * time.Minute,
	}
}
