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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PGStore implements Queue on PostgreSQL through gorm.
type PGStore struct {
	db     *gorm.DB
	config *QueueConfig
}

// NewPGStore creates a new PostgreSQL-backed queue
func NewPGStore(db *gorm.DB, config *QueueConfig) *PGStore {
	if config == nil {
		config = DefaultQueueConfig()
	}
	return &PGStore{db: db, config: config}
}

// Publish adds a new task to the queue
func (s *PGStore) Publish(ctx context.Context, topic string, payload json.RawMessage) (string, error) {
	return s.PublishWithOptions(ctx, &PublishOptions{
		Topic:      topic,
		Payload:    payload,
		MaxRetries: s.config.DefaultMaxRetries,
		Timeout:    s.config.DefaultTimeout,
	})
}

// PublishWithOptions adds a new task with options
func (s *PGStore) PublishWithOptions(ctx context.Context, opts *PublishOptions) (string, error) {
	taskID := uuid.New().String()
	now := time.Now()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = s.config.DefaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = s.config.DefaultMaxRetries
	}

	task := &Task{
		ID:           taskID,
		Topic:        opts.Topic,
		Status:       TaskStatusPending,
		Priority:     opts.Priority,
		InputPayload: opts.Payload,
		MaxRetries:   maxRetries,
		CreatedAt:    now,
		TimeoutAt:    now.Add(timeout),
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return "", err
	}
	return taskID, nil
}

// GetTask retrieves a task by ID
func (s *PGStore) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ClaimTask claims a pending task for processing. Contending workers skip
// each other's locked rows, so one task is handed to exactly one worker.
func (s *PGStore) ClaimTask(ctx context.Context, topics []string, workerID string) (*Task, error) {
	var task Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		const claim = `SELECT * FROM ai_tasks
			WHERE status = ? AND topic IN ?
			ORDER BY priority DESC, created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED`
		if err := tx.Raw(claim, TaskStatusPending, topics).Scan(&task).Error; err != nil {
			return err
		}
		if task.ID == "" {
			return gorm.ErrRecordNotFound
		}
		now := time.Now()
		return tx.Model(&Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
			"status":     TaskStatusProcessing,
			"worker_id":  workerID,
			"started_at": now,
			"timeout_at": now.Add(s.config.DefaultTimeout),
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // no pending tasks
	}
	if err != nil {
		return nil, err
	}
	task.Status = TaskStatusProcessing
	task.WorkerID = workerID
	return &task, nil
}

// CompleteTask marks a task as completed with result
func (s *PGStore) CompleteTask(ctx context.Context, taskID string, output json.RawMessage) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status = ?", taskID, TaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":         TaskStatusCompleted,
			"output_payload": output,
			"completed_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FailTask marks a task as failed. Retryable failures inside the retry
// budget go back to pending; everything else lands in the dead-letter
// table together with the original job.
func (s *PGStore) FailTask(ctx context.Context, taskID string, errorMsg string, retryable bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task Task
		err := tx.First(&task, "id = ?", taskID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}

		newRetryCount := task.RetryCount + 1
		if retryable && newRetryCount <= task.MaxRetries {
			now := time.Now()
			return tx.Model(&Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
				"status":        TaskStatusPending,
				"retry_count":   newRetryCount,
				"error_message": errorMsg,
				"worker_id":     "",
				"timeout_at":    now.Add(s.config.DefaultTimeout),
			}).Error
		}

		now := time.Now()
		if err := tx.Model(&Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
			"status":        TaskStatusFailed,
			"retry_count":   newRetryCount,
			"error_message": errorMsg,
			"completed_at":  now,
		}).Error; err != nil {
			return err
		}
		reason := "retry budget exhausted"
		if !retryable {
			reason = "fatal error"
		}
		return tx.Create(&DeadLetter{
			TaskID:        taskID,
			Topic:         task.Topic,
			OriginalJob:   task.InputPayload,
			FailureReason: reason,
			LastError:     errorMsg,
			FailedAt:      now,
		}).Error
	})
}

// CancelTask cancels a pending task
func (s *PGStore) CancelTask(ctx context.Context, taskID string) error {
	result := s.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status = ?", taskID, TaskStatusPending).
		Update("status", TaskStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListTasks lists tasks with optional filters
func (s *PGStore) ListTasks(ctx context.Context, filter *TaskFilter) ([]*Task, error) {
	var tasks []*Task
	err := s.applyFilter(s.db.WithContext(ctx), filter).
		Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountTasks counts tasks by status
func (s *PGStore) CountTasks(ctx context.Context, filter *TaskFilter) (int64, error) {
	var count int64
	filterNoPage := filter
	if filter != nil {
		clone := *filter
		clone.Limit = 0
		clone.Offset = 0
		filterNoPage = &clone
	}
	err := s.applyFilter(s.db.WithContext(ctx).Model(&Task{}), filterNoPage).Count(&count).Error
	return count, err
}

// ListDeadLetters lists dead-letter rows, newest first
func (s *PGStore) ListDeadLetters(ctx context.Context, limit, offset int) ([]*DeadLetter, error) {
	var letters []*DeadLetter
	query := s.db.WithContext(ctx).Order("failed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&letters).Error; err != nil {
		return nil, err
	}
	return letters, nil
}

// HandleTimeouts requeues processing tasks whose deadline passed and still
// have budget; the rest fail into the dead-letter table.
func (s *PGStore) HandleTimeouts(ctx context.Context) (int, error) {
	var expired []*Task
	err := s.db.WithContext(ctx).
		Where("status = ? AND timeout_at < ?", TaskStatusProcessing, time.Now()).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}
	count := 0
	for _, task := range expired {
		if err := s.FailTask(ctx, task.ID, "task timed out", true); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Cleanup removes old terminal tasks
func (s *PGStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	result := s.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled}, cutoff).
		Delete(&Task{})
	return int(result.RowsAffected), result.Error
}

func (s *PGStore) applyFilter(query *gorm.DB, filter *TaskFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if len(filter.Topics) > 0 {
		query = query.Where("topic IN ?", filter.Topics)
	}
	if filter.WorkerID != "" {
		query = query.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	return query
}
