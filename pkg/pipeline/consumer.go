/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/metrics"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
)

// consumedTopics is everything a worker claims: the full pipeline plus the
// single-stage topics used for targeted reprocessing.
var consumedTopics = []string{
	taskqueue.TopicFullPipeline,
	taskqueue.TopicEmbed,
	taskqueue.TopicDuplicate,
	taskqueue.TopicClassify,
	taskqueue.TopicPriority,
	taskqueue.TopicTheme,
}

// Consumer claims pipeline tasks from the queue and runs them. Workers are
// parallel across tasks; the stage sequence within one task is sequential.
type Consumer struct {
	queue    taskqueue.Queue
	pipeline *Pipeline

	workerCount  int
	pollInterval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewConsumer creates a consumer from the loaded configuration.
func NewConsumer(queue taskqueue.Queue, pipeline *Pipeline) *Consumer {
	return &Consumer{
		queue:        queue,
		pipeline:     pipeline,
		workerCount:  config.GetQueueWorkerCount(),
		pollInterval: time.Duration(config.GetQueuePollIntervalSecond()) * time.Second,
		stopCh:       make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (c *Consumer) Start(ctx context.Context) {
	hostname, _ := os.Hostname()
	for i := 0; i < c.workerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", hostname, i)
		c.wg.Add(1)
		go c.run(ctx, workerID)
	}
	klog.Infof("pipeline consumer started with %d workers", c.workerCount)
}

// Stop stops all workers and waits for in-flight tasks to finish.
func (c *Consumer) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Consumer) run(ctx context.Context, workerID string) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		task, err := c.queue.ClaimTask(ctx, consumedTopics, workerID)
		if err != nil {
			klog.ErrorS(err, "failed to claim task", "worker", workerID)
			c.sleep(ctx)
			continue
		}
		if task == nil {
			c.sleep(ctx)
			continue
		}
		c.handle(ctx, task)
	}
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-c.stopCh:
	case <-time.After(c.pollInterval):
	}
}

// handle runs one claimed task end to end. The task is acknowledged only
// after the pipeline result has been persisted.
func (c *Consumer) handle(ctx context.Context, task *taskqueue.Task) {
	payload := &taskqueue.PipelinePayload{}
	if err := json.Unmarshal(task.InputPayload, payload); err != nil {
		c.fail(ctx, task, fmt.Sprintf("invalid payload: %v", err), false)
		return
	}
	if payload.FeedbackId == "" {
		c.fail(ctx, task, "invalid payload: feedback_id is empty", false)
		return
	}

	result, err := c.pipeline.Process(ctx, task.Topic, payload)
	if err != nil {
		c.fail(ctx, task, err.Error(), IsRetryableError(err))
		return
	}

	if result.Status == client.AIStatusFailed {
		msg := "all stages failed"
		for _, stage := range result.Stages {
			if stage.Error != "" {
				msg = stage.Error
				break
			}
		}
		metrics.IncPipelineTaskCount(task.Topic, result.Status)
		c.fail(ctx, task, msg, result.Retryable)
		return
	}

	metrics.IncPipelineTaskCount(task.Topic, result.Status)
	output, _ := json.Marshal(result)
	if err = c.queue.CompleteTask(ctx, task.ID, output); err != nil {
		klog.ErrorS(err, "failed to complete task", "task", task.ID)
	}
}

func (c *Consumer) fail(ctx context.Context, task *taskqueue.Task, msg string, retryable bool) {
	if err := c.queue.FailTask(ctx, task.ID, msg, retryable); err != nil {
		klog.ErrorS(err, "failed to fail task", "task", task.ID)
	}
}
