/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"time"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
)

// QueueConfigFromSettings builds the queue configuration from the loaded
// settings.
func QueueConfigFromSettings() *taskqueue.QueueConfig {
	return &taskqueue.QueueConfig{
		DefaultTimeout:       time.Duration(config.GetQueueTaskTimeoutSecond()) * time.Second,
		DefaultMaxRetries:    config.GetQueueMaxRetries(),
		RetentionDays:        config.GetQueueRetentionDay(),
		CleanupInterval:      time.Duration(config.GetQueueCleanupIntervalSecond()) * time.Second,
		TimeoutCheckInterval: time.Duration(config.GetQueueTimeoutSweepSecond()) * time.Second,
	}
}
