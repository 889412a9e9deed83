/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package worker

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/ai"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cvklog "github.com/AMD-AIG-AIMA/clearvoice/pkg/klog"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/options"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/pipeline"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/server"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/vector"
)

// Server runs the AI pipeline workers plus the queue maintenance loops.
type Server struct {
	opts     *options.Options
	dbClient *dbclient.Client
	queue    taskqueue.Queue
	consumer *pipeline.Consumer
	ctx      context.Context
	cancel   context.CancelFunc
	isInited bool
}

// NewServer creates and returns a new worker Server instance.
func NewServer() (*Server, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	s := &Server{
		opts:   &options.Options{},
		ctx:    ctx,
		cancel: cancel,
	}
	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Server) init() error {
	var err error
	if err = s.opts.InitFlags(); err != nil {
		klog.ErrorS(err, "failed to parse flags")
		return err
	}
	if err = cvklog.Init(s.opts.LogfilePath, s.opts.LogFileSize); err != nil {
		klog.ErrorS(err, "failed to init logs")
		return err
	}
	if err = s.initConfig(); err != nil {
		klog.ErrorS(err, "failed to init config")
		return err
	}
	s.dbClient = dbclient.NewClient()
	s.queue = taskqueue.NewPGStore(s.dbClient.Gorm(), server.QueueConfigFromSettings())

	p := pipeline.New(s.dbClient, ai.NewOpenAIEmbedder(), ai.NewClaudeClassifier(), vector.NewIndexClient())
	s.consumer = pipeline.NewConsumer(s.queue, p)
	s.isInited = true
	return nil
}

// Start launches the consumer and the maintenance loops, then blocks until
// a shutdown signal arrives.
func (s *Server) Start() {
	if !s.isInited {
		klog.Errorf("please init worker first")
		return
	}
	klog.Infof("starting worker")
	s.consumer.Start(s.ctx)
	go s.runTimeoutSweeper()
	go s.runCleanup()

	<-s.ctx.Done()
	s.Stop()
}

// Stop drains in-flight tasks and flushes logs.
func (s *Server) Stop() {
	klog.Info("shutting down worker...")
	s.consumer.Stop()
	s.dbClient.Close()
	s.cancel()
	klog.Info("worker is stopped")
	klog.Flush()
}

func (s *Server) initConfig() error {
	fullPath, err := filepath.Abs(s.opts.Config)
	if err != nil {
		return err
	}
	if err = config.LoadConfig(fullPath); err != nil {
		return fmt.Errorf("config path: %s, err: %v", fullPath, err)
	}
	return nil
}

// runTimeoutSweeper periodically requeues or dead-letters tasks whose
// worker went silent.
func (s *Server) runTimeoutSweeper() {
	interval := time.Duration(config.GetQueueTimeoutSweepSecond()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.queue.HandleTimeouts(s.ctx); err != nil {
				klog.ErrorS(err, "failed to handle task timeouts")
			} else if n > 0 {
				klog.Infof("requeued %d timed out tasks", n)
			}
		}
	}
}

// runCleanup periodically drops terminal tasks past the retention window.
func (s *Server) runCleanup() {
	interval := time.Duration(config.GetQueueCleanupIntervalSecond()) * time.Second
	retention := time.Duration(config.GetQueueRetentionDay()) * 24 * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.queue.Cleanup(s.ctx, retention); err != nil {
				klog.ErrorS(err, "failed to clean up old tasks")
			} else if n > 0 {
				klog.Infof("cleaned up %d old tasks", n)
			}
		}
	}
}
