/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers"
	cvklog "github.com/AMD-AIG-AIMA/clearvoice/pkg/klog"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/options"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/taskqueue"
)

type Server struct {
	opts       *options.Options
	httpServer *http.Server
	dbClient   *dbclient.Client
	queue      taskqueue.Queue
	mailer     *notification.Mailer
	ctx        context.Context
	cancel     context.CancelFunc
	isInited   bool
}

// NewServer creates and returns a new Server instance.
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

// init performs the initial setup of the server including flag parsing,
// logging initialization, configuration loading, and backing services.
func (s *Server) init() error {
	gin.SetMode(gin.ReleaseMode)
	var err error
	if err = s.opts.InitFlags(); err != nil {
		klog.ErrorS(err, "failed to parse flags")
		return err
	}
	if err = s.initLogs(); err != nil {
		klog.ErrorS(err, "failed to init logs")
		return err
	}
	if err = s.initConfig(); err != nil {
		klog.ErrorS(err, "failed to init config")
		return err
	}
	s.dbClient = dbclient.NewClient()
	s.queue = taskqueue.NewPGStore(s.dbClient.Gorm(), QueueConfigFromSettings())
	if s.mailer, err = notification.NewMailer(s.ctx); err != nil {
		klog.ErrorS(err, "failed to init mailer")
		return err
	}
	s.isInited = true
	return nil
}

// Start begins the server operation and blocks until a shutdown signal
// arrives.
func (s *Server) Start() {
	if !s.isInited {
		klog.Errorf("please init api-server first")
		return
	}
	gin.EnableJsonDecoderDisallowUnknownFields()

	klog.Infof("starting api-server")
	go func() {
		if err := s.startHttpServer(); err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "failed to start http-server")
			os.Exit(-1)
		}
	}()

	<-s.ctx.Done()
	s.Stop()
}

// Stop gracefully shuts down the HTTP server and flushes logs.
func (s *Server) Stop() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	klog.Info("shutting down http server...")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "failed to shutdown httpserver")
		}
	}
	s.dbClient.Close()
	s.cancel()
	klog.Info("apiserver is stopped")
	klog.Flush()
}

// initLogs initializes the logging system with the specified log file path
// and size.
func (s *Server) initLogs() error {
	return cvklog.Init(s.opts.LogfilePath, s.opts.LogFileSize)
}

// initConfig loads the server configuration from the specified config file
// path.
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

// startHttpServer initializes and starts the HTTP server.
func (s *Server) startHttpServer() error {
	if config.GetServerPort() <= 0 {
		return fmt.Errorf("the apiserver port is not defined")
	}
	handler, err := handlers.InitHttpHandlers(s.ctx, s.dbClient, s.queue, s.mailer)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", config.GetServerPort())
	s.httpServer = &http.Server{Addr: addr, Handler: handler}
	klog.Infof("http-server listen port: %d", config.GetServerPort())
	return s.httpServer.ListenAndServe()
}
