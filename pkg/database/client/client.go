/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/database/utils"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

var (
	once     sync.Once
	instance *Client
)

// Client represents a database client that manages both sqlx and gorm database connections.
// The sqlx connection serves the entity queries; the gorm connection serves
// the task-queue models.
type Client struct {
	db   *sqlx.DB
	gorm *gorm.DB
	*utils.DBConfig
}

// NewClient creates a singleton instance of the database Client.
// It initializes the database configuration from common configuration,
// validates the parameters, and establishes connections using both sqlx and gorm.
// The initialization happens only once even if called multiple times.
func NewClient() *Client {
	once.Do(func() {
		cfg := &utils.DBConfig{
			DBName:       config.GetDBName(),
			Username:     config.GetDBUser(),
			Password:     config.GetDBPassword(),
			Host:         config.GetDBHost(),
			Port:         config.GetDBPort(),
			SSLMode:      config.GetDBSslMode(),
			MaxOpenConns: config.GetDBMaxOpenConns(),
			MaxIdleConns: config.GetDBMaxIdleConns(),
			MaxLifetime:  time.Duration(config.GetDBMaxLifetimeSecond()) * time.Second,
			MaxIdleTime:  time.Duration(config.GetDBMaxIdleTimeSecond()) * time.Second,
		}
		if err := checkParams(cfg); err != nil {
			klog.ErrorS(err, "failed to check db params")
			return
		}
		db, err := utils.Connect(cfg, utils.PgDriver)
		if err != nil {
			klog.Errorf("%s", err.Error())
			return
		}
		if err = db.Ping(); err != nil {
			klog.ErrorS(err, "failed to ping db")
			return
		}
		gormDb, err := utils.ConnectGorm(cfg)
		if err != nil {
			klog.ErrorS(err, "failed to init gorm")
			return
		}
		instance = &Client{db: db, DBConfig: cfg, gorm: gormDb}
		klog.Infof("init db-client successfully! host: %s db: %s", cfg.Host, cfg.DBName)
	})
	return instance
}

// NewClientWith builds a client around existing connections, used by tests.
func NewClientWith(db *sqlx.DB, gormDb *gorm.DB) *Client {
	return &Client{db: db, gorm: gormDb, DBConfig: &utils.DBConfig{}}
}

// Close performs the Close operation.
func (c *Client) Close() {
	err := c.db.Close()
	if err != nil {
		klog.ErrorS(err, "failed to close db connection")
	}
}

// Gorm exposes the gorm connection for the task-queue store.
func (c *Client) Gorm() *gorm.DB {
	return c.gorm
}

// getDB retrieves DB for internal use.
func (c *Client) getDB() (*sqlx.DB, error) {
	if c == nil || c.db == nil {
		return nil, cverrors.NewInternalError("the client of db has not been initialized")
	}
	return c.db.Unsafe(), nil
}

// checkParams checks Params and returns the result.
func checkParams(cfg *utils.DBConfig) error {
	var errs []error
	if cfg.DBName == "" {
		errs = append(errs, fmt.Errorf("dbname not found"))
	}
	if cfg.Username == "" {
		errs = append(errs, fmt.Errorf("username not found"))
	}
	if cfg.Host == "" {
		errs = append(errs, fmt.Errorf("host not found"))
	}
	if cfg.SSLMode == "" {
		errs = append(errs, fmt.Errorf("ssl_mode not found"))
	}
	if cfg.Port == 0 {
		errs = append(errs, fmt.Errorf("port not found"))
	}
	return errors.Join(errs...)
}
