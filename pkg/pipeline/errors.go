/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/ai"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/vector"
)

// Common errors for the pipeline
var (
	// Provider errors
	ErrTimeout          = errors.New("request timeout")
	ErrConnectionFailed = errors.New("connection to provider failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrProviderFailure  = errors.New("provider internal error")

	// Stage errors that must not consume retries
	ErrEmptyInput        = errors.New("stage input is empty")
	ErrParseFailure      = errors.New("response parse failure")
	ErrDimensionMismatch = ai.ErrDimensionMismatch

	// Pipeline errors
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrStageNotKnown    = errors.New("unknown pipeline stage")
)

// IsRetryableError returns true if the error class is worth retrying:
// rate limits, timeouts, network failures and provider 5xx responses.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrProviderFailure):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	var embedErr *openai.APIError
	if errors.As(err, &embedErr) {
		return embedErr.HTTPStatusCode == 429 || embedErr.HTTPStatusCode >= 500
	}

	var embedReqErr *openai.RequestError
	if errors.As(err, &embedReqErr) {
		return embedReqErr.HTTPStatusCode == 429 || embedReqErr.HTTPStatusCode >= 500
	}

	var indexErr *vector.StatusError
	if errors.As(err, &indexErr) {
		return indexErr.StatusCode == 429 || indexErr.StatusCode >= 500
	}

	return false
}

// IsFatalError returns true for error classes that retrying cannot fix.
func IsFatalError(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyInput),
		errors.Is(err, ErrParseFailure),
		errors.Is(err, ErrDimensionMismatch),
		errors.Is(err, ErrFeedbackNotFound),
		errors.Is(err, ErrStageNotKnown):
		return true
	}
	return false
}

// StageError carries the stage a failure happened in.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error
func (e *StageError) Unwrap() error {
	return e.Err
}
