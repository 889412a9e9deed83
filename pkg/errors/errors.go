/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is the error type every API surface returns. It carries the
// HTTP status code, a stable machine-readable reason code, and a
// human-readable message.
type StatusError struct {
	Code    int
	Reason  string
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return e.Message
}

// ReasonForError extracts the reason code from an error, or "" when the
// error is not a StatusError.
func ReasonForError(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Reason
	}
	return ""
}

// CodeForError extracts the HTTP status code from an error, defaulting to
// 500 for unclassified errors.
func CodeForError(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return http.StatusInternalServerError
}

func newStatusError(code int, reason, message string) *StatusError {
	return &StatusError{
		Code:    code,
		Reason:  reason,
		Message: message,
	}
}

func NewBadRequest(message string) *StatusError {
	return newStatusError(http.StatusBadRequest, ValidationError, message)
}

func NewBadRequestWithReason(reason, message string) *StatusError {
	return newStatusError(http.StatusBadRequest, reason, message)
}

func NewUnauthorized(message string) *StatusError {
	return newStatusError(http.StatusUnauthorized, Unauthorized, message)
}

func NewUnauthorizedWithReason(reason, message string) *StatusError {
	return newStatusError(http.StatusUnauthorized, reason, message)
}

func NewForbidden(message string) *StatusError {
	return newStatusError(http.StatusForbidden, Forbidden, message)
}

func NewForbiddenWithReason(reason, message string) *StatusError {
	return newStatusError(http.StatusForbidden, reason, message)
}

func NewNotFound(kind, name string) *StatusError {
	return newStatusError(http.StatusNotFound, NotFound, fmt.Sprintf("%s %s not found", kind, name))
}

func NewNotFoundWithMessage(message string) *StatusError {
	return newStatusError(http.StatusNotFound, NotFound, message)
}

func NewNotFoundWithReason(reason, message string) *StatusError {
	return newStatusError(http.StatusNotFound, reason, message)
}

func NewAlreadyExist(message string) *StatusError {
	return newStatusError(http.StatusConflict, AlreadyExists, message)
}

func NewConflict(reason, message string) *StatusError {
	return newStatusError(http.StatusConflict, reason, message)
}

func NewGone(reason, message string) *StatusError {
	return newStatusError(http.StatusGone, reason, message)
}

func NewInternalError(message string) *StatusError {
	return newStatusError(http.StatusInternalServerError, InternalError, message)
}

func NewUpstreamUnavailable(message string) *StatusError {
	return newStatusError(http.StatusBadGateway, UpstreamUnavailable, message)
}

func NewRateLimited(message string) *StatusError {
	return newStatusError(http.StatusTooManyRequests, RateLimited, message)
}

func IsBadRequest(err error) bool {
	return CodeForError(err) == http.StatusBadRequest
}

func IsUnauthorized(err error) bool {
	return CodeForError(err) == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	return CodeForError(err) == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return CodeForError(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return CodeForError(err) == http.StatusConflict
}

func IsInternal(err error) bool {
	return CodeForError(err) == http.StatusInternalServerError
}

// IgnoreNotFound drops not-found errors so callers can treat a missing row
// as an empty result.
func IgnoreNotFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}
