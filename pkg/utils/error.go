/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"errors"

	"github.com/gin-gonic/gin"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

// ApiError is the wire form of an error. Every error response is the
// envelope {"error": {"code", "message"}} with the matching HTTP status.
type ApiError struct {
	HttpCode int    `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Error returns the error message string.
func (err *ApiError) Error() string {
	return err.Message
}

type errEnvelope struct {
	Error ApiError `json:"error"`
}

// AbortWithApiError converts the error into the standard envelope and
// aborts the request with the matching HTTP status.
func AbortWithApiError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	rsp := convertToErrResponse(err)
	c.AbortWithStatusJSON(rsp.HttpCode, errEnvelope{Error: rsp})
}

// convertToErrResponse converts an error into the standardized ApiError
// format. Unknown error types become 500 INTERNAL_ERROR.
func convertToErrResponse(err error) ApiError {
	var result *ApiError
	if errors.As(err, &result) {
		return *result
	}
	var statusErr *cverrors.StatusError
	if !errors.As(err, &statusErr) {
		statusErr = cverrors.NewInternalError(err.Error())
	}
	return ApiError{
		HttpCode: statusErr.Code,
		Code:     statusErr.Reason,
		Message:  statusErr.Message,
	}
}
