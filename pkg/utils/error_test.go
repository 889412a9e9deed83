/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

func doRequest(t *testing.T, err error) (*httptest.ResponseRecorder, ApiError) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithApiError(c, err)

	var envelope struct {
		Error ApiError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope.Error
}

func TestAbortWithStatusError(t *testing.T) {
	w, apiErr := doRequest(t, cverrors.NewConflict(cverrors.AlreadyMember, "user is already a member"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, cverrors.AlreadyMember, apiErr.Code)
	assert.Equal(t, "user is already a member", apiErr.Message)
}

func TestAbortWithUnknownError(t *testing.T) {
	w, apiErr := doRequest(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, cverrors.InternalError, apiErr.Code)
}

func TestParseIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=30&big=9999&bad=abc", nil)

	assert.Equal(t, 30, ParseIntQuery(c, "limit", 50, 1, 200))
	assert.Equal(t, 200, ParseIntQuery(c, "big", 50, 1, 200))
	assert.Equal(t, 50, ParseIntQuery(c, "bad", 50, 1, 200))
	assert.Equal(t, 50, ParseIntQuery(c, "missing", 50, 1, 200))
}
