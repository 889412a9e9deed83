/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		values := "["
		for i := range vector {
			if i > 0 {
				values += ","
			}
			values += "0.5"
		}
		values += "]"
		_, _ = w.Write([]byte(`{"object":"list","model":"stub","data":[{"object":"embedding","index":0,"embedding":` + values + `}]}`))
	}))
}

func TestEmbedReturnsVector(t *testing.T) {
	server := embedServer(t, make([]float32, 3))
	defer server.Close()

	embedder := NewOpenAIEmbedderWith(EmbeddingConfig{
		BaseURL:   server.URL,
		APIKey:    "secret",
		Model:     "stub",
		Dimension: 3,
	})
	vec, err := embedder.Embed(context.Background(), "dark mode please")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestEmbedDimensionMismatch(t *testing.T) {
	server := embedServer(t, make([]float32, 2))
	defer server.Close()

	embedder := NewOpenAIEmbedderWith(EmbeddingConfig{
		BaseURL:   server.URL,
		APIKey:    "secret",
		Model:     "stub",
		Dimension: 768,
	})
	_, err := embedder.Embed(context.Background(), "dark mode please")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestEmbedEmptyInput(t *testing.T) {
	embedder := NewOpenAIEmbedderWith(EmbeddingConfig{APIKey: "secret", Model: "stub"})
	_, err := embedder.Embed(context.Background(), "")
	assert.Error(t, err)
}

func TestNewOpenAIEmbedderWithoutKey(t *testing.T) {
	assert.Nil(t, NewOpenAIEmbedderWith(EmbeddingConfig{}))
}
