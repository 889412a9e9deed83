/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
)

// ErrDimensionMismatch marks a provider vector of the wrong width.
// Retrying cannot fix it.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder interface for text embedding generation
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

// EmbeddingConfig holds the settings of the embedding provider. The
// endpoint is any OpenAI-compatible embeddings API.
type EmbeddingConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
}

// OpenAIEmbedder implements Embedder against an OpenAI-compatible API
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an embedder from the loaded configuration.
// Returns nil when no API key is configured.
func NewOpenAIEmbedder() *OpenAIEmbedder {
	return NewOpenAIEmbedderWith(EmbeddingConfig{
		BaseURL:   config.GetEmbeddingEndpoint(),
		APIKey:    config.GetEmbeddingAPIKey(),
		Model:     config.GetEmbeddingModel(),
		Dimension: config.GetEmbeddingDimension(),
	})
}

// NewOpenAIEmbedderWith creates an embedder with explicit settings
func NewOpenAIEmbedderWith(cfg EmbeddingConfig) *OpenAIEmbedder {
	if cfg.APIKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}
}

// Embed generates the embedding for text. The provider must return a
// vector of the configured dimension; anything else is a fatal error
// because the index would silently degrade on mixed dimensions.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding provider returned no data")
	}
	vector := resp.Data[0].Embedding
	if e.dimension > 0 && len(vector) != e.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), e.dimension)
	}
	return vector, nil
}

// ModelName returns the model name
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// NullEmbedder is a no-op embedder for when embedding is disabled
type NullEmbedder struct{}

// Embed returns nil for NullEmbedder
func (e *NullEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

// ModelName returns empty string for NullEmbedder
func (e *NullEmbedder) ModelName() string {
	return ""
}
