/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package vector

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/httpclient"
)

// IndexClientConfig holds the connection settings of the vector index.
type IndexClientConfig struct {
	Endpoint string
	APIKey   string
	Index    string
}

// Validate validates the input parameters.
func (c IndexClientConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("vector endpoint is empty")
	}
	if c.Index == "" {
		return fmt.Errorf("vector index is empty")
	}
	return nil
}

// Record is a single vector with its metadata.
type Record struct {
	Id       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Match is one query hit, highest score first.
type Match struct {
	Id       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryRequest queries the index for the nearest neighbours of a vector.
type QueryRequest struct {
	Vector          []float32              `json:"vector"`
	TopK            int                    `json:"top_k"`
	Filter          map[string]interface{} `json:"filter,omitempty"`
	IncludeMetadata bool                   `json:"include_metadata"`
}

type queryResponse struct {
	Matches []*Match `json:"matches"`
}

type upsertRequest struct {
	Records []*Record `json:"records"`
}

type deleteRequest struct {
	Ids []string `json:"ids"`
}

// StatusError is a non-2xx reply from the index. It keeps the status
// code so callers can tell rate limits and server failures apart from
// request mistakes.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("vector index replied %d: %s", e.StatusCode, e.Body)
}

// IndexClient talks to the REST vector index.
type IndexClient struct {
	IndexClientConfig
	httpClient httpclient.Interface
}

// NewIndexClient creates a vector index client from the loaded configuration.
func NewIndexClient() *IndexClient {
	return NewIndexClientWith(IndexClientConfig{
		Endpoint: config.GetVectorEndpoint(),
		APIKey:   config.GetVectorAPIKey(),
		Index:    config.GetVectorIndex(),
	})
}

// NewIndexClientWith creates a vector index client with explicit settings.
func NewIndexClientWith(cfg IndexClientConfig) *IndexClient {
	return &IndexClient{
		IndexClientConfig: cfg,
		httpClient:        httpclient.NewHttpClient(),
	}
}

// Upsert writes records into the index, replacing records with the same id.
func (c *IndexClient) Upsert(records []*Record) error {
	if len(records) == 0 {
		return nil
	}
	_, err := c.request(http.MethodPost, "/vectors/upsert", &upsertRequest{Records: records})
	return err
}

// Query returns the nearest neighbours of the given vector.
func (c *IndexClient) Query(req *QueryRequest) ([]*Match, error) {
	body, err := c.request(http.MethodPost, "/query", req)
	if err != nil {
		return nil, err
	}
	resp := &queryResponse{}
	if err = json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("failed to parse vector query response: %v", err)
	}
	return resp.Matches, nil
}

// Fetch returns the record stored under the given id, or nil when absent.
func (c *IndexClient) Fetch(id string) (*Record, error) {
	body, err := c.request(http.MethodGet, "/vectors/"+id, nil)
	if err != nil {
		return nil, err
	}
	record := &Record{}
	if err = json.Unmarshal(body, record); err != nil {
		return nil, fmt.Errorf("failed to parse vector fetch response: %v", err)
	}
	if record.Id == "" {
		return nil, nil
	}
	return record, nil
}

// Delete removes records from the index. Missing ids are not an error.
func (c *IndexClient) Delete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.request(http.MethodPost, "/vectors/delete", &deleteRequest{Ids: ids})
	return err
}

func (c *IndexClient) request(method, uri string, body interface{}) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	url := strings.TrimSuffix(c.Endpoint, "/") + "/indexes/" + c.Index + uri
	req, err := httpclient.BuildRequest(url, method, body)
	if err != nil {
		return nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return []byte("{}"), nil
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp.Body, nil
}
