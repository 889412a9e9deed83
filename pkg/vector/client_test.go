/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package vector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexClientConfigValidate(t *testing.T) {
	assert.ErrorContains(t, IndexClientConfig{}.Validate(), "endpoint is empty")
	assert.ErrorContains(t, IndexClientConfig{Endpoint: "http://x"}.Validate(), "index is empty")
	assert.NoError(t, IndexClientConfig{Endpoint: "http://x", Index: "feedback"}.Validate())
}

func TestIndexClientQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/feedback/query", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		req := &QueryRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		assert.Equal(t, 5, req.TopK)
		assert.EqualValues(t, 1, req.Filter["workspace_id"])

		_ = json.NewEncoder(w).Encode(&queryResponse{Matches: []*Match{
			{Id: "fb_1", Score: 0.93},
			{Id: "fb_2", Score: 0.86},
		}})
	}))
	defer server.Close()

	client := NewIndexClientWith(IndexClientConfig{
		Endpoint: server.URL,
		APIKey:   "secret",
		Index:    "feedback",
	})
	matches, err := client.Query(&QueryRequest{
		Vector:          []float32{0.1, 0.2},
		TopK:            5,
		Filter:          map[string]interface{}{"workspace_id": 1},
		IncludeMetadata: true,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "fb_1", matches[0].Id)
	assert.InDelta(t, 0.93, matches[0].Score, 1e-9)
}

func TestIndexClientUpsert(t *testing.T) {
	var got upsertRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/feedback/vectors/upsert", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewIndexClientWith(IndexClientConfig{Endpoint: server.URL, Index: "feedback"})
	err := client.Upsert([]*Record{{
		Id:       "fb_1",
		Values:   []float32{0.5},
		Metadata: map[string]interface{}{"board_id": 2},
	}})
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "fb_1", got.Records[0].Id)
}

func TestIndexClientUpsertEmpty(t *testing.T) {
	client := NewIndexClientWith(IndexClientConfig{Endpoint: "http://unused", Index: "feedback"})
	assert.NoError(t, client.Upsert(nil))
}

func TestIndexClientFetchMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewIndexClientWith(IndexClientConfig{Endpoint: server.URL, Index: "feedback"})
	record, err := client.Fetch("fb_missing")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestIndexClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewIndexClientWith(IndexClientConfig{Endpoint: server.URL, Index: "feedback"})
	err := client.Delete([]string{"fb_1"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "boom")
}

func TestIndexClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewIndexClientWith(IndexClientConfig{Endpoint: server.URL, Index: "feedback"})
	err := client.Upsert([]*Record{{Id: "fb_1", Values: []float32{0.5}}})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
