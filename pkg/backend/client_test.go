// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints_Normalized(t *testing.T) {
	e := Endpoints{
		ChatBaseURL:     "http://chat:9301/",
		DraftBaseURL:    "http://draft:9302///",
		AnalysisBaseURL: "http://analysis:9303",
	}.Normalized()

	assert.Equal(t, "http://chat:9301", e.ChatBaseURL)
	assert.Equal(t, "http://draft:9302", e.DraftBaseURL)
	assert.Equal(t, "http://analysis:9303", e.AnalysisBaseURL)
}

func TestHTTPClient_Methods(t *testing.T) {
	var gotMethod, gotContentType, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{RequestsPerSecond: 1000, Burst: 100})
	ctx := context.Background()

	t.Run("post carries content type and body", func(t *testing.T) {
		resp, err := client.Post(ctx, server.URL, "application/json", bytes.NewBufferString(`{"q":1}`))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, `{"q":1}`, gotBody)
	})

	t.Run("get", func(t *testing.T) {
		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.MethodGet, gotMethod)
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := client.Delete(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.MethodDelete, gotMethod)
	})
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	client := NewHTTPClient(ClientConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "http://localhost:1/never")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckStatus(t *testing.T) {
	t.Run("2xx passes and leaves body untouched", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusCreated,
			Body:       io.NopCloser(bytes.NewBufferString(`{"session_id":"s"}`)),
		}
		require.NoError(t, CheckStatus("req-1", resp))

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"session_id":"s"}`, string(b))
	})

	t.Run("non-2xx returns status and body", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(bytes.NewBufferString("overloaded")),
		}
		err := CheckStatus("req-2", resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "overloaded")
	})

	t.Run("oversized error body is truncated", func(t *testing.T) {
		huge := strings.Repeat("x", maxErrorBodyBytes*2)
		resp := &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(bytes.NewBufferString(huge)),
		}
		err := CheckStatus("req-3", resp)
		require.Error(t, err)
		assert.LessOrEqual(t, len(err.Error()), maxErrorBodyBytes+64)
	})
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(`{"name":"msa.pdf"}`)),
	}

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, "msa.pdf", out.Name)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString("<html>oops</html>")),
	}

	var out map[string]any
	err := DecodeJSON(resp, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestReadAll(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString("%PDF-1.4 blob")),
	}

	data, err := ReadAll(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 blob"), data)
}
