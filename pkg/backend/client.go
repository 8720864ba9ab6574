// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package backend provides the HTTP transport layer shared by every
// CounselDesk client package.
//
// The three backend services (conversational chat, document drafting,
// document analysis) are opaque HTTP endpoints. This package owns the
// HTTPClient abstraction, the endpoint set resolved from configuration,
// and the response helpers used by pkg/session, pkg/conversation,
// pkg/analysis, and pkg/draft.
//
// # Architecture
//
//	pkg/session ─┐
//	pkg/conversation ─┤→ HTTPClient Interface → defaultHTTPClient → http.Client
//	pkg/analysis ─┤                              (rate-limited)
//	pkg/draft ───┘
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// HTTPClient Interface
// =============================================================================

// HTTPClient defines the contract for backend HTTP communication.
//
// # Description
//
// HTTPClient abstracts the underlying http.Client so that every client
// package can be unit tested against a mock. The production implementation
// applies a fixed per-request timeout and a client-side rate limiter.
//
// # Inputs
//
// All methods accept a context.Context for cancellation and deadline
// control. URLs must be absolute.
//
// # Outputs
//
// Methods return the raw *http.Response; callers own Body and must close
// it. A non-2xx status is NOT an error at this layer - use CheckStatus.
//
// # Limitations
//
//   - No automatic retries. A timed-out request is reported as failed and
//     the caller decides whether the user retries manually.
//
// # Assumptions
//
//   - Caller closes the response body
//   - Caller validates the response status
type HTTPClient interface {
	// Post sends a POST request with the given content type and body.
	Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error)

	// Get sends a GET request.
	Get(ctx context.Context, url string) (*http.Response, error)

	// Delete sends a DELETE request.
	Delete(ctx context.Context, url string) (*http.Response, error)
}

// =============================================================================
// Endpoints
// =============================================================================

// Endpoints holds the base URLs of the three backend services.
//
// Base URLs are configured externally (config file or environment) and are
// fixed for the lifetime of the process. Trailing slashes are trimmed so
// path joining stays predictable.
type Endpoints struct {
	// ChatBaseURL is the conversational chat service.
	ChatBaseURL string

	// DraftBaseURL is the document drafting service.
	DraftBaseURL string

	// AnalysisBaseURL is the document analysis service.
	AnalysisBaseURL string
}

// Normalized returns a copy with trailing slashes removed from every URL.
func (e Endpoints) Normalized() Endpoints {
	return Endpoints{
		ChatBaseURL:     strings.TrimRight(e.ChatBaseURL, "/"),
		DraftBaseURL:    strings.TrimRight(e.DraftBaseURL, "/"),
		AnalysisBaseURL: strings.TrimRight(e.AnalysisBaseURL, "/"),
	}
}

// =============================================================================
// Default Implementation
// =============================================================================

// ClientConfig holds configuration for the production HTTP client.
//
// # Fields
//
//   - Timeout: Per-request timeout. Default: 90 seconds. A dispatched
//     request is bounded by this value; on expiry the operation is reported
//     as failed, never retried automatically.
//   - RequestsPerSecond: Client-side pacing. Default: 5. Protects the
//     backends from rapid re-dispatch without changing user-visible
//     behavior for normal usage.
//   - Burst: Rate limiter burst. Default: 4.
type ClientConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// defaultHTTPClient implements HTTPClient for production use.
//
// All requests share one http.Client (connection pooling) and one
// rate.Limiter. Thread-safe: http.Client and rate.Limiter are both safe
// for concurrent use.
type defaultHTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient creates the production HTTP client.
//
// # Description
//
// Creates a defaultHTTPClient with the configured timeout and rate limit.
// Zero-valued config fields receive defaults.
//
// # Inputs
//
//   - config: Client configuration. Zero values use defaults.
//
// # Outputs
//
//   - HTTPClient: Ready-to-use transport.
//
// # Examples
//
//	client := backend.NewHTTPClient(backend.ClientConfig{})
//	resp, err := client.Get(ctx, baseURL+"/v1/sessions")
func NewHTTPClient(config ClientConfig) HTTPClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	rps := config.RequestsPerSecond
	if rps == 0 {
		rps = 5
	}
	burst := config.Burst
	if burst == 0 {
		burst = 4
	}

	return &defaultHTTPClient{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *defaultHTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.client.Do(req)
}

func (c *defaultHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return c.client.Do(req)
}

func (c *defaultHTTPClient) Delete(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return c.client.Do(req)
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ HTTPClient = (*defaultHTTPClient)(nil)
