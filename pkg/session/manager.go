// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session owns the lifetime of the backend session token.
//
// A session is a single opaque string identifying backend-held conversation
// context. At most one token is active client-side at a time; it is never
// reused after a request reports it invalid. The manager deliberately mints
// a fresh session before every session-scoped operation instead of trusting
// a stored token, because the backend may have expired it silently. That
// trades one extra round trip for the removal of all retry-on-401 logic.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/CounselAI/CounselDesk/pkg/backend"
)

// ErrEmptyToken indicates the backend answered session-create with a 2xx
// status but no usable session id.
var ErrEmptyToken = errors.New("backend returned an empty session id")

// =============================================================================
// Manager
// =============================================================================

// Manager creates, tracks, and persists the active session token.
//
// # Description
//
// Ensure always performs a session-create round trip; Current and Clear
// operate on local state only. The token is shared mutable state, so all
// access goes through the manager's mutex, and concurrent Ensure calls are
// collapsed into a single backend mint via singleflight.
//
// # Limitations
//
//   - Never invents a token: if the backend call fails, the error is
//     surfaced and the previous token is left in place.
//
// # Assumptions
//
//   - The chat service exposes POST {base}/v1/sessions returning
//     {"session_id": "..."}
type Manager struct {
	client  backend.HTTPClient
	baseURL string
	store   TokenStore
	logger  *slog.Logger

	mu      sync.RWMutex
	current string

	group singleflight.Group
}

// ManagerConfig holds dependencies for NewManager.
type ManagerConfig struct {
	// Client is the backend transport. Required.
	Client backend.HTTPClient

	// ChatBaseURL is the chat service base URL. Required.
	ChatBaseURL string

	// Store persists the token. Defaults to an in-memory store.
	Store TokenStore

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewManager creates a session Manager.
//
// The stored token (if any) is loaded as the starting Current value so that
// commands which only read the last-known session do not need a network
// call.
func NewManager(config ManagerConfig) *Manager {
	store := config.Store
	if store == nil {
		store = NewMemoryTokenStore()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		client:  config.Client,
		baseURL: config.ChatBaseURL,
		store:   store,
		logger:  logger,
	}

	if token, err := store.Load(); err == nil && token != "" {
		m.current = token
	}

	return m
}

// sessionCreateResponse matches the chat service's session-create payload.
type sessionCreateResponse struct {
	SessionID string `json:"session_id"`
}

// Ensure mints a fresh session token and returns it.
//
// # Description
//
// Always POSTs session-create before returning; it never returns a token
// without having made a create call. On success the new token overwrites
// the stored one. Concurrent callers share a single mint.
//
// # Inputs
//
//   - ctx: Cancellation and deadline control.
//
// # Outputs
//
//   - string: The freshly minted token.
//   - error: Transport or backend failure; prior token is untouched.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	v, err, _ := m.group.Do("mint", func() (any, error) {
		return m.mint(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) mint(ctx context.Context) (string, error) {
	requestID := uuid.New().String()

	m.logger.Debug("minting session", "request_id", requestID)

	resp, err := m.client.Post(ctx, m.baseURL+"/v1/sessions", "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return "", err
	}

	var created sessionCreateResponse
	if err := backend.DecodeJSON(resp, &created); err != nil {
		return "", err
	}
	if created.SessionID == "" {
		return "", ErrEmptyToken
	}

	m.mu.Lock()
	m.current = created.SessionID
	m.mu.Unlock()

	if err := m.store.Save(created.SessionID); err != nil {
		// The in-memory token is authoritative for this run; persistence
		// failure only costs the next run a re-mint it would do anyway.
		m.logger.Warn("failed to persist session token", "error", err)
	}

	m.logger.Info("session minted", "request_id", requestID)
	return created.SessionID, nil
}

// Current returns the last successfully minted token, or "" when none
// exists. It makes no network call and gives no freshness guarantee.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Clear forgets the active token locally and removes the persisted copy.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.current = ""
	m.mu.Unlock()

	return m.store.Clear()
}
