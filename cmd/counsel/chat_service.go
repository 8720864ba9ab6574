// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/CounselAI/CounselDesk/pkg/backend"
)

// ChatReply is one assistant answer from the chat service.
type ChatReply struct {
	Response   string   `json:"response"`
	Sources    []string `json:"sources"`
	TokensUsed int      `json:"tokens_used"`
}

// ChatService defines the contract for sending conversational turns.
//
// # Description
//
// ChatService abstracts the chat backend so the runner can be unit tested
// against a mock. The production implementation posts each turn under the
// active conversation's session id.
//
// # Assumptions
//
//   - One turn in flight at a time; the runner does not read input while
//     a send is pending.
type ChatService interface {
	// Send submits one user message and returns the assistant's reply.
	Send(ctx context.Context, message string) (ChatReply, error)

	// SessionID returns the session the service is bound to.
	SessionID() string
}

// =============================================================================
// HTTP Implementation
// =============================================================================

// httpChatService implements ChatService against the chat backend.
type httpChatService struct {
	client  backend.HTTPClient
	baseURL string

	mu        sync.RWMutex
	sessionID string
}

// NewChatService creates the production chat service bound to a session.
func NewChatService(client backend.HTTPClient, baseURL, sessionID string) ChatService {
	return &httpChatService{
		client:    client,
		baseURL:   baseURL,
		sessionID: sessionID,
	}
}

func (s *httpChatService) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// chatRequest is the chat-turn wire shape.
type chatRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id"`
	Mode      string            `json:"mode"`
	Filters   map[string]string `json:"filters,omitempty"`
}

func (s *httpChatService) Send(ctx context.Context, message string) (ChatReply, error) {
	requestID := uuid.New().String()

	body, err := s.buildRequest(message)
	if err != nil {
		return ChatReply{}, err
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/v1/chat", "application/json", body)
	if err != nil {
		return ChatReply{}, fmt.Errorf("send chat turn: %w", err)
	}

	return s.decodeReply(requestID, resp)
}

func (s *httpChatService) buildRequest(message string) (io.Reader, error) {
	payload, err := json.Marshal(chatRequest{
		Message:   message,
		SessionID: s.SessionID(),
		Mode:      "chat",
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func (s *httpChatService) decodeReply(requestID string, resp *http.Response) (ChatReply, error) {
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return ChatReply{}, err
	}

	var reply ChatReply
	if err := backend.DecodeJSON(resp, &reply); err != nil {
		return ChatReply{}, err
	}
	if reply.Sources == nil {
		reply.Sources = []string{}
	}
	return reply, nil
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ ChatService = (*httpChatService)(nil)
