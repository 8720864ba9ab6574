// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package conversation maintains the ordered collection of conversation
// summaries and the active conversation's message history.
//
// The store is a client-side cache over backend state: the conversation
// list and per-conversation history are always re-fetched, never persisted.
// Any fetch failure leaves the store in its last-known-good state; a failed
// history fetch never overwrites the active messages with an empty list.
//
// # Staleness
//
// Switching the active conversation bumps an epoch counter. Results of
// operations started under an older epoch are rejected by AppendExchange,
// so a reply that arrives after the user moved on is discarded rather than
// written into the wrong thread.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CounselAI/CounselDesk/pkg/backend"
	"github.com/CounselAI/CounselDesk/pkg/session"
)

// Sentinel errors returned by Store operations.
var (
	// ErrNotFound indicates the conversation id is not in the list.
	ErrNotFound = errors.New("conversation not found")

	// ErrStaleEpoch indicates the result belongs to a superseded
	// conversation state and was discarded.
	ErrStaleEpoch = errors.New("conversation changed while request was in flight")
)

// =============================================================================
// Store
// =============================================================================

// Store owns the conversation list and the active conversation's messages.
//
// # Description
//
// All state is guarded by one mutex; network calls are made outside the
// lock so a slow backend cannot block reads. The conversation list is kept
// newest first.
//
// # Assumptions
//
//   - The chat service exposes:
//     GET    {base}/v1/sessions
//     GET    {base}/v1/sessions/{id}/messages
//     DELETE {base}/v1/sessions/{id}
type Store struct {
	client   backend.HTTPClient
	baseURL  string
	sessions *session.Manager
	logger   *slog.Logger

	mu            sync.Mutex
	conversations []Conversation
	activeID      string
	messages      []Message
	epoch         uint64
}

// StoreConfig holds dependencies for NewStore.
type StoreConfig struct {
	// Client is the backend transport. Required.
	Client backend.HTTPClient

	// ChatBaseURL is the chat service base URL. Required.
	ChatBaseURL string

	// Sessions mints the fresh backend session a new conversation needs.
	// Required.
	Sessions *session.Manager

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewStore creates an empty conversation Store.
func NewStore(config StoreConfig) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:   config.Client,
		baseURL:  config.ChatBaseURL,
		sessions: config.Sessions,
		logger:   logger,
	}
}

// =============================================================================
// Wire Shapes
// =============================================================================

type listResponse struct {
	Sessions []listRow `json:"sessions"`
}

type listRow struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
	Date    string `json:"date"`
}

type messagesResponse struct {
	Messages []messageRow `json:"messages"`
}

type messageRow struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// parseBackendTime accepts the timestamp formats the chat service has been
// observed to emit. Unparseable values map to the zero time rather than an
// error; ordering comes from the backend's row order, not the timestamp.
func parseBackendTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// List / Create / Select / Delete
// =============================================================================

// List fetches the user's conversations, newest first, and caches them.
//
// On failure the cached last-known-good list is returned alongside the
// error so callers can keep rendering while reporting the problem.
func (s *Store) List(ctx context.Context) ([]Conversation, error) {
	requestID := uuid.New().String()

	resp, err := s.client.Get(ctx, s.baseURL+"/v1/sessions")
	if err != nil {
		return s.Cached(), fmt.Errorf("list conversations: %w", err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return s.Cached(), err
	}

	var list listResponse
	if err := backend.DecodeJSON(resp, &list); err != nil {
		return s.Cached(), err
	}

	conversations := make([]Conversation, 0, len(list.Sessions))
	for _, row := range list.Sessions {
		conversations = append(conversations, Conversation{
			ID:                 row.ID,
			Title:              deriveTitle(row.Preview),
			LastMessagePreview: row.Preview,
			CreatedAt:          parseBackendTime(row.Date),
		})
	}

	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()

	return conversations, nil
}

// Create starts a new conversation and makes it active.
//
// # Description
//
// A new conversation requires a fresh backend session, so Create goes
// through the session manager implicitly. The new record starts untitled
// with an empty message list and is placed at the head of the list.
func (s *Store) Create(ctx context.Context) (Conversation, error) {
	token, err := s.sessions.Ensure(ctx)
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	conv := Conversation{
		ID:        token,
		Title:     "New conversation",
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.conversations = append([]Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.messages = nil
	s.epoch++
	s.mu.Unlock()

	s.logger.Info("conversation created", "conversation_id", conv.ID)
	return conv, nil
}

// Select makes the given conversation active and fetches its history.
//
// The epoch is bumped before the fetch so in-flight replies for the
// previous conversation are discarded on arrival.
func (s *Store) Select(ctx context.Context, id string) ([]Message, error) {
	s.mu.Lock()
	found := false
	for _, c := range s.conversations {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.activeID = id
	s.epoch++
	s.mu.Unlock()

	return s.LoadMessages(ctx, id)
}

// Delete removes a conversation locally and on the backend.
//
// # Description
//
// When the deleted conversation was active, the successor rule applies:
// the next most-recent remaining conversation is selected; when none
// remain, exactly one fresh conversation is created.
func (s *Store) Delete(ctx context.Context, id string) error {
	requestID := uuid.New().String()

	resp, err := s.client.Delete(ctx, s.baseURL+"/v1/sessions/"+id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return err
	}
	resp.Body.Close()

	s.mu.Lock()
	wasActive := s.activeID == id
	remaining := s.conversations[:0:0]
	for _, c := range s.conversations {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	s.conversations = remaining
	if wasActive {
		s.activeID = ""
		s.messages = nil
		s.epoch++
	}
	successor := ""
	if wasActive && len(remaining) > 0 {
		successor = remaining[0].ID
	}
	needFresh := wasActive && len(remaining) == 0
	s.mu.Unlock()

	s.logger.Info("conversation deleted", "conversation_id", id, "was_active", wasActive)

	if successor != "" {
		if _, err := s.Select(ctx, successor); err != nil {
			return err
		}
		return nil
	}
	if needFresh {
		if _, err := s.Create(ctx); err != nil {
			return err
		}
	}
	return nil
}

// LoadMessages fetches a conversation's history.
//
// On failure the active message list is left untouched; the store never
// replaces known-good messages with an empty list because a fetch failed.
func (s *Store) LoadMessages(ctx context.Context, id string) ([]Message, error) {
	requestID := uuid.New().String()

	resp, err := s.client.Get(ctx, s.baseURL+"/v1/sessions/"+id+"/messages")
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	var history messagesResponse
	if err := backend.DecodeJSON(resp, &history); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(history.Messages))
	for _, row := range history.Messages {
		messages = append(messages, Message{
			ID:        uuid.New().String(),
			Role:      Role(row.Role),
			Content:   row.Content,
			Timestamp: parseBackendTime(row.Timestamp),
		})
	}

	s.mu.Lock()
	if s.activeID == id {
		s.messages = messages
	}
	s.mu.Unlock()

	return messages, nil
}

// =============================================================================
// Exchange Append
// =============================================================================

// AppendExchange records one user/assistant turn in the active
// conversation.
//
// # Inputs
//
//   - epoch: The store epoch captured when the producing request was
//     dispatched. A mismatch means the user switched or reset the
//     conversation meanwhile; the exchange is discarded.
//   - userMsg, assistantMsg: The completed turn.
//
// # Outputs
//
//   - error: ErrStaleEpoch when discarded; nil when recorded.
func (s *Store) AppendExchange(epoch uint64, userMsg, assistantMsg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.logger.Warn("discarding stale exchange",
			"request_epoch", epoch,
			"current_epoch", s.epoch,
		)
		return ErrStaleEpoch
	}

	firstExchange := len(s.messages) == 0
	s.messages = append(s.messages, userMsg, assistantMsg)

	for i := range s.conversations {
		if s.conversations[i].ID != s.activeID {
			continue
		}
		if firstExchange {
			s.conversations[i].Title = deriveTitle(userMsg.Content)
		}
		s.conversations[i].LastMessagePreview = deriveTitle(assistantMsg.Content)
		break
	}
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// Cached returns a copy of the last-known-good conversation list.
func (s *Store) Cached() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// ActiveID returns the active conversation id, or "".
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Messages returns a copy of the active conversation's messages.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Epoch returns the current epoch. Callers capture it before dispatching a
// request and hand it back to AppendExchange with the result.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}
