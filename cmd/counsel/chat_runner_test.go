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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/CounselAI/CounselDesk/pkg/conversation"
	"github.com/CounselAI/CounselDesk/pkg/session"
)

// mockChatService implements ChatService for testing.
type mockChatService struct {
	SendFunc func(ctx context.Context, message string) (ChatReply, error)
	sent     []string
}

func (m *mockChatService) Send(ctx context.Context, message string) (ChatReply, error) {
	m.sent = append(m.sent, message)
	return m.SendFunc(ctx, message)
}

func (m *mockChatService) SessionID() string { return "test-session" }

// mockTransport implements backend.HTTPClient; only session mint is used.
type mockTransport struct{}

func (mockTransport) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(`{"session_id":"fresh"}`)),
		Header:     http.Header{},
	}, nil
}

func (mockTransport) Get(ctx context.Context, url string) (*http.Response, error) {
	return nil, errors.New("unexpected GET")
}

func (mockTransport) Delete(ctx context.Context, url string) (*http.Response, error) {
	return nil, errors.New("unexpected DELETE")
}

func newRunnerFixture(t *testing.T, chat ChatService, lines ...string) (*ChatRunner, *conversation.Store, *bytes.Buffer) {
	t.Helper()

	client := mockTransport{}
	sessions := session.NewManager(session.ManagerConfig{
		Client:      client,
		ChatBaseURL: "http://localhost:9301",
	})
	store := conversation.NewStore(conversation.StoreConfig{
		Client:      client,
		ChatBaseURL: "http://localhost:9301",
		Sessions:    sessions,
	})

	out := &bytes.Buffer{}
	runner := NewChatRunner(ChatRunnerConfig{
		Store:  store,
		Chat:   chat,
		Reader: &MockInputReader{Lines: lines},
		Out:    out,
	})
	return runner, store, out
}

// =============================================================================
// Exit Handling
// =============================================================================

func TestIsExitCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"exit", true},
		{"quit", true},
		{"EXIT", true},
		{"q", true},
		{"exits", false},
		{"hello", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isExitCommand(tt.input); got != tt.want {
				t.Errorf("isExitCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestChatRunner_ExitsOnExitCommand(t *testing.T) {
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			return ChatReply{Response: "should never happen"}, nil
		},
	}
	runner, _, _ := newRunnerFixture(t, chat, "exit")

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(chat.sent) != 0 {
		t.Errorf("exit must not be sent to the backend, got %v", chat.sent)
	}
}

func TestChatRunner_ExitsOnEOF(t *testing.T) {
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			return ChatReply{Response: "ok"}, nil
		},
	}
	runner, _, _ := newRunnerFixture(t, chat) // no lines: immediate EOF

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

// =============================================================================
// Turn Handling
// =============================================================================

func TestChatRunner_RecordsExchange(t *testing.T) {
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			return ChatReply{Response: "The notice period is 30 days.", Sources: []string{"lease.pdf"}}, nil
		},
	}
	runner, store, out := newRunnerFixture(t, chat, "what is the notice period?", "exit")

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msgs := store.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != conversation.RoleUser || msgs[0].Content != "what is the notice period?" {
		t.Errorf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != conversation.RoleAssistant || msgs[1].Content != "The notice period is 30 days." {
		t.Errorf("unexpected assistant message: %+v", msgs[1])
	}
	if !strings.Contains(out.String(), "The notice period is 30 days.") {
		t.Errorf("reply missing from output: %q", out.String())
	}
}

func TestChatRunner_EmptyLinesSkipped(t *testing.T) {
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			return ChatReply{Response: "ok"}, nil
		},
	}
	runner, _, _ := newRunnerFixture(t, chat, "", "", "exit")

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(chat.sent) != 0 {
		t.Errorf("empty lines must not be dispatched, got %v", chat.sent)
	}
}

func TestChatRunner_SendFailureLeavesStateAndContinues(t *testing.T) {
	call := 0
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			call++
			if call == 1 {
				return ChatReply{}, errors.New("backend timeout")
			}
			return ChatReply{Response: "second answer"}, nil
		},
	}
	runner, store, out := newRunnerFixture(t, chat, "first question", "second question", "exit")

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msgs := store.Messages()
	if len(msgs) != 2 {
		t.Fatalf("failed turn must not be recorded; got %d messages", len(msgs))
	}
	if msgs[0].Content != "second question" {
		t.Errorf("expected only the successful turn, got %+v", msgs[0])
	}
	if !strings.Contains(out.String(), "second answer") {
		t.Errorf("second reply missing from output")
	}
}

func TestChatRunner_StaleReplyDropped(t *testing.T) {
	var store *conversation.Store
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			// A new conversation is created while the reply is in flight.
			if _, err := store.Create(context.Background()); err != nil {
				return ChatReply{}, fmt.Errorf("fixture create: %w", err)
			}
			return ChatReply{Response: "stale reply"}, nil
		},
	}

	runner, s, out := newRunnerFixture(t, chat, "question", "exit")
	store = s

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(store.Messages()) != 0 {
		t.Errorf("stale exchange must be discarded, got %v", store.Messages())
	}
	if strings.Contains(out.String(), "stale reply") {
		t.Errorf("stale reply must not be displayed")
	}
}

func TestChatRunner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			return ChatReply{Response: "ok"}, nil
		},
	}
	runner, _, _ := newRunnerFixture(t, chat, "hello", "exit")

	err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// =============================================================================
// Reveal Integration
// =============================================================================

func TestChatRunner_AnimatedRevealPrintsEveryLine(t *testing.T) {
	chat := &mockChatService{
		SendFunc: func(ctx context.Context, message string) (ChatReply, error) {
			return ChatReply{Response: "line one\nline two\nline three"}, nil
		},
	}

	client := mockTransport{}
	sessions := session.NewManager(session.ManagerConfig{Client: client, ChatBaseURL: "http://x"})
	store := conversation.NewStore(conversation.StoreConfig{Client: client, ChatBaseURL: "http://x", Sessions: sessions})

	out := &bytes.Buffer{}
	runner := NewChatRunner(ChatRunnerConfig{
		Store:          store,
		Chat:           chat,
		Reader:         &MockInputReader{Lines: []string{"go", "exit"}},
		Out:            out,
		Animate:        true,
		RevealInterval: time.Millisecond,
	})

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, want := range []string{"line one", "line two", "line three"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing revealed line %q", want)
		}
	}
}

// =============================================================================
// Input Readers
// =============================================================================

func TestMockInputReader(t *testing.T) {
	reader := &MockInputReader{Lines: []string{"a", "b"}}

	for _, want := range []string{"a", "b"} {
		got, err := reader.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine = %q, want %q", got, want)
		}
	}

	if _, err := reader.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted reader should return io.EOF, got %v", err)
	}
}

func TestHistoryReader_Remember(t *testing.T) {
	r := &HistoryReader{limit: 3}

	r.remember("one")
	r.remember("one") // duplicate of latest, skipped
	r.remember("")    // empty, skipped
	r.remember("two")
	r.remember("three")
	r.remember("four") // pushes "one" out

	want := []string{"two", "three", "four"}
	if len(r.history) != len(want) {
		t.Fatalf("history length = %d, want %d", len(r.history), len(want))
	}
	for i := range want {
		if r.history[i] != want[i] {
			t.Errorf("history[%d] = %q, want %q", i, r.history[i], want[i])
		}
	}
}
