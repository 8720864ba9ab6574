// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"time"
	"unicode/utf8"
)

// Role identifies the author of a Message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"

	// RoleAssistant marks a backend-produced reply.
	RoleAssistant Role = "assistant"
)

// Conversation is a summary row in the conversation list.
//
// The ID doubles as the backend session id that scopes the thread's
// server-side context. Title and LastMessagePreview are mutated once, after
// the first exchange.
type Conversation struct {
	ID                 string
	Title              string
	LastMessagePreview string
	CreatedAt          time.Time
}

// Message is one turn inside a Conversation.
//
// Messages are appended, never mutated. Incremental reveal state lives in
// pkg/reveal, not here.
type Message struct {
	ID          string
	Role        Role
	Content     string
	Timestamp   time.Time
	Attachments []string
}

// titleRuneLimit bounds the derived conversation title.
const titleRuneLimit = 40

// deriveTitle truncates the first user message into a list title.
func deriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= titleRuneLimit {
		return content
	}
	runes := []rune(content)
	return string(runes[:titleRuneLimit]) + "..."
}
