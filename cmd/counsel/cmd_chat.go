// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CounselAI/CounselDesk/pkg/conversation"
	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// runChatCommand starts the interactive conversation loop.
func runChatCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newHTTPClient()
	sessions := newSessionManager(client)
	store := newConversationStore(client, sessions)

	var (
		active   conversation.Conversation
		messages []conversation.Message
	)

	if resumeConversation != "" {
		if _, err := store.List(ctx); err != nil {
			return err
		}
		loaded, err := store.Select(ctx, resumeConversation)
		if err != nil {
			return err
		}
		messages = loaded
		for _, c := range store.Cached() {
			if c.ID == resumeConversation {
				active = c
				break
			}
		}
	} else {
		created, err := store.Create(ctx)
		if err != nil {
			return err
		}
		active = created
	}

	interactive := ux.IsInteractive()

	runner := NewChatRunner(ChatRunnerConfig{
		Store:   store,
		Chat:    NewChatService(client, endpoints().ChatBaseURL, active.ID),
		Reader:  NewInputReader("you › "),
		Animate: interactive,
	})
	runner.RegisterHistory(messages)

	ux.Header(os.Stdout, ux.HeaderConfig{
		Title:        active.Title,
		SessionID:    active.ID,
		MessageCount: len(messages),
	})
	ux.History(os.Stdout, messages)

	return runner.Run(ctx)
}
