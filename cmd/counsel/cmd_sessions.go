// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// runListSessions prints the conversation list, newest first.
func runListSessions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client := newHTTPClient()
	store := newConversationStore(client, newSessionManager(client))

	conversations, err := store.List(ctx)
	if err != nil {
		return err
	}

	if len(conversations) == 0 {
		ux.Muted("no conversations yet")
		return nil
	}

	for _, conv := range conversations {
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s\n", ux.Styles.Bold.Render(conv.ID), title)
		if conv.LastMessagePreview != "" {
			ux.Muted("  " + conv.LastMessagePreview)
		}
	}
	return nil
}

// runDeleteSession deletes one conversation.
func runDeleteSession(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client := newHTTPClient()
	store := newConversationStore(client, newSessionManager(client))

	if err := store.Delete(ctx, args[0]); err != nil {
		return err
	}
	ux.Success("deleted " + args[0])
	return nil
}

// runClearSession forgets the locally persisted session token.
func runClearSession(cmd *cobra.Command, args []string) error {
	sessions := newSessionManager(newHTTPClient())
	if err := sessions.Clear(); err != nil {
		return err
	}
	ux.Success("session token cleared")
	return nil
}
