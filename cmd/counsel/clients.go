// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/CounselAI/CounselDesk/pkg/backend"
	"github.com/CounselAI/CounselDesk/pkg/conversation"
	"github.com/CounselAI/CounselDesk/pkg/session"
)

// endpoints resolves the configured service base URLs.
func endpoints() backend.Endpoints {
	return backend.Endpoints{
		ChatBaseURL:     cfg.Services.ChatURL,
		DraftBaseURL:    cfg.Services.DraftURL,
		AnalysisBaseURL: cfg.Services.AnalysisURL,
	}.Normalized()
}

// newHTTPClient builds the shared transport with the fixed timeout.
func newHTTPClient() backend.HTTPClient {
	return backend.NewHTTPClient(backend.ClientConfig{})
}

// newSessionManager wires the session manager to the persisted token file.
func newSessionManager(client backend.HTTPClient) *session.Manager {
	return session.NewManager(session.ManagerConfig{
		Client:      client,
		ChatBaseURL: endpoints().ChatBaseURL,
		Store:       session.NewFileTokenStore(cfg.Paths.SessionFile),
		Logger:      logger.Slog(),
	})
}

// newConversationStore wires the conversation store.
func newConversationStore(client backend.HTTPClient, sessions *session.Manager) *conversation.Store {
	return conversation.NewStore(conversation.StoreConfig{
		Client:      client,
		ChatBaseURL: endpoints().ChatBaseURL,
		Sessions:    sessions,
		Logger:      logger.Slog(),
	})
}
