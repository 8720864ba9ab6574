// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package draft generates legal documents through the drafting service
// and exports finished content as downloadable reports.
package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/CounselAI/CounselDesk/pkg/backend"
	"github.com/CounselAI/CounselDesk/pkg/session"
)

// ErrUnsupportedFormat indicates an export format outside txt/pdf/docx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

var validate = validator.New()

// Request describes the document to generate.
type Request struct {
	// DocType names the document kind (e.g. "nda", "lease").
	DocType string `json:"doc_type" validate:"required"`

	// Requirements is the user's free-text description of what the
	// document must cover.
	Requirements string `json:"requirements" validate:"required"`

	// SessionID is filled by Generate; callers leave it empty.
	SessionID string `json:"session_id,omitempty"`

	Jurisdictions     []string `json:"jurisdictions,omitempty"`
	Style             string   `json:"style,omitempty"`
	Length            string   `json:"length,omitempty"`
	Clauses           []string `json:"clauses,omitempty"`
	SpecialProvisions string   `json:"special_provisions,omitempty"`
}

// Document is a generated draft.
type Document struct {
	Document     string `json:"document"`
	DocumentType string `json:"document_type"`
}

// =============================================================================
// Service
// =============================================================================

// Service is the drafting client.
//
// Generation is session-scoped, so every Generate call goes through the
// session manager for a fresh token first.
type Service struct {
	client   backend.HTTPClient
	baseURL  string
	sessions *session.Manager
	logger   *slog.Logger
}

// ServiceConfig holds dependencies for NewService.
type ServiceConfig struct {
	// Client is the backend transport. Required.
	Client backend.HTTPClient

	// DraftBaseURL is the drafting service base URL. Required.
	DraftBaseURL string

	// Sessions mints the session each generation runs under. Required.
	Sessions *session.Manager

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewService creates a drafting Service.
func NewService(config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:   config.Client,
		baseURL:  config.DraftBaseURL,
		sessions: config.Sessions,
		logger:   logger,
	}
}

// Generate produces a draft document.
//
// # Inputs
//
//   - ctx: Cancellation and deadline control.
//   - req: Draft parameters. DocType and Requirements are required;
//     SessionID is overwritten with a freshly minted token.
//
// # Outputs
//
//   - Document: The generated draft and its reported type.
//   - error: Validation, session, or transport failure.
func (s *Service) Generate(ctx context.Context, req Request) (Document, error) {
	if err := validate.Struct(req); err != nil {
		return Document{}, fmt.Errorf("invalid draft request: %w", err)
	}

	token, err := s.sessions.Ensure(ctx)
	if err != nil {
		return Document{}, err
	}
	req.SessionID = token

	payload, err := json.Marshal(req)
	if err != nil {
		return Document{}, fmt.Errorf("encode draft request: %w", err)
	}

	requestID := uuid.New().String()
	s.logger.Info("generating draft", "request_id", requestID, "doc_type", req.DocType)

	resp, err := s.client.Post(ctx, s.baseURL+"/v1/draft", "application/json", bytes.NewReader(payload))
	if err != nil {
		return Document{}, fmt.Errorf("generate draft: %w", err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return Document{}, err
	}

	var doc Document
	if err := backend.DecodeJSON(resp, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// exportFormats are the report formats the drafting service renders.
var exportFormats = map[string]bool{"txt": true, "pdf": true, "docx": true}

// Export renders content as a downloadable report blob.
//
// The returned bytes are the finished file; writing it to disk is the
// caller's concern.
func (s *Service) Export(ctx context.Context, format, content string) ([]byte, error) {
	if !exportFormats[format] {
		return nil, fmt.Errorf("%w: %q (want txt, pdf, or docx)", ErrUnsupportedFormat, format)
	}

	payload, err := json.Marshal(map[string]string{
		"format":  format,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("encode export request: %w", err)
	}

	requestID := uuid.New().String()

	resp, err := s.client.Post(ctx, s.baseURL+"/v1/export", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return backend.ReadAll(resp)
}
