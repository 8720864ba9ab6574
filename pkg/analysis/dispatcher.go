// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analysis dispatches document-analysis requests and normalizes
// the backend's heterogeneous responses into one canonical Result.
//
// Seven modes exist (summarize, extract-text, clauses, risk, chronology,
// classify, chat), each mapped to its own endpoint and parameter record
// through a single dispatch table, so there is exactly one place where a
// mode's wire behavior is defined.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/CounselAI/CounselDesk/pkg/backend"
)

// Sentinel errors for client-side validation. These are raised before any
// network traffic.
var (
	// ErrUnknownMode indicates a mode name outside the dispatch table.
	ErrUnknownMode = errors.New("unknown analysis mode")

	// ErrNoFiles indicates a mode that requires an upload got none.
	ErrNoFiles = errors.New("at least one document is required for this mode")

	// ErrInvalidDate indicates a missing or malformed chronology date.
	ErrInvalidDate = errors.New("invalid document date")
)

// File is one uploaded document.
type File struct {
	Name    string
	Content []byte
}

// =============================================================================
// Dispatcher
// =============================================================================

// Dispatcher issues analysis requests to the analysis service.
//
// # Description
//
// Given a mode, a file set, and parameters, the dispatcher resolves the
// mode's spec from the dispatch table, validates preconditions, builds a
// single multipart request (files travel directly to the mode's endpoint,
// there is no separate upload phase), and returns the raw response for
// normalization.
//
// # Limitations
//
//   - No automatic retry. The transport's fixed timeout bounds each
//     request; on expiry the operation is reported as failed.
type Dispatcher struct {
	client  backend.HTTPClient
	baseURL string
	logger  *slog.Logger
}

// DispatcherConfig holds dependencies for NewDispatcher.
type DispatcherConfig struct {
	// Client is the backend transport. Required.
	Client backend.HTTPClient

	// AnalysisBaseURL is the analysis service base URL. Required.
	AnalysisBaseURL string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client:  config.Client,
		baseURL: config.AnalysisBaseURL,
		logger:  logger,
	}
}

// Dispatch validates and issues one analysis request.
//
// # Inputs
//
//   - ctx: Cancellation and deadline control.
//   - mode: One of the seven analysis modes.
//   - files: Uploaded documents. Required for every mode except chat.
//   - params: Mode-specific parameters; irrelevant fields are ignored.
//
// # Outputs
//
//   - json.RawMessage: The raw backend payload, shape unknown at this
//     layer. Feed it to Normalize.
//   - error: Validation errors (ErrNoFiles, ErrInvalidDate, ...) before
//     any network call, or transport errors after.
func (d *Dispatcher) Dispatch(ctx context.Context, mode Mode, files []File, params Params) (json.RawMessage, error) {
	spec, ok := modeSpecs[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if spec.requiresFiles && len(files) == 0 {
		return nil, ErrNoFiles
	}
	if spec.validateParams != nil {
		if err := spec.validateParams(params); err != nil {
			return nil, err
		}
	}

	body, contentType, err := buildMultipart(files, spec.formFields(params))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.New().String()
	url := d.baseURL + spec.path

	d.logger.Info("dispatching analysis",
		"request_id", requestID,
		"mode", string(mode),
		"file_count", len(files),
	)

	resp, err := d.client.Post(ctx, url, contentType, body)
	if err != nil {
		d.logger.Error("analysis dispatch failed",
			"request_id", requestID,
			"mode", string(mode),
			"error", err,
		)
		return nil, fmt.Errorf("dispatch %s: %w", mode, err)
	}
	if err := backend.CheckStatus(requestID, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	raw, err := backend.ReadAll(resp)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// buildMultipart assembles the files and form fields into one multipart
// body. Files go under the repeated "files" part keyed by filename.
func buildMultipart(files []File, fields map[string]string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("add file %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write file %s: %w", f.Name, err)
		}
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("add field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}
