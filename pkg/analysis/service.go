// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStaleResult indicates the upload set or conversation changed while
// the request was in flight; the arrived result was discarded.
var ErrStaleResult = errors.New("analysis inputs changed while request was in flight")

// =============================================================================
// Service
// =============================================================================

// Service ties dispatch and normalization together and holds the current
// Result.
//
// # Description
//
// Each Analyze call captures a generation number before dispatching. When
// the inputs change mid-flight (user swaps the upload set or switches
// conversations, signalled via Invalidate) the generation advances and the
// late result is discarded instead of being applied to whatever is active
// when it arrives.
//
// Document-chat turns append to the current Result's ChatHistory; every
// other mode supersedes the Result wholesale.
type Service struct {
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu         sync.Mutex
	generation uint64
	current    Result
	hasResult  bool
}

// ServiceConfig holds dependencies for NewService.
type ServiceConfig struct {
	// Dispatcher issues the requests. Required.
	Dispatcher *Dispatcher

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewService creates a Service with an empty result.
func NewService(config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dispatcher: config.Dispatcher,
		logger:     logger,
		current:    NewResult(),
	}
}

// Analyze runs one analysis and records its normalized result.
//
// # Outputs
//
//   - Result: The normalized result as applied. For chat mode this is the
//     accumulated result including prior history.
//   - error: Validation or transport failure, or ErrStaleResult when the
//     inputs changed mid-flight. On any error the previous result stands.
func (s *Service) Analyze(ctx context.Context, mode Mode, files []File, params Params) (Result, error) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	raw, err := s.dispatcher.Dispatch(ctx, mode, files, params)
	if err != nil {
		return Result{}, err
	}

	result := Normalize(mode, raw)

	// Cite the uploaded documents when the backend does not.
	if len(result.Sources) == 0 {
		for _, f := range files {
			result.Sources = append(result.Sources, SourceRef{FileName: f.Name})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Warn("discarding stale analysis result",
			"mode", string(mode),
			"request_generation", gen,
			"current_generation", s.generation,
		)
		return Result{}, ErrStaleResult
	}

	if mode == ModeChat && s.hasResult {
		s.current.ChatHistory = append(s.current.ChatHistory,
			ChatTurn{Role: "user", Content: params.Question})
		s.current.ChatHistory = append(s.current.ChatHistory, result.ChatHistory...)
		if result.Analysis != "" {
			s.current.Analysis = result.Analysis
		}
	} else {
		if mode == ModeChat {
			result.ChatHistory = append([]ChatTurn{
				{Role: "user", Content: params.Question},
			}, result.ChatHistory...)
		}
		s.current = result
	}
	s.hasResult = true

	return s.current, nil
}

// Invalidate marks the in-flight inputs stale. Called when the upload set
// changes or the user switches conversations; any result dispatched before
// this call is discarded on arrival. The recorded result is also reset.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.current = NewResult()
	s.hasResult = false
}

// Current returns the most recently applied Result.
func (s *Service) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
