// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reveal animates assistant messages line by line so the user
// perceives the assistant as typing.
//
// Each message has an explicit state machine (pending, revealing,
// complete) held in a registry keyed by message id. Cancellation removes
// the registry entry and stops its timer, which makes "cancel on
// conversation switch" one operation instead of cleanup scattered across
// call sites, and guarantees a stale tick can never write into a reused
// message id.
package reveal

import (
	"strings"
	"sync"
	"time"
)

// State is the reveal lifecycle of one message.
type State int

const (
	// StateUnknown is returned for ids not in the registry.
	StateUnknown State = iota

	// StatePending means the message is registered but not yet animating.
	StatePending

	// StateRevealing means lines are being exposed on the tick cadence.
	StateRevealing

	// StateComplete means every line is visible.
	StateComplete
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRevealing:
		return "revealing"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// defaultInterval is the fixed reveal cadence.
const defaultInterval = 200 * time.Millisecond

// LineFunc receives each newly revealed line. done is true on the tick
// that exposes the final line. Callbacks run on the scheduler's timer
// goroutine; implementations must be safe for that.
type LineFunc func(id, line string, index int, done bool)

// =============================================================================
// Scheduler
// =============================================================================

// Scheduler is the per-message reveal registry.
//
// # Description
//
// Begin splits a message into lines and exposes one additional line per
// tick. For a message of N lines exactly N ticks fire, in order. Starting
// a reveal for a new message never disturbs entries already complete.
//
// # Limitations
//
//   - Revealed content is transient presentation state; the message of
//     record lives in the conversation store.
type Scheduler struct {
	interval time.Duration
	onLine   LineFunc

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	state    State
	lines    []string
	revealed int
	timer    *time.Timer
}

// SchedulerConfig configures NewScheduler.
type SchedulerConfig struct {
	// Interval overrides the 200ms cadence. Tests use short intervals.
	Interval time.Duration

	// OnLine is invoked for every revealed line. Optional.
	OnLine LineFunc
}

// NewScheduler creates an empty Scheduler.
func NewScheduler(config SchedulerConfig) *Scheduler {
	interval := config.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		interval: interval,
		onLine:   config.OnLine,
		entries:  make(map[string]*entry),
	}
}

// splitLines preserves interior blank lines; a trailing newline does not
// produce a phantom empty line.
func splitLines(content string) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// Begin starts revealing a message.
//
// # Inputs
//
//   - id: Message id. Re-beginning an id cancels its previous entry.
//   - content: Full message text; split on newlines.
//
// The first line is exposed after one interval, not immediately. An empty
// message transitions straight to complete.
func (s *Scheduler) Begin(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok && old.timer != nil {
		old.timer.Stop()
	}

	e := &entry{
		state: StateRevealing,
		lines: splitLines(content),
	}
	if len(e.lines) == 0 {
		e.state = StateComplete
		s.entries[id] = e
		return
	}
	s.entries[id] = e
	e.timer = time.AfterFunc(s.interval, func() { s.tick(id, e) })
}

// tick exposes the next line of e, if e is still the registered entry.
func (s *Scheduler) tick(id string, e *entry) {
	s.mu.Lock()

	// The entry may have been cancelled or replaced between the timer
	// firing and this lock acquisition.
	if current, ok := s.entries[id]; !ok || current != e || e.state != StateRevealing {
		s.mu.Unlock()
		return
	}

	index := e.revealed
	line := e.lines[index]
	e.revealed++
	done := e.revealed == len(e.lines)
	if done {
		e.state = StateComplete
		e.timer = nil
	} else {
		e.timer = time.AfterFunc(s.interval, func() { s.tick(id, e) })
	}
	onLine := s.onLine
	s.mu.Unlock()

	if onLine != nil {
		onLine(id, line, index, done)
	}
}

// CompleteNow registers a message as fully revealed with no animation.
// Used for history loads, which never replay the typing effect.
func (s *Scheduler) CompleteNow(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok && old.timer != nil {
		old.timer.Stop()
	}

	lines := splitLines(content)
	s.entries[id] = &entry{
		state:    StateComplete,
		lines:    lines,
		revealed: len(lines),
	}
}

// Cancel stops a message's reveal and removes it from the registry. No
// further ticks fire for the id; re-registering the id starts clean.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, id)
	}
}

// CancelAll clears the whole registry. Called on conversation switch.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, id)
	}
}

// Lines returns the currently revealed lines for a message.
func (s *Scheduler) Lines(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	out := make([]string, e.revealed)
	copy(out, e.lines[:e.revealed])
	return out
}

// StateOf returns the message's reveal state, or StateUnknown.
func (s *Scheduler) StateOf(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return StateUnknown
	}
	return e.state
}
