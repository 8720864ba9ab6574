// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Chat loop plumbing: the runner that drives an interactive conversation,
// and the input readers it consumes.
//
// Architecture:
//
//	cmd_chat.go → ChatRunner → ChatService (chat_service.go)
//	                           InputReader (stdin abstraction)
//	                           reveal.Scheduler (typing animation)
//	                           conversation.Store (message record)
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/CounselAI/CounselDesk/pkg/conversation"
	"github.com/CounselAI/CounselDesk/pkg/reveal"
	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// =============================================================================
// InputReader
// =============================================================================

// InputReader abstracts user input so the runner can be unit tested with
// predetermined lines. ReadLine returns the trimmed line, or io.EOF when
// input is exhausted.
type InputReader interface {
	ReadLine() (string, error)
}

// StdinReader reads newline-terminated input from stdin. Used for piped
// input and as the non-TTY fallback.
type StdinReader struct {
	reader *bufio.Reader
}

// NewStdinReader creates a StdinReader wrapping os.Stdin.
func NewStdinReader() *StdinReader {
	return &StdinReader{reader: bufio.NewReader(os.Stdin)}
}

func (r *StdinReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// HistoryReader provides line editing and up/down history navigation via
// bubbletea. History is in-memory only; it does not survive the process.
type HistoryReader struct {
	history []string
	prompt  string
	limit   int
}

// NewInputReader returns a HistoryReader on a TTY and a StdinReader
// otherwise (piped input, CI).
func NewInputReader(prompt string) InputReader {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return NewStdinReader()
	}
	return &HistoryReader{prompt: prompt, limit: 50}
}

func (r *HistoryReader) ReadLine() (string, error) {
	ti := textinput.New()
	ti.Prompt = r.prompt
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 80

	program := tea.NewProgram(promptModel{
		input:     ti,
		history:   r.history,
		histIndex: -1,
	}, tea.WithOutput(os.Stderr))

	final, err := program.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(promptModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type from bubbletea: %T", final)
	}
	if m.eof {
		return "", io.EOF
	}

	line := strings.TrimSpace(m.input.Value())
	r.remember(line)
	return line, nil
}

func (r *HistoryReader) remember(line string) {
	if line == "" {
		return
	}
	if n := len(r.history); n > 0 && r.history[n-1] == line {
		return
	}
	r.history = append(r.history, line)
	if len(r.history) > r.limit {
		r.history = r.history[1:]
	}
}

// promptModel is the bubbletea model behind HistoryReader.
type promptModel struct {
	input     textinput.Model
	history   []string
	histIndex int
	draft     string
	eof       bool
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return m, tea.Quit

		case tea.KeyCtrlC:
			m.input.SetValue("")
			return m, tea.Quit

		case tea.KeyCtrlD:
			m.eof = true
			m.input.SetValue("")
			return m, tea.Quit

		case tea.KeyUp:
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex == -1 {
				m.draft = m.input.Value()
				m.histIndex = len(m.history) - 1
			} else if m.histIndex > 0 {
				m.histIndex--
			}
			m.input.SetValue(m.history[m.histIndex])
			m.input.CursorEnd()
			return m, nil

		case tea.KeyDown:
			if m.histIndex == -1 {
				return m, nil
			}
			if m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.input.SetValue(m.history[m.histIndex])
			} else {
				m.histIndex = -1
				m.input.SetValue(m.draft)
			}
			m.input.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	return m.input.View()
}

// MockInputReader returns predetermined lines for tests, then io.EOF.
type MockInputReader struct {
	Lines []string
	next  int
}

func (r *MockInputReader) ReadLine() (string, error) {
	if r.next >= len(r.Lines) {
		return "", io.EOF
	}
	line := r.Lines[r.next]
	r.next++
	return line, nil
}

// =============================================================================
// ChatRunner
// =============================================================================

// ChatRunner drives one interactive conversation.
//
// # Description
//
// The runner owns the read/send/reveal loop. Only one send is in flight
// at a time: input is not read again until the current turn completes,
// which gives in-order message append per conversation. Each turn
// captures the store epoch before dispatching so a reply landing after a
// conversation switch is dropped.
type ChatRunner struct {
	store     *conversation.Store
	chat      ChatService
	reader    InputReader
	scheduler *reveal.Scheduler
	out       io.Writer
	animate   bool

	lineDone chan struct{}
}

// ChatRunnerConfig holds dependencies for NewChatRunner.
type ChatRunnerConfig struct {
	Store  *conversation.Store
	Chat   ChatService
	Reader InputReader

	// Out receives all rendered output. Defaults to os.Stdout.
	Out io.Writer

	// Animate enables the line-by-line reveal. Off for piped output.
	Animate bool

	// RevealInterval overrides the reveal cadence. Tests use short
	// intervals; zero keeps the default.
	RevealInterval time.Duration
}

// NewChatRunner wires a runner.
func NewChatRunner(config ChatRunnerConfig) *ChatRunner {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	r := &ChatRunner{
		store:   config.Store,
		chat:    config.Chat,
		reader:  config.Reader,
		out:     out,
		animate: config.Animate,
	}
	r.scheduler = reveal.NewScheduler(reveal.SchedulerConfig{
		Interval: config.RevealInterval,
		OnLine:   r.onRevealLine,
	})
	return r
}

// isExitCommand recognizes the loop terminators.
func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

// Run executes the chat loop until exit, EOF, or context cancellation.
func (r *ChatRunner) Run(ctx context.Context) error {
	defer r.scheduler.CancelAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			continue
		}
		if isExitCommand(line) {
			return nil
		}

		r.handleTurn(ctx, line)
	}
}

// handleTurn sends one message and reveals the reply. Failures are
// reported and leave the conversation untouched so the user can retry.
func (r *ChatRunner) handleTurn(ctx context.Context, line string) {
	epoch := r.store.Epoch()

	ux.UserLine(r.out, line)

	spinner := ux.NewSpinner("thinking")
	if r.animate {
		spinner.Start()
	}
	reply, err := r.chat.Send(ctx, line)
	if r.animate {
		spinner.Stop()
	}
	if err != nil {
		ux.Error(err.Error())
		return
	}

	now := time.Now()
	userMsg := conversation.Message{
		ID:        uuid.New().String(),
		Role:      conversation.RoleUser,
		Content:   line,
		Timestamp: now,
	}
	assistantMsg := conversation.Message{
		ID:        uuid.New().String(),
		Role:      conversation.RoleAssistant,
		Content:   reply.Response,
		Timestamp: now,
	}

	if err := r.store.AppendExchange(epoch, userMsg, assistantMsg); err != nil {
		// The conversation changed under us; the reply no longer has a
		// home and is not displayed.
		return
	}

	r.reveal(assistantMsg)

	if len(reply.Sources) > 0 {
		ux.Muted("sources: " + strings.Join(reply.Sources, ", "))
	}
}

// reveal displays the assistant message, animated when enabled.
func (r *ChatRunner) reveal(msg conversation.Message) {
	if strings.TrimSpace(msg.Content) == "" {
		return
	}
	if !r.animate {
		for i, line := range strings.Split(strings.TrimRight(msg.Content, "\n"), "\n") {
			ux.AssistantLine(r.out, line, i)
		}
		fmt.Fprintln(r.out)
		return
	}

	r.lineDone = make(chan struct{})
	r.scheduler.Begin(msg.ID, msg.Content)
	<-r.lineDone
	fmt.Fprintln(r.out)
}

// onRevealLine is the scheduler callback printing each revealed line.
func (r *ChatRunner) onRevealLine(id, line string, index int, done bool) {
	ux.AssistantLine(r.out, line, index)
	if done && r.lineDone != nil {
		close(r.lineDone)
	}
}

// RegisterHistory marks loaded history messages as fully revealed so they
// never replay the typing animation.
func (r *ChatRunner) RegisterHistory(messages []conversation.Message) {
	for _, msg := range messages {
		if msg.Role == conversation.RoleAssistant {
			r.scheduler.CompleteNow(msg.ID, msg.Content)
		}
	}
}
