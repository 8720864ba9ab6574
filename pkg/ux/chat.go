// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CounselAI/CounselDesk/pkg/analysis"
	"github.com/CounselAI/CounselDesk/pkg/conversation"
)

// HeaderConfig groups the optional fields of the chat header so new
// fields can be added without breaking callers.
//
// # Fields
//
//   - Title: Conversation title. Empty for a fresh conversation.
//   - SessionID: Active session identifier, shown truncated.
//   - MessageCount: Number of messages loaded from history.
type HeaderConfig struct {
	Title        string
	SessionID    string
	MessageCount int
}

// Header prints the chat banner.
func Header(w io.Writer, config HeaderConfig) {
	title := config.Title
	if title == "" {
		title = "New conversation"
	}
	fmt.Fprintln(w, Styles.Title.Render("CounselDesk — "+title))
	if config.SessionID != "" {
		fmt.Fprintln(w, Styles.Muted.Render("session "+truncateID(config.SessionID)))
	}
	if config.MessageCount > 0 {
		fmt.Fprintln(w, Styles.Muted.Render(fmt.Sprintf("%d earlier messages loaded", config.MessageCount)))
	}
	fmt.Fprintln(w, Styles.Muted.Render(`Type "exit" or "quit" to end the conversation.`))
	fmt.Fprintln(w)
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}

// UserLine prints a user message with its role label.
func UserLine(w io.Writer, content string) {
	fmt.Fprintf(w, "%s %s\n", Styles.UserLabel.Render("you ›"), content)
}

// AssistantLabel returns the styled assistant prefix for reveal output.
func AssistantLabel() string {
	return Styles.AssistantLabel.Render("counsel ›")
}

// AssistantLine prints one revealed line of an assistant message. The
// first line carries the role label; continuation lines are indented
// under it.
func AssistantLine(w io.Writer, line string, index int) {
	if index == 0 {
		fmt.Fprintf(w, "%s %s\n", AssistantLabel(), line)
		return
	}
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", 9), line)
}

// History prints previously persisted messages without animation.
func History(w io.Writer, messages []conversation.Message) {
	for _, msg := range messages {
		switch msg.Role {
		case conversation.RoleUser:
			UserLine(w, msg.Content)
		case conversation.RoleAssistant:
			for i, line := range strings.Split(msg.Content, "\n") {
				AssistantLine(w, line, i)
			}
		}
	}
	if len(messages) > 0 {
		fmt.Fprintln(w)
	}
}

// =============================================================================
// Analysis Result Rendering
// =============================================================================

// RenderResult prints a normalized analysis result section by section.
// Empty sections are skipped; the canonical shape guarantees no nil
// checks are needed.
func RenderResult(w io.Writer, result analysis.Result) {
	if result.Summary != "" {
		section(w, "Summary")
		fmt.Fprintln(w, result.Summary)
	}

	if len(result.KeyPoints) > 0 {
		section(w, "Key Points")
		for _, point := range result.KeyPoints {
			fmt.Fprintf(w, "  %s %s\n", IconBullet, point)
		}
	}

	if result.Analysis != "" && result.Analysis != result.Summary {
		section(w, "Analysis")
		fmt.Fprintln(w, result.Analysis)
	}

	if len(result.Clauses) > 0 {
		section(w, "Clauses")
		for _, clause := range result.Clauses {
			fmt.Fprintf(w, "  %s %s [%s]", IconBullet,
				Styles.Bold.Render(clause.Type), riskStyle(clause.RiskLevel).Render(clause.RiskLevel))
			if clause.Page > 0 {
				fmt.Fprintf(w, " (p.%d)", clause.Page)
			}
			fmt.Fprintf(w, "\n    %s\n", clause.Text)
		}
	}

	if len(result.Risks) > 0 {
		section(w, "Risks")
		for _, risk := range result.Risks {
			fmt.Fprintf(w, "  %s %s — %s\n", IconBullet,
				Styles.Bold.Render(risk.Type), riskStyle(risk.Severity).Render(risk.Severity))
			fmt.Fprintf(w, "    %s\n", risk.Description)
			if risk.Recommendation != "" {
				fmt.Fprintf(w, "    %s %s\n", IconArrow, risk.Recommendation)
			}
		}
	}

	if len(result.Events) > 0 {
		section(w, "Chronology")
		for _, event := range result.Events {
			fmt.Fprintf(w, "  %s %s", IconBullet, event.Description)
			if len(event.DateExpressions) > 0 {
				fmt.Fprintf(w, " %s", Styles.Muted.Render("("+strings.Join(event.DateExpressions, "; ")+")"))
			}
			if event.ConfidenceScore > 0 {
				fmt.Fprintf(w, " %s", Styles.Muted.Render(fmt.Sprintf("[%.0f%%]", event.ConfidenceScore*100)))
			}
			fmt.Fprintln(w)
		}
	}

	if result.Classification != (analysis.Classification{}) {
		section(w, "Classification")
		fmt.Fprintf(w, "  type: %s\n", result.Classification.DocumentType)
		if result.Classification.Importance != "" {
			fmt.Fprintf(w, "  importance: %s\n", result.Classification.Importance)
		}
		if result.Classification.Subject != "" {
			fmt.Fprintf(w, "  subject: %s\n", result.Classification.Subject)
		}
	}

	if len(result.ChatHistory) > 0 {
		section(w, "Document Chat")
		for _, turn := range result.ChatHistory {
			label := Styles.UserLabel.Render("you ›")
			if turn.Role == "assistant" {
				label = AssistantLabel()
			}
			fmt.Fprintf(w, "%s %s\n", label, turn.Content)
		}
	}

	if len(result.Sources) > 0 {
		section(w, "Sources")
		for _, src := range result.Sources {
			if src.Page > 0 {
				fmt.Fprintf(w, "  %s %s, p.%d\n", IconScale, src.FileName, src.Page)
			} else {
				fmt.Fprintf(w, "  %s %s\n", IconScale, src.FileName)
			}
		}
	}

	if result.Usage.TokensUsed > 0 || result.Usage.ProcessingTimeMs > 0 {
		fmt.Fprintln(w, Styles.Muted.Render(fmt.Sprintf("tokens: %d, time: %dms",
			result.Usage.TokensUsed, result.Usage.ProcessingTimeMs)))
	}
}

func section(w io.Writer, name string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Styles.Section.Render(name))
}

func riskStyle(level string) interface{ Render(...string) string } {
	switch strings.ToLower(level) {
	case "high", "critical":
		return Styles.Error
	case "medium":
		return Styles.Warning
	default:
		return Styles.Muted
	}
}

// PrintResult renders to stdout.
func PrintResult(result analysis.Result) {
	RenderResult(os.Stdout, result)
}
