// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CounselAI/CounselDesk/pkg/analysis"
	"github.com/CounselAI/CounselDesk/pkg/conversation"
)

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, HeaderConfig{
		Title:        "Lease questions",
		SessionID:    "abcdef123456",
		MessageCount: 4,
	})

	out := buf.String()
	assert.Contains(t, out, "Lease questions")
	assert.Contains(t, out, "abcdef12")
	assert.NotContains(t, out, "abcdef123456", "session id is truncated")
	assert.Contains(t, out, "4 earlier messages loaded")
	assert.Contains(t, out, "exit")
}

func TestHeader_Defaults(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, HeaderConfig{})

	out := buf.String()
	assert.Contains(t, out, "New conversation")
	assert.NotContains(t, out, "earlier messages")
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	History(&buf, []conversation.Message{
		{Role: conversation.RoleUser, Content: "is the deposit refundable?"},
		{Role: conversation.RoleAssistant, Content: "Yes, under clause 12.\nWithin 30 days."},
	})

	out := buf.String()
	assert.Contains(t, out, "is the deposit refundable?")
	assert.Contains(t, out, "Yes, under clause 12.")
	assert.Contains(t, out, "Within 30 days.")
}

func TestRenderResult_Sections(t *testing.T) {
	result := analysis.NewResult()
	result.Summary = "A five-year commercial lease."
	result.KeyPoints = []string{"Five-year term", "Deposit of two months rent"}
	result.Risks = []analysis.RiskFinding{
		{Type: "Liability", Severity: "High", Description: "Uncapped indemnity.", Recommendation: "Negotiate a cap."},
	}
	result.Sources = []analysis.SourceRef{{FileName: "lease.pdf", Page: 3}}
	result.Usage = analysis.UsageStats{TokensUsed: 900, ProcessingTimeMs: 1200}

	var buf bytes.Buffer
	RenderResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "A five-year commercial lease.")
	assert.Contains(t, out, "Five-year term")
	assert.Contains(t, out, "Liability")
	assert.Contains(t, out, "Negotiate a cap.")
	assert.Contains(t, out, "lease.pdf, p.3")
	assert.Contains(t, out, "tokens: 900")
}

func TestRenderResult_EmptySectionsSkipped(t *testing.T) {
	result := analysis.NewResult()
	result.Analysis = "Only free-form analysis."

	var buf bytes.Buffer
	RenderResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Only free-form analysis.")
	for _, absent := range []string{"Summary", "Risks", "Clauses", "Chronology", "Classification", "Sources"} {
		assert.NotContains(t, out, absent)
	}
}

func TestRenderResult_Chronology(t *testing.T) {
	result := analysis.NewResult()
	result.Events = []analysis.ChronologyEvent{
		{Description: "Lease signed", ConfidenceScore: 0.9, DateExpressions: []string{"1 March 2024"}},
	}

	var buf bytes.Buffer
	RenderResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Chronology")
	assert.Contains(t, out, "Lease signed")
	assert.Contains(t, out, "1 March 2024")
	assert.Contains(t, out, "90%")
}

func TestRenderResult_DocumentChat(t *testing.T) {
	result := analysis.NewResult()
	result.ChatHistory = []analysis.ChatTurn{
		{Role: "user", Content: "How long is the term?"},
		{Role: "assistant", Content: "Five years."},
	}

	var buf bytes.Buffer
	RenderResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Document Chat")
	assert.Contains(t, out, "How long is the term?")
	assert.Contains(t, out, "Five years.")
}

func TestAssistantLine_ContinuationIndent(t *testing.T) {
	var buf bytes.Buffer
	AssistantLine(&buf, "first", 0)
	AssistantLine(&buf, "second", 1)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "counsel")
	assert.True(t, strings.HasPrefix(lines[1], "         "), "continuation lines are indented")
}
