// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"encoding/json"
	"strings"
)

// FallbackText fills Result.Analysis when no extraction yields content, so
// the caller always has something to display.
const FallbackText = "The analysis completed but returned no readable content."

// rawEnvelope is the union of every field the seven backend shapes have
// been observed to carry. No single backend team owns a consistent
// response contract; this envelope plus Normalize is the one place where
// that inconsistency is absorbed.
type rawEnvelope struct {
	Analysis      json.RawMessage `json:"analysis"`
	Summary       json.RawMessage `json:"summary"`
	Summaries     []rawSummary    `json:"summaries"`
	KeyPoints     []string        `json:"key_points"`
	Text          string          `json:"text"`
	ExtractedText string          `json:"extracted_text"`

	Clauses []rawClause `json:"clauses"`
	Risks   []rawRisk   `json:"risks"`
	Events  []rawEvent  `json:"events"`

	Classification *rawClassification `json:"classification"`
	DocumentType   string             `json:"document_type"`
	Importance     string             `json:"importance"`
	Subject        string             `json:"subject"`

	Response         string      `json:"response"`
	AssistantMessage string      `json:"assistant_message"`
	Sources          []rawSource `json:"sources"`
	TokensUsed       int         `json:"tokens_used"`
	ProcessingTimeMs int         `json:"processing_time_ms"`
	AnalysisID       string      `json:"analysis_id"`
}

type rawSummary struct {
	Summary string `json:"summary"`
}

type rawClause struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	RiskLevel string `json:"risk_level"`
	Page      int    `json:"page"`
}

type rawRisk struct {
	Type           string `json:"type"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

type rawEvent struct {
	Description     string   `json:"description"`
	Type            string   `json:"type"`
	ConfidenceScore float64  `json:"confidence_score"`
	DateExpressions []string `json:"date_expressions"`
}

type rawClassification struct {
	DocumentType string `json:"document_type"`
	Importance   string `json:"importance"`
	Subject      string `json:"subject"`
}

type rawSource struct {
	FileName string `json:"file_name"`
	Page     int    `json:"page"`
}

// embeddedPayload is what a JSON-encoded string inside a text field tends
// to contain when a backend double-encodes its answer.
type embeddedPayload struct {
	Summary   string   `json:"summary"`
	Analysis  string   `json:"analysis"`
	KeyPoints []string `json:"key_points"`
}

// =============================================================================
// Normalize
// =============================================================================

// Normalize maps a raw backend response into the canonical Result.
//
// # Description
//
// Normalize is total: it never fails. Three steps run in order: (1)
// shape-specific field extraction for the mode, (2) a secondary parse that
// detects string values beginning with "{" and tries them as embedded
// JSON, keeping the raw string when the parse fails, (3) population of
// every canonical field, defaulting to empty collections and strings. A
// response with no recognizable content yields FallbackText instead of an
// empty result.
//
// # Inputs
//
//   - mode: The mode that produced the response.
//   - raw: The raw payload from Dispatch. May be malformed.
//
// # Outputs
//
//   - Result: Fully populated; all collections non-nil.
func Normalize(mode Mode, raw json.RawMessage) Result {
	result := NewResult()

	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Not JSON at all. Treat the body as free-form analysis text.
		if text := strings.TrimSpace(string(raw)); text != "" {
			result.Analysis = text
		}
		return finalize(result)
	}

	extractCommon(&result, env)

	switch mode {
	case ModeSummarize:
		extractSummary(&result, env)
	case ModeExtractText:
		if env.ExtractedText != "" {
			result.Analysis = env.ExtractedText
		} else if env.Text != "" {
			result.Analysis = env.Text
		}
	case ModeClauses:
		for _, c := range env.Clauses {
			result.Clauses = append(result.Clauses, ClauseFinding(c))
		}
	case ModeRisk:
		for _, r := range env.Risks {
			result.Risks = append(result.Risks, RiskFinding(r))
		}
	case ModeChronology:
		for _, e := range env.Events {
			result.Events = append(result.Events, ChronologyEvent{
				Description:     e.Description,
				Type:            e.Type,
				ConfidenceScore: e.ConfidenceScore,
				DateExpressions: orEmpty(e.DateExpressions),
			})
		}
	case ModeClassify:
		if env.Classification != nil {
			result.Classification = Classification(*env.Classification)
		} else {
			// Some responses carry the classification fields flat.
			result.Classification = Classification{
				DocumentType: env.DocumentType,
				Importance:   env.Importance,
				Subject:      env.Subject,
			}
		}
	case ModeChat:
		answer := env.Response
		if answer == "" {
			answer = env.AssistantMessage
		}
		answer = normalizeText(answer, &result)
		if answer != "" {
			result.Analysis = answer
			result.ChatHistory = append(result.ChatHistory, ChatTurn{
				Role:    "assistant",
				Content: answer,
			})
		}
	}

	return finalize(result)
}

// extractCommon pulls the fields every shape may carry.
func extractCommon(result *Result, env rawEnvelope) {
	if text := rawToString(env.Analysis); text != "" {
		result.Analysis = normalizeText(text, result)
	}
	if len(env.KeyPoints) > 0 {
		result.KeyPoints = append(result.KeyPoints, env.KeyPoints...)
	}
	for _, s := range env.Sources {
		result.Sources = append(result.Sources, SourceRef(s))
	}
	result.Usage = UsageStats{
		TokensUsed:       env.TokensUsed,
		ProcessingTimeMs: env.ProcessingTimeMs,
	}
	result.AnalysisID = env.AnalysisID
}

// extractSummary handles the three summary shapes: a plain string, an
// array of {summary} objects, and a JSON-encoded string.
func extractSummary(result *Result, env rawEnvelope) {
	summary := rawToString(env.Summary)
	if summary == "" && len(env.Summaries) > 0 {
		summary = env.Summaries[0].Summary
	}
	if summary != "" {
		result.Summary = normalizeText(summary, result)
	}
}

// normalizeText applies the secondary embedded-JSON parse. A string
// beginning with "{" is tried as JSON; extracted fields are folded into
// result and the embedded summary/analysis becomes the returned text. On
// parse failure the raw string is returned unchanged.
func normalizeText(text string, result *Result) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return text
	}

	var embedded embeddedPayload
	if err := json.Unmarshal([]byte(trimmed), &embedded); err != nil {
		return text
	}

	if len(embedded.KeyPoints) > 0 {
		result.KeyPoints = append(result.KeyPoints, embedded.KeyPoints...)
	}
	if embedded.Summary != "" {
		result.Summary = embedded.Summary
	}
	if embedded.Analysis != "" {
		return embedded.Analysis
	}
	if embedded.Summary != "" {
		return embedded.Summary
	}
	// Valid JSON but nothing recognizable inside.
	return text
}

// rawToString decodes a field that may be a JSON string, or absent.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// A non-string value (object, array, number) is kept verbatim so the
	// secondary parse can have a go at it.
	return string(raw)
}

// finalize enforces the canonical-shape invariant and the no-content
// fallback.
func finalize(result Result) Result {
	result.KeyPoints = orEmpty(result.KeyPoints)
	result.Clauses = orEmptyClauses(result.Clauses)
	result.Risks = orEmptyRisks(result.Risks)
	result.Events = orEmptyEvents(result.Events)
	result.Sources = orEmptySources(result.Sources)
	result.ChatHistory = orEmptyTurns(result.ChatHistory)

	if !result.HasContent() {
		result.Analysis = FallbackText
	}
	return result
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyClauses(s []ClauseFinding) []ClauseFinding {
	if s == nil {
		return []ClauseFinding{}
	}
	return s
}

func orEmptyRisks(s []RiskFinding) []RiskFinding {
	if s == nil {
		return []RiskFinding{}
	}
	return s
}

func orEmptyEvents(s []ChronologyEvent) []ChronologyEvent {
	if s == nil {
		return []ChronologyEvent{}
	}
	return s
}

func orEmptySources(s []SourceRef) []SourceRef {
	if s == nil {
		return []SourceRef{}
	}
	return s
}

func orEmptyTurns(s []ChatTurn) []ChatTurn {
	if s == nil {
		return []ChatTurn{}
	}
	return s
}
