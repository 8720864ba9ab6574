// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireCanonical asserts the no-nil-collections invariant that keeps
// rendering code shape-agnostic.
func requireCanonical(t *testing.T, r Result) {
	t.Helper()
	require.NotNil(t, r.KeyPoints)
	require.NotNil(t, r.Clauses)
	require.NotNil(t, r.Risks)
	require.NotNil(t, r.Events)
	require.NotNil(t, r.Sources)
	require.NotNil(t, r.ChatHistory)
}

// =============================================================================
// Totality Tests
// =============================================================================

func TestNormalize_IsTotal(t *testing.T) {
	payloads := map[string]string{
		"empty object":     `{}`,
		"null":             `null`,
		"empty string":     ``,
		"not json":         `<html>gateway error</html>`,
		"array":            `[1,2,3]`,
		"wrong types":      `{"summary": 42, "risks": "none"}`,
		"deeply irregular": `{"summary": {"nested": {"deeper": true}}}`,
	}

	for name, payload := range payloads {
		for _, mode := range Modes() {
			t.Run(name+"/"+string(mode), func(t *testing.T) {
				result := Normalize(mode, json.RawMessage(payload))
				requireCanonical(t, result)
				assert.True(t, result.HasContent() || result.Analysis == FallbackText)
			})
		}
	}
}

func TestNormalize_NoContentFallsBack(t *testing.T) {
	result := Normalize(ModeSummarize, json.RawMessage(`{}`))
	assert.Equal(t, FallbackText, result.Analysis)
	requireCanonical(t, result)
}

// =============================================================================
// Embedded JSON Tests
// =============================================================================

func TestNormalize_EmbeddedJSONInSummary(t *testing.T) {
	raw := json.RawMessage(`{"summary": "{\"summary\":\"x\",\"key_points\":[\"a\",\"b\"]}"}`)

	result := Normalize(ModeSummarize, raw)

	assert.Equal(t, "x", result.Summary)
	assert.Equal(t, []string{"a", "b"}, result.KeyPoints)
}

func TestNormalize_InvalidEmbeddedJSONKeptRaw(t *testing.T) {
	raw := json.RawMessage(`{"summary": "{not valid json at all"}`)

	result := Normalize(ModeSummarize, raw)

	assert.Equal(t, `{not valid json at all`, result.Summary, "parse failure falls back to the raw string")
}

func TestNormalize_EmbeddedJSONInAnalysis(t *testing.T) {
	raw := json.RawMessage(`{"analysis": "{\"analysis\":\"the real text\",\"key_points\":[\"kp\"]}"}`)

	result := Normalize(ModeExtractText, raw)

	assert.Equal(t, "the real text", result.Analysis)
	assert.Equal(t, []string{"kp"}, result.KeyPoints)
}

func TestNormalize_PlainStringNotTouched(t *testing.T) {
	raw := json.RawMessage(`{"summary": "An ordinary sentence."}`)

	result := Normalize(ModeSummarize, raw)

	assert.Equal(t, "An ordinary sentence.", result.Summary)
	assert.Empty(t, result.KeyPoints)
}

// =============================================================================
// Per-Mode Shape Tests
// =============================================================================

func TestNormalize_SummaryFromArrayShape(t *testing.T) {
	raw := json.RawMessage(`{"summaries": [{"summary": "from array"}, {"summary": "ignored"}]}`)

	result := Normalize(ModeSummarize, raw)

	assert.Equal(t, "from array", result.Summary)
}

func TestNormalize_ExtractText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"extracted_text field", `{"extracted_text": "body text"}`, "body text"},
		{"text field", `{"text": "body text"}`, "body text"},
		{"extracted_text wins", `{"extracted_text": "a", "text": "b"}`, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(ModeExtractText, json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, result.Analysis)
		})
	}
}

func TestNormalize_Clauses(t *testing.T) {
	raw := json.RawMessage(`{
		"clauses": [
			{"type": "indemnity", "text": "Party A shall...", "risk_level": "medium", "page": 4},
			{"type": "termination", "text": "Either party may...", "risk_level": "low", "page": 9}
		],
		"analysis_id": "an-77"
	}`)

	result := Normalize(ModeClauses, raw)

	require.Len(t, result.Clauses, 2)
	assert.Equal(t, ClauseFinding{Type: "indemnity", Text: "Party A shall...", RiskLevel: "medium", Page: 4}, result.Clauses[0])
	assert.Equal(t, "an-77", result.AnalysisID)
}

func TestNormalize_RiskShape(t *testing.T) {
	raw := json.RawMessage(`{
		"risks": [
			{"type": "Liability", "severity": "High", "description": "Uncapped indemnity.", "recommendation": "Negotiate a cap."}
		],
		"tokens_used": 1532,
		"processing_time_ms": 2100
	}`)

	result := Normalize(ModeRisk, raw)

	require.Len(t, result.Risks, 1)
	risk := result.Risks[0]
	assert.Equal(t, "Liability", risk.Type)
	assert.Equal(t, "High", risk.Severity)
	assert.Equal(t, "Uncapped indemnity.", risk.Description)
	assert.Equal(t, "Negotiate a cap.", risk.Recommendation)
	assert.Equal(t, 1532, result.Usage.TokensUsed)
	assert.Equal(t, 2100, result.Usage.ProcessingTimeMs)
}

func TestNormalize_Chronology(t *testing.T) {
	raw := json.RawMessage(`{
		"events": [
			{"description": "Lease signed", "type": "execution", "confidence_score": 0.92, "date_expressions": ["1 March 2024"]},
			{"description": "Notice served", "type": "notice", "confidence_score": 0.71}
		]
	}`)

	result := Normalize(ModeChronology, raw)

	require.Len(t, result.Events, 2)
	assert.Equal(t, 0.92, result.Events[0].ConfidenceScore)
	assert.Equal(t, []string{"1 March 2024"}, result.Events[0].DateExpressions)
	assert.NotNil(t, result.Events[1].DateExpressions, "absent expressions become empty, not nil")
}

func TestNormalize_Classification(t *testing.T) {
	t.Run("nested shape", func(t *testing.T) {
		raw := json.RawMessage(`{"classification": {"document_type": "lease", "importance": "high", "subject": "commercial tenancy"}}`)
		result := Normalize(ModeClassify, raw)
		assert.Equal(t, Classification{DocumentType: "lease", Importance: "high", Subject: "commercial tenancy"}, result.Classification)
	})

	t.Run("flat shape", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type": "nda", "importance": "medium", "subject": "confidentiality"}`)
		result := Normalize(ModeClassify, raw)
		assert.Equal(t, "nda", result.Classification.DocumentType)
	})
}

func TestNormalize_ChatResponse(t *testing.T) {
	t.Run("response field", func(t *testing.T) {
		result := Normalize(ModeChat, json.RawMessage(`{"response": "Clause 3 caps damages."}`))
		assert.Equal(t, "Clause 3 caps damages.", result.Analysis)
		require.Len(t, result.ChatHistory, 1)
		assert.Equal(t, ChatTurn{Role: "assistant", Content: "Clause 3 caps damages."}, result.ChatHistory[0])
	})

	t.Run("assistant_message field", func(t *testing.T) {
		result := Normalize(ModeChat, json.RawMessage(`{"assistant_message": "It depends on clause 7."}`))
		assert.Equal(t, "It depends on clause 7.", result.Analysis)
	})
}

func TestNormalize_Sources(t *testing.T) {
	raw := json.RawMessage(`{
		"summary": "s",
		"sources": [{"file_name": "contract.pdf", "page": 2}, {"file_name": "annex.pdf"}]
	}`)

	result := Normalize(ModeSummarize, raw)

	require.Len(t, result.Sources, 2)
	assert.Equal(t, SourceRef{FileName: "contract.pdf", Page: 2}, result.Sources[0])
	assert.Equal(t, SourceRef{FileName: "annex.pdf"}, result.Sources[1])
}
