// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

// Result is the canonical record every analysis mode normalizes into.
//
// # Description
//
// The seven backend response shapes are irregular; Result is their
// superset. Whichever mode produced it, every field is present, with
// absent data represented by empty strings and empty (never nil)
// collections, so rendering code never branches on backend-specific keys.
//
// # Lifecycle
//
// Created fresh per analysis invocation and superseded, not merged, by the
// next one. Document-chat is the exception: new turns append to
// ChatHistory inside the same Result.
type Result struct {
	// Analysis is free-form analysis text.
	Analysis string

	// Summary is the condensed document summary.
	Summary string

	// KeyPoints are bullet highlights extracted alongside a summary.
	KeyPoints []string

	// Clauses are per-clause findings from clause analysis.
	Clauses []ClauseFinding

	// Risks are findings from risk assessment.
	Risks []RiskFinding

	// Events is the extracted chronology.
	Events []ChronologyEvent

	// Classification is the document classification, zero-valued for
	// other modes.
	Classification Classification

	// Sources cites the documents the result derives from.
	Sources []SourceRef

	// Usage carries token and latency metadata.
	Usage UsageStats

	// AnalysisID is the backend's opaque identifier for this analysis.
	AnalysisID string

	// ChatHistory accumulates document-chat turns.
	ChatHistory []ChatTurn
}

// ClauseFinding is one clause identified during clause analysis.
type ClauseFinding struct {
	Type      string
	Text      string
	RiskLevel string
	Page      int
}

// RiskFinding is one risk identified during risk assessment.
type RiskFinding struct {
	Type           string
	Description    string
	Severity       string
	Recommendation string
}

// ChronologyEvent is one dated event extracted from the document.
type ChronologyEvent struct {
	Description     string
	Type            string
	ConfidenceScore float64
	DateExpressions []string
}

// Classification describes what kind of document was analyzed.
type Classification struct {
	DocumentType string
	Importance   string
	Subject      string
}

// SourceRef cites a source document, optionally down to the page.
type SourceRef struct {
	FileName string
	Page     int
}

// UsageStats carries backend-reported cost metadata.
type UsageStats struct {
	TokensUsed       int
	ProcessingTimeMs int
}

// ChatTurn is one exchange in document-chat mode.
type ChatTurn struct {
	Role    string
	Content string
}

// NewResult returns a Result with every collection initialized, upholding
// the no-nil-collections invariant from the moment of construction.
func NewResult() Result {
	return Result{
		KeyPoints:   []string{},
		Clauses:     []ClauseFinding{},
		Risks:       []RiskFinding{},
		Events:      []ChronologyEvent{},
		Sources:     []SourceRef{},
		ChatHistory: []ChatTurn{},
	}
}

// HasContent reports whether any extraction produced displayable output.
func (r Result) HasContent() bool {
	return r.Analysis != "" ||
		r.Summary != "" ||
		len(r.KeyPoints) > 0 ||
		len(r.Clauses) > 0 ||
		len(r.Risks) > 0 ||
		len(r.Events) > 0 ||
		r.Classification != (Classification{}) ||
		len(r.ChatHistory) > 0
}
