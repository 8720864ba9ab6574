// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Mode is one of the seven document-processing operations.
type Mode string

const (
	ModeSummarize   Mode = "summarize"
	ModeExtractText Mode = "extract-text"
	ModeClauses     Mode = "clauses"
	ModeRisk        Mode = "risk"
	ModeChronology  Mode = "chronology"
	ModeClassify    Mode = "classify"
	ModeChat        Mode = "chat"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{
		ModeSummarize, ModeExtractText, ModeClauses, ModeRisk,
		ModeChronology, ModeClassify, ModeChat,
	}
}

// Params is the union of mode-specific inputs gathered from the user.
// Each mode's spec copies the fields it cares about into its own tagged
// record and validates that, so irrelevant fields are simply ignored.
type Params struct {
	// DocumentDate anchors relative dates for chronology extraction.
	// Must be an ISO date (2006-01-02).
	DocumentDate string

	// DocumentType hints the risk assessor (e.g. "lease", "nda").
	DocumentType string

	// Focus narrows the risk assessment.
	Focus string

	// RiskCategories selects risk families; joined comma-separated on the
	// wire. Empty means the default "financial,legal".
	RiskCategories []string

	// Question is the document-chat question.
	Question string

	// ResponseStyle selects the chat answer register (e.g. "concise",
	// "detailed").
	ResponseStyle string

	// Creativity tunes chat sampling, 0..1.
	Creativity float64

	// MaxLength bounds the chat answer, in tokens. 0 means backend
	// default.
	MaxLength int

	// SessionID optionally threads document-chat turns through a backend
	// session.
	SessionID string
}

// defaultRiskCategories applies when the user picks none.
var defaultRiskCategories = []string{"financial", "legal"}

// validate holds the package validator with custom rules registered.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// isodate accepts exactly the 2006-01-02 layout.
	if err := validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("failed to register isodate validator: %v", err))
	}
}

// =============================================================================
// Per-Mode Parameter Records
// =============================================================================

type chronologyParams struct {
	DocumentDate string `validate:"required,isodate"`
}

type riskParams struct {
	DocumentType string
	Focus        string
	Categories   []string `validate:"min=1"`
}

type chatParams struct {
	Question      string  `validate:"required"`
	ResponseStyle string  `validate:"omitempty,oneof=concise balanced detailed"`
	Creativity    float64 `validate:"min=0,max=1"`
	MaxLength     int     `validate:"min=0"`
}

// =============================================================================
// Dispatch Table
// =============================================================================

// modeSpec is one variant of the dispatch table: endpoint descriptor,
// file requirement, and parameter handling for a single mode.
type modeSpec struct {
	// path is appended to the analysis service base URL.
	path string

	// requiresFiles marks modes that cannot run without an upload.
	requiresFiles bool

	// validateParams rejects bad input before any network traffic.
	validateParams func(p Params) error

	// formFields produces the mode's multipart form fields.
	formFields func(p Params) map[string]string
}

var modeSpecs = map[Mode]modeSpec{
	ModeSummarize: {
		path:          "/v1/analyze/summarize",
		requiresFiles: true,
		formFields:    func(Params) map[string]string { return nil },
	},
	ModeExtractText: {
		path:          "/v1/analyze/extract-text",
		requiresFiles: true,
		formFields:    func(Params) map[string]string { return nil },
	},
	ModeClauses: {
		path:          "/v1/analyze/clauses",
		requiresFiles: true,
		formFields:    func(Params) map[string]string { return nil },
	},
	ModeRisk: {
		path:          "/v1/analyze/risk",
		requiresFiles: true,
		validateParams: func(p Params) error {
			return validate.Struct(riskParams{
				DocumentType: p.DocumentType,
				Focus:        p.Focus,
				Categories:   riskCategoriesOrDefault(p),
			})
		},
		formFields: func(p Params) map[string]string {
			fields := map[string]string{
				"risk_categories": strings.Join(riskCategoriesOrDefault(p), ","),
			}
			if p.DocumentType != "" {
				fields["document_type"] = p.DocumentType
			}
			if p.Focus != "" {
				fields["focus"] = p.Focus
			}
			return fields
		},
	},
	ModeChronology: {
		path:          "/v1/analyze/chronology",
		requiresFiles: true,
		validateParams: func(p Params) error {
			if err := validate.Struct(chronologyParams{DocumentDate: p.DocumentDate}); err != nil {
				return fmt.Errorf("%w: document date must be an ISO date (YYYY-MM-DD), got %q",
					ErrInvalidDate, p.DocumentDate)
			}
			return nil
		},
		formFields: func(p Params) map[string]string {
			return map[string]string{"document_date": p.DocumentDate}
		},
	},
	ModeClassify: {
		path:          "/v1/analyze/classify",
		requiresFiles: true,
		formFields:    func(Params) map[string]string { return nil },
	},
	ModeChat: {
		path:          "/v1/document-chat",
		requiresFiles: false,
		validateParams: func(p Params) error {
			return validate.Struct(chatParams{
				Question:      p.Question,
				ResponseStyle: p.ResponseStyle,
				Creativity:    p.Creativity,
				MaxLength:     p.MaxLength,
			})
		},
		formFields: func(p Params) map[string]string {
			fields := map[string]string{"question": p.Question}
			if p.ResponseStyle != "" {
				fields["response_style"] = p.ResponseStyle
			}
			if p.Creativity != 0 {
				fields["creativity"] = strconv.FormatFloat(p.Creativity, 'f', 2, 64)
			}
			if p.MaxLength != 0 {
				fields["max_length"] = strconv.Itoa(p.MaxLength)
			}
			if p.SessionID != "" {
				fields["session_id"] = p.SessionID
			}
			return fields
		},
	},
}

func riskCategoriesOrDefault(p Params) []string {
	if len(p.RiskCategories) == 0 {
		return defaultRiskCategories
	}
	return p.RiskCategories
}

// ParseMode maps a user-supplied mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeSpecs[mode]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return mode, nil
}
