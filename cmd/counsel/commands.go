// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	logLevel string

	// analyze flags
	analysisMode   string
	documentDate   string
	documentType   string
	assessFocus    string
	riskCategories []string
	chatQuestion   string
	responseStyle  string
	creativity     float64
	maxLength      int

	// draft flags
	draftDocType       string
	draftRequirements  string
	draftJurisdictions []string
	draftStyle         string
	draftLength        string
	draftClauses       []string
	draftProvisions    string

	// export flags
	exportFormat string
	exportOutput string

	// chat flags
	resumeConversation string

	rootCmd = &cobra.Command{
		Use:   "counsel",
		Short: "A cli for the CounselDesk legal assistant",
		Long: `Counsel is the terminal front end for the CounselDesk legal
assistant: conversational legal Q&A, document analysis across seven
modes, document drafting, and report export.`,
	}

	// --- Chat ---
	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation with the legal assistant",
		RunE:  runChatCommand, // Defined in cmd_chat.go
	}

	// --- Analysis ---
	analyzeCmd = &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Run one of the seven document-analysis modes on uploaded files",
		RunE:  runAnalyzeCommand, // Defined in cmd_analyze.go
	}

	// --- Drafting ---
	draftCmd = &cobra.Command{
		Use:   "draft",
		Short: "Generate a legal document from requirements",
		RunE:  runDraftCommand, // Defined in cmd_draft.go
	}

	// --- Export ---
	exportCmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Export document content as a txt, pdf, or docx report",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCommand, // Defined in cmd_export.go
	}

	// --- Conversations ---
	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Manage conversations",
	}
	listSessionsCmd = &cobra.Command{
		Use:   "list",
		Short: "List all conversations, newest first",
		RunE:  runListSessions, // Defined in cmd_sessions.go
	}
	deleteSessionCmd = &cobra.Command{
		Use:   "delete [conversation_id]",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteSession, // Defined in cmd_sessions.go
	}
	clearSessionCmd = &cobra.Command{
		Use:   "clear",
		Short: "Forget the locally stored session token",
		RunE:  runClearSession, // Defined in cmd_sessions.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	chatCmd.Flags().StringVar(&resumeConversation, "resume", "", "Conversation id to resume instead of starting fresh")

	analyzeCmd.Flags().StringVarP(&analysisMode, "mode", "m", "", "Analysis mode (summarize, extract-text, clauses, risk, chronology, classify, chat)")
	analyzeCmd.Flags().StringVar(&documentDate, "document-date", "", "Document date for chronology mode (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&documentType, "document-type", "", "Document type hint for risk mode")
	analyzeCmd.Flags().StringVar(&assessFocus, "focus", "", "Assessment focus for risk mode")
	analyzeCmd.Flags().StringSliceVar(&riskCategories, "categories", nil, "Risk categories for risk mode (default financial,legal)")
	analyzeCmd.Flags().StringVarP(&chatQuestion, "question", "q", "", "Question for document-chat mode")
	analyzeCmd.Flags().StringVar(&responseStyle, "style", "", "Response style for document-chat mode (concise, balanced, detailed)")
	analyzeCmd.Flags().Float64Var(&creativity, "creativity", 0, "Creativity 0..1 for document-chat mode")
	analyzeCmd.Flags().IntVar(&maxLength, "max-length", 0, "Answer length bound for document-chat mode")

	draftCmd.Flags().StringVar(&draftDocType, "type", "", "Document type to draft (e.g. nda, lease)")
	draftCmd.Flags().StringVar(&draftRequirements, "requirements", "", "What the document must cover")
	draftCmd.Flags().StringSliceVar(&draftJurisdictions, "jurisdictions", nil, "Governing jurisdictions")
	draftCmd.Flags().StringVar(&draftStyle, "style", "", "Drafting style")
	draftCmd.Flags().StringVar(&draftLength, "length", "", "Target length")
	draftCmd.Flags().StringSliceVar(&draftClauses, "clauses", nil, "Clauses to include")
	draftCmd.Flags().StringVar(&draftProvisions, "special-provisions", "", "Special provisions")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "txt", "Export format (txt, pdf, docx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (default: report.<format>)")

	sessionsCmd.AddCommand(listSessionsCmd, deleteSessionCmd, clearSessionCmd)
	rootCmd.AddCommand(chatCmd, analyzeCmd, draftCmd, exportCmd, sessionsCmd)
}
