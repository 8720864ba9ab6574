// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/CounselAI/CounselDesk/pkg/analysis"
	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// runAnalyzeCommand dispatches one analysis over the uploaded files.
func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if analysisMode == "" {
		if !ux.IsInteractive() {
			return fmt.Errorf("--mode is required (one of: summarize, extract-text, clauses, risk, chronology, classify, chat)")
		}
		if err := promptAnalysisMode(); err != nil {
			return err
		}
	}

	mode, err := analysis.ParseMode(analysisMode)
	if err != nil {
		return err
	}

	files, err := loadFiles(args)
	if err != nil {
		return err
	}

	params := analysis.Params{
		DocumentDate:   documentDate,
		DocumentType:   documentType,
		Focus:          assessFocus,
		RiskCategories: riskCategories,
		Question:       chatQuestion,
		ResponseStyle:  responseStyle,
		Creativity:     creativity,
		MaxLength:      maxLength,
	}

	client := newHTTPClient()
	svc := analysis.NewService(analysis.ServiceConfig{
		Dispatcher: analysis.NewDispatcher(analysis.DispatcherConfig{
			Client:          client,
			AnalysisBaseURL: endpoints().AnalysisBaseURL,
			Logger:          logger.Slog(),
		}),
		Logger: logger.Slog(),
	})

	spinner := ux.NewSpinner(fmt.Sprintf("running %s analysis", mode))
	spinner.Start()
	started := time.Now()
	result, err := svc.Analyze(ctx, mode, files, params)
	spinner.Stop()
	if err != nil {
		return err
	}

	ux.PrintResult(result)
	ux.Muted(fmt.Sprintf("completed in %s", time.Since(started).Round(time.Millisecond)))
	return nil
}

// promptAnalysisMode asks for the mode and its parameters interactively.
func promptAnalysisMode() error {
	options := make([]huh.Option[string], 0, len(analysis.Modes()))
	for _, mode := range analysis.Modes() {
		options = append(options, huh.NewOption(string(mode), string(mode)))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Analysis mode").
			Options(options...).
			Value(&analysisMode),
	))
	if err := form.Run(); err != nil {
		return err
	}

	switch analysis.Mode(analysisMode) {
	case analysis.ModeChronology:
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Document date (YYYY-MM-DD)").
				Value(&documentDate),
		)).Run()

	case analysis.ModeRisk:
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Document type (optional)").
				Value(&documentType),
			huh.NewInput().
				Title("Assessment focus (optional)").
				Value(&assessFocus),
			huh.NewMultiSelect[string]().
				Title("Risk categories").
				Options(
					huh.NewOption("financial", "financial").Selected(true),
					huh.NewOption("legal", "legal").Selected(true),
					huh.NewOption("regulatory", "regulatory"),
					huh.NewOption("operational", "operational"),
				).
				Value(&riskCategories),
		)).Run()

	case analysis.ModeChat:
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Question").
				Value(&chatQuestion),
			huh.NewSelect[string]().
				Title("Response style").
				Options(
					huh.NewOption("balanced", "balanced"),
					huh.NewOption("concise", "concise"),
					huh.NewOption("detailed", "detailed"),
				).
				Value(&responseStyle),
		)).Run()
	}
	return nil
}

// loadFiles reads the documents named on the command line.
func loadFiles(paths []string) ([]analysis.File, error) {
	files := make([]analysis.File, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, analysis.File{
			Name:    filepath.Base(path),
			Content: content,
		})
	}
	return files, nil
}
