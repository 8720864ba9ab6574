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

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/CounselAI/CounselDesk/pkg/draft"
	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// runDraftCommand generates a document from the given requirements.
func runDraftCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if draftDocType == "" || draftRequirements == "" {
		if !ux.IsInteractive() {
			return fmt.Errorf("--type and --requirements are required")
		}
		if err := promptDraftInputs(); err != nil {
			return err
		}
	}

	client := newHTTPClient()
	svc := draft.NewService(draft.ServiceConfig{
		Client:       client,
		DraftBaseURL: endpoints().DraftBaseURL,
		Sessions:     newSessionManager(client),
		Logger:       logger.Slog(),
	})

	spinner := ux.NewSpinner("drafting " + draftDocType)
	spinner.Start()
	doc, err := svc.Generate(ctx, draft.Request{
		DocType:           draftDocType,
		Requirements:      draftRequirements,
		Jurisdictions:     draftJurisdictions,
		Style:             draftStyle,
		Length:            draftLength,
		Clauses:           draftClauses,
		SpecialProvisions: draftProvisions,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	ux.Title("Draft: " + doc.DocumentType)
	fmt.Println(doc.Document)
	return nil
}

func promptDraftInputs() error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Document type").
			Value(&draftDocType),
		huh.NewText().
			Title("Requirements").
			Value(&draftRequirements),
	)).Run()
}
