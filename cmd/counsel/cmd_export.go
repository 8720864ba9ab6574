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

	"github.com/spf13/cobra"

	"github.com/CounselAI/CounselDesk/pkg/draft"
	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// runExportCommand renders a local document as a report blob and writes
// it next to the user.
func runExportCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	client := newHTTPClient()
	svc := draft.NewService(draft.ServiceConfig{
		Client:       client,
		DraftBaseURL: endpoints().DraftBaseURL,
		Sessions:     newSessionManager(client),
		Logger:       logger.Slog(),
	})

	blob, err := svc.Export(ctx, exportFormat, string(content))
	if err != nil {
		return err
	}

	output := exportOutput
	if output == "" {
		output = "report." + exportFormat
	}
	if err := os.WriteFile(output, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	ux.Success(fmt.Sprintf("exported %d bytes to %s", len(blob), output))
	return nil
}
