// Copyright (C) 2025 Counsel AI (dev@counselai.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/CounselAI/CounselDesk/pkg/config"
	"github.com/CounselAI/CounselDesk/pkg/logging"
	"github.com/CounselAI/CounselDesk/pkg/ux"
)

// cfg is the effective configuration, loaded before any command runs.
var cfg config.Config

// logger is the process logger. Closed on exit when file logging is on.
var logger *logging.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	if logger != nil {
		_ = logger.Close()
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		logger = logging.New(logging.Config{
			Level:   logging.ParseLevel(logLevel),
			LogDir:  cfg.Paths.LogDir,
			Service: "counsel",
		})
		logger.SetAsDefault()
		return nil
	}
}
