// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"

	"github.com/adeschamps/rpick/pkg/config"
	"github.com/adeschamps/rpick/pkg/logging"
)

// --- Global Command Variables ---
var (
	configPath string
	verbose    bool
	assumeYes  bool
	seed       int64
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "rpick <category>",
		Short: "Pick an item from a list of choices, using various algorithms",
		Long: `rpick helps you pick one item from a named category of choices.

Each category in the config file is governed by a model (even, weighted,
gaussian, inventory, lottery, lru) that decides how candidates are drawn
and what picking one does to the category's state. rpick proposes a
candidate and asks for your consent; reject it and rpick draws again.

The config lives at ~/.config/rpick.yml unless overridden with --config
or the RPICK_CONFIG environment variable.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runPick, // Defined in cmd_pick.go
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "List the categories in the config file",
		Args:  cobra.NoArgs,
		RunE:  runList, // Defined in cmd_ls.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the config file (default $RPICK_CONFIG or ~/.config/rpick.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log verbosity: debug, info, warn, or error")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"display a chance table for each proposed candidate")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false,
		"accept the first drawn candidate without prompting")
	rootCmd.Flags().Int64Var(&seed, "seed", 0,
		"seed the random source for a reproducible pick (0 uses the clock)")

	rootCmd.AddCommand(lsCmd)
}

// resolveConfigPath honors --config before falling back to the default
// location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func newLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.ParseLevel(logLevel)})
}
