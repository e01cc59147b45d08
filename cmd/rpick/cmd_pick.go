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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adeschamps/rpick/pkg/config"
	"github.com/adeschamps/rpick/pkg/engine"
	"github.com/adeschamps/rpick/pkg/ui"
)

// runPick loads the config, runs one pick against the named category, and
// writes the (possibly mutated) config back. The accepted choice goes to
// stdout so the result is usable in scripts.
func runPick(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Close()

	category := args[0]

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	categories, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "path", path, "categories", len(categories))

	terminal := ui.NewTerminal(verbose)
	var frontend ui.UI = terminal
	if assumeYes {
		frontend = ui.AutoAccept{UI: terminal}
	}

	eng := engine.New(frontend)
	if seed != 0 {
		eng.SetRand(engine.NewSeededRand(seed))
		logger.Debug("using seeded random source", "seed", seed)
	}

	choice, err := eng.Pick(categories, category)
	if err != nil {
		return err
	}
	logger.Debug("pick accepted", "category", category, "choice", choice)

	if err := config.Save(path, categories); err != nil {
		return fmt.Errorf("picked %q but could not save the config: %w", choice, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), choice)
	return nil
}
