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
	"sort"

	"github.com/spf13/cobra"

	"github.com/adeschamps/rpick/pkg/config"
	"github.com/adeschamps/rpick/pkg/ui"
)

// runList shows the categories from the config as a table. Read-only; the
// config file is not written back.
func runList(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	categories, err := config.Load(path)
	if err != nil {
		return err
	}

	ui.NewTerminal(true).DisplayTable(categoryListTable(categories))
	return nil
}

// categoryListTable summarizes each category: name, model, choice count.
func categoryListTable(categories config.Config) *ui.Table {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]ui.Row, len(names))
	for i, name := range names {
		category := categories[name]
		rows[i] = ui.Row{Cells: []ui.Cell{
			ui.TextCell(name),
			ui.TextCell(string(category.Model())),
			ui.UnsignedCell(uint64(len(category.Names()))),
		}}
	}

	return &ui.Table{
		Header: []ui.Cell{ui.TextCell("Category"), ui.TextCell("Model"), ui.TextCell("Choices")},
		Rows:   rows,
	}
}
