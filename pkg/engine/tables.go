// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math"
	"sort"

	"github.com/adeschamps/rpick/pkg/ui"
)

// weightedChanceTable builds the chance table for the weighted-consent
// models. Rows are sorted ascending by weight; chosenIndex identifies the
// drawn candidate by its original index.
func weightedChanceTable(chosenIndex int, candidates []candidate) *ui.Table {
	sorted := make([]candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].weight < sorted[j].weight })

	var total uint64
	for _, c := range sorted {
		total += c.weight
	}

	rows := make([]ui.Row, len(sorted))
	for i, c := range sorted {
		chance := float64(c.weight) / float64(total) * 100
		rows[i] = ui.Row{
			Cells: []ui.Cell{
				ui.TextCell(c.name),
				ui.UnsignedCell(c.weight),
				ui.FloatCell(chance),
			},
			Chosen: c.index == chosenIndex,
		}
	}

	return &ui.Table{
		Header: []ui.Cell{ui.TextCell("Name"), ui.TextCell("Weight"), ui.TextCell("Chance")},
		Rows:   rows,
		Footer: []ui.Cell{ui.TextCell("Total"), ui.UnsignedCell(total), ui.FloatCell(100.0)},
	}
}

// gaussianChanceTable builds the chance table for the gaussian model over
// the working copy, in list order. Each position's chance is the CDF mass
// of its unit slice, doubled because folding the distribution maps both
// tails onto the same index, and scaled to percent. The footer total
// lands near (not exactly at) 100 since the tail past the last index is
// unreachable mass.
func gaussianChanceTable(chosenIndex int, candidates []string, stddev float64) *ui.Table {
	rows := make([]ui.Row, len(candidates))
	var total float64
	for i, name := range candidates {
		chance := (normalCDF(float64(i+1), stddev) - normalCDF(float64(i), stddev)) * 200
		total += chance
		rows[i] = ui.Row{
			Cells:  []ui.Cell{ui.TextCell(name), ui.FloatCell(chance)},
			Chosen: i == chosenIndex,
		}
	}

	return &ui.Table{
		Header: []ui.Cell{ui.TextCell("Name"), ui.TextCell("Chance")},
		Rows:   rows,
		Footer: []ui.Cell{ui.TextCell("Total"), ui.FloatCell(total)},
	}
}

// lruTable lists the entries still in play this scan, from the current
// offer at index onward. Rows render in reverse so the most recently used
// entry comes first and the offered entry sits last, flagged chosen.
func lruTable(index int, choices []string) *ui.Table {
	remaining := choices[index:]

	rows := make([]ui.Row, 0, len(remaining))
	for i := len(remaining) - 1; i >= 0; i-- {
		rows = append(rows, ui.Row{
			Cells:  []ui.Cell{ui.TextCell(remaining[i])},
			Chosen: i == 0,
		})
	}

	return &ui.Table{
		Header: []ui.Cell{ui.TextCell("Name")},
		Rows:   rows,
	}
}

// normalCDF evaluates the CDF of a zero-mean normal distribution with the
// given standard deviation.
func normalCDF(x, stddev float64) float64 {
	return 0.5 * (1 + math.Erf(x/(stddev*math.Sqrt2)))
}
