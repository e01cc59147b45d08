// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ui defines the interface rpick uses to talk to a human, plus the
// terminal implementation of it.
//
// The engine never renders anything itself. It hands fully-built Table
// values across the UI boundary and asks yes/no questions through it, so
// alternative frontends (tests, a GUI, a bot) only need to implement UI.
package ui

import (
	"fmt"
	"strconv"
)

// =============================================================================
// UI Interface
// =============================================================================

// UI is the consent boundary between the selection engine and a human.
//
// Implementations may block on human input in PromptChoice. They must not
// mutate the Table values they receive.
type UI interface {
	// CallDisplayTable reports whether the engine should build and display
	// a chance table for the current consent iteration. Engines consult
	// this before constructing table data, so implementations can suppress
	// the cost entirely.
	CallDisplayTable() bool

	// DisplayTable renders a table of candidates.
	DisplayTable(t *Table)

	// Info shows a fire-and-forget informational message.
	Info(message string)

	// PromptChoice asks the user to accept or reject the named candidate,
	// returning true on acceptance.
	PromptChoice(choice string) bool
}

// =============================================================================
// Table Model
// =============================================================================

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	// CellText holds a string.
	CellText CellKind = iota
	// CellUnsigned holds a non-negative integer, e.g. a weight.
	CellUnsigned
	// CellFloat holds a floating point value, e.g. a percent chance.
	CellFloat
)

// Cell is one tagged value in a table. Exactly one of Text, Unsigned, or
// Float is meaningful, selected by Kind.
type Cell struct {
	Kind     CellKind
	Text     string
	Unsigned uint64
	Float    float64
}

// TextCell builds a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// UnsignedCell builds an unsigned integer cell.
func UnsignedCell(u uint64) Cell { return Cell{Kind: CellUnsigned, Unsigned: u} }

// FloatCell builds a floating point cell.
func FloatCell(f float64) Cell { return Cell{Kind: CellFloat, Float: f} }

// String formats the cell for display. Floats render with two decimals,
// which is all the precision a percent column needs.
func (c Cell) String() string {
	switch c.Kind {
	case CellUnsigned:
		return strconv.FormatUint(c.Unsigned, 10)
	case CellFloat:
		return fmt.Sprintf("%.2f", c.Float)
	default:
		return c.Text
	}
}

// Row is an ordered list of cells. Chosen marks the row holding the
// candidate the engine drew this iteration; renderers highlight it.
type Row struct {
	Cells  []Cell
	Chosen bool
}

// Table is the value passed across the UI boundary when the engine wants a
// chance table rendered. Footer may be empty.
type Table struct {
	Header []Cell
	Rows   []Row
	Footer []Cell
}
