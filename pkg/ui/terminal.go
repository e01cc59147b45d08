// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Terminal color palette.
var (
	colorHighlight = lipgloss.Color("#F4D03F") // gold - the drawn candidate
	colorBorder    = lipgloss.Color("#16858E") // deep teal - table borders
	colorMuted     = lipgloss.Color("#2C4A54") // slate - footer, secondary text
)

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleChosen    = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	styleFooter    = lipgloss.NewStyle().Foreground(colorMuted)
	styleBorder    = lipgloss.NewStyle().Foreground(colorBorder)
	styleInfoLine  = lipgloss.NewStyle().Foreground(colorMuted)
	stylePlainCell = lipgloss.NewStyle()
)

// Terminal implements UI for an interactive shell session.
//
// When stdin is a TTY, PromptChoice presents a huh confirm form. In
// non-interactive contexts (pipes, tests) it falls back to a line-oriented
// y/N prompt read from the configured reader.
type Terminal struct {
	// A single buffered reader survives across prompts; recreating it per
	// prompt would drop input it had already buffered past the first line.
	in          *bufio.Reader
	out         io.Writer
	verbose     bool
	interactive bool
}

// NewTerminal creates a Terminal wired to stdin/stdout. The verbose flag
// controls whether chance tables are requested from the engine.
func NewTerminal(verbose bool) *Terminal {
	return &Terminal{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		verbose:     verbose,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// NewTerminalWithIO creates a Terminal with explicit reader and writer.
// The result is never interactive; prompts use the line-oriented path.
func NewTerminalWithIO(in io.Reader, out io.Writer, verbose bool) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, verbose: verbose}
}

// CallDisplayTable reports whether the user asked for chance tables.
func (t *Terminal) CallDisplayTable() bool {
	return t.verbose
}

// Info prints an informational message.
func (t *Terminal) Info(message string) {
	fmt.Fprintln(t.out, styleInfoLine.Render(message))
}

// PromptChoice asks the user to accept or reject the named candidate.
func (t *Terminal) PromptChoice(choice string) bool {
	title := fmt.Sprintf("Choice is %s. Accept?", choice)

	if t.interactive {
		accepted := false
		err := huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&accepted).
			Run()
		if err == nil {
			return accepted
		}
		// The form can fail when the terminal is misbehaving; fall back to
		// the plain prompt rather than rejecting the candidate outright.
	}

	fmt.Fprintf(t.out, "%s (y/N) ", title)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// DisplayTable renders the table with the chosen row highlighted. The
// footer, when present, is rendered as a final row in the muted style.
func (t *Terminal) DisplayTable(tbl *Table) {
	headers := make([]string, len(tbl.Header))
	for i, c := range tbl.Header {
		headers[i] = c.String()
	}

	// Footer rides along as the last data row so column widths line up.
	footerIndex := -1
	rendered := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...)
	for _, row := range tbl.Rows {
		rendered.Row(cellStrings(row.Cells)...)
	}
	if len(tbl.Footer) > 0 {
		footerIndex = len(tbl.Rows)
		rendered.Row(cellStrings(tbl.Footer)...)
	}

	rendered.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return styleHeader
		case row == footerIndex:
			return styleFooter
		case row >= 0 && row < len(tbl.Rows) && tbl.Rows[row].Chosen:
			return styleChosen
		default:
			return stylePlainCell
		}
	})

	fmt.Fprintln(t.out, rendered)
}

func cellStrings(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}

// AutoAccept wraps a UI and accepts every candidate without prompting.
// It backs the --yes flag.
type AutoAccept struct {
	UI
}

// PromptChoice always accepts.
func (AutoAccept) PromptChoice(string) bool { return true }

// Compile-time interface checks.
var (
	_ UI = (*Terminal)(nil)
	_ UI = AutoAccept{}
)
