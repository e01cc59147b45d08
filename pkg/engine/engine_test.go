// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeschamps/rpick/pkg/config"
	"github.com/adeschamps/rpick/pkg/ui"
)

// =============================================================================
// Test Doubles
// =============================================================================

// scriptedUI records every interaction and answers prompts through the
// configured script function.
type scriptedUI struct {
	displayTables bool
	script        func(choice string) bool

	prompts []string
	infos   []string
	tables  []*ui.Table
}

func (s *scriptedUI) CallDisplayTable() bool { return s.displayTables }

func (s *scriptedUI) DisplayTable(t *ui.Table) { s.tables = append(s.tables, t) }

func (s *scriptedUI) Info(message string) { s.infos = append(s.infos, message) }

func (s *scriptedUI) PromptChoice(choice string) bool {
	s.prompts = append(s.prompts, choice)
	return s.script(choice)
}

var _ ui.UI = (*scriptedUI)(nil)

// scriptedRand feeds the engine a fixed sequence of draws. Uniform values
// are reduced modulo n so a scripted 0 always lands on the first
// candidate regardless of the pool's total weight.
type scriptedRand struct {
	ints  []int64
	norms []float64
}

func (r *scriptedRand) Int63n(n int64) int64 {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) NormFloat64() float64 {
	v := r.norms[0]
	r.norms = r.norms[1:]
	return v
}

var _ Rand = (*scriptedRand)(nil)

func newTestEngine(u ui.UI, rng Rand) *Engine {
	e := New(u)
	e.SetRand(rng)
	return e
}

// acceptOnly accepts exactly the named choice.
func acceptOnly(name string) func(string) bool {
	return func(choice string) bool { return choice == name }
}

// acceptAfter rejects the first n prompts and accepts everything after.
func acceptAfter(n int) func(string) bool {
	count := 0
	return func(string) bool {
		count++
		return count > n
	}
}

func threeChoices() []string {
	return []string{"this", "that", "the other"}
}

// =============================================================================
// Pick Dispatch
// =============================================================================

func TestPick_CategoryNotFound(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{})
	cfg := config.Config{"things": &config.Even{Choices: threeChoices()}}

	_, err := eng.Pick(cfg, "does not exist")

	require.Error(t, err)
	assert.Equal(t, "Category does not exist not found in config.", err.Error())
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, u.prompts)
}

func TestPick_DispatchesEven(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0}})
	cfg := config.Config{"things": &config.Even{Choices: threeChoices()}}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
}

// =============================================================================
// Even
// =============================================================================

// The concrete scenario: reject "this", accept "that". Even never mutates
// its choices.
func TestPickEven_RejectThenAccept(t *testing.T) {
	u := &scriptedUI{script: acceptOnly("that")}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0, 0}})
	cat := &config.Even{Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "that", choice)
	assert.Equal(t, []string{"this", "that"}, u.prompts)
	assert.Equal(t, threeChoices(), cat.Choices)
	assert.Empty(t, u.infos)
}

// =============================================================================
// Weighted
// =============================================================================

func weightedChoices() []config.WeightedChoice {
	return []config.WeightedChoice{
		{Name: "this", Weight: 1},
		{Name: "that", Weight: 4},
		{Name: "the other", Weight: 9},
	}
}

func TestPickWeighted_Accept(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0}})
	cat := &config.Weighted{Choices: weightedChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
	assert.Equal(t, weightedChoices(), cat.Choices)
}

// Rejecting every candidate down to the last one earns exactly one
// disapproval, then the pool resets and the loop continues.
func TestPickWeighted_NoToAll(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(3)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0, 0, 0, 0}})
	cfg := config.Config{"things": &config.Weighted{Choices: weightedChoices()}}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
	assert.Equal(t, []string{"this", "that", "the other", "this"}, u.prompts)
	assert.Equal(t, []string{"🤨"}, u.infos)
}

// Even(choices) must behave like Weighted(choices) with every weight 1.
func TestPickWeighted_UnitWeightsMatchEven(t *testing.T) {
	script := acceptOnly("that")

	evenUI := &scriptedUI{script: script}
	evenEng := newTestEngine(evenUI, &scriptedRand{ints: []int64{0, 0}})
	evenChoice, err := evenEng.Pick(config.Config{
		"things": &config.Even{Choices: threeChoices()},
	}, "things")
	require.NoError(t, err)

	weightedUI := &scriptedUI{script: script}
	weightedEng := newTestEngine(weightedUI, &scriptedRand{ints: []int64{0, 0}})
	weightedChoice, err := weightedEng.Pick(config.Config{
		"things": &config.Weighted{Choices: []config.WeightedChoice{
			{Name: "this", Weight: 1},
			{Name: "that", Weight: 1},
			{Name: "the other", Weight: 1},
		}},
	}, "things")
	require.NoError(t, err)

	assert.Equal(t, evenChoice, weightedChoice)
	assert.Equal(t, evenUI.prompts, weightedUI.prompts)
}

func TestWeightedChanceTable_SortedWithPercentages(t *testing.T) {
	candidates := []candidate{
		{index: 0, name: "this", weight: 1},
		{index: 1, name: "that", weight: 4},
		{index: 2, name: "the other", weight: 9},
	}

	table := weightedChanceTable(1, candidates)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "this", table.Rows[0].Cells[0].Text)
	assert.Equal(t, "that", table.Rows[1].Cells[0].Text)
	assert.Equal(t, "the other", table.Rows[2].Cells[0].Text)
	assert.True(t, table.Rows[1].Chosen)
	assert.False(t, table.Rows[0].Chosen)
	assert.False(t, table.Rows[2].Chosen)

	var sum float64
	for _, row := range table.Rows {
		sum += row.Cells[2].Float
	}
	assert.InDelta(t, 100.0, sum, 0.001)
	assert.InDelta(t, 4.0/14.0*100, table.Rows[1].Cells[2].Float, 0.001)

	require.Len(t, table.Footer, 3)
	assert.Equal(t, "Total", table.Footer[0].Text)
	assert.Equal(t, uint64(14), table.Footer[1].Unsigned)
	assert.InDelta(t, 100.0, table.Footer[2].Float, 0.001)
}

// =============================================================================
// Inventory
// =============================================================================

func inventoryChoices() []config.InventoryChoice {
	return []config.InventoryChoice{
		{Name: "this", Tickets: 0},
		{Name: "that", Tickets: 2},
		{Name: "the other", Tickets: 3},
	}
}

// The concrete scenario: three rejections of eligible names, then an
// acceptance of "the other". The winner loses one ticket; the entry with
// zero tickets is never offered.
func TestPickInventory_RejectionsThenAccept(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(3)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0, 0, 0, 0}})
	cat := &config.Inventory{Choices: inventoryChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "the other", choice)
	assert.Equal(t, []config.InventoryChoice{
		{Name: "this", Tickets: 0},
		{Name: "that", Tickets: 2},
		{Name: "the other", Tickets: 2},
	}, cat.Choices)
	assert.NotContains(t, u.prompts, "this")
	assert.Equal(t, []string{"🤨"}, u.infos)
}

func TestPickInventory_Verbose(t *testing.T) {
	u := &scriptedUI{displayTables: true, script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0}})
	cat := &config.Inventory{Choices: inventoryChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "that", choice)
	assert.Equal(t, []config.InventoryChoice{
		{Name: "this", Tickets: 0},
		{Name: "that", Tickets: 1},
		{Name: "the other", Tickets: 3},
	}, cat.Choices)

	// The zero-ticket entry is excluded from the table entirely.
	require.Len(t, u.tables, 1)
	table := u.tables[0]
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "that", table.Rows[0].Cells[0].Text)
	assert.Equal(t, uint64(2), table.Rows[0].Cells[1].Unsigned)
	assert.InDelta(t, 40.0, table.Rows[0].Cells[2].Float, 0.001)
	assert.True(t, table.Rows[0].Chosen)
	assert.Equal(t, "the other", table.Rows[1].Cells[0].Text)
	assert.InDelta(t, 60.0, table.Rows[1].Cells[2].Float, 0.001)
	assert.Equal(t, uint64(5), table.Footer[1].Unsigned)
}

// =============================================================================
// Lottery
// =============================================================================

// The concrete scenario: immediate acceptance of "this". Every entry
// accrues its own weight, then the winner resets to zero.
func TestPickLottery_Accept(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0}})
	cat := &config.Lottery{Choices: []config.LotteryChoice{
		{Name: "this", Tickets: 1, Weight: 1},
		{Name: "that", Tickets: 2, Weight: 4},
		{Name: "the other", Tickets: 3, Weight: 9},
	}}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
	assert.Equal(t, []config.LotteryChoice{
		{Name: "this", Tickets: 0, Weight: 1},
		{Name: "that", Tickets: 6, Weight: 4},
		{Name: "the other", Tickets: 12, Weight: 9},
	}, cat.Choices)
}

// A zero-ticket entry is never drawn, but still accrues its weight when
// someone else wins.
func TestPickLottery_NoToAllWithZeroTicketEntry(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(3)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0, 0, 0, 0}})
	cat := &config.Lottery{Choices: []config.LotteryChoice{
		{Name: "this", Tickets: 0, Weight: 1},
		{Name: "that", Tickets: 2, Weight: 4},
		{Name: "the other", Tickets: 3, Weight: 9},
	}}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "the other", choice)
	assert.Equal(t, []config.LotteryChoice{
		{Name: "this", Tickets: 1, Weight: 1},
		{Name: "that", Tickets: 6, Weight: 4},
		{Name: "the other", Tickets: 0, Weight: 9},
	}, cat.Choices)
	assert.NotContains(t, u.prompts, "this")
	assert.Equal(t, []string{"🤨"}, u.infos)
}

// =============================================================================
// Gaussian
// =============================================================================

func TestPickGaussian_AcceptMovesToEnd(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{norms: []float64{1.2}})
	cat := &config.Gaussian{StddevScalingFactor: 3.0, Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "that", choice)
	assert.Equal(t, []string{"this", "the other", "that"}, cat.Choices)
}

// An index past the end of the working copy redraws without prompting.
func TestPickGaussian_OutOfRangeRedraws(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{norms: []float64{9.9, 0.0}})
	cat := &config.Gaussian{StddevScalingFactor: 3.0, Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
	assert.Equal(t, []string{"this"}, u.prompts)
}

// Rejections shrink the working copy (recomputing the stddev each
// iteration); rejecting the last entry resets it. The persisted list only
// changes on the final acceptance.
func TestPickGaussian_RejectionsShrinkThenReset(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(3)}
	// stddev walks 1.0 -> 2/3 -> 1/3 as the working copy shrinks:
	//   |0.4|*1.0   -> index 0, "this", rejected
	//   |1.8|*(2/3) -> index 1, "the other", rejected
	//   |0.2|*(1/3) -> index 0, "that", rejected, pool resets
	//   |0.0|*1.0   -> index 0, "this", accepted
	eng := newTestEngine(u, &scriptedRand{norms: []float64{0.4, 1.8, 0.2, 0.0}})
	cat := &config.Gaussian{StddevScalingFactor: 3.0, Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
	assert.Equal(t, []string{"this", "the other", "that", "this"}, u.prompts)
	assert.Equal(t, []string{"🤨"}, u.infos)
	assert.Equal(t, []string{"that", "the other", "this"}, cat.Choices)
}

func TestPickGaussian_VerboseChanceTable(t *testing.T) {
	u := &scriptedUI{displayTables: true, script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{norms: []float64{1.2}})
	cat := &config.Gaussian{StddevScalingFactor: 3.0, Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "that", choice)

	require.Len(t, u.tables, 1)
	table := u.tables[0]
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "this", table.Rows[0].Cells[0].Text)
	assert.InDelta(t, 68.269, table.Rows[0].Cells[1].Float, 0.001)
	assert.False(t, table.Rows[0].Chosen)
	assert.Equal(t, "that", table.Rows[1].Cells[0].Text)
	assert.InDelta(t, 27.181, table.Rows[1].Cells[1].Float, 0.001)
	assert.True(t, table.Rows[1].Chosen)
	assert.Equal(t, "the other", table.Rows[2].Cells[0].Text)
	assert.InDelta(t, 4.280, table.Rows[2].Cells[1].Float, 0.001)
	assert.InDelta(t, 99.73, table.Footer[1].Float, 0.01)
}

// =============================================================================
// LRU
// =============================================================================

// The concrete scenario: reject "this", accept "that"; the accepted entry
// moves to the end and order is otherwise preserved.
func TestPickLRU_RejectThenAccept(t *testing.T) {
	u := &scriptedUI{script: acceptOnly("that")}
	eng := newTestEngine(u, &scriptedRand{})
	cat := &config.LRU{Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "that", choice)
	assert.Equal(t, []string{"this", "the other", "that"}, cat.Choices)
	assert.Equal(t, []string{"this", "that"}, u.prompts)
}

// A full scan with no acceptance earns one disapproval and restarts the
// scan from the front of the unchanged list.
func TestPickLRU_NoToAllRestartsScan(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(3)}
	eng := newTestEngine(u, &scriptedRand{})
	cat := &config.LRU{Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)
	assert.Equal(t, []string{"this", "that", "the other", "this"}, u.prompts)
	assert.Equal(t, []string{"🤨"}, u.infos)
	assert.Equal(t, []string{"that", "the other", "this"}, cat.Choices)
}

// The verbose table lists the rest of the scan in reverse, with the
// offered entry last and flagged chosen.
func TestPickLRU_VerboseTable(t *testing.T) {
	u := &scriptedUI{displayTables: true, script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{})
	cat := &config.LRU{Choices: threeChoices()}
	cfg := config.Config{"things": cat}

	choice, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Equal(t, "this", choice)

	require.Len(t, u.tables, 1)
	table := u.tables[0]
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "the other", table.Rows[0].Cells[0].Text)
	assert.False(t, table.Rows[0].Chosen)
	assert.Equal(t, "that", table.Rows[1].Cells[0].Text)
	assert.False(t, table.Rows[1].Chosen)
	assert.Equal(t, "this", table.Rows[2].Cells[0].Text)
	assert.True(t, table.Rows[2].Chosen)
	assert.Empty(t, table.Footer)
}

// Table data must not be built unless the UI asks for it.
func TestPick_NoTablesWhenDisplayDisabled(t *testing.T) {
	u := &scriptedUI{script: acceptAfter(0)}
	eng := newTestEngine(u, &scriptedRand{ints: []int64{0}})
	cfg := config.Config{"things": &config.Even{Choices: threeChoices()}}

	_, err := eng.Pick(cfg, "things")

	require.NoError(t, err)
	assert.Empty(t, u.tables)
}
