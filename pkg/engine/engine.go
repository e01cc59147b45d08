// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine implements the selection algorithms behind a pick.
//
// A pick dispatches on the category's model, runs a consent loop (draw a
// candidate, optionally show a chance table, ask yes/no) until the user
// accepts something, then applies that model's state mutation to the
// category in place. The engine performs no I/O of its own: all human
// interaction goes through the injected ui.UI, and configuration
// persistence belongs to the caller.
//
// None of the loops here are bounded. A user who rejects every candidate
// forever keeps the pick running forever; that is the designed behavior,
// not an oversight.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/adeschamps/rpick/pkg/config"
	"github.com/adeschamps/rpick/pkg/ui"
)

// disapproval is shown each time the user rejects the last remaining
// candidate, right before the pool resets.
const disapproval = "🤨"

// NotFoundError reports a pick against a category name that has no entry
// in the config.
type NotFoundError struct {
	Category string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Category %s not found in config.", e.Category)
}

// Engine runs picks. It is not safe for concurrent use; a caller
// embedding it in a concurrent host must serialize access.
type Engine struct {
	ui  ui.UI
	rng Rand
}

// New creates an Engine talking to the given UI, seeded from the current
// time. Use SetRand to install a deterministic source.
func New(u ui.UI) *Engine {
	return &Engine{
		ui:  u,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the engine's random source.
func (e *Engine) SetRand(r Rand) {
	e.rng = r
}

// Pick chooses one item from the named category, mutating the category in
// place according to its model. It returns the accepted choice's name.
//
// The only error condition is an unknown category name; everything past
// the lookup loops until the user accepts a candidate.
func (e *Engine) Pick(cfg config.Config, category string) (string, error) {
	cat, ok := cfg[category]
	if !ok {
		return "", &NotFoundError{Category: category}
	}

	switch c := cat.(type) {
	case *config.Even:
		return e.pickEven(c.Choices), nil
	case *config.Gaussian:
		return e.pickGaussian(c), nil
	case *config.Inventory:
		return e.pickInventory(c.Choices), nil
	case *config.Lottery:
		return e.pickLottery(c.Choices), nil
	case *config.LRU:
		return e.pickLRU(c), nil
	case *config.Weighted:
		return e.pickWeighted(c.Choices), nil
	default:
		return "", fmt.Errorf("category %s has unsupported model %q", category, cat.Model())
	}
}

func (e *Engine) getConsent(choice string) bool {
	return e.ui.PromptChoice(choice)
}

func (e *Engine) expressDisapproval() {
	e.ui.Info(disapproval)
}

// =============================================================================
// Shared Weighted-Consent Core
// =============================================================================

// candidate is one entry of the working pool for the weighted models.
// index is the entry's position in the persisted choice list, which
// survives pool shrinking so the caller can mutate the right entry.
type candidate struct {
	index  int
	name   string
	weight uint64
}

// pickWeightedCommon is the consent loop shared by the even, weighted,
// inventory, and lottery models. initializeCandidates produces the full
// eligible pool; entries a model considers ineligible (zero tickets) must
// already be filtered out. It returns the accepted candidate's original
// index.
//
// A rejection removes the drawn candidate from the pool, renormalizing
// the remaining probabilities. Rejecting the last candidate resets the
// pool to the full eligible set after a note of disapproval.
func (e *Engine) pickWeightedCommon(initializeCandidates func() []candidate) int {
	candidates := initializeCandidates()

	for {
		drawn := e.drawWeighted(candidates)

		if e.ui.CallDisplayTable() {
			e.ui.DisplayTable(weightedChanceTable(drawn.index, candidates))
		}

		if e.getConsent(drawn.name) {
			return drawn.index
		}

		if len(candidates) > 1 {
			pos := slices.IndexFunc(candidates, func(c candidate) bool { return c.name == drawn.name })
			candidates = slices.Delete(candidates, pos, pos+1)
		} else {
			e.expressDisapproval()
			candidates = initializeCandidates()
		}
	}
}

// drawWeighted samples one candidate with probability proportional to its
// weight, consuming exactly one uniform draw. Zero-weight entries can sit
// in the pool (the weighted model keeps them) but are never returned.
func (e *Engine) drawWeighted(candidates []candidate) candidate {
	var total uint64
	for _, c := range candidates {
		total += c.weight
	}

	remaining := uint64(e.rng.Int63n(int64(total)))
	for _, c := range candidates {
		if remaining < c.weight {
			return c
		}
		remaining -= c.weight
	}
	// Unreachable: the draw is strictly below the cumulative total.
	return candidates[len(candidates)-1]
}

// =============================================================================
// Models
// =============================================================================

// pickEven gives every choice weight 1.
func (e *Engine) pickEven(choices []string) string {
	initializeCandidates := func() []candidate {
		candidates := make([]candidate, len(choices))
		for i, name := range choices {
			candidates[i] = candidate{index: i, name: name, weight: 1}
		}
		return candidates
	}

	index := e.pickWeightedCommon(initializeCandidates)
	return choices[index]
}

// pickWeighted uses each choice's configured weight.
func (e *Engine) pickWeighted(choices []config.WeightedChoice) string {
	initializeCandidates := func() []candidate {
		candidates := make([]candidate, len(choices))
		for i, choice := range choices {
			candidates[i] = candidate{index: i, name: choice.Name, weight: choice.Weight}
		}
		return candidates
	}

	index := e.pickWeightedCommon(initializeCandidates)
	return choices[index].Name
}

// pickInventory weights choices by remaining tickets and spends one
// ticket on acceptance.
func (e *Engine) pickInventory(choices []config.InventoryChoice) string {
	initializeCandidates := func() []candidate {
		var candidates []candidate
		for i, choice := range choices {
			if choice.Tickets > 0 {
				candidates = append(candidates, candidate{index: i, name: choice.Name, weight: choice.Tickets})
			}
		}
		return candidates
	}

	index := e.pickWeightedCommon(initializeCandidates)

	choices[index].Tickets--
	return choices[index].Name
}

// pickLottery weights choices by tickets. On acceptance every choice
// accrues its own weight in tickets, then the winner is zeroed, so the
// winner's accrual never survives its own win.
func (e *Engine) pickLottery(choices []config.LotteryChoice) string {
	initializeCandidates := func() []candidate {
		var candidates []candidate
		for i, choice := range choices {
			if choice.Tickets > 0 {
				candidates = append(candidates, candidate{index: i, name: choice.Name, weight: choice.Tickets})
			}
		}
		return candidates
	}

	index := e.pickWeightedCommon(initializeCandidates)

	for i := range choices {
		choices[i].Tickets += choices[i].Weight
	}
	choices[index].Tickets = 0
	return choices[index].Name
}

// pickGaussian samples an index from a folded normal distribution, which
// concentrates probability mass at the front of the list. The loop runs
// on a working copy; the persisted list is only touched on acceptance,
// when the accepted name moves to its end.
//
// A draw past the end of the working copy is discarded and retried
// without counting as a rejection. The normal distribution has an
// unbounded tail, so there is no cap on retries; an unlucky sequence can
// take a long time, and that matches the original behavior on purpose.
func (e *Engine) pickGaussian(cat *config.Gaussian) string {
	working := slices.Clone(cat.Choices)

	for {
		stddev := float64(len(working)) / cat.StddevScalingFactor
		index := int(math.Abs(e.rng.NormFloat64() * stddev))
		if index >= len(working) {
			continue
		}
		name := working[index]

		if e.ui.CallDisplayTable() {
			e.ui.DisplayTable(gaussianChanceTable(index, working, stddev))
		}

		if e.getConsent(name) {
			pos := slices.Index(cat.Choices, name)
			cat.Choices = append(slices.Delete(cat.Choices, pos, pos+1), name)
			return name
		}

		if len(working) > 1 {
			pos := slices.Index(working, name)
			working = slices.Delete(working, pos, pos+1)
		} else {
			e.expressDisapproval()
			working = slices.Clone(cat.Choices)
		}
	}
}

// pickLRU walks the list front to back, offering the least recently used
// choice first. An accepted choice moves to the end. A full scan with no
// acceptance earns disapproval and starts the scan over.
func (e *Engine) pickLRU(cat *config.LRU) string {
	for {
		for index, choice := range cat.Choices {
			if e.ui.CallDisplayTable() {
				e.ui.DisplayTable(lruTable(index, cat.Choices))
			}

			if e.getConsent(choice) {
				chosen := cat.Choices[index]
				cat.Choices = append(slices.Delete(cat.Choices, index, index+1), chosen)
				return chosen
			}
		}
		e.expressDisapproval()
	}
}
