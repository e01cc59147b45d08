// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config holds the persisted picker configuration: a mapping from
// category names to Category values, round-trippable through YAML.
//
// The on-disk format is strict. A category with an unknown "model" tag or
// any unrecognized field fails the load; nothing is silently ignored.
// Optional fields (stddev_scaling_factor, tickets, weight) may be omitted
// on input and are always emitted on output.
package config

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Model identifies the selection algorithm governing a category.
type Model string

const (
	ModelEven      Model = "even"
	ModelGaussian  Model = "gaussian"
	ModelInventory Model = "inventory"
	ModelLottery   Model = "lottery"
	ModelLRU       Model = "lru"
	ModelWeighted  Model = "weighted"
)

// Defaults for fields that may be omitted in the config file.
const (
	// DefaultStddevScalingFactor divides the choice count to derive the
	// standard deviation of the gaussian model.
	DefaultStddevScalingFactor = 3.0

	// DefaultWeight is the default for both tickets and weights.
	DefaultWeight uint64 = 1
)

// Category is the closed union over the six selection models. Concrete
// types are *Even, *Gaussian, *Inventory, *Lottery, *LRU, and *Weighted;
// the engine dispatches on the concrete type and mutates it in place.
type Category interface {
	// Model returns the algorithm tag for this category.
	Model() Model

	// Names returns the choice names in persisted order.
	Names() []string
}

// Even picks from its choices with an even distribution. A pick never
// mutates it.
type Even struct {
	Choices []string `validate:"min=1,dive,required"`
}

func (*Even) Model() Model { return ModelEven }

func (c *Even) Names() []string { return c.Choices }

// Gaussian prefers choices near the front of the list, sampling an index
// from a folded normal distribution with
// stddev = len(choices) / StddevScalingFactor. An accepted choice moves to
// the end of the list.
type Gaussian struct {
	StddevScalingFactor float64  `validate:"gt=0"`
	Choices             []string `validate:"min=1,dive,required"`
}

func (*Gaussian) Model() Model { return ModelGaussian }

func (c *Gaussian) Names() []string { return c.Choices }

// Inventory weights choices by their remaining tickets. An accepted
// choice loses one ticket; choices with zero tickets are never drawn.
type Inventory struct {
	Choices []InventoryChoice `validate:"min=1,dive"`
}

func (*Inventory) Model() Model { return ModelInventory }

func (c *Inventory) Names() []string {
	names := make([]string, len(c.Choices))
	for i, choice := range c.Choices {
		names[i] = choice.Name
	}
	return names
}

// InventoryChoice is one entry of an Inventory category.
type InventoryChoice struct {
	Name    string `validate:"required"`
	Tickets uint64
}

// Lottery weights choices by tickets. The accepted choice's tickets reset
// to zero, and every other choice accrues its own weight in tickets.
type Lottery struct {
	Choices []LotteryChoice `validate:"min=1,dive"`
}

func (*Lottery) Model() Model { return ModelLottery }

func (c *Lottery) Names() []string {
	names := make([]string, len(c.Choices))
	for i, choice := range c.Choices {
		names[i] = choice.Name
	}
	return names
}

// LotteryChoice is one entry of a Lottery category.
type LotteryChoice struct {
	Name    string `validate:"required"`
	Tickets uint64
	Weight  uint64
}

// LRU picks the least recently used choice, which lives at the front of
// the list. An accepted choice moves to the end.
type LRU struct {
	Choices []string `validate:"min=1,dive,required"`
}

func (*LRU) Model() Model { return ModelLRU }

func (c *LRU) Names() []string { return c.Choices }

// Weighted is a plain weighted distribution. A pick never mutates it.
type Weighted struct {
	Choices []WeightedChoice `validate:"min=1,dive"`
}

func (*Weighted) Model() Model { return ModelWeighted }

func (c *Weighted) Names() []string {
	names := make([]string, len(c.Choices))
	for i, choice := range c.Choices {
		names[i] = choice.Name
	}
	return names
}

// WeightedChoice is one entry of a Weighted category.
type WeightedChoice struct {
	Name   string `validate:"required"`
	Weight uint64
}

// =============================================================================
// YAML Round Trip
// =============================================================================

// Config is the full persisted configuration: category name to Category.
// It marshals with category names sorted so saved files are deterministic.
type Config map[string]Category

// Document structs bridge the Category union and its YAML shape. Optional
// fields are pointers so an omitted key can be told apart from an explicit
// zero when applying defaults.

type evenDoc struct {
	Model   Model    `yaml:"model"`
	Choices []string `yaml:"choices"`
}

type gaussianDoc struct {
	Model               Model    `yaml:"model"`
	StddevScalingFactor *float64 `yaml:"stddev_scaling_factor"`
	Choices             []string `yaml:"choices"`
}

type inventoryDoc struct {
	Model   Model                `yaml:"model"`
	Choices []inventoryChoiceDoc `yaml:"choices"`
}

type inventoryChoiceDoc struct {
	Name    string  `yaml:"name"`
	Tickets *uint64 `yaml:"tickets"`
}

type lotteryDoc struct {
	Model   Model              `yaml:"model"`
	Choices []lotteryChoiceDoc `yaml:"choices"`
}

type lotteryChoiceDoc struct {
	Name    string  `yaml:"name"`
	Tickets *uint64 `yaml:"tickets"`
	Weight  *uint64 `yaml:"weight"`
}

type lruDoc struct {
	Model   Model    `yaml:"model"`
	Choices []string `yaml:"choices"`
}

type weightedDoc struct {
	Model   Model               `yaml:"model"`
	Choices []weightedChoiceDoc `yaml:"choices"`
}

type weightedChoiceDoc struct {
	Name   string  `yaml:"name"`
	Weight *uint64 `yaml:"weight"`
}

// UnmarshalYAML decodes the full category mapping, dispatching each entry
// on its "model" tag and rejecting unknown tags and fields.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("config root must be a mapping of category names, got %s", nodeKind(node))
	}

	out := make(Config, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, dup := out[name]; dup {
			return fmt.Errorf("category %q: duplicate definition", name)
		}
		category, err := decodeCategory(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		out[name] = category
	}
	*c = out
	return nil
}

// MarshalYAML emits categories sorted by name, with defaulted optional
// fields always present.
func (c Config) MarshalYAML() (interface{}, error) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		var key yaml.Node
		if err := key.Encode(name); err != nil {
			return nil, err
		}
		var value yaml.Node
		if err := value.Encode(docFor(c[name])); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		root.Content = append(root.Content, &key, &value)
	}
	return root, nil
}

func decodeCategory(node *yaml.Node) (Category, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("must be a mapping, got %s", nodeKind(node))
	}

	model, err := modelTag(node)
	if err != nil {
		return nil, err
	}

	switch model {
	case ModelEven:
		var doc evenDoc
		if err := decodeStrict(node, &doc); err != nil {
			return nil, err
		}
		return &Even{Choices: doc.Choices}, nil

	case ModelGaussian:
		var doc gaussianDoc
		if err := decodeStrict(node, &doc); err != nil {
			return nil, err
		}
		return &Gaussian{
			StddevScalingFactor: valueOr(doc.StddevScalingFactor, DefaultStddevScalingFactor),
			Choices:             doc.Choices,
		}, nil

	case ModelInventory:
		var doc inventoryDoc
		if err := decodeStrict(node, &doc); err != nil {
			return nil, err
		}
		choices := make([]InventoryChoice, len(doc.Choices))
		for i, choice := range doc.Choices {
			choices[i] = InventoryChoice{
				Name:    choice.Name,
				Tickets: valueOr(choice.Tickets, DefaultWeight),
			}
		}
		return &Inventory{Choices: choices}, nil

	case ModelLottery:
		var doc lotteryDoc
		if err := decodeStrict(node, &doc); err != nil {
			return nil, err
		}
		choices := make([]LotteryChoice, len(doc.Choices))
		for i, choice := range doc.Choices {
			choices[i] = LotteryChoice{
				Name:    choice.Name,
				Tickets: valueOr(choice.Tickets, DefaultWeight),
				Weight:  valueOr(choice.Weight, DefaultWeight),
			}
		}
		return &Lottery{Choices: choices}, nil

	case ModelLRU:
		var doc lruDoc
		if err := decodeStrict(node, &doc); err != nil {
			return nil, err
		}
		return &LRU{Choices: doc.Choices}, nil

	case ModelWeighted:
		var doc weightedDoc
		if err := decodeStrict(node, &doc); err != nil {
			return nil, err
		}
		choices := make([]WeightedChoice, len(doc.Choices))
		for i, choice := range doc.Choices {
			choices[i] = WeightedChoice{
				Name:   choice.Name,
				Weight: valueOr(choice.Weight, DefaultWeight),
			}
		}
		return &Weighted{Choices: choices}, nil

	default:
		return nil, fmt.Errorf("unknown model %q", model)
	}
}

// docFor converts a Category back into its document form for emission.
func docFor(category Category) interface{} {
	switch c := category.(type) {
	case *Even:
		return evenDoc{Model: ModelEven, Choices: c.Choices}
	case *Gaussian:
		ssf := c.StddevScalingFactor
		return gaussianDoc{Model: ModelGaussian, StddevScalingFactor: &ssf, Choices: c.Choices}
	case *Inventory:
		choices := make([]inventoryChoiceDoc, len(c.Choices))
		for i := range c.Choices {
			choices[i] = inventoryChoiceDoc{Name: c.Choices[i].Name, Tickets: &c.Choices[i].Tickets}
		}
		return inventoryDoc{Model: ModelInventory, Choices: choices}
	case *Lottery:
		choices := make([]lotteryChoiceDoc, len(c.Choices))
		for i := range c.Choices {
			choices[i] = lotteryChoiceDoc{
				Name:    c.Choices[i].Name,
				Tickets: &c.Choices[i].Tickets,
				Weight:  &c.Choices[i].Weight,
			}
		}
		return lotteryDoc{Model: ModelLottery, Choices: choices}
	case *LRU:
		return lruDoc{Model: ModelLRU, Choices: c.Choices}
	case *Weighted:
		choices := make([]weightedChoiceDoc, len(c.Choices))
		for i := range c.Choices {
			choices[i] = weightedChoiceDoc{Name: c.Choices[i].Name, Weight: &c.Choices[i].Weight}
		}
		return weightedDoc{Model: ModelWeighted, Choices: choices}
	default:
		return nil
	}
}

// modelTag extracts the "model" discriminator from a category mapping.
func modelTag(node *yaml.Node) (Model, error) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "model" {
			return Model(node.Content[i+1].Value), nil
		}
	}
	return "", fmt.Errorf("missing required field \"model\"")
}

// decodeStrict re-decodes a node with unknown-field checking enabled.
// yaml.Node.Decode has no strict mode, so the node takes one round trip
// through a decoder with KnownFields set.
func decodeStrict(node *yaml.Node, out interface{}) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	default:
		return "an unexpected node"
	}
}

func valueOr[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}
