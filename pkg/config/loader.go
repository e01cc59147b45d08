// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config location when set.
const EnvConfigPath = "RPICK_CONFIG"

var validate = validator.New()

// DefaultPath resolves the config file location: $RPICK_CONFIG if set,
// otherwise ~/.config/rpick.yml.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rpick.yml"), nil
}

// Load reads and strictly decodes the config file at path. Every category
// is structurally validated after decode: at least one choice, no empty
// choice names, a positive scaling factor for gaussian categories.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Validate in name order so a file with several problems reports the
	// same one every run.
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := validate.Struct(cfg[name]); err != nil {
			return nil, fmt.Errorf("category %q is invalid: %w", name, err)
		}
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
// Categories are emitted sorted by name and all defaulted fields are
// written out, so a load/save cycle is stable.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize the config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write the config file: %w", err)
	}
	return nil
}
