// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the .npmaudit.yaml file from the given repository root.
// If the file does not exist, it returns a zero-value Config and nil error.
func Load(repoPath string) (*Config, error) {
	path := filepath.Join(repoPath, FileName)
	data, err := os.ReadFile(path) //nolint:gosec // caller-provided repo path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
