// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package config handles .npmaudit.yaml configuration files.
package config

// Config represents the contents of a .npmaudit.yaml file.
type Config struct {
	OutputFormat string                   `yaml:"output_format,omitempty"`
	FailOn       string                   `yaml:"fail_on,omitempty"`
	NoGitHub     *bool                    `yaml:"no_github,omitempty"`
	NoDiff       *bool                    `yaml:"no_diff,omitempty"`
	NoColor      *bool                    `yaml:"no_color,omitempty"`
	RegistryURL  string                   `yaml:"registry_url,omitempty"`
	GitHubToken  string                   `yaml:"github_token,omitempty"`
	Timeout      string                   `yaml:"timeout,omitempty"`
	Scanners     map[string]ScannerConfig `yaml:"scanners,omitempty"`
}

// ScannerConfig holds per-scanner overrides in the config file.
type ScannerConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// FileName is the expected config file name in a repository root.
const FileName = ".npmaudit.yaml"
