// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package config

import (
	"sort"
	"time"
)

// CLIOptions carries the flags the user passed on the command line. A zero
// value means "not set" for the tri-state (*bool) flags — letting a file
// config or default take over — while the string/bool flags use their own
// sentinel ("" / false) as "not set".
type CLIOptions struct {
	OutputFormat string // "json" or "" for human.
	NoColor      bool
	NoGitHub     bool
	NoDiff       bool
	FailOn       string
	GitHubToken  string
}

// Resolved is the final, merged configuration consumed by the orchestrator
// and CLI after applying the precedence order: CLI flags > repo config file
// > built-in defaults.
type Resolved struct {
	OutputFormat string
	NoColor      bool
	NoGitHub     bool
	NoDiff       bool
	FailOn       string
	GitHubToken  string
	RegistryURL  string
	Timeout      time.Duration

	// DisabledScanners lists the scanner names the config file explicitly
	// set "enabled: false" for, sorted for deterministic ordering. There is
	// no CLI equivalent; this is a file-only setting.
	DisabledScanners []string
}

// defaultFailOn is applied when neither the CLI nor the config file names a
// --fail-on grade: every grade passes through to the scorer's exit code.
const defaultFailOn = "F"

// Merge combines file-based config with CLI flags. CLI values take
// precedence over the file's; the file's values take precedence over
// built-in defaults.
func Merge(fileCfg *Config, cli CLIOptions) Resolved {
	if fileCfg == nil {
		fileCfg = &Config{}
	}

	resolved := Resolved{
		OutputFormat:     firstNonEmpty(cli.OutputFormat, fileCfg.OutputFormat),
		NoColor:          cli.NoColor || boolOr(fileCfg.NoColor, false),
		NoGitHub:         cli.NoGitHub || boolOr(fileCfg.NoGitHub, false),
		NoDiff:           cli.NoDiff || boolOr(fileCfg.NoDiff, false),
		FailOn:           firstNonEmpty(cli.FailOn, fileCfg.FailOn, defaultFailOn),
		GitHubToken:      firstNonEmpty(cli.GitHubToken, fileCfg.GitHubToken),
		RegistryURL:      fileCfg.RegistryURL,
		Timeout:          parseTimeout(fileCfg.Timeout),
		DisabledScanners: disabledScanners(fileCfg.Scanners),
	}
	return resolved
}

// parseTimeout parses the config file's "timeout" string (e.g. "30s"). An
// empty or unparseable value yields zero, meaning "no timeout applied".
func parseTimeout(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func disabledScanners(scanners map[string]ScannerConfig) []string {
	var names []string
	for name, cfg := range scanners {
		if cfg.Enabled != nil && !*cfg.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
