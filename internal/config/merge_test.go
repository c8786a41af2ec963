// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestMergeCLITakesPrecedenceOverFile(t *testing.T) {
	file := &Config{OutputFormat: "json", FailOn: "D"}
	cli := CLIOptions{OutputFormat: "human", FailOn: "B"}

	resolved := Merge(file, cli)
	assert.Equal(t, "human", resolved.OutputFormat)
	assert.Equal(t, "B", resolved.FailOn)
}

func TestMergeFallsThroughToFileWhenCLIUnset(t *testing.T) {
	file := &Config{OutputFormat: "json", NoGitHub: boolPtr(true)}
	resolved := Merge(file, CLIOptions{})
	assert.Equal(t, "json", resolved.OutputFormat)
	assert.True(t, resolved.NoGitHub)
}

func TestMergeDefaultsWhenNeitherSet(t *testing.T) {
	resolved := Merge(&Config{}, CLIOptions{})
	assert.Equal(t, defaultFailOn, resolved.FailOn)
	assert.False(t, resolved.NoGitHub)
	assert.False(t, resolved.NoDiff)
}

func TestMergeBoolFlagsAreStickyOnceSet(t *testing.T) {
	resolved := Merge(&Config{}, CLIOptions{NoGitHub: true})
	assert.True(t, resolved.NoGitHub)
}

func TestMergeNilFileConfig(t *testing.T) {
	resolved := Merge(nil, CLIOptions{OutputFormat: "json"})
	assert.Equal(t, "json", resolved.OutputFormat)
}

func TestMergeRegistryURLPassesThrough(t *testing.T) {
	resolved := Merge(&Config{RegistryURL: "https://registry.example.com"}, CLIOptions{})
	assert.Equal(t, "https://registry.example.com", resolved.RegistryURL)
}

func TestMergeTimeoutParsesDuration(t *testing.T) {
	resolved := Merge(&Config{Timeout: "45s"}, CLIOptions{})
	assert.Equal(t, 45*time.Second, resolved.Timeout)
}

func TestMergeTimeoutUnparseableYieldsZero(t *testing.T) {
	resolved := Merge(&Config{Timeout: "not-a-duration"}, CLIOptions{})
	assert.Zero(t, resolved.Timeout)
}

func TestMergeDisabledScannersSortedAndFiltered(t *testing.T) {
	file := &Config{Scanners: map[string]ScannerConfig{
		"typosquatting": {Enabled: boolPtr(false)},
		"binaries":      {Enabled: boolPtr(false)},
		"secrets":       {Enabled: boolPtr(true)},
		"hooks":         {},
	}}
	resolved := Merge(file, CLIOptions{})
	assert.Equal(t, []string{"binaries", "typosquatting"}, resolved.DisabledScanners)
}
