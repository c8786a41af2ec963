// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func TestDependencyScannerUnpinnedVersion(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"dependencies": map[string]any{"left-pad": "*"},
	}}
	res := (&DependencyScanner{}).Scan(context.Background(), "", opts)
	assert.False(t, res.Passed)
	foundCritical := false
	for _, f := range res.Findings {
		if f.Severity == finding.SeverityCritical {
			foundCritical = true
		}
	}
	assert.True(t, foundCritical)
}

func TestDependencyScannerGitURL(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"dependencies": map[string]any{"foo": "git+https://example.com/foo.git"},
	}}
	res := (&DependencyScanner{}).Scan(context.Background(), "", opts)
	foundWarning := false
	for _, f := range res.Findings {
		if f.Severity == finding.SeverityWarning {
			foundWarning = true
		}
	}
	assert.True(t, foundWarning)
}

func TestDependencyScannerBloat(t *testing.T) {
	deps := map[string]any{}
	for i := 0; i < 55; i++ {
		deps[fmt.Sprintf("pkg-%d", i)] = "1.0.0"
	}
	opts := scanner.Options{Manifest: map[string]any{"dependencies": deps}}
	res := (&DependencyScanner{}).Scan(context.Background(), "", opts)
	assert.False(t, res.Passed)

	criticalBloat := false
	for _, f := range res.Findings {
		if f.Severity == finding.SeverityCritical && f.File == "" && f.Line == 0 {
			criticalBloat = true
		}
	}
	assert.True(t, criticalBloat)
}

func TestDependencyScannerMalformedSemverIsInfoOnly(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"dependencies": map[string]any{"weird-pkg": "not-a-version"},
	}}
	res := (&DependencyScanner{}).Scan(context.Background(), "", opts)
	assert.True(t, res.Passed)
	foundInfo := false
	for _, f := range res.Findings {
		if f.Severity == finding.SeverityInfo {
			foundInfo = true
		}
	}
	assert.True(t, foundInfo)
}

func TestDependencyScannerRangeSpecifierIsNotFlaggedAsMalformed(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"dependencies": map[string]any{"left-pad": "^1.3.0"},
	}}
	res := (&DependencyScanner{}).Scan(context.Background(), "", opts)
	assert.True(t, res.Passed)
	assert.Empty(t, res.Findings)
}

func TestDependencyScannerNoIssues(t *testing.T) {
	opts := scanner.Options{Manifest: map[string]any{
		"dependencies": map[string]any{"left-pad": "1.3.0"},
	}}
	res := (&DependencyScanner{}).Scan(context.Background(), "", opts)
	assert.True(t, res.Passed)
	assert.Equal(t, "1 dependencies, no issues found", res.Summary)
}
