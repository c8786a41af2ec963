// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func TestTyposquattingScannerExactMatch(t *testing.T) {
	s := &TyposquattingScanner{popularNames: []string{"react", "lodash"}}
	opts := scanner.Options{Manifest: map[string]any{"name": "react"}}
	res := s.Scan(context.Background(), "", opts)
	assert.True(t, res.Passed)
	assert.Equal(t, "is a known popular package", res.Summary)
}

func TestTyposquattingScannerDistanceOne(t *testing.T) {
	s := &TyposquattingScanner{popularNames: []string{"react", "lodash"}}
	opts := scanner.Options{Manifest: map[string]any{"name": "reakt"}}
	res := s.Scan(context.Background(), "", opts)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.SeverityCritical, res.Findings[0].Severity)
	assert.False(t, res.Passed)
}

func TestTyposquattingScannerDistanceTwo(t *testing.T) {
	s := &TyposquattingScanner{popularNames: []string{"react"}}
	opts := scanner.Options{Manifest: map[string]any{"name": "reaact"}}
	res := s.Scan(context.Background(), "", opts)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.SeverityWarning, res.Findings[0].Severity)
}

func TestTyposquattingScannerScopedName(t *testing.T) {
	s := &TyposquattingScanner{popularNames: []string{"@babel/core"}}
	opts := scanner.Options{Manifest: map[string]any{"name": "@babel/core"}}
	res := s.Scan(context.Background(), "", opts)
	assert.True(t, res.Passed)
	assert.Equal(t, "is a known popular package", res.Summary)
}

func TestTyposquattingScannerListUnavailable(t *testing.T) {
	s := &TyposquattingScanner{loadErr: errors.New("boom")}
	opts := scanner.Options{Manifest: map[string]any{"name": "whatever"}}
	res := s.Scan(context.Background(), "", opts)
	assert.True(t, res.Passed)
	assert.Equal(t, "Popular packages list unavailable — skipped", res.Summary)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("react", "react"))
	assert.Equal(t, 1, levenshtein("react", "reakt"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
