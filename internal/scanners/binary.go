// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/pathclass"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func init() {
	scanner.Register(&BinaryScanner{})
}

// BinaryScanner flags native-addon and executable files that cannot be
// source-reviewed (spec section 4.6).
type BinaryScanner struct{}

// Name implements scanner.Scanner.
func (s *BinaryScanner) Name() string { return "binaries" }

// Scan implements scanner.Scanner.
func (s *BinaryScanner) Scan(ctx context.Context, artifactRoot string, _ scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	var findings []finding.Finding
	byExt := map[string]int{}

	walkErr := walkFiltered(artifactRoot, func(relPath string) bool {
		return pathclass.IsNativeAddonExt(filepath.Ext(relPath))
	}, func(relPath, absPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(relPath))
		byExt[ext]++
		findings = append(findings, finding.Finding{
			Scanner: "binaries", Severity: finding.SeverityWarning,
			Message: "binary file cannot be source-reviewed", File: relPath,
		})
		return nil
	})
	if isCancellation(walkErr) {
		return cancelledResult(s.Name(), start, walkErr)
	}
	if walkErr != nil {
		res.Passed = true
		res.Summary = "No binary files found"
		res.Duration = time.Since(start)
		return res
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = binarySummary(byExt)
	res.Duration = time.Since(start)
	return res
}

func binarySummary(byExt map[string]int) string {
	if len(byExt) == 0 {
		return "No binary files found"
	}
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%d %s", byExt[ext], ext))
	}
	return "Binary files: " + strings.Join(parts, ", ")
}

var _ scanner.Scanner = (*BinaryScanner)(nil)
