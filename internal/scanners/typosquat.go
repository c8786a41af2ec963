// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
	"github.com/npmaudit/npmaudit/internal/typodata"
)

func init() {
	scanner.Register(&TyposquattingScanner{})
}

const typosquatMaxDistance = 2

// TyposquattingScanner compares the package name against a bundled list of
// popular package names using Levenshtein distance (spec section 4.8).
type TyposquattingScanner struct {
	// popularNames overrides the bundled list in tests.
	popularNames []string
	// loadErr overrides the bundled-list load error in tests.
	loadErr error
}

// Name implements scanner.Scanner.
func (s *TyposquattingScanner) Name() string { return "typosquatting" }

// Scan implements scanner.Scanner. artifactRoot is unused: the scanner
// operates purely on the package name carried in opts.Manifest["name"].
func (s *TyposquattingScanner) Scan(_ context.Context, _ string, opts scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	names := s.popularNames
	err := s.loadErr
	if names == nil && err == nil {
		names, err = typodata.PopularNames()
	}
	if err != nil || len(names) == 0 {
		res.Passed = true
		res.Summary = "Popular packages list unavailable — skipped"
		res.Duration = time.Since(start)
		return res
	}

	pkgName := stripScope(manifestString(opts.Manifest, "name"))
	lower := strings.ToLower(pkgName)

	for _, candidate := range names {
		if strings.ToLower(stripScope(candidate)) == lower {
			res.Passed = true
			res.Summary = "is a known popular package"
			res.Duration = time.Since(start)
			return res
		}
	}

	type match struct {
		name     string
		distance int
	}
	var matches []match
	for _, candidate := range names {
		stripped := strings.ToLower(stripScope(candidate))
		d := levenshtein(lower, stripped)
		if d <= typosquatMaxDistance {
			matches = append(matches, match{name: candidate, distance: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	var findings []finding.Finding
	for _, m := range matches {
		sev := finding.SeverityWarning
		if m.distance == 1 {
			sev = finding.SeverityCritical
		}
		findings = append(findings, finding.Finding{
			Scanner: "typosquatting", Severity: sev,
			Message: fmt.Sprintf("name %q is edit-distance %d from popular package %q", pkgName, m.distance, m.name),
		})
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = typosquatSummary(findings)
	res.Duration = time.Since(start)
	return res
}

func typosquatSummary(findings []finding.Finding) string {
	if len(findings) == 0 {
		return "No typosquatting indicators found"
	}
	c, w, _ := countBySeverity(findings)
	return fmt.Sprintf("Typosquatting indicators: %d critical, %d warning", c, w)
}

func stripScope(name string) string {
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			return name[idx+1:]
		}
	}
	return name
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minInt(del, minInt(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ scanner.Scanner = (*TyposquattingScanner)(nil)
