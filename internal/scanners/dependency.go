// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func init() {
	scanner.Register(&DependencyScanner{})
}

const (
	dependencyCountCritical = 50
	dependencyCountWarning  = 20
)

var gitURLShape = regexp.MustCompile(`^(git://|git\+https?://|github:|gitlab:|bitbucket:|https://[^\s]+\.git$|[\w.-]+/[\w.-]+$)`)

// DependencyScanner inspects the manifest's dependency maps for bloat and
// unpinned or git-sourced versions (spec section 4.7).
type DependencyScanner struct{}

// Name implements scanner.Scanner.
func (s *DependencyScanner) Name() string { return "dependencies" }

// Scan implements scanner.Scanner.
func (s *DependencyScanner) Scan(_ context.Context, _ string, opts scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	direct := manifestStringMap(opts.Manifest, "dependencies")
	optional := manifestStringMap(opts.Manifest, "optionalDependencies")
	total := len(direct) + len(optional)

	var findings []finding.Finding
	switch {
	case total > dependencyCountCritical:
		findings = append(findings, finding.Finding{
			Scanner: "dependencies", Severity: finding.SeverityCritical,
			Message: fmt.Sprintf("%d direct+optional dependencies exceeds the high-bloat threshold", total),
		})
	case total > dependencyCountWarning:
		findings = append(findings, finding.Finding{
			Scanner: "dependencies", Severity: finding.SeverityWarning,
			Message: fmt.Sprintf("%d direct+optional dependencies exceeds the moderate-bloat threshold", total),
		})
	}

	names := make([]string, 0, total)
	all := map[string]string{}
	for name, v := range direct {
		all[name] = v
	}
	for name, v := range optional {
		if _, ok := all[name]; !ok {
			all[name] = v
		}
	}
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		version := all[name]
		if isUnpinnedVersion(version) {
			findings = append(findings, finding.Finding{
				Scanner: "dependencies", Severity: finding.SeverityCritical,
				Message: fmt.Sprintf("%s: unpinned version %q", name, version),
			})
			continue
		}
		if gitURLShape.MatchString(version) {
			findings = append(findings, finding.Finding{
				Scanner: "dependencies", Severity: finding.SeverityWarning,
				Message: fmt.Sprintf("%s: git-sourced dependency %q", name, version),
			})
			continue
		}
		if exact, ok := exactPin(version); ok && !semver.IsValid("v"+exact) {
			findings = append(findings, finding.Finding{
				Scanner: "dependencies", Severity: finding.SeverityInfo,
				Message: fmt.Sprintf("%s: version %q does not parse as semver", name, version),
			})
		}
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = dependencySummary(total, findings)
	res.Duration = time.Since(start)
	return res
}

func isUnpinnedVersion(v string) bool {
	return v == "*" || v == "" || v == "latest"
}

// exactPin reports whether v names a single exact version rather than a
// semver range (^, ~, >, <, x, ||, or a space-separated comparator set), and
// returns the bare version string with a leading "=" stripped if so.
func exactPin(v string) (string, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(v), "=")
	if trimmed == "" {
		return "", false
	}
	if strings.ContainsAny(trimmed, "^~<>x*| ") {
		return "", false
	}
	return trimmed, true
}

func dependencySummary(total int, findings []finding.Finding) string {
	if len(findings) == 0 {
		return fmt.Sprintf("%d dependencies, no issues found", total)
	}
	c, w, _ := countBySeverity(findings)
	return fmt.Sprintf("%d dependencies: %d critical, %d warning issue(s)", total, c, w)
}

var _ scanner.Scanner = (*DependencyScanner)(nil)
