// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func init() {
	scanner.Register(&HooksScanner{})
}

// dangerousHookNames is the fixed set of lifecycle hooks the scanner
// inspects (spec 4.4), in a fixed order so findings are emitted
// deterministically when a manifest trips more than one of them.
var dangerousHookNames = []string{
	"install",
	"postinstall",
	"postuninstall",
	"preinstall",
	"preuninstall",
	"uninstall",
}

// shellCommandMarkers are substrings (case-insensitive) that indicate a
// lifecycle script shells out.
var shellCommandMarkers = []string{
	"curl", "wget", "bash", "sh -c", "node -e", "powershell", "cmd /c",
}

// HooksScanner inspects package-manifest lifecycle scripts for dangerous
// hooks (spec section 4.4).
type HooksScanner struct{}

// Name implements scanner.Scanner.
func (s *HooksScanner) Name() string { return "hooks" }

// Scan implements scanner.Scanner.
func (s *HooksScanner) Scan(_ context.Context, _ string, opts scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	scripts := manifestStringMap(opts.Manifest, "scripts")
	if len(scripts) == 0 {
		res.Passed = true
		res.Summary = "No lifecycle scripts defined"
		res.Duration = time.Since(start)
		return res
	}

	var findings []finding.Finding
	if body, ok := scripts["prepare"]; ok {
		findings = append(findings, finding.Finding{
			Scanner: "hooks", Severity: finding.SeverityInfo,
			Message: "prepare hook defined", File: "package.json",
			Evidence: truncate(body, 200),
		})
	}

	for _, name := range dangerousHookNames {
		body, ok := scripts[name]
		if !ok {
			continue
		}
		lower := strings.ToLower(body)
		shellsOut := false
		for _, marker := range shellCommandMarkers {
			if strings.Contains(lower, marker) {
				shellsOut = true
				break
			}
		}
		sev := finding.SeverityWarning
		msg := fmt.Sprintf("%s: lifecycle script defined", name)
		if shellsOut {
			sev = finding.SeverityCritical
			msg = fmt.Sprintf("%s: executes shell commands", name)
		}
		findings = append(findings, finding.Finding{
			Scanner: "hooks", Severity: sev, Message: msg, File: "package.json",
			Evidence: truncate(body, 200),
		})
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = hooksSummary(findings)
	res.Duration = time.Since(start)
	return res
}

func hooksSummary(findings []finding.Finding) string {
	if len(findings) == 0 {
		return "No dangerous lifecycle hooks found"
	}
	c, w, i := countBySeverity(findings)
	return fmt.Sprintf("Lifecycle hooks: %d critical, %d warning, %d info", c, w, i)
}

var _ scanner.Scanner = (*HooksScanner)(nil)
