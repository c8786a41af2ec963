// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func init() {
	scanner.Register(&StaticScanner{})
}

// staticEvidenceMaxLen caps evidence strings, matching the 200-char rule.
const staticEvidenceMaxLen = 200

// staticPattern is one entry of the fixed pattern table in spec 4.2.
type staticPattern struct {
	group        string
	re           *regexp.Regexp
	severity     finding.Severity
	message      string
	cliExpected  bool
	checkContext bool
	// isBareExec marks the bare "exec(" pattern, which needs the
	// rule-3 de-duplication against execSync/execFile matches on the
	// same line.
	isBareExec bool
}

var staticPatterns = []staticPattern{
	{
		group: "code-exec", re: regexp.MustCompile(`\beval\s*\(`),
		severity: finding.SeverityCritical, message: "use of eval()",
		cliExpected: false, checkContext: true,
	},
	{
		group: "code-exec", re: regexp.MustCompile(`\bnew\s+Function\s*\(`),
		severity: finding.SeverityCritical, message: "dynamic code construction via the Function constructor",
		cliExpected: true, checkContext: true,
	},
	{
		group: "shell-exec", re: regexp.MustCompile(`require\(\s*['"` + "`" + `]child_process['"` + "`" + `]\s*\)|from\s+['"` + "`" + `]child_process['"` + "`" + `]`),
		severity: finding.SeverityCritical, message: "reference to the child_process module",
		cliExpected: true, checkContext: false,
	},
	{
		group: "shell-exec", re: regexp.MustCompile(`\bexecSync\s*\(`),
		severity: finding.SeverityCritical, message: "synchronous shell command execution",
		cliExpected: true, checkContext: true,
	},
	{
		group: "shell-exec", re: regexp.MustCompile(`\bexecFile(Sync)?\s*\(`),
		severity: finding.SeverityCritical, message: "direct execution of an external program",
		cliExpected: true, checkContext: true,
	},
	{
		group: "shell-exec", re: regexp.MustCompile(`\bspawn(Sync)?\s*\(`),
		severity: finding.SeverityCritical, message: "child process spawn",
		cliExpected: true, checkContext: true,
	},
	{
		group: "shell-exec", re: regexp.MustCompile(`(^|[^.\w])exec\s*\(`),
		severity: finding.SeverityCritical, message: "shell command execution",
		cliExpected: true, checkContext: true, isBareExec: true,
	},
	{
		group: "network", re: regexp.MustCompile(`\bfetch\s*\(`),
		severity: finding.SeverityWarning, message: "outbound network request via fetch()",
		cliExpected: true, checkContext: true,
	},
	{
		group: "network", re: regexp.MustCompile(`\bhttps?\.request\s*\(`),
		severity: finding.SeverityWarning, message: "outbound HTTP(S) request",
		cliExpected: true, checkContext: false,
	},
	{
		group: "network", re: regexp.MustCompile(`\bXMLHttpRequest\b`),
		severity: finding.SeverityWarning, message: "legacy XMLHttpRequest usage",
		cliExpected: false, checkContext: false,
	},
	{
		group: "network", re: regexp.MustCompile(`\baxios\b|\bgot\s*\(|\bnode-fetch\b|\bundici\b`),
		severity: finding.SeverityWarning, message: "known HTTP client library usage",
		cliExpected: true, checkContext: true,
	},
	{
		group: "dynamic-module", re: regexp.MustCompile(`require\s*\(\s*[^'"` + "`" + `)\s][^)]*\)`),
		severity: finding.SeverityWarning, message: "require() with a non-literal argument",
		cliExpected: true, checkContext: true,
	},
	{
		group: "env", re: regexp.MustCompile(`process\.env(\.\w+|\[)`),
		severity: finding.SeverityInfo, message: "environment variable access",
		cliExpected: false, checkContext: false,
	},
	{
		group: "fs", re: regexp.MustCompile(`\bfs\.(writeFile|writeFileSync|unlink|unlinkSync|rm|rmSync|rmdir|rmdirSync)\s*\(`),
		severity: finding.SeverityWarning, message: "filesystem write or removal",
		cliExpected: true, checkContext: false,
	},
}

// StaticScanner lexically scans source files for dangerous API uses
// (spec section 4.2).
type StaticScanner struct{}

// Name implements scanner.Scanner.
func (s *StaticScanner) Name() string { return "static" }

// Scan implements scanner.Scanner.
func (s *StaticScanner) Scan(ctx context.Context, artifactRoot string, opts scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	var findings []finding.Finding
	fileCount := 0

	walkErr := walkCodeFiles(artifactRoot, func(relPath, absPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		fs, ok := scanFile(absPath, relPath, opts.HasBin)
		if !ok {
			return nil
		}
		fileCount++
		findings = append(findings, fs...)
		return nil
	})

	if isCancellation(walkErr) {
		return cancelledResult(s.Name(), start, walkErr)
	}
	if walkErr != nil {
		// Missing artifact directory or similar I/O surprise: degrade to an
		// empty, passing result rather than propagate (spec 4.2 failure semantics).
		res.Passed = true
		res.Summary = "No source files found"
		res.Duration = time.Since(start)
		return res
	}

	if fileCount == 0 {
		res.Passed = true
		res.Summary = "No source files found"
		res.Duration = time.Since(start)
		return res
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = staticSummary(findings, fileCount, opts.HasBin)
	res.Duration = time.Since(start)
	return res
}

// scanFile scans one file line by line and returns the findings plus a
// bool reporting whether the file was readable.
func scanFile(absPath, relPath string, hasBin bool) ([]finding.Finding, bool) {
	data, err := readCapped(absPath, scanner.DefaultMaxFileBytes)
	if err != nil {
		return nil, false
	}

	var findings []finding.Finding
	lc := &lineContext{}

	scnr := bufio.NewScanner(bytes.NewReader(data))
	scnr.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scnr.Scan() {
		lineNo++
		line := scnr.Text()
		suppressed := lc.classify(line)

		// Rule 3: a bare exec( is only reported when the line doesn't
		// already match the more specific execSync/execFile patterns.
		execSyncOrFileMatched := false
		for _, p := range staticPatterns {
			if p.isBareExec {
				continue
			}
			if p.message == "synchronous shell command execution" || p.message == "direct execution of an external program" {
				if p.re.MatchString(line) {
					execSyncOrFileMatched = true
					break
				}
			}
		}

		for _, p := range staticPatterns {
			loc := p.re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			if p.isBareExec && execSyncOrFileMatched {
				continue
			}

			sev := p.severity
			msg := p.message
			inCode := true
			if p.checkContext {
				inCode = matchInCode(suppressed, loc[0])
				if !inCode {
					sev = finding.SeverityInfo
					msg = msg + " (in string/comment)"
				}
			}
			if hasBin && p.cliExpected {
				sev = finding.SeverityInfo
				msg = msg + " (expected for CLI tool)"
			}
			findings = append(findings, finding.Finding{
				Scanner:  "static",
				Severity: sev,
				Message:  msg,
				File:     relPath,
				Line:     lineNo,
				Evidence: truncate(line, staticEvidenceMaxLen),
			})
		}
	}
	return findings, true
}

func staticSummary(findings []finding.Finding, fileCount int, hasBin bool) string {
	c, w, i := countBySeverity(findings)
	if c == 0 && w == 0 && i == 0 {
		return "No dangerous patterns detected"
	}
	suffix := ""
	if hasBin {
		suffix = " (CLI tool — shell execution expected)"
	}
	return fmt.Sprintf("Found %d critical, %d warning, %d info pattern(s) across %d files%s", c, w, i, fileCount, suffix)
}

func countBySeverity(findings []finding.Finding) (critical, warning, info int) {
	for _, f := range findings {
		switch f.Severity {
		case finding.SeverityCritical:
			critical++
		case finding.SeverityWarning:
			warning++
		case finding.SeverityInfo:
			info++
		}
	}
	return
}

var _ scanner.Scanner = (*StaticScanner)(nil)
