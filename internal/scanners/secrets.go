// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func init() {
	scanner.Register(&SecretsScanner{})
}

// binaryExtensions is the fixed set of extensions skipped outright by the
// secret scanner without inspecting content (spec 4.5).
var binaryExtensions = map[string]bool{
	".node": true, ".so": true, ".dll": true, ".dylib": true, ".exe": true,
	".bin": true, ".wasm": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".ico": true, ".svg": true, ".webp": true,
	".mp3": true, ".mp4": true, ".wav": true, ".ogg": true, ".webm": true,
	".avi": true, ".zip": true, ".tar": true, ".gz": true, ".bz2": true,
	".xz": true, ".7z": true, ".rar": true, ".pdf": true, ".doc": true,
	".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
	".lock": true,
}

type secretPattern struct {
	name     string
	re       *regexp.Regexp
	severity finding.Severity
}

var secretPatterns = []secretPattern{
	{
		name:     "cloud-provider access key",
		re:       regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		severity: finding.SeverityCritical,
	},
	{
		name:     "PEM private key",
		re:       regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----`),
		severity: finding.SeverityCritical,
	},
	{
		name:     "code-hosting personal access token",
		re:       regexp.MustCompile(`gh[ps]_[A-Za-z0-9_-]{36,}`),
		severity: finding.SeverityCritical,
	},
	{
		name:     "package-registry token",
		re:       regexp.MustCompile(`npm_[A-Za-z0-9]{36,}`),
		severity: finding.SeverityCritical,
	},
	{
		name:     "credentials embedded in URL",
		re:       regexp.MustCompile(`https?://[^:/@\s]+:[^@/\s]+@`),
		severity: finding.SeverityCritical,
	},
	{
		name:     "generic API key assignment",
		re:       regexp.MustCompile(`(?i)api[_-]?key\s*[:=]\s*['"` + "`" + `][A-Za-z0-9]{20,}['"` + "`" + `]`),
		severity: finding.SeverityWarning,
	},
	{
		name:     "generic token assignment",
		re:       regexp.MustCompile(`(?i)token\s*[:=]\s*['"` + "`" + `][A-Za-z0-9]{20,}['"` + "`" + `]`),
		severity: finding.SeverityWarning,
	},
}

// SecretsScanner looks for credential-shaped literals in every non-binary
// file of the artifact (spec section 4.5).
type SecretsScanner struct{}

// Name implements scanner.Scanner.
func (s *SecretsScanner) Name() string { return "secrets" }

// Scan implements scanner.Scanner.
func (s *SecretsScanner) Scan(ctx context.Context, artifactRoot string, _ scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	var findings []finding.Finding
	walkErr := walkFiltered(artifactRoot, func(relPath string) bool {
		return !binaryExtensions[filepath.Ext(relPath)]
	}, func(relPath, absPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if isBinaryByContent(absPath) {
			return nil
		}
		data, err := readCapped(absPath, scanner.DefaultMaxFileBytes)
		if err != nil {
			return nil
		}
		for i, line := range splitLines(data) {
			findings = append(findings, scanSecretLine(relPath, i+1, line)...)
		}
		return nil
	})
	if isCancellation(walkErr) {
		return cancelledResult(s.Name(), start, walkErr)
	}
	if walkErr != nil {
		res.Passed = true
		res.Summary = "No secrets detected"
		res.Duration = time.Since(start)
		return res
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = secretsSummary(findings)
	res.Duration = time.Since(start)
	return res
}

func scanSecretLine(relPath string, lineNo int, line string) []finding.Finding {
	var findings []finding.Finding
	for _, p := range secretPatterns {
		m := p.re.FindString(line)
		if m == "" {
			continue
		}
		findings = append(findings, finding.Finding{
			Scanner: "secrets", Severity: p.severity, Message: p.name,
			File: relPath, Line: lineNo, Evidence: maskSecret(m),
		})
	}
	return findings
}

// maskSecret masks a matched secret substring: first 4 chars, "****", last
// 4 chars when longer than 8 chars; otherwise just "****".
func maskSecret(s string) string {
	if len(s) > 8 {
		return s[:4] + "****" + s[len(s)-4:]
	}
	return "****"
}

func secretsSummary(findings []finding.Finding) string {
	if len(findings) == 0 {
		return "No secrets detected"
	}
	c, w, _ := countBySeverity(findings)
	return fmt.Sprintf("Found %d critical, %d warning potential secret(s)", c, w)
}

var _ scanner.Scanner = (*SecretsScanner)(nil)
