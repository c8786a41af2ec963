// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func init() {
	scanner.Register(&ObfuscationScanner{})
}

const (
	entropyMinFileBytes = 256
	entropyWarning      = 6.2
	entropyCritical     = 6.8

	minifiedLineLenThreshold = 500
	hexEscapeRunMin          = 4
	hexEscapeOccurrenceCap   = 6

	base64RunMin = 500
	veryLongLine = 1000

	stringArrayMinElements = 50
)

var minifiedKeywords = []string{
	"function", "return", "var", "let", "const", "if", "else",
	"for", "while", "class", "export", "import", "typeof", "instanceof",
}

var (
	hexEscapeRun     = regexp.MustCompile(`(\\x[0-9a-fA-F]{2}){4,}`)
	base64Alphabet   = regexp.MustCompile(`[A-Za-z0-9+/]{500,}={0,2}`)
	obfuscatorIdent  = regexp.MustCompile(`_0x[0-9a-fA-F]+\s*=\s*$`)
	hexEscapeRunTwo  = regexp.MustCompile(`(\\x[0-9a-fA-F]{2}){2,}`)
	unicodeEscapeRun = regexp.MustCompile(`(\\u[0-9a-fA-F]{4}){2,}`)
)

// ObfuscationScanner runs four lexical/structural heuristics for obfuscated
// or minified code (spec section 4.3).
type ObfuscationScanner struct{}

// Name implements scanner.Scanner.
func (s *ObfuscationScanner) Name() string { return "obfuscation" }

// Scan implements scanner.Scanner.
func (s *ObfuscationScanner) Scan(ctx context.Context, artifactRoot string, opts scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	var findings []finding.Finding

	walkErr := walkCodeFiles(artifactRoot, func(relPath, absPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := readCapped(absPath, scanner.DefaultMaxFileBytes)
		if err != nil {
			return nil
		}
		findings = append(findings, scanObfuscationFile(relPath, data)...)
		return nil
	})
	if isCancellation(walkErr) {
		return cancelledResult(s.Name(), start, walkErr)
	}
	if walkErr != nil {
		res.Passed = true
		res.Summary = "No obfuscation detected"
		res.Duration = time.Since(start)
		return res
	}

	res.Findings = findings
	res.Passed = finding.ComputePassed(findings)
	res.Summary = obfuscationSummary(findings)
	res.Duration = time.Since(start)
	return res
}

func scanObfuscationFile(relPath string, data []byte) []finding.Finding {
	var findings []finding.Finding

	if f := entropyFinding(relPath, data); f != nil {
		findings = append(findings, *f)
	}

	lines := splitLines(data)
	for i, line := range lines {
		lineNo := i + 1
		if hexEscapeRun.MatchString(line) {
			findings = append(findings, finding.Finding{
				Scanner: "obfuscation", Severity: finding.SeverityWarning,
				Message: "hex-escape sequence run", File: relPath, Line: lineNo,
				Evidence: truncate(line, 200),
			})
		}
		if m := base64Alphabet.FindString(line); m != "" {
			findings = append(findings, finding.Finding{
				Scanner: "obfuscation", Severity: finding.SeverityWarning,
				Message: "long base64-like blob", File: relPath, Line: lineNo,
				Evidence: truncate(line, 200),
			})
		}
		if len(line) > veryLongLine {
			findings = append(findings, finding.Finding{
				Scanner: "obfuscation", Severity: finding.SeverityInfo,
				Message: "possible minification without source maps", File: relPath, Line: lineNo,
				Evidence: truncate(line, 200),
			})
		}
	}

	findings = append(findings, detectStringArrays(relPath, string(data))...)

	return findings
}

func entropyFinding(relPath string, data []byte) *finding.Finding {
	if len(data) < entropyMinFileBytes {
		return nil
	}
	h := shannonEntropy(data)
	if h < entropyWarning {
		return nil
	}

	sev := finding.SeverityWarning
	msg := fmt.Sprintf("high Shannon entropy (%.2f bits/char)", h)
	if h >= entropyCritical {
		sev = finding.SeverityCritical
	}

	if looksMinified(data) {
		sev = finding.SeverityInfo
		msg = fmt.Sprintf("high entropy (%.2f bits/char), consistent with minified code", h)
	}

	return &finding.Finding{
		Scanner: "obfuscation", Severity: sev, Message: msg, File: relPath,
	}
}

func shannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	total := float64(len(data))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// looksMinified applies the minified-code heuristic: at least one very long
// line, recognizable JS keywords present, and not heavy with hex escapes.
func looksMinified(data []byte) bool {
	hasLongLine := false
	for _, line := range splitLines(data) {
		if len(line) > minifiedLineLenThreshold {
			hasLongLine = true
			break
		}
	}
	if !hasLongLine {
		return false
	}

	s := string(data)
	hasKeyword := false
	for _, kw := range minifiedKeywords {
		if strings.Contains(s, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}

	return len(hexEscapeRun.FindAllString(s, -1)) < hexEscapeOccurrenceCap
}

func splitLines(data []byte) []string {
	var lines []string
	scnr := bufio.NewScanner(bytes.NewReader(data))
	scnr.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scnr.Scan() {
		lines = append(lines, scnr.Text())
	}
	return lines
}

// detectStringArrays implements the large string-array detector (4.3e): a
// structural micro-parse of bracketed, comma-separated string literals.
func detectStringArrays(relPath, content string) []finding.Finding {
	var findings []finding.Finding
	i := 0
	for i < len(content) {
		idx := strings.IndexByte(content[i:], '[')
		if idx < 0 {
			break
		}
		start := i + idx
		elements, end, ok := parseQuotedStringArray(content, start+1)
		if ok && len(elements) >= stringArrayMinElements {
			findings = append(findings, classifyStringArray(relPath, content, start, end, elements))
		}
		if end > start {
			i = end
		} else {
			i = start + 1
		}
	}
	return findings
}

// parseQuotedStringArray consumes whitespace/comma-separated quoted string
// elements starting at pos until ']' or a non-string element is hit.
// Returns the elements, the index just past the closing ']' (or the point
// parsing stopped), and whether a ']' terminated a clean string-only run.
func parseQuotedStringArray(content string, pos int) ([]string, int, bool) {
	var elements []string
	i := pos
	for i < len(content) {
		for i < len(content) && isArraySpace(content[i]) {
			i++
		}
		if i >= len(content) {
			return elements, i, false
		}
		if content[i] == ']' {
			return elements, i + 1, true
		}
		if content[i] != '\'' && content[i] != '"' && content[i] != '`' {
			return elements, i, false
		}
		quote := content[i]
		elemStart := i + 1
		j := elemStart
		for j < len(content) {
			if content[j] == '\\' && j+1 < len(content) {
				j += 2
				continue
			}
			if content[j] == quote {
				break
			}
			j++
		}
		if j >= len(content) {
			return elements, j, false
		}
		elements = append(elements, content[elemStart:j])
		i = j + 1
		for i < len(content) && isArraySpace(content[i]) {
			i++
		}
		if i < len(content) && content[i] == ',' {
			i++
			continue
		}
		if i < len(content) && content[i] == ']' {
			return elements, i + 1, true
		}
		return elements, i, false
	}
	return elements, i, false
}

func isArraySpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func classifyStringArray(relPath, content string, start, end int, elements []string) finding.Finding {
	before := content[max0(start-50) : start]
	rotation := obfuscatorIdent.MatchString(before)

	afterEnd := end + 500
	if afterEnd > len(content) {
		afterEnd = len(content)
	}
	after := content[end:afterEnd]
	hasPush := strings.Contains(after, ".push(")
	hasShift := strings.Contains(after, ".shift(")
	rotation = rotation || (hasPush && hasShift)

	readable := 0
	totalLen := 0
	for _, e := range elements {
		totalLen += len(e)
		hasLetter := false
		for _, r := range e {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				hasLetter = true
				break
			}
		}
		if hasLetter && !hasLongEscapeRun(e) {
			readable++
		}
	}
	readabilityRatio := float64(readable) / float64(len(elements))
	avgLen := float64(totalLen) / float64(len(elements))

	if rotation {
		return finding.Finding{
			Scanner: "obfuscation", Severity: finding.SeverityCritical,
			Message: fmt.Sprintf("string array with rotation pattern (%d elements)", len(elements)),
			File:    relPath,
		}
	}
	if readabilityRatio >= 0.3 && avgLen >= 2 {
		return finding.Finding{
			Scanner: "obfuscation", Severity: finding.SeverityInfo,
			Message: fmt.Sprintf("large string array, likely data (%d elements)", len(elements)),
			File:    relPath,
		}
	}
	return finding.Finding{
		Scanner: "obfuscation", Severity: finding.SeverityInfo,
		Message: fmt.Sprintf("large string array, likely data (%d elements)", len(elements)),
		File:    relPath,
	}
}

func hasLongEscapeRun(s string) bool {
	return hexEscapeRunTwo.MatchString(s) || unicodeEscapeRun.MatchString(s)
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func obfuscationSummary(findings []finding.Finding) string {
	c, w, i := countBySeverity(findings)
	if c == 0 && w == 0 && i == 0 {
		return "No obfuscation detected"
	}
	return fmt.Sprintf("Obfuscation indicators: %d critical, %d warning, %d info", c, w, i)
}

var _ scanner.Scanner = (*ObfuscationScanner)(nil)
