// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
	"github.com/npmaudit/npmaudit/internal/typodata"
)

func init() {
	scanner.Register(&IOCScanner{})
}

// iocTextExtensions are the text-like extensions the IOC extractor walks
// (spec 4.9): code, config, markup, scripts, docs.
var iocTextExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".ts": true, ".tsx": true, ".jsx": true,
	".json": true, ".yml": true, ".yaml": true, ".toml": true, ".ini": true,
	".html": true, ".htm": true, ".xml": true, ".svg": true,
	".sh": true, ".bash": true, ".ps1": true,
	".md": true, ".txt": true, ".rst": true,
}

const (
	maxIOCLocations  = 5
	ipv4OctetMax     = 255
	base64MinRunLen  = 20
	base64MinDecoded = 6
)

var (
	urlPattern    = regexp.MustCompile(`(?i)\b(https?|ftp)://[^\s'"<>)]+`)
	schemePattern = regexp.MustCompile(`(?i)^(https?|ftp)://`)
	ipv4Pattern   = regexp.MustCompile(`\b(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})\b`)

	hexEscapeDecodeRun     = regexp.MustCompile(`(\\x[0-9a-fA-F]{2}){4,}`)
	unicodeEscapeDecodeRun = regexp.MustCompile(`(\\u[0-9a-fA-F]{4}){4,}`)
	charCodeCall           = regexp.MustCompile(`String\.fromCharCode\(([^)]*)\)`)
	base64Candidate        = regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)

	trailingPunct = regexp.MustCompile(`[.,);"']+$`)
)

type iocKind int

const (
	iocURL iocKind = iota
	iocIP
)

type iocOccurrence struct {
	kind        iocKind
	value       string // original (non-defanged) form used for dedup key
	decodedFrom string // "" for plaintext
	relPath     string
	line        int
}

type iocRecord struct {
	kind        iocKind
	value       string
	decodedFrom string
	severity    finding.Severity
	locations   []string
	count       int
}

// IOCScanner extracts URLs and IPv4 literals, including those recoverable
// via simple deobfuscation, and defangs them for safe reporting (spec
// section 4.9).
type IOCScanner struct{}

// Name implements scanner.Scanner.
func (s *IOCScanner) Name() string { return "ioc" }

// Scan implements scanner.Scanner.
func (s *IOCScanner) Scan(ctx context.Context, artifactRoot string, _ scanner.Options) finding.ScannerResult {
	start := time.Now()
	res := finding.ScannerResult{Scanner: s.Name()}

	ignoredDomains, _ := typodata.IgnoredDomains()
	ignoredIPs, _ := typodata.IgnoredIPs()
	domainSet := toLowerSet(ignoredDomains)
	ipSet := toSet(ignoredIPs)

	records := map[string]*iocRecord{}

	walkErr := walkFiltered(artifactRoot, func(relPath string) bool {
		return iocTextExtensions[extOf(relPath)]
	}, func(relPath, absPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := readCapped(absPath, scanner.DefaultMaxFileBytes)
		if err != nil {
			return nil
		}
		for i, line := range splitLines(data) {
			occs := extractLine(line, domainSet, ipSet)
			for _, occ := range occs {
				occ.relPath = relPath
				occ.line = i + 1
				recordOccurrence(records, occ)
			}
		}
		return nil
	})
	if isCancellation(walkErr) {
		return cancelledResult(s.Name(), start, walkErr)
	}
	if walkErr != nil {
		res.Passed = true
		res.Summary = "No indicators of compromise found"
		res.Duration = time.Since(start)
		return res
	}

	findings, urlCount, ipCount := buildIOCFindings(records)

	res.Findings = findings
	res.Passed = true
	res.Summary = iocSummary(urlCount, ipCount)
	res.Duration = time.Since(start)
	return res
}

func extOf(relPath string) string {
	if idx := strings.LastIndexByte(relPath, '.'); idx >= 0 {
		return strings.ToLower(relPath[idx:])
	}
	return ""
}

// extractLine runs the plaintext pass and the four-way deobfuscation pass
// over a single line, returning every occurrence found (locations/counts
// unset; filled in by the caller).
func extractLine(line string, domainSet, ipSet map[string]bool) []iocOccurrence {
	var out []iocOccurrence
	out = append(out, extractPlaintext(line, "", domainSet, ipSet)...)

	for _, frag := range decodeHexEscapes(line) {
		out = append(out, extractPlaintext(frag, "hex", domainSet, ipSet)...)
	}
	for _, frag := range decodeUnicodeEscapes(line) {
		out = append(out, extractPlaintext(frag, "unicode", domainSet, ipSet)...)
	}
	for _, frag := range decodeCharCodes(line) {
		out = append(out, extractPlaintext(frag, "charcode", domainSet, ipSet)...)
	}
	for _, frag := range decodeBase64Blobs(line) {
		out = append(out, extractPlaintext(frag, "base64", domainSet, ipSet)...)
	}
	return out
}

func extractPlaintext(text, decodedFrom string, domainSet, ipSet map[string]bool) []iocOccurrence {
	var out []iocOccurrence

	for _, m := range urlPattern.FindAllString(text, -1) {
		cleaned := trailingPunct.ReplaceAllString(m, "")
		u, err := url.Parse(cleaned)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if isIgnoredDomain(host, domainSet) {
			continue
		}
		out = append(out, iocOccurrence{kind: iocURL, value: cleaned, decodedFrom: decodedFrom})
	}

	for _, m := range ipv4Pattern.FindAllString(text, -1) {
		if !isValidIPv4(m) {
			continue
		}
		if ipSet[m] {
			continue
		}
		out = append(out, iocOccurrence{kind: iocIP, value: m, decodedFrom: decodedFrom})
	}

	return out
}

func isIgnoredDomain(host string, domainSet map[string]bool) bool {
	if domainSet[host] {
		return true
	}
	for domain := range domainSet {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func isValidIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > ipv4OctetMax {
			return false
		}
	}
	return true
}

func decodeHexEscapes(line string) []string {
	var out []string
	for _, m := range hexEscapeDecodeRun.FindAllString(line, -1) {
		var b strings.Builder
		for i := 0; i+3 < len(m); i += 4 {
			v, err := strconv.ParseUint(m[i+2:i+4], 16, 8)
			if err != nil {
				continue
			}
			b.WriteByte(byte(v))
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func decodeUnicodeEscapes(line string) []string {
	var out []string
	for _, m := range unicodeEscapeDecodeRun.FindAllString(line, -1) {
		var b strings.Builder
		for i := 0; i+5 < len(m); i += 6 {
			v, err := strconv.ParseUint(m[i+2:i+6], 16, 16)
			if err != nil {
				continue
			}
			b.WriteRune(rune(v))
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func decodeCharCodes(line string) []string {
	var out []string
	for _, m := range charCodeCall.FindAllStringSubmatch(line, -1) {
		parts := strings.Split(m[1], ",")
		var b strings.Builder
		valid := true
		for _, p := range parts {
			p = strings.TrimSpace(p)
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 0x10FFFF {
				valid = false
				break
			}
			b.WriteRune(rune(n))
		}
		if valid && b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func decodeBase64Blobs(line string) []string {
	var out []string
	for _, m := range base64Candidate.FindAllString(line, -1) {
		if len(m) < base64MinRunLen {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(padBase64(m))
		if err != nil {
			continue
		}
		if len(decoded) < base64MinDecoded {
			continue
		}
		if printableRatio(decoded) < 0.8 {
			continue
		}
		out = append(out, string(decoded))
	}
	return out
}

func padBase64(s string) string {
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return s
}

func printableRatio(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}
	printable := 0
	for _, c := range b {
		if c >= 0x20 && c < 0x7f || c == '\n' || c == '\r' || c == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(len(b))
}

func recordOccurrence(records map[string]*iocRecord, occ iocOccurrence) {
	key := fmt.Sprintf("%d:%s", occ.kind, occ.value)
	rec, ok := records[key]
	if !ok {
		sev := finding.SeverityWarning
		if occ.decodedFrom == "" {
			sev = finding.SeverityInfo
		}
		records[key] = &iocRecord{
			kind: occ.kind, value: occ.value, decodedFrom: occ.decodedFrom,
			severity: sev, count: 1,
			locations: []string{locationString(occ)},
		}
		return
	}
	rec.count++
	// Plaintext beats decoded: first plaintext sighting upgrades severity.
	if occ.decodedFrom == "" && rec.decodedFrom != "" {
		rec.decodedFrom = ""
		rec.severity = finding.SeverityInfo
	}
	if len(rec.locations) < maxIOCLocations {
		rec.locations = append(rec.locations, locationString(occ))
	}
}

func locationString(occ iocOccurrence) string {
	return fmt.Sprintf("%s:%d", occ.relPath, occ.line)
}

func buildIOCFindings(records map[string]*iocRecord) ([]finding.Finding, int, int) {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []finding.Finding
	urlCount, ipCount := 0, 0
	for _, k := range keys {
		rec := records[k]
		defanged := defang(rec)
		msg := defanged
		if rec.decodedFrom != "" {
			msg = fmt.Sprintf("%s (decoded-from %s)", defanged, rec.decodedFrom)
		}
		if rec.count > 1 {
			msg = fmt.Sprintf("%s, seen %d times", msg, rec.count)
		}
		if rec.kind == iocURL {
			urlCount++
		} else {
			ipCount++
		}
		findings = append(findings, finding.Finding{
			Scanner: "ioc", Severity: rec.severity, Message: msg,
			File: firstLocationFile(rec.locations), Evidence: strings.Join(rec.locations, ", "),
		})
	}
	return findings, urlCount, ipCount
}

func firstLocationFile(locations []string) string {
	if len(locations) == 0 {
		return ""
	}
	parts := strings.SplitN(locations[0], ":", 2)
	return parts[0]
}

// defang rewrites a URL or IP into a non-clickable/non-routable display
// form (spec 4.9 rule 3).
func defang(rec *iocRecord) string {
	if rec.kind == iocIP {
		return strings.ReplaceAll(rec.value, ".", "[.]")
	}

	v := rec.value
	matched := schemePattern.FindString(v)
	switch strings.ToLower(matched) {
	case "https://":
		v = "hxxps[://]" + v[len(matched):]
	case "http://":
		v = "hxxp[://]" + v[len(matched):]
	case "ftp://":
		v = "fxp[://]" + v[len(matched):]
	}

	idx := strings.Index(v, "[://]")
	if idx < 0 {
		return v
	}
	hostStart := idx + len("[://]")
	rest := v[hostStart:]
	pathIdx := strings.IndexByte(rest, '/')
	host := rest
	path := ""
	if pathIdx >= 0 {
		host = rest[:pathIdx]
		path = rest[pathIdx:]
	}
	host = strings.ReplaceAll(host, ".", "[.]")
	return v[:hostStart] + host + path
}

func iocSummary(urlCount, ipCount int) string {
	if urlCount == 0 && ipCount == 0 {
		return "No indicators of compromise found"
	}
	return fmt.Sprintf("IOCs: %d URL(s), %d IP(s)", urlCount, ipCount)
}

func toLowerSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, s := range items {
		out[strings.ToLower(s)] = true
	}
	return out
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, s := range items {
		out[s] = true
	}
	return out
}

var _ scanner.Scanner = (*IOCScanner)(nil)
