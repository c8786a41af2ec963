// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package scanners implements the static analyzers described in spec
// sections 4.2 through 4.9: lexical pattern matching, obfuscation
// detection, lifecycle-hook inspection, secret detection, binary file
// flagging, dependency-bloat checks, typosquatting detection, and IOC
// extraction. Every scanner is read-only over the extracted artifact tree.
package scanners

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/pathclass"
)

// codeExtensions are the source extensions the static and obfuscation
// scanners operate over (spec 4.2, 4.3).
var codeExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
}

// walkCodeFiles walks artifactRoot, invoking visit for every regular file
// with a code extension that is not a test path, not always-skipped, and
// not declaration-only. Unreadable entries are skipped silently, matching
// the failure semantics every §4.2-4.9 scanner shares.
func walkCodeFiles(artifactRoot string, visit func(relPath, absPath string) error) error {
	return walkFiltered(artifactRoot, func(relPath string) bool {
		return codeExtensions[filepath.Ext(relPath)] &&
			!pathclass.IsTestFile(relPath) &&
			!pathclass.IsDeclarationOnly(relPath)
	}, visit)
}

// walkFiltered walks artifactRoot over regular files, skipping always-skip
// paths, and invoking visit only for paths where keep returns true.
func walkFiltered(artifactRoot string, keep func(relPath string) bool, visit func(relPath, absPath string) error) error {
	info, statErr := os.Stat(artifactRoot)
	if statErr != nil || !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(artifactRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}
		relPath, relErr := filepath.Rel(artifactRoot, p)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if pathclass.IsAlwaysSkip(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if pathclass.IsAlwaysSkip(relPath) {
			return nil
		}
		if !keep(relPath) {
			return nil
		}
		return visit(relPath, p)
	})
}

// isCancellation reports whether err is the walk-abort error produced when
// the scan's context is cancelled or its deadline expires.
func isCancellation(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded
}

// cancelledResult builds the empty, unpassed ScannerResult a scanner returns
// when its file walk is interrupted by context cancellation or a deadline.
// Whatever findings had already been collected are discarded rather than
// reported (spec section 5's cancellation contract).
func cancelledResult(scannerName string, start time.Time, err error) finding.ScannerResult {
	return finding.ScannerResult{
		Scanner:  scannerName,
		Passed:   false,
		Summary:  "scan cancelled",
		Duration: time.Since(start),
		Err:      err,
	}
}

// readCapped reads up to max bytes of the file at path. A zero or negative
// max means "no cap".
func readCapped(path string, max int64) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // artifact path is produced by our own extractor
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if max <= 0 {
		return io.ReadAll(f)
	}
	return io.ReadAll(io.LimitReader(f, max))
}

// isBinaryByContent reports whether the first 512 bytes of path contain a
// NUL byte, the content-based binary heuristic used by the secret scanner
// (spec 4.5).
func isBinaryByContent(path string) bool {
	f, err := os.Open(path) //nolint:gosec // artifact path is produced by our own extractor
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return strings.IndexByte(string(buf[:n]), 0) >= 0
}

// truncate clips s to at most n runes worth of bytes and trims whitespace,
// matching the "trimmed line truncated to N chars" evidence rule used
// throughout sections 4.2-4.5.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// manifestString probes a manifest sub-shape for a string field, returning
// "" if absent or of the wrong type (spec section 9: explicit variant
// parsing, no global JSON-object type threaded through scanners).
func manifestString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// manifestStringMap probes a manifest sub-shape for a string-to-string map
// field (e.g. "scripts", "dependencies").
func manifestStringMap(m map[string]any, key string) map[string]string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

// manifestHasBin reports whether the manifest declares a "bin" field,
// which may be a non-empty string or a non-empty object.
func manifestHasBin(m map[string]any) bool {
	v, ok := m["bin"]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}
