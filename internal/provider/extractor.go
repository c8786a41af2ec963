// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxExtractedFileBytes = 256 << 20 // 256 MiB per file, a generous sanity cap.

// TarGzExtractor is the default ArtifactExtractor, unpacking a gzipped tar
// stream with the standard library. Extraction is a pure external-boundary
// concern (reading bytes off the wire into files) with no ecosystem
// collaborator in the example pack to ground a richer implementation on, so
// it stays on archive/tar and compress/gzip rather than reaching for a
// third-party archive library.
type TarGzExtractor struct{}

// Extract implements ArtifactExtractor.
func (TarGzExtractor) Extract(ctx context.Context, r io.Reader, destDir string) (string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("open gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	topLevel := map[string]bool{}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar entry: %w", err)
		}

		cleanName, ok := sanitizeTarPath(hdr.Name)
		if !ok {
			continue
		}
		if cleanName == "" {
			continue
		}
		if first := firstSegment(cleanName); first != "" {
			topLevel[first] = true
		}

		target := filepath.Join(destDir, cleanName)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}
			if err := writeExtractedFile(target, tr, hdr.Size); err != nil {
				return "", err
			}
		default:
			// Symlinks, devices, etc. from an untrusted artifact are never
			// materialized.
		}
	}

	if len(topLevel) == 1 {
		for name := range topLevel {
			return filepath.Join(destDir, name), nil
		}
	}
	return destDir, nil
}

func writeExtractedFile(target string, r io.Reader, size int64) error {
	if size > maxExtractedFileBytes {
		r = io.LimitReader(r, maxExtractedFileBytes)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // destination is our own scratch dir
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(f, r) //nolint:gosec // size is capped above
	return err
}

// sanitizeTarPath rejects absolute paths and any entry that would escape
// destDir via ".." traversal (tar-slip), returning the cleaned relative path.
func sanitizeTarPath(name string) (string, bool) {
	name = filepath.ToSlash(name)
	if filepath.IsAbs(name) {
		return "", false
	}
	cleaned := filepath.Clean(name)
	if cleaned == "." {
		return "", true
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}

func firstSegment(p string) string {
	p = filepath.ToSlash(p)
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return p
}

var _ ArtifactExtractor = TarGzExtractor{}
