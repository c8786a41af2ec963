// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package diffengine implements the Source-Diff Engine (spec section 4.11):
// comparing an extracted artifact tree against the package's declared
// source repository to surface files present in the artifact but absent
// from source control, and files whose content was modified after
// publication.
package diffengine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/pathclass"
	"github.com/npmaudit/npmaudit/internal/provider"
)

// alwaysDiffer are paths excluded from the hash-comparison pass: packaging
// metadata and lockfiles legitimately differ between the published artifact
// and the source tree (e.g. a generated package.json, or no lockfile
// committed to source control at all).
var alwaysDiffer = map[string]bool{
	"package.json":      true,
	".npmignore":        true,
	".gitignore":        true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
}

// Run downloads the repository's HEAD source tree via repoProvider,
// extracts it with extractor, and diffs it against artifactRoot. Any
// failure at any step degrades to {Performed: false, Err: "..."}; it is
// never fatal to the scan. The scratch directory is always cleaned up.
func Run(ctx context.Context, repoProvider provider.RepositoryProvider, extractor provider.ArtifactExtractor, repoURL, artifactRoot string) finding.DiffResult {
	owner, repo, err := provider.ParseRepositoryURL(repoURL)
	if err != nil {
		return finding.DiffResult{Err: err.Error()}
	}

	scratchDir, err := os.MkdirTemp("", "npmaudit-diff-*")
	if err != nil {
		return finding.DiffResult{Err: fmt.Sprintf("creating scratch directory: %v", err)}
	}
	defer func() { _ = os.RemoveAll(scratchDir) }()

	tarball, err := repoProvider.DownloadTarball(ctx, owner, repo)
	if err != nil {
		return finding.DiffResult{Err: err.Error()}
	}
	defer func() { _ = tarball.Close() }()

	repoRoot, err := extractor.Extract(ctx, tarball, scratchDir)
	if err != nil {
		return finding.DiffResult{Err: fmt.Sprintf("extracting source tarball: %v", err)}
	}

	artifactFiles, err := walkTree(artifactRoot)
	if err != nil {
		return finding.DiffResult{Err: fmt.Sprintf("walking artifact tree: %v", err)}
	}
	repoFiles, err := walkTree(repoRoot)
	if err != nil {
		return finding.DiffResult{Err: fmt.Sprintf("walking source tree: %v", err)}
	}

	result := diffTrees(artifactRoot, repoRoot, artifactFiles, repoFiles)
	result.Performed = true
	return result
}

// walkTree returns the set of relative, forward-slash file paths under
// root, skipping hidden directories and nested-dependency directories.
func walkTree(root string) (map[string]bool, error) {
	files := map[string]bool{}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return files, nil
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			base := filepath.Base(rel)
			if strings.HasPrefix(base, ".") || pathclass.IsAlwaysSkip(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if pathclass.IsAlwaysSkip(rel) {
			return nil
		}
		files[rel] = true
		return nil
	})
	return files, err
}

func diffTrees(artifactRoot, repoRoot string, artifactFiles, repoFiles map[string]bool) finding.DiffResult {
	var unexpected, expectedBuild, modified []string

	for path := range artifactFiles {
		if repoFiles[path] {
			continue
		}
		sourceExists := func(candidate string) bool { return repoFiles[candidate] }
		if pathclass.IsBuildArtifact(path, sourceExists) {
			expectedBuild = append(expectedBuild, path)
		} else {
			unexpected = append(unexpected, path)
		}
	}

	for path := range artifactFiles {
		if !repoFiles[path] || alwaysDiffer[path] {
			continue
		}
		differs, err := filesDiffer(filepath.Join(artifactRoot, filepath.FromSlash(path)), filepath.Join(repoRoot, filepath.FromSlash(path)))
		if err == nil && differs {
			modified = append(modified, path)
		}
	}

	sort.Strings(unexpected)
	sort.Strings(expectedBuild)
	sort.Strings(modified)

	return finding.DiffResult{
		UnexpectedFiles:    unexpected,
		ExpectedBuildFiles: expectedBuild,
		ModifiedFiles:      modified,
	}
}

func filesDiffer(a, b string) (bool, error) {
	ha, err := hashFile(a)
	if err != nil {
		return false, err
	}
	hb, err := hashFile(b)
	if err != nil {
		return false, err
	}
	return ha != hb, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path is derived from our own tree walk
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
