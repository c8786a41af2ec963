// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package diffengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npmaudit/npmaudit/internal/provider"
)

func TestWalkTreeSkipsHiddenAndNodeModules(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep", "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("x"), 0o644))

	files, err := walkTree(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"index.js": true}, files)
}

func TestDiffTreesPartitionsUnexpectedVsBuildArtifact(t *testing.T) {
	artifact := map[string]bool{"dist/index.js": true, "malware.js": true, "index.js": true}
	repo := map[string]bool{"index.js": true}

	result := diffTrees(t.TempDir(), t.TempDir(), artifact, repo)
	assert.Contains(t, result.ExpectedBuildFiles, "dist/index.js")
	assert.Contains(t, result.UnexpectedFiles, "malware.js")
	assert.NotContains(t, result.UnexpectedFiles, "index.js")
}

func TestDiffTreesDetectsModifiedFiles(t *testing.T) {
	artifactRoot := t.TempDir()
	repoRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(artifactRoot, "index.js"), []byte("modified"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "index.js"), []byte("original"), 0o644))

	artifact := map[string]bool{"index.js": true}
	repo := map[string]bool{"index.js": true}

	result := diffTrees(artifactRoot, repoRoot, artifact, repo)
	assert.Equal(t, []string{"index.js"}, result.ModifiedFiles)
}

func TestDiffTreesSkipsAlwaysDifferSet(t *testing.T) {
	artifactRoot := t.TempDir()
	repoRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(artifactRoot, "package.json"), []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "package.json"), []byte(`{"a":2}`), 0o644))

	artifact := map[string]bool{"package.json": true}
	repo := map[string]bool{"package.json": true}

	result := diffTrees(artifactRoot, repoRoot, artifact, repo)
	assert.Empty(t, result.ModifiedFiles)
}

func TestRunDegradesOnUnparsableURL(t *testing.T) {
	result := Run(context.Background(), nil, provider.TarGzExtractor{}, "not-a-repo-url", t.TempDir())
	assert.False(t, result.Performed)
	assert.NotEmpty(t, result.Err)
}

func TestHashFileDetectsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("same"), 0o644))

	differs, err := filesDiffer(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.False(t, differs)
}
