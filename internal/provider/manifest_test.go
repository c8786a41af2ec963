// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifestParsesCoreFields(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"name": "left-pad",
		"version": "1.3.0",
		"license": "WTFPL",
		"repository": {"type": "git", "url": "https://github.com/left-pad/left-pad.git"},
		"dependencies": {"foo": "^1.0.0"},
		"scripts": {"postinstall": "node setup.js"},
		"bin": {"left-pad": "./bin/cli.js"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))

	manifest, meta, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "left-pad", meta.Name)
	assert.Equal(t, "1.3.0", meta.Version)
	assert.Equal(t, "WTFPL", meta.License)
	assert.Equal(t, "https://github.com/left-pad/left-pad.git", meta.RepositoryURL)
	assert.True(t, meta.HasBin)
	assert.Equal(t, "node setup.js", manifest["scripts"].(map[string]any)["postinstall"])
}

func TestLoadManifestLegacyLicenseObject(t *testing.T) {
	dir := t.TempDir()
	content := `{"name": "old-pkg", "license": {"type": "MIT"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))

	_, meta, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "MIT", meta.License)
}

func TestLoadManifestMissingFileErrors(t *testing.T) {
	_, _, err := LoadManifest(t.TempDir())
	assert.Error(t, err)
}
