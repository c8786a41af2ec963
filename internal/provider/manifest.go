// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// LoadManifest reads package.json from artifactRoot and returns both the
// raw decoded manifest (for scanner.Options.Manifest) and a best-effort
// PackageMetadata built from it. Used for local-path specifiers, where
// there is no registry packument to source metadata from.
func LoadManifest(artifactRoot string) (map[string]any, finding.PackageMetadata, error) {
	data, err := os.ReadFile(filepath.Join(artifactRoot, "package.json")) //nolint:gosec // artifactRoot is our own extraction target
	if err != nil {
		return nil, finding.PackageMetadata{}, fmt.Errorf("reading package.json: %w", err)
	}

	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, finding.PackageMetadata{}, fmt.Errorf("parsing package.json: %w", err)
	}

	meta := finding.PackageMetadata{
		Name:                 stringField(manifest, "name"),
		Version:              stringField(manifest, "version"),
		Description:          stringField(manifest, "description"),
		License:              licenseField(manifest["license"]),
		Homepage:             stringField(manifest, "homepage"),
		RepositoryURL:        repositoryField(manifest["repository"]),
		Dependencies:         stringMapField(manifest, "dependencies"),
		OptionalDependencies: stringMapField(manifest, "optionalDependencies"),
		LifecycleScripts:     stringMapField(manifest, "scripts"),
		HasBin:               manifest["bin"] != nil,
	}
	return manifest, meta, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringMapField(m map[string]any, key string) map[string]string {
	raw, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func licenseField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["type"].(string); ok {
			return s
		}
	}
	return ""
}

func repositoryField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["url"].(string); ok {
			return s
		}
	}
	return ""
}
