// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"io"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// MetadataProvider resolves a parsed Specifier to PackageMetadata and
// extracts the named artifact to a fresh directory (spec section 6,
// "artifact-provider contract"). Metadata-fetch failure is fatal to the
// scan: without an artifact there is nothing to audit.
type MetadataProvider interface {
	// Resolve fetches package metadata and the artifact's download
	// location for the given specifier.
	Resolve(ctx context.Context, spec Specifier) (finding.PackageMetadata, error)

	// Download streams the resolved artifact's tarball contents.
	Download(ctx context.Context, meta finding.PackageMetadata) (io.ReadCloser, error)
}

// RepositoryProvider is the optional collaborator behind the
// Repository-Health Probe (4.10) and Source-Diff Engine (4.11). Any error
// degrades the caller to an absent component; it is never fatal to the scan.
type RepositoryProvider interface {
	// GetRepository returns repository health metadata for {owner, repo}.
	GetRepository(ctx context.Context, owner, repo string) (finding.RepositoryHealth, error)

	// DownloadTarball streams a gzipped tar of the HEAD revision source
	// tree for {owner, repo}.
	DownloadTarball(ctx context.Context, owner, repo string) (io.ReadCloser, error)
}

// ArtifactExtractor unpacks a gzipped tar stream into destDir, returning the
// path to the single top-level directory found inside (per the registry's
// and the repository provider's shared "{prefix}/" tarball convention), or
// destDir itself when no single top-level directory exists.
type ArtifactExtractor interface {
	Extract(ctx context.Context, r io.Reader, destDir string) (string, error)
}

// ServerConfigEnumerator discovers editor/agent integration config files
// (e.g. .mcp.json, .claude/) alongside an artifact. It has no default
// implementation in this module: nothing in the scoring core (4.2-4.12)
// consumes it, and wiring a real filesystem probe with no caller would be
// dead code. It is kept as a seam for tooling built on top of npmaudit's
// report (editor integrations wanting to cross-reference a package's own
// declared tool configuration) without tying this module to discovering it.
type ServerConfigEnumerator interface {
	EnumerateConfigs(ctx context.Context, artifactRoot string) ([]string, error)
}
