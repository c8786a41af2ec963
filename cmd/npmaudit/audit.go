// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/npmaudit/npmaudit/internal/config"
	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/orchestrator"
	"github.com/npmaudit/npmaudit/internal/provider"
	"github.com/npmaudit/npmaudit/internal/report"
	"github.com/npmaudit/npmaudit/internal/scanner"
	_ "github.com/npmaudit/npmaudit/internal/scanners"
)

// Audit-specific flag values.
var (
	auditJSON        bool
	auditNoGitHub    bool
	auditNoDiff      bool
	auditFailOn      string
	auditGitHubToken string
)

// auditCmd is the subcommand for auditing a package.
var auditCmd = &cobra.Command{
	Use:   "audit <specifier>",
	Short: "Audit an npm package specifier for supply-chain risk",
	Long: `Resolve a package specifier (name, name@version, @scope/name,
@scope/name@version, or a local directory / .tgz / .tar.gz path), extract
its artifact, run every registered scanner against it, and print a
weighted risk score.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "emit machine-readable JSON instead of a human report")
	auditCmd.Flags().BoolVar(&auditNoGitHub, "no-github", false, "skip the repository-health probe")
	auditCmd.Flags().BoolVar(&auditNoDiff, "no-diff", false, "skip the source-diff engine")
	auditCmd.Flags().StringVar(&auditFailOn, "fail-on", "", "exit non-zero when the grade is at or below this threshold (A-F)")
	auditCmd.Flags().StringVar(&auditGitHubToken, "github-token", "", "GitHub API token for the repository-health probe and source diff")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	raw := args[0]

	spec, err := provider.ParseSpecifier(raw)
	if err != nil {
		return exitError(ExitDanger, "npmaudit: %v", err)
	}

	resolveDir := "."
	if spec.Kind == provider.SpecifierLocalPath {
		resolveDir = spec.Path
	}
	fileCfg, err := config.Load(resolveDir)
	if err != nil {
		return exitError(ExitDanger, "npmaudit: loading %s: %v", config.FileName, err)
	}

	resolved := config.Merge(fileCfg, config.CLIOptions{
		OutputFormat: outputFormatFlag(cmd),
		NoColor:      noColor,
		NoGitHub:     auditNoGitHub,
		NoDiff:       auditNoDiff,
		FailOn:       auditFailOn,
		GitHubToken:  auditGitHubToken,
	})

	if resolved.NoColor {
		color.NoColor = true
	}

	artifactRoot, meta, manifest, cleanup, err := resolveArtifact(ctx, spec, resolved.RegistryURL)
	if err != nil {
		return exitError(ExitDanger, "npmaudit: %v", err)
	}
	defer cleanup()

	var repoProvider provider.RepositoryProvider
	if !resolved.NoGitHub || !resolved.NoDiff {
		repoProvider = provider.NewGitHubRepositoryProvider(resolved.GitHubToken)
	}

	opts := orchestrator.Options{
		Scanners:     enabledScanners(resolved.DisabledScanners),
		ScannerOpts:  scanner.Options{HasBin: meta.HasBin, Manifest: manifest, MaxFileBytes: scanner.DefaultMaxFileBytes},
		RepoProvider: repoProvider,
		Extractor:    provider.TarGzExtractor{},
		RepoURL:      meta.RepositoryURL,
		Publisher:    meta.Publisher,
		Provenance:   meta.HasProvenance,
		SkipHealth:   resolved.NoGitHub,
		SkipDiff:     resolved.NoDiff,
	}

	if resolved.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, resolved.Timeout)
		defer cancel()
	}

	rep, err := orchestrator.Run(ctx, meta, artifactRoot, opts)
	if err != nil {
		return exitError(ExitDanger, "npmaudit: scan failed (%v)", err)
	}

	w := cmd.OutOrStdout()
	if resolved.OutputFormat == "json" {
		if err := report.WriteJSON(w, rep); err != nil {
			return exitError(ExitDanger, "npmaudit: %v", err)
		}
	} else {
		if err := report.WriteHuman(w, rep); err != nil {
			return exitError(ExitDanger, "npmaudit: %v", err)
		}
	}

	code := gradeExitCode(rep.Grade)
	if resolved.FailOn != "" && failsThreshold(rep.Grade, resolved.FailOn) && code < ExitDanger {
		code = ExitCaution
	}
	if code != ExitClean {
		return &exitCodeError{code: code}
	}
	return nil
}

func outputFormatFlag(cmd *cobra.Command) string {
	if cmd.Flags().Changed("json") && auditJSON {
		return "json"
	}
	return ""
}

// enabledScanners returns the orchestrator's Scanners option: empty (meaning
// "run every registered scanner") when nothing is disabled, else the
// registry's full name list with the config file's disabled names removed.
func enabledScanners(disabled []string) []string {
	if len(disabled) == 0 {
		return nil
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}
	all := scanner.List()
	sort.Strings(all)
	enabled := make([]string, 0, len(all))
	for _, name := range all {
		if !skip[name] {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// resolveArtifact resolves spec to an extracted artifact directory, its
// metadata, and the raw manifest map scanners read. cleanup removes any
// scratch directory created along the way; it is always safe to call.
// registryURL overrides the default public npm registry when non-empty.
func resolveArtifact(ctx context.Context, spec provider.Specifier, registryURL string) (artifactRoot string, meta finding.PackageMetadata, manifest map[string]any, cleanup func(), err error) {
	noop := func() {}

	if spec.Kind == provider.SpecifierLocalPath {
		return resolveLocalArtifact(ctx, spec.Path)
	}

	registry := provider.NewNpmRegistryProviderWithBaseURL(registryURL)
	meta, err = registry.Resolve(ctx, spec)
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("resolving %s: %w", spec.FullName(), err)
	}

	tarball, err := registry.Download(ctx, meta)
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("downloading %s: %w", meta.Name, err)
	}
	defer func() { _ = tarball.Close() }()

	scratchDir, err := os.MkdirTemp("", "npmaudit-artifact-*")
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("creating scratch directory: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(scratchDir) }

	extractor := provider.TarGzExtractor{}
	root, err := extractor.Extract(ctx, tarball, scratchDir)
	if err != nil {
		cleanup()
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("extracting %s: %w", meta.Name, err)
	}

	manifest, _, manifestErr := provider.LoadManifest(root)
	if manifestErr != nil {
		manifest = map[string]any{}
	}

	return root, meta, manifest, cleanup, nil
}

func resolveLocalArtifact(ctx context.Context, path string) (string, finding.PackageMetadata, map[string]any, func(), error) {
	noop := func() {}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("resolving path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("path %q does not exist", path)
	}

	if info.IsDir() {
		manifest, meta, err := provider.LoadManifest(absPath)
		if err != nil {
			return "", finding.PackageMetadata{}, nil, noop, err
		}
		meta.ArtifactLocator = absPath
		return absPath, meta, manifest, noop, nil
	}

	if !strings.HasSuffix(absPath, ".tgz") && !strings.HasSuffix(absPath, ".tar.gz") {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("local path %q is neither a directory nor a .tgz/.tar.gz archive", path)
	}

	f, err := os.Open(absPath) //nolint:gosec // user-provided local path, explicitly requested
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("opening %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scratchDir, err := os.MkdirTemp("", "npmaudit-local-*")
	if err != nil {
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("creating scratch directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(scratchDir) }

	extractor := provider.TarGzExtractor{}
	root, err := extractor.Extract(ctx, f, scratchDir)
	if err != nil {
		cleanup()
		return "", finding.PackageMetadata{}, nil, noop, fmt.Errorf("extracting %q: %w", path, err)
	}

	manifest, meta, err := provider.LoadManifest(root)
	if err != nil {
		cleanup()
		return "", finding.PackageMetadata{}, nil, noop, err
	}
	meta.ArtifactLocator = absPath
	return root, meta, manifest, cleanup, nil
}
