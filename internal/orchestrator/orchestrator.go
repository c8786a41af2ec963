// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package orchestrator fans out the registered scanners plus the optional
// repository-health probe and source-diff engine, and fans the results back
// into a single finding.Report.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/npmaudit/npmaudit/internal/diffengine"
	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/health"
	"github.com/npmaudit/npmaudit/internal/provider"
	"github.com/npmaudit/npmaudit/internal/scanner"
	"github.com/npmaudit/npmaudit/internal/scorer"
)

// Options configures one Run. RepoProvider and Extractor may be nil, in
// which case the repository-health probe and source-diff engine are
// skipped entirely (e.g. --no-github, --no-diff, or an unresolvable
// repository URL) rather than treated as errors.
type Options struct {
	Scanners     []string // Scanner names to run; empty means all registered scanners.
	ScannerOpts  scanner.Options
	RepoProvider provider.RepositoryProvider
	Extractor    provider.ArtifactExtractor
	RepoURL      string
	Publisher    string
	Provenance   bool
	SkipHealth   bool
	SkipDiff     bool
}

// Run executes every configured scanner concurrently against artifactRoot,
// plus the repository-health probe and source-diff engine when enabled, and
// assembles a finding.Report. A scanner panic is recovered and converted
// into a failed finding.ScannerResult rather than crashing the scan.
func Run(ctx context.Context, pkg finding.PackageMetadata, artifactRoot string, opts Options) (*finding.Report, error) {
	start := time.Now()

	scanners, err := resolveScanners(opts.Scanners)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results = make([]finding.ScannerResult, len(scanners))
	)

	g, gctx := errgroup.WithContext(ctx)

	for i, s := range scanners {
		i, s := i, s
		g.Go(func() error {
			result := runScanner(gctx, s, artifactRoot, opts.ScannerOpts)
			mu.Lock()
			results[i] = result
			mu.Unlock()
			if result.Err != nil {
				slog.Warn("scanner returned error", "scanner", result.Scanner, "error", result.Err)
			}
			return nil
		})
	}

	var repoHealth *finding.RepositoryHealth
	var diffResult *finding.DiffResult

	if !opts.SkipHealth && opts.RepoProvider != nil && opts.RepoURL != "" {
		g.Go(func() error {
			h := health.Probe(gctx, opts.RepoProvider, opts.RepoURL, opts.Publisher)
			mu.Lock()
			repoHealth = &h
			mu.Unlock()
			return nil
		})
	}

	if !opts.SkipDiff && opts.RepoProvider != nil && opts.Extractor != nil && opts.RepoURL != "" {
		g.Go(func() error {
			d := diffengine.Run(gctx, opts.RepoProvider, opts.Extractor, opts.RepoURL, artifactRoot)
			mu.Lock()
			diffResult = &d
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortResultsCanonically(results)

	score := scorer.Score(results, repoHealth, diffResult, opts.Provenance, time.Now())

	rep := &finding.Report{
		ID:       uuid.NewString(),
		Package:  pkg,
		Scanners: results,
		Health:   repoHealth,
		Diff:     diffResult,
		Score:    score.Total,
		Grade:    score.Grade,
		Verdict:  score.Verdict,
		Duration: time.Since(start),
	}
	slog.Info("scan complete", "report_id", rep.ID, "package", pkg.Name, "grade", rep.Grade, "score", rep.Score)
	return rep, nil
}

// runScanner executes a single scanner, recovering from any panic and
// converting it into a failed ScannerResult: a misbehaving scanner must
// never take down the whole scan (scanner.Scanner's contract).
func runScanner(ctx context.Context, s scanner.Scanner, artifactRoot string, opts scanner.Options) (result finding.ScannerResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = finding.ScannerResult{
				Scanner:  s.Name(),
				Passed:   true,
				Summary:  fmt.Sprintf("scanner panicked: %v", r),
				Err:      fmt.Errorf("scanner %q panicked: %v", s.Name(), r),
				Duration: time.Since(start),
			}
		}
	}()
	result = s.Scan(ctx, artifactRoot, opts)
	return result
}

// resolveScanners looks up scanners by name from the global registry. If
// names is empty, all registered scanners are returned in canonical order.
func resolveScanners(names []string) ([]scanner.Scanner, error) {
	if len(names) == 0 {
		all := scanner.List()
		sort.Strings(all)
		scanners := make([]scanner.Scanner, len(all))
		for i, name := range all {
			scanners[i] = scanner.Get(name)
		}
		return scanners, nil
	}

	scanners := make([]scanner.Scanner, len(names))
	for i, name := range names {
		s := scanner.Get(name)
		if s == nil {
			return nil, fmt.Errorf("unknown scanner: %q", name)
		}
		scanners[i] = s
	}
	return scanners, nil
}

// sortResultsCanonically orders results by finding.CanonicalScannerOrder so
// the report's scanner list is deterministic regardless of goroutine
// completion order. Results for scanners not named in the canonical order
// are appended, sorted alphabetically.
func sortResultsCanonically(results []finding.ScannerResult) {
	rank := make(map[string]int, len(finding.CanonicalScannerOrder))
	for i, name := range finding.CanonicalScannerOrder {
		rank[name] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		ri, iok := rank[results[i].Scanner]
		rj, jok := rank[results[j].Scanner]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return results[i].Scanner < results[j].Scanner
		}
	})
}
