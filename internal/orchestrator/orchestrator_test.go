// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/provider"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

type fakeScanner struct {
	name   string
	result finding.ScannerResult
	panics bool
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(context.Context, string, scanner.Options) finding.ScannerResult {
	if f.panics {
		panic("boom")
	}
	r := f.result
	r.Scanner = f.name
	return r
}

type fakeRepoProvider struct {
	health finding.RepositoryHealth
	err    error
}

func (f *fakeRepoProvider) GetRepository(context.Context, string, string) (finding.RepositoryHealth, error) {
	return f.health, f.err
}

func (f *fakeRepoProvider) DownloadTarball(context.Context, string, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func registerFake(t *testing.T, s scanner.Scanner) {
	t.Helper()
	scanner.Register(s)
	t.Cleanup(scanner.ResetForTesting)
}

func TestRunAggregatesScannerResults(t *testing.T) {
	scanner.ResetForTesting()
	registerFake(t, &fakeScanner{name: "static"})
	registerFake(t, &fakeScanner{name: "secrets"})

	report, err := Run(context.Background(), finding.PackageMetadata{Name: "left-pad"}, t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Len(t, report.Scanners, 2)
	assert.Equal(t, "left-pad", report.Package.Name)
}

func TestRunOrdersResultsCanonically(t *testing.T) {
	scanner.ResetForTesting()
	registerFake(t, &fakeScanner{name: "typosquatting"})
	registerFake(t, &fakeScanner{name: "binaries"})
	registerFake(t, &fakeScanner{name: "static"})

	report, err := Run(context.Background(), finding.PackageMetadata{}, t.TempDir(), Options{})
	require.NoError(t, err)
	names := make([]string, len(report.Scanners))
	for i, r := range report.Scanners {
		names[i] = r.Scanner
	}
	assert.Equal(t, []string{"binaries", "static", "typosquatting"}, names)
}

func TestRunRecoversFromScannerPanic(t *testing.T) {
	scanner.ResetForTesting()
	registerFake(t, &fakeScanner{name: "static", panics: true})

	report, err := Run(context.Background(), finding.PackageMetadata{}, t.TempDir(), Options{})
	require.NoError(t, err)
	require.Len(t, report.Scanners, 1)
	assert.Error(t, report.Scanners[0].Err)
	assert.True(t, report.Scanners[0].Passed)
}

func TestRunUnknownScannerNameErrors(t *testing.T) {
	scanner.ResetForTesting()
	t.Cleanup(scanner.ResetForTesting)

	_, err := Run(context.Background(), finding.PackageMetadata{}, t.TempDir(), Options{Scanners: []string{"nonexistent"}})
	assert.Error(t, err)
}

func TestRunSkipsHealthAndDiffWhenProvidersNil(t *testing.T) {
	scanner.ResetForTesting()
	t.Cleanup(scanner.ResetForTesting)

	report, err := Run(context.Background(), finding.PackageMetadata{}, t.TempDir(), Options{RepoURL: "https://github.com/left-pad/left-pad"})
	require.NoError(t, err)
	assert.Nil(t, report.Health)
	assert.Nil(t, report.Diff)
}

func TestRunRunsHealthProbeWhenProviderPresent(t *testing.T) {
	scanner.ResetForTesting()
	t.Cleanup(scanner.ResetForTesting)

	p := &fakeRepoProvider{health: finding.RepositoryHealth{Found: true, Owner: "left-pad"}}
	report, err := Run(context.Background(), finding.PackageMetadata{Publisher: "left-pad"}, t.TempDir(), Options{
		RepoProvider: p,
		RepoURL:      "https://github.com/left-pad/left-pad",
		Publisher:    "left-pad",
		SkipDiff:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, report.Health)
	assert.True(t, report.Health.Found)
}

func TestRunRunsDiffEngineWhenExtractorPresent(t *testing.T) {
	scanner.ResetForTesting()
	t.Cleanup(scanner.ResetForTesting)

	p := &fakeRepoProvider{err: errors.New("network down")}
	report, err := Run(context.Background(), finding.PackageMetadata{}, t.TempDir(), Options{
		RepoProvider: p,
		Extractor:    provider.TarGzExtractor{},
		RepoURL:      "https://github.com/left-pad/left-pad",
		SkipHealth:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, report.Diff)
	assert.False(t, report.Diff.Performed)
}

func TestRunComputesScore(t *testing.T) {
	scanner.ResetForTesting()
	registerFake(t, &fakeScanner{name: "static"})

	report, err := Run(context.Background(), finding.PackageMetadata{}, t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "A", report.Grade)
	assert.Equal(t, "CLEAN", report.Verdict)
}
