// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package finding defines the core domain types for npmaudit: the
// vocabulary every scanner, provider, and the scorer share.
package finding

import "time"

// Severity classifies how concerning a single Finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ErrorMode controls how the orchestrator handles an error returned by a
// single scanner.
type ErrorMode string

const (
	// ErrorModeWarn logs the error and continues (default).
	ErrorModeWarn ErrorMode = "warn"

	// ErrorModeSkip silently ignores the error.
	ErrorModeSkip ErrorMode = "skip"

	// ErrorModeFail aborts the entire scan on first error.
	ErrorModeFail ErrorMode = "fail"
)

// Finding is one observation produced by a scanner. Findings are value
// objects: created once by a scanner and never mutated downstream.
type Finding struct {
	Scanner  string   `json:"scanner"`            // Scanner identity, e.g. "static", "obfuscation".
	Severity Severity `json:"severity"`           // critical, warning, or info.
	Message  string   `json:"message"`            // Human-readable description.
	File     string   `json:"file,omitempty"`     // Path relative to artifact root, forward slashes.
	Line     int      `json:"line,omitempty"`     // 1-indexed; zero if not applicable.
	Evidence string   `json:"evidence,omitempty"`
}

// ScannerResult is the output of a single scanner pass.
type ScannerResult struct {
	Scanner  string        `json:"scanner"`
	Passed   bool          `json:"passed"` // true iff zero critical and zero warning findings.
	Findings []Finding     `json:"findings"`
	Summary  string        `json:"summary"`
	Duration time.Duration `json:"-"`
	Err      error         `json:"-"`
}

// ComputePassed derives Passed from Findings: true iff no critical or
// warning finding is present. Info findings never affect Passed.
func ComputePassed(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical || f.Severity == SeverityWarning {
			return false
		}
	}
	return true
}

// PackageMetadata describes a resolved, published package artifact.
type PackageMetadata struct {
	Name               string
	Version            string
	Description        string
	License             string
	Publisher           string
	PublishedAt         time.Time
	ArtifactLocator      string // Where the artifact came from (registry URL, local path).
	RepositoryURL        string // May be empty.
	Homepage             string
	FileCount            int
	UnpackedSize         int64
	Dependencies         map[string]string // name -> version range.
	OptionalDependencies map[string]string
	LifecycleScripts     map[string]string // hook name -> shell command.
	Maintainers          []string
	HasBin               bool // Manifest declares a CLI entry point (the "bin" field).
	HasProvenance        bool // A trusted-publisher / provenance attestation is present.
}

// RepositoryHealth is the optional output of the repository-health probe.
type RepositoryHealth struct {
	Found                 bool
	Owner                 string
	Repo                  string
	Stars                 int
	Forks                 int
	OpenIssues            int
	License               string
	CreatedAt             time.Time
	LastPushAt            time.Time
	Archived              bool
	PublisherMatchesOwner bool
}

// DiffResult is the optional output of the source-diff engine.
type DiffResult struct {
	Performed        bool
	UnexpectedFiles  []string
	ExpectedBuildFiles []string
	ModifiedFiles    []string
	Err              string `json:"error,omitempty"`
}

// Report bundles a full scan's output.
type Report struct {
	ID       string
	Package  PackageMetadata
	Scanners []ScannerResult
	Health   *RepositoryHealth
	Diff     *DiffResult
	Score    int
	Grade    string
	Verdict  string
	Duration time.Duration
}

// CanonicalScannerOrder is the fixed, alphabetical scanner identity order
// used for every machine-readable report (section 5: "the final report
// lists scanners in a fixed canonical order").
var CanonicalScannerOrder = []string{
	"binaries",
	"dependencies",
	"hooks",
	"ioc",
	"obfuscation",
	"secrets",
	"static",
	"typosquatting",
}
