// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package scanner defines the Scanner interface and a registry of the
// available static analyzers.
package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// Options configures a single scanner invocation.
type Options struct {
	// HasBin indicates the manifest declares a CLI entry point; scanners
	// that implement the §4.2 CLI-tool downgrade read this.
	HasBin bool

	// Manifest holds the parsed package manifest sub-shape a scanner needs.
	// Scanners probe only the fields relevant to them (section 9: "no
	// global JSON-object type is threaded through scanners").
	Manifest map[string]any

	// MaxFileBytes caps how much of an individual file a scanner reads
	// before falling back to a truncated sample (section 9, streaming note).
	MaxFileBytes int64
}

// DefaultMaxFileBytes bounds memory for whole-file analyses (entropy,
// string-array classification) on packages that unpack to 100+ MB.
const DefaultMaxFileBytes = 8 << 20 // 8 MiB

// Scanner inspects an extracted artifact tree and returns one ScannerResult.
// Implementations must never panic and must never let an internal error
// escape as anything other than a populated ScannerResult.Err — the
// orchestrator treats a panic as a bug, not an expected failure mode.
type Scanner interface {
	// Name returns the scanner's identity, e.g. "static", "secrets".
	Name() string

	// Scan inspects artifactRoot and returns the scanner's findings.
	Scan(ctx context.Context, artifactRoot string, opts Options) finding.ScannerResult
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Scanner)
)

// Register adds a scanner to the global registry. It panics if a scanner
// with the same name is already registered — a programmer error, not a
// runtime condition.
func Register(s Scanner) {
	mu.Lock()
	defer mu.Unlock()
	name := s.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("scanner already registered: %s", name))
	}
	registry[name] = s
}

// Get returns the scanner with the given name, or nil if not found.
func Get(name string) Scanner {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// List returns the names of all registered scanners, in no particular order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// ResetForTesting clears the registry. Only for use in tests.
func ResetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Scanner)
}
