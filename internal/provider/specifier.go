// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package provider defines the external-collaborator interfaces npmaudit
// depends on (package metadata, repository health, artifact extraction)
// and the package-specifier grammar used to parse the CLI's input
// argument (spec section 6).
package provider

import "strings"

// SpecifierKind classifies a parsed package Specifier.
type SpecifierKind int

const (
	// SpecifierRegistry names a published package, optionally scoped and
	// versioned, to be resolved against the metadata provider.
	SpecifierRegistry SpecifierKind = iota
	// SpecifierLocalPath names a local directory or a local tarball
	// (.tgz / .tar.gz) to be extracted in place.
	SpecifierLocalPath
)

// Specifier is the parsed form of the CLI's package-specifier argument.
type Specifier struct {
	Kind    SpecifierKind
	Scope   string // Without the leading "@"; empty if unscoped.
	Name    string // Bare name, no scope prefix.
	Version string // Empty means "resolve the latest version".
	Path    string // Populated only when Kind == SpecifierLocalPath.
}

// FullName returns the scope-qualified package name ("@scope/name" or
// "name"), empty for local-path specifiers.
func (s Specifier) FullName() string {
	if s.Kind == SpecifierLocalPath {
		return ""
	}
	if s.Scope == "" {
		return s.Name
	}
	return "@" + s.Scope + "/" + s.Name
}

// ParseSpecifier parses the CLI's package-specifier grammar (spec section 6):
//
//	name                 unscoped, unversioned
//	name@version         unscoped, versioned
//	@scope/name          scoped, unversioned
//	@scope/name@version  scoped, versioned (split at the LAST '@')
//	./x, ../x, /x        local path
//	*.tgz, *.tar.gz      local tarball (with or without a path prefix)
func ParseSpecifier(raw string) (Specifier, error) {
	if raw == "" {
		return Specifier{}, errEmptySpecifier
	}

	if isLocalPath(raw) {
		return Specifier{Kind: SpecifierLocalPath, Path: raw}, nil
	}

	scope := ""
	rest := raw
	if strings.HasPrefix(raw, "@") {
		idx := strings.IndexByte(raw, '/')
		if idx < 0 {
			return Specifier{}, errMalformedScope
		}
		scope = raw[1:idx]
		rest = raw[idx+1:]
		if scope == "" || rest == "" {
			return Specifier{}, errMalformedScope
		}
	}

	name, version := rest, ""
	if at := strings.LastIndexByte(rest, '@'); at > 0 {
		name, version = rest[:at], rest[at+1:]
	}
	if name == "" {
		return Specifier{}, errMalformedName
	}

	return Specifier{Kind: SpecifierRegistry, Scope: scope, Name: name, Version: version}, nil
}

func isLocalPath(raw string) bool {
	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") || strings.HasPrefix(raw, "/") {
		return true
	}
	return strings.HasSuffix(raw, ".tgz") || strings.HasSuffix(raw, ".tar.gz")
}

type specifierError string

func (e specifierError) Error() string { return string(e) }

const (
	errEmptySpecifier = specifierError("empty package specifier")
	errMalformedScope = specifierError("malformed scoped package specifier")
	errMalformedName  = specifierError("malformed package specifier")
)
