// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package pathclass provides pure path-classification predicates shared by
// every file-walking scanner and the source-diff engine (spec section 4.1).
package pathclass

import (
	"path"
	"regexp"
	"strings"
)

// testDirNames are directory segments that mark a path as test-only.
var testDirNames = map[string]bool{
	"__tests__":    true,
	"tests":        true,
	"test":         true,
	"fixtures":     true,
	"__fixtures__": true,
	"__mocks__":    true,
}

// testFilePattern matches *.test.{js,ts,mjs,cjs,mts,cts}[x] and *.spec.….
var testFilePattern = regexp.MustCompile(`(?i)\.(test|spec)\.(m|c)?(j|t)sx?$`)

// nestedDependencyDir is the fixed segment name for the source ecosystem's
// nested-dependency convention (npm's node_modules).
const nestedDependencyDir = "node_modules"

// declarationPattern matches TypeScript declaration-only files.
var declarationPattern = regexp.MustCompile(`\.d\.(ts|mts|cts)$`)

// buildRoots are top-level directories the diff classifier treats as build
// output by convention.
var buildRoots = map[string]bool{
	"dist":      true,
	"lib":       true,
	"build":     true,
	".next":     true,
	"out":       true,
	"prebuilds": true,
	"compiled":  true,
	"esm":       true,
	"cjs":       true,
}

// nativeAddonExtensions are binary extensions produced by native-addon builds.
var nativeAddonExtensions = map[string]bool{
	".node": true,
	".so":   true,
	".dll":  true,
	".dylib": true,
	".exe":  true,
	".bin":  true,
	".wasm": true,
}

// normalize converts a relative path to use forward slashes and strips any
// leading "./".
func normalize(relPath string) string {
	p := filepath2slash(relPath)
	return strings.TrimPrefix(p, "./")
}

// filepath2slash avoids importing path/filepath here so these predicates
// stay host-independent pure functions over already-relative strings, per
// the invariant in spec section 3 ("uses forward-slash separators
// regardless of host").
func filepath2slash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// segments splits a normalized relative path into its directory components
// plus the final filename.
func segments(relPath string) []string {
	p := normalize(relPath)
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// IsTestFile reports whether relPath is a test-only path: either a
// directory segment names a conventional test directory, or the filename
// matches the *.test./*.spec. naming convention.
func IsTestFile(relPath string) bool {
	segs := segments(relPath)
	if len(segs) == 0 {
		return false
	}
	for _, seg := range segs[:len(segs)-1] {
		if testDirNames[seg] {
			return true
		}
	}
	return testFilePattern.MatchString(segs[len(segs)-1])
}

// IsAlwaysSkip reports whether relPath falls under a nested-dependency
// directory and must never be scanned.
func IsAlwaysSkip(relPath string) bool {
	for _, seg := range segments(relPath) {
		if seg == nestedDependencyDir {
			return true
		}
	}
	return false
}

// IsDeclarationOnly reports whether relPath is a TypeScript .d.ts-family file.
func IsDeclarationOnly(relPath string) bool {
	return declarationPattern.MatchString(normalize(relPath))
}

// IsBuildArtifact reports whether relPath looks like build output, used
// only by the diff classifier (spec section 4.1). sourceExists reports
// whether a given candidate .ts/.tsx/.mts/.cts source path exists in the
// compared source tree; pass nil when that lookup is unavailable.
func IsBuildArtifact(relPath string, sourceExists func(string) bool) bool {
	p := normalize(relPath)
	segs := strings.Split(p, "/")
	if len(segs) > 0 && buildRoots[segs[0]] {
		return true
	}
	if IsDeclarationOnly(p) {
		return true
	}
	if strings.HasSuffix(p, ".map") {
		return true
	}
	ext := path.Ext(p)
	if nativeAddonExtensions[ext] {
		return true
	}
	if sourceExists == nil {
		return false
	}
	switch ext {
	case ".js", ".mjs", ".cjs":
		base := strings.TrimSuffix(p, ext)
		candidates := compiledSourceCandidates(base, ext)
		for _, c := range candidates {
			if sourceExists(c) {
				return true
			}
		}
	}
	return false
}

// compiledSourceCandidates returns the .ts-family source paths that would
// compile to the given base.ext output, with and without a leading src/.
func compiledSourceCandidates(base, jsExt string) []string {
	var tsExts []string
	switch jsExt {
	case ".mjs":
		tsExts = []string{".mts"}
	case ".cjs":
		tsExts = []string{".cts"}
	default:
		tsExts = []string{".ts", ".tsx"}
	}

	var out []string
	for _, ext := range tsExts {
		out = append(out, base+ext)
		out = append(out, withSrcPrefix(base)+ext)
	}
	return out
}

// withSrcPrefix inserts a src/ prefix at the start of the relative path,
// or returns base unchanged if it already starts with src/.
func withSrcPrefix(base string) string {
	if strings.HasPrefix(base, "src/") {
		return base
	}
	return "src/" + base
}

// IsNativeAddonExt reports whether ext (including the leading dot) is a
// non-reviewable native-addon or executable extension (spec section 4.6).
func IsNativeAddonExt(ext string) bool {
	return nativeAddonExtensions[strings.ToLower(ext)]
}
