// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecifierUnscopedUnversioned(t *testing.T) {
	s, err := ParseSpecifier("left-pad")
	require.NoError(t, err)
	assert.Equal(t, SpecifierRegistry, s.Kind)
	assert.Equal(t, "left-pad", s.Name)
	assert.Empty(t, s.Version)
	assert.Equal(t, "left-pad", s.FullName())
}

func TestParseSpecifierUnscopedVersioned(t *testing.T) {
	s, err := ParseSpecifier("left-pad@1.3.0")
	require.NoError(t, err)
	assert.Equal(t, "left-pad", s.Name)
	assert.Equal(t, "1.3.0", s.Version)
}

func TestParseSpecifierScopedUnversioned(t *testing.T) {
	s, err := ParseSpecifier("@babel/core")
	require.NoError(t, err)
	assert.Equal(t, "babel", s.Scope)
	assert.Equal(t, "core", s.Name)
	assert.Equal(t, "@babel/core", s.FullName())
}

func TestParseSpecifierScopedVersionedSplitsAtLastAt(t *testing.T) {
	s, err := ParseSpecifier("@babel/core@7.20.0")
	require.NoError(t, err)
	assert.Equal(t, "babel", s.Scope)
	assert.Equal(t, "core", s.Name)
	assert.Equal(t, "7.20.0", s.Version)
}

func TestParseSpecifierLocalPaths(t *testing.T) {
	for _, raw := range []string{"./pkg", "../pkg", "/abs/pkg", "pkg.tgz", "dir/pkg.tar.gz"} {
		s, err := ParseSpecifier(raw)
		require.NoError(t, err)
		assert.Equal(t, SpecifierLocalPath, s.Kind)
		assert.Equal(t, raw, s.Path)
	}
}

func TestParseSpecifierEmpty(t *testing.T) {
	_, err := ParseSpecifier("")
	assert.Error(t, err)
}

func TestParseSpecifierMalformedScope(t *testing.T) {
	_, err := ParseSpecifier("@scope-no-slash")
	assert.Error(t, err)
}
