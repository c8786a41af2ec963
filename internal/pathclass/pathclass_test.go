// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package pathclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTestFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"src/index.js", false},
		{"__tests__/index.js", true},
		{"test/helpers/setup.js", true},
		{"src/index.test.js", true},
		{"src/index.spec.ts", true},
		{"src/index.spec.tsx", true},
		{"fixtures/payload.json", true},
		{"src/__mocks__/fs.js", true},
		{"lib/index.cjs", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTestFile(tc.path))
		})
	}
}

func TestIsTestFileStability(t *testing.T) {
	// Path classifier stability: repeated calls on the same input never disagree.
	for i := 0; i < 3; i++ {
		assert.True(t, IsTestFile("tests/fixture.js"))
		assert.False(t, IsTestFile("src/fixture_helper.js"))
	}
}

func TestIsAlwaysSkip(t *testing.T) {
	assert.True(t, IsAlwaysSkip("node_modules/left-pad/index.js"))
	assert.True(t, IsAlwaysSkip("packages/a/node_modules/b/index.js"))
	assert.False(t, IsAlwaysSkip("src/node_modules_helper.js"))
}

func TestIsDeclarationOnly(t *testing.T) {
	assert.True(t, IsDeclarationOnly("index.d.ts"))
	assert.True(t, IsDeclarationOnly("types/index.d.mts"))
	assert.False(t, IsDeclarationOnly("index.ts"))
}

func TestIsBuildArtifact(t *testing.T) {
	assert.True(t, IsBuildArtifact("dist/index.js", nil))
	assert.True(t, IsBuildArtifact("lib/cjs/index.js", nil))
	assert.True(t, IsBuildArtifact("index.d.ts", nil))
	assert.True(t, IsBuildArtifact("index.js.map", nil))
	assert.True(t, IsBuildArtifact("build/addon.node", nil))
	assert.False(t, IsBuildArtifact("src/index.js", nil))

	sourceExists := func(p string) bool {
		return p == "src/index.ts"
	}
	assert.True(t, IsBuildArtifact("index.js", sourceExists))
	assert.False(t, IsBuildArtifact("other.js", sourceExists))
}

func TestIsNativeAddonExt(t *testing.T) {
	assert.True(t, IsNativeAddonExt(".node"))
	assert.True(t, IsNativeAddonExt(".NODE"))
	assert.False(t, IsNativeAddonExt(".js"))
}
