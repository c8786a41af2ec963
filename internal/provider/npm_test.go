// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNpmDoer struct {
	response string
	status   int
}

func (f *fakeNpmDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.response)),
		Header:     make(http.Header),
	}, nil
}

const fakePackument = `{
  "name": "left-pad",
  "dist-tags": {"latest": "1.3.0"},
  "versions": {
    "1.3.0": {
      "name": "left-pad",
      "version": "1.3.0",
      "description": "pad a string",
      "license": "WTFPL",
      "repository": {"url": "git+https://github.com/left-pad/left-pad.git"},
      "dependencies": {},
      "scripts": {"test": "tap test"},
      "dist": {"tarball": "https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz", "fileCount": 4, "unpackedSize": 1234}
    }
  }
}`

func TestNpmRegistryProviderResolve(t *testing.T) {
	p := &NpmRegistryProvider{httpClient: &fakeNpmDoer{response: fakePackument, status: 200}, baseURL: "https://registry.npmjs.org"}

	meta, err := p.Resolve(context.Background(), Specifier{Kind: SpecifierRegistry, Name: "left-pad"})
	require.NoError(t, err)
	assert.Equal(t, "left-pad", meta.Name)
	assert.Equal(t, "1.3.0", meta.Version)
	assert.Equal(t, "WTFPL", meta.License)
	assert.Equal(t, "git+https://github.com/left-pad/left-pad.git", meta.RepositoryURL)
	assert.False(t, meta.HasBin)
	assert.False(t, meta.HasProvenance)
}

func TestNpmRegistryProviderVersionNotFound(t *testing.T) {
	p := &NpmRegistryProvider{httpClient: &fakeNpmDoer{response: fakePackument, status: 200}, baseURL: "https://registry.npmjs.org"}

	_, err := p.Resolve(context.Background(), Specifier{Kind: SpecifierRegistry, Name: "left-pad", Version: "9.9.9"})
	assert.Error(t, err)
}

func TestNpmRegistryProviderNotFound(t *testing.T) {
	p := &NpmRegistryProvider{httpClient: &fakeNpmDoer{response: `{}`, status: 404}, baseURL: "https://registry.npmjs.org"}

	_, err := p.Resolve(context.Background(), Specifier{Kind: SpecifierRegistry, Name: "does-not-exist"})
	assert.Error(t, err)
}

func TestNpmRegistryProviderRejectsLocalPath(t *testing.T) {
	p := NewNpmRegistryProvider()
	_, err := p.Resolve(context.Background(), Specifier{Kind: SpecifierLocalPath, Path: "./pkg"})
	assert.Error(t, err)
}

func TestDecodeLicenseLegacyObjectShape(t *testing.T) {
	assert.Equal(t, "MIT", decodeLicense([]byte(`{"type":"MIT","url":"https://x"}`)))
}

func TestDecodeLicenseBareString(t *testing.T) {
	assert.Equal(t, "MIT", decodeLicense([]byte(`"MIT"`)))
}
