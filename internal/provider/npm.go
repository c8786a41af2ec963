// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// npmRegistryBaseURL is the default npm registry URL.
const npmRegistryBaseURL = "https://registry.npmjs.org"

// npmHTTPDoer abstracts the registry's HTTP transport for testing.
type npmHTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NpmRegistryProvider is the default MetadataProvider, resolving package
// specifiers against the public npm registry.
type NpmRegistryProvider struct {
	httpClient npmHTTPDoer
	baseURL    string
}

// NewNpmRegistryProvider constructs a provider against the public registry.
func NewNpmRegistryProvider() *NpmRegistryProvider {
	return NewNpmRegistryProviderWithBaseURL("")
}

// NewNpmRegistryProviderWithBaseURL constructs a provider against a custom
// registry URL (e.g. a private registry mirror set via .npmaudit.yaml's
// registry_url). An empty baseURL falls back to the public registry.
func NewNpmRegistryProviderWithBaseURL(baseURL string) *NpmRegistryProvider {
	if baseURL == "" {
		baseURL = npmRegistryBaseURL
	}
	return &NpmRegistryProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type npmPackument struct {
	Name     string                   `json:"name"`
	DistTags map[string]string        `json:"dist-tags"`
	Versions map[string]npmVersionDoc `json:"versions"`
}

type npmVersionDoc struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	License         json.RawMessage   `json:"license"`
	Homepage        string            `json:"homepage"`
	Repository      npmRepositoryDoc  `json:"repository"`
	Dependencies    map[string]string `json:"dependencies"`
	OptionalDeps    map[string]string `json:"optionalDependencies"`
	Scripts         map[string]string `json:"scripts"`
	Bin             json.RawMessage   `json:"bin"`
	Maintainers     []npmPersonDoc    `json:"maintainers"`
	NpmUser         npmPersonDoc      `json:"_npmUser"`
	Dist            npmDistDoc        `json:"dist"`
}

type npmRepositoryDoc struct {
	URL string `json:"url"`
}

type npmPersonDoc struct {
	Name string `json:"name"`
}

type npmDistDoc struct {
	Tarball    string          `json:"tarball"`
	FileCount  int             `json:"fileCount"`
	Unpacked   int64           `json:"unpackedSize"`
	Attestations json.RawMessage `json:"attestations"`
}

// Resolve implements MetadataProvider.
func (p *NpmRegistryProvider) Resolve(ctx context.Context, spec Specifier) (finding.PackageMetadata, error) {
	if spec.Kind != SpecifierRegistry {
		return finding.PackageMetadata{}, fmt.Errorf("npm registry provider cannot resolve a local-path specifier")
	}

	doc, err := p.fetchPackument(ctx, spec.FullName())
	if err != nil {
		return finding.PackageMetadata{}, err
	}

	version := spec.Version
	if version == "" {
		version = doc.DistTags["latest"]
	}
	v, ok := doc.Versions[version]
	if !ok {
		return finding.PackageMetadata{}, fmt.Errorf("version %q not found for %s", version, spec.FullName())
	}

	meta := finding.PackageMetadata{
		Name:                 v.Name,
		Version:              v.Version,
		Description:          v.Description,
		License:              decodeLicense(v.License),
		Publisher:            v.NpmUser.Name,
		ArtifactLocator:      v.Dist.Tarball,
		RepositoryURL:        v.Repository.URL,
		Homepage:             v.Homepage,
		FileCount:            v.Dist.FileCount,
		UnpackedSize:         v.Dist.Unpacked,
		Dependencies:         v.Dependencies,
		OptionalDependencies: v.OptionalDeps,
		LifecycleScripts:     v.Scripts,
		HasBin:               len(v.Bin) > 0 && string(v.Bin) != "null",
		HasProvenance:        len(v.Attestations) > 0 && string(v.Attestations) != "null",
	}
	for _, m := range v.Maintainers {
		meta.Maintainers = append(meta.Maintainers, m.Name)
	}
	return meta, nil
}

// Download implements MetadataProvider.
func (p *NpmRegistryProvider) Download(ctx context.Context, meta finding.PackageMetadata) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.ArtifactLocator, nil)
	if err != nil {
		return nil, fmt.Errorf("creating tarball request: %w", err)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", meta.ArtifactLocator, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("registry returned %d fetching tarball for %s", resp.StatusCode, meta.Name)
	}
	return resp.Body, nil
}

func (p *NpmRegistryProvider) fetchPackument(ctx context.Context, fullName string) (*npmPackument, error) {
	url := fmt.Sprintf("%s/%s", p.base(), fullName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("package %q not found", fullName)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("npm registry returned %d for %s", resp.StatusCode, fullName)
	}

	var doc npmPackument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding npm response for %s: %w", fullName, err)
	}
	return &doc, nil
}

func (p *NpmRegistryProvider) client() npmHTTPDoer {
	if p.httpClient != nil {
		return p.httpClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (p *NpmRegistryProvider) base() string {
	if p.baseURL != "" {
		return p.baseURL
	}
	return npmRegistryBaseURL
}

// decodeLicense handles both the legacy {"type": "MIT"} shape and the
// modern bare-string SPDX shape.
func decodeLicense(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Type
	}
	return ""
}

var _ MetadataProvider = (*NpmRegistryProvider)(nil)
