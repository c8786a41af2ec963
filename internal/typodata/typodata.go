// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package typodata loads the two bundled static tables described in spec
// section 6: the popular-package-name list (typosquatting scanner) and the
// ignored-domains / ignored-IPs lists (IOC extractor). Each is parsed once
// at startup from an embedded TOML file and shared read-only.
package typodata

import (
	"embed"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed data/popular.toml data/ignored_domains.toml data/ignored_ips.toml
var dataFS embed.FS

type popularDoc struct {
	Names []string `toml:"names"`
}

type ignoredDomainsDoc struct {
	Domains []string `toml:"domains"`
}

type ignoredIPsDoc struct {
	IPs []string `toml:"ips"`
}

var (
	popularOnce sync.Once
	popularList []string
	popularErr  error

	domainsOnce sync.Once
	domainsList []string
	domainsErr  error

	ipsOnce sync.Once
	ipsList []string
	ipsErr  error
)

// PopularNames returns the bundled popular-package-name list. The result
// (or error) is cached after the first call.
func PopularNames() ([]string, error) {
	popularOnce.Do(func() {
		var doc popularDoc
		_, popularErr = toml.DecodeFS(dataFS, "data/popular.toml", &doc)
		popularList = doc.Names
	})
	return popularList, popularErr
}

// IgnoredDomains returns the bundled domain allowlist used to suppress
// benign URLs discovered by the IOC extractor.
func IgnoredDomains() ([]string, error) {
	domainsOnce.Do(func() {
		var doc ignoredDomainsDoc
		_, domainsErr = toml.DecodeFS(dataFS, "data/ignored_domains.toml", &doc)
		domainsList = doc.Domains
	})
	return domainsList, domainsErr
}

// IgnoredIPs returns the bundled IP allowlist used to suppress benign
// addresses discovered by the IOC extractor.
func IgnoredIPs() ([]string, error) {
	ipsOnce.Do(func() {
		var doc ignoredIPsDoc
		_, ipsErr = toml.DecodeFS(dataFS, "data/ignored_ips.toml", &doc)
		ipsList = doc.IPs
	})
	return ipsList, ipsErr
}
