// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package health implements the Repository-Health Probe (spec section
// 4.10): normalizing a package's declared repository URL, querying the
// repository provider once, and degrading gracefully on any failure.
package health

import (
	"context"
	"strings"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/provider"
)

// Probe queries repoURL's repository provider once and returns its health.
// Any parse or network error yields a zeroed, Found=false result — this
// component is never allowed to fail the scan.
func Probe(ctx context.Context, repoProvider provider.RepositoryProvider, repoURL, publisher string) finding.RepositoryHealth {
	if repoURL == "" || repoProvider == nil {
		return finding.RepositoryHealth{}
	}

	owner, repo, err := provider.ParseRepositoryURL(repoURL)
	if err != nil {
		return finding.RepositoryHealth{}
	}

	health, err := repoProvider.GetRepository(ctx, owner, repo)
	if err != nil {
		return finding.RepositoryHealth{}
	}

	health.PublisherMatchesOwner = publisherMatchesOwner(publisher, owner)
	return health
}

func publisherMatchesOwner(publisher, owner string) bool {
	if publisher == "" || owner == "" {
		return false
	}
	return strings.EqualFold(publisher, owner)
}
