// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// githubAPI abstracts the go-github client for testing, mirroring the
// teacher's collectors.githubAPI wrapper-interface idiom.
type githubAPI interface {
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
	GetArchiveLink(ctx context.Context, owner, repo string, archiveFormat github.ArchiveFormat, opts *github.RepositoryContentGetOptions, maxRedirects int) (string, *github.Response, error)
}

// realGitHubAPI wraps the real go-github client to implement githubAPI.
type realGitHubAPI struct {
	client *github.Client
}

func (r *realGitHubAPI) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error) {
	return r.client.Repositories.Get(ctx, owner, repo)
}

func (r *realGitHubAPI) GetArchiveLink(ctx context.Context, owner, repo string, archiveFormat github.ArchiveFormat, opts *github.RepositoryContentGetOptions, maxRedirects int) (string, *github.Response, error) {
	u, resp, err := r.client.Repositories.GetArchiveLink(ctx, owner, repo, archiveFormat, opts, maxRedirects)
	if u == nil {
		return "", resp, err
	}
	return u.String(), resp, err
}

// GitHubRepositoryProvider is the default RepositoryProvider, backed by the
// go-github client (spec section 4.10, 4.11), grounded on the teacher's
// internal/collectors/github.go and githubclient.go wrapper pattern.
type GitHubRepositoryProvider struct {
	api        githubAPI
	httpClient *http.Client
}

// NewGitHubRepositoryProvider constructs a provider authenticated with
// token, matching the teacher's github.NewClient(nil).WithAuthToken idiom.
// An empty token still works for unauthenticated, rate-limited requests.
func NewGitHubRepositoryProvider(token string) *GitHubRepositoryProvider {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubRepositoryProvider{
		api:        &realGitHubAPI{client: client},
		httpClient: &http.Client{},
	}
}

// GetRepository implements RepositoryProvider.
func (p *GitHubRepositoryProvider) GetRepository(ctx context.Context, owner, repo string) (finding.RepositoryHealth, error) {
	r, _, err := p.api.GetRepository(ctx, owner, repo)
	if err != nil {
		return finding.RepositoryHealth{}, err
	}

	health := finding.RepositoryHealth{
		Found:      true,
		Owner:      owner,
		Repo:       repo,
		Stars:      r.GetStargazersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
		Archived:   r.GetArchived(),
		CreatedAt:  r.GetCreatedAt().Time,
		LastPushAt: r.GetPushedAt().Time,
	}
	if lic := r.GetLicense(); lic != nil {
		health.License = lic.GetSPDXID()
	}
	return health, nil
}

// DownloadTarball implements RepositoryProvider.
func (p *GitHubRepositoryProvider) DownloadTarball(ctx context.Context, owner, repo string) (io.ReadCloser, error) {
	archiveURL, _, err := p.api.GetArchiveLink(ctx, owner, repo, github.Tarball, nil, 5)
	if err != nil {
		return nil, fmt.Errorf("resolving archive link for %s/%s: %w", owner, repo, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating archive request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading archive for %s/%s: %w", owner, repo, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("archive download returned %d for %s/%s", resp.StatusCode, owner, repo)
	}
	return resp.Body, nil
}

// repoURLPatterns covers the repository-URL shapes listed in spec 4.10:
// https://host/owner/repo[.git], git+https://…, git://…, and the shorthand
// "hostprefix:owner/repo" form.
var (
	httpsRepoPattern     = regexp.MustCompile(`^(?:git\+)?https?://(?:www\.)?github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	gitProtocolPattern   = regexp.MustCompile(`^git://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	sshShorthandPattern  = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
	githubShorthand      = regexp.MustCompile(`^github:([^/]+)/([^/]+?)(?:\.git)?$`)
)

// ParseRepositoryURL normalizes the repository-URL shapes spec 4.10 lists
// and extracts {owner, repo}. It rejects non-canonical (non-GitHub) hosts,
// since GitHubRepositoryProvider only serves github.com repositories.
func ParseRepositoryURL(raw string) (owner, repo string, err error) {
	raw = strings.TrimSpace(raw)
	for _, pat := range []*regexp.Regexp{httpsRepoPattern, gitProtocolPattern, sshShorthandPattern, githubShorthand} {
		if m := pat.FindStringSubmatch(raw); m != nil {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("unrecognized or non-GitHub repository URL: %q", raw)
}

var _ RepositoryProvider = (*GitHubRepositoryProvider)(nil)
