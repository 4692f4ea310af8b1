package updater

import (
	"context"
	"net/url"
	"strings"

	githubql "github.com/shurcooL/githubv4"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

const githubHost = "github.com"

type GithubClient interface {
	Query(ctx context.Context, q interface{}, variables map[string]interface{}) error
}

type LatestReleaseQuery struct {
	Repository struct {
		LatestRelease struct {
			TagName githubql.String
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GitHub reports the latest release of projects hosted on GitHub.
type GitHub struct {
	client GithubClient
}

func NewGitHub(client GithubClient) GitHub {
	return GitHub{client: client}
}

func (g GitHub) Name() string {
	return "github"
}

func (g GitHub) Covers(pkg corpus.Package) bool {
	_, _, ok := githubRepo(pkg.URL)
	return ok
}

func (g GitHub) NewestVersion(ctx context.Context, pkg corpus.Package) (string, error) {
	owner, repo, ok := githubRepo(pkg.URL)
	if !ok {
		return "", nil
	}

	var q LatestReleaseQuery
	variables := map[string]interface{}{
		"owner": githubql.String(owner),
		"name":  githubql.String(repo),
	}
	if err := g.client.Query(ctx, &q, variables); err != nil {
		return "", xerrors.Errorf("graphql api error: %w", err)
	}

	tag := string(q.Repository.LatestRelease.TagName)
	if tag == "" {
		return "", nil
	}
	tag = strings.TrimPrefix(tag, repo+"-")
	tag = strings.TrimPrefix(tag, "v")

	v, _ := newer(pkg.Version, tag)
	return v, nil
}

// githubRepo extracts owner and repository from a github.com URL.
func githubRepo(rawURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != githubHost {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}
