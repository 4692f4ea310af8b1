package cmd

import (
	"context"

	githubql "github.com/shurcooL/githubv4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/oauth2"

	"github.com/nixpkgs-monitor/updatetool/updater"
)

// updaters builds one updater per other configured distribution, one per
// HTML index and the GitHub updater when a token is available.
func (a *app) updaters(ctx context.Context) []updater.Updater {
	var us []updater.Updater

	distros := maps.Keys(a.conf.Corpus)
	slices.Sort(distros)
	for _, distro := range distros {
		if distro == a.opts.distro {
			continue
		}
		c, err := a.corpora.Get(distro)
		if err != nil {
			log.Warnf("skipping %s updater: %s", distro, err)
			continue
		}
		us = append(us, updater.NewDistro(distro, c))
	}

	indexes := maps.Keys(a.conf.HTMLIndexes)
	slices.Sort(indexes)
	for _, name := range indexes {
		us = append(us, updater.NewHTMLIndex(name, a.conf.HTMLIndexes[name]))
	}

	if a.conf.GithubToken != "" {
		src := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: a.conf.GithubToken},
		)
		httpClient := oauth2.NewClient(ctx, src)
		us = append(us, updater.NewGitHub(githubql.NewClient(httpClient)))
	} else {
		log.Info("GITHUB_TOKEN is not set, skipping GitHub updater")
	}
	return us
}
