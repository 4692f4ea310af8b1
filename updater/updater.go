package updater

import (
	"context"

	"github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

// Updater is a source of newer versions for some packages.
type Updater interface {
	Name() string
	Covers(pkg corpus.Package) bool
	// NewestVersion returns the newest version known for pkg, or "" if it has
	// none newer than pkg.Version.
	NewestVersion(ctx context.Context, pkg corpus.Package) (string, error)
}

// Coverage counts the updaters covering each package, keyed by attribute.
func Coverage(pkgs []corpus.Package, updaters []Updater) map[string]int {
	coverage := make(map[string]int, len(pkgs))
	for _, pkg := range pkgs {
		n := 0
		for _, u := range updaters {
			if u.Covers(pkg) {
				n++
			}
		}
		coverage[pkg.InternalName] = n
	}
	return coverage
}

// HardToCover reports whether pkg has no source URL to derive updates from.
func HardToCover(pkg corpus.Package) bool {
	return pkg.URL == "" || pkg.URL == "none"
}

// newer returns candidate if it is a greater version than current.
func newer(current, candidate string) (string, bool) {
	cur, err := version.NewVersion(current)
	if err != nil {
		log.Debugf("unable to parse version %q: %s", current, err)
		return "", false
	}
	v, err := version.NewVersion(candidate)
	if err != nil {
		log.Debugf("unable to parse version %q: %s", candidate, err)
		return "", false
	}
	if !v.GreaterThan(cur) {
		return "", false
	}
	return candidate, true
}
