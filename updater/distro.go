package updater

import (
	"context"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

// Distro takes newer versions from another distribution's package listing,
// matching packages by name.
type Distro struct {
	name   string
	corpus *corpus.Corpus
}

func NewDistro(name string, c *corpus.Corpus) Distro {
	return Distro{
		name:   name,
		corpus: c,
	}
}

func (d Distro) Name() string {
	return d.name
}

func (d Distro) Covers(pkg corpus.Package) bool {
	_, ok := d.corpus.ByName(pkg.Name)
	return ok
}

func (d Distro) NewestVersion(_ context.Context, pkg corpus.Package) (string, error) {
	other, ok := d.corpus.ByName(pkg.Name)
	if !ok {
		return "", nil
	}
	v, _ := newer(pkg.Version, other.Version)
	return v, nil
}
