package corpus

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Package is one entry of a distribution's package listing.
type Package struct {
	InternalName string `json:"internal_name"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	URL          string `json:"url,omitempty"`
}

func (p Package) String() string {
	return p.InternalName + "/" + p.Name + ":" + p.Version
}

type Provider interface {
	Packages() ([]Package, error)
}

// JSONFile reads a listing produced by the corpus generator: a JSON array of
// packages.
type JSONFile struct {
	AppFs afero.Fs
	Path  string
}

func (j JSONFile) Packages() ([]Package, error) {
	f, err := j.AppFs.Open(j.Path)
	if err != nil {
		return nil, xerrors.Errorf("unable to open %s: %w", j.Path, err)
	}
	defer f.Close()

	var pkgs []Package
	if err = json.NewDecoder(f).Decode(&pkgs); err != nil {
		return nil, xerrors.Errorf("failed to decode package list %s: %w", j.Path, err)
	}
	return pkgs, nil
}

// Corpus is an immutable snapshot of one distribution's packages.
type Corpus struct {
	packages []Package
	byName   map[string]int
}

func New(pkgs []Package) *Corpus {
	c := &Corpus{
		packages: pkgs,
		byName:   make(map[string]int, len(pkgs)),
	}
	for i, pkg := range pkgs {
		if _, ok := c.byName[pkg.Name]; ok {
			continue
		}
		c.byName[pkg.Name] = i
	}
	return c
}

// Packages returns the snapshot in listing order. Callers must not modify it.
func (c *Corpus) Packages() []Package {
	return c.packages
}

// ByName returns the first package listed under the display name.
func (c *Corpus) ByName(name string) (Package, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Package{}, false
	}
	return c.packages[i], true
}

func (c *Corpus) Len() int {
	return len(c.packages)
}

// Cache loads each distribution's corpus at most once per run.
type Cache struct {
	providers map[string]Provider
	loaded    map[string]*Corpus
}

func NewCache(providers map[string]Provider) *Cache {
	return &Cache{
		providers: providers,
		loaded:    map[string]*Corpus{},
	}
}

func (c *Cache) Get(distro string) (*Corpus, error) {
	if corpus, ok := c.loaded[distro]; ok {
		return corpus, nil
	}

	provider, ok := c.providers[distro]
	if !ok {
		return nil, xerrors.Errorf("unknown distribution: %s", distro)
	}

	pkgs, err := provider.Packages()
	if err != nil {
		return nil, xerrors.Errorf("failed to list %s packages: %w", distro, err)
	}
	log.Debugf("loaded %d %s packages", len(pkgs), distro)

	corpus := New(pkgs)
	c.loaded[distro] = corpus
	return corpus, nil
}
