package match

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/nixpkgs-monitor/updatetool/advisory"
	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/cpe"
	"github.com/nixpkgs-monitor/updatetool/token"
)

// Record is one confirmed match of a package against an advisory.
type Record struct {
	PackageAttr string `json:"pkg_attr"`
	Product     string `json:"product"`
	Version     string `json:"version"`
	AdvisoryID  string `json:"cve"`
}

type Option func(c *Correlator)

func WithBlacklist(blacklist []string) Option {
	return func(c *Correlator) {
		c.blacklist = blacklist
	}
}

func WithProgressBar(enabled bool) Option {
	return func(c *Correlator) {
		c.progress = enabled
	}
}

type Correlator struct {
	packages  []corpus.Package
	blacklist []string
	progress  bool
}

func NewCorrelator(packages []corpus.Package, opts ...Option) *Correlator {
	c := &Correlator{
		packages:  packages,
		blacklist: DefaultBlacklist,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// products groups the advisory product references of one run.
type products struct {
	names    []string
	versions map[string][]string
	ids      map[string][]string
}

func groupProducts(entries []advisory.Entry) products {
	p := products{
		versions: map[string][]string{},
		ids:      map[string][]string{},
	}
	for _, entry := range entries {
		for _, raw := range entry.Products() {
			ref, ok := cpe.Parse(raw)
			if !ok {
				continue
			}
			if _, ok := p.versions[ref.Product]; !ok {
				p.names = append(p.names, ref.Product)
			}
			if !lo.Contains(p.versions[ref.Product], ref.Version) {
				p.versions[ref.Product] = append(p.versions[ref.Product], ref.Version)
			}
			key := ref.String()
			if !lo.Contains(p.ids[key], entry.ID()) {
				p.ids[key] = append(p.ids[key], entry.ID())
			}
		}
	}
	return p
}

// Correlate matches every advisory product against the corpus and returns one
// record per advisory citing each confirmed product version.
func (c *Correlator) Correlate(entries []advisory.Entry) []Record {
	p := groupProducts(entries)
	log.Debugf("products %d", len(p.names))

	for _, name := range p.names {
		for _, version := range p.versions[name] {
			if _, ok := ExtractVersion(version); !ok {
				log.Warnf("can't parse version %s : %s", name, version)
			}
		}
	}

	stats := token.NewStats(p.names, c.packages)
	stats.Log()

	matcher := NewMatcher(stats, c.packages, c.blacklist)

	var bar *pb.ProgressBar
	if c.progress {
		bar = pb.StartNew(len(p.names))
		defer bar.Finish()
	}

	var records []Record
	for _, name := range p.names {
		if bar != nil {
			bar.Increment()
		}
		for _, pkg := range matcher.Candidates(name) {
			if Excluded(name, pkg) {
				continue
			}
			for _, version := range p.versions[name] {
				if !VersionsCorrelate(version, pkg.Version) {
					continue
				}
				ids := p.ids[fmt.Sprintf("%s:%s", name, version)]
				log.Warnf("match %v: %s: %s = %s:%s", ids, pkg.InternalName, pkg.Version, name, version)
				for _, id := range ids {
					records = append(records, Record{
						PackageAttr: pkg.InternalName,
						Product:     name,
						Version:     version,
						AdvisoryID:  id,
					})
				}
			}
		}
	}
	return records
}
