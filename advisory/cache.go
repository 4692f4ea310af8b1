package advisory

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

var DefaultNVDFeeds = []string{
	"nvdcve-2.0-2012.xml",
	"nvdcve-2.0-2013.xml",
	"nvdcve-2.0-2014.xml",
	"nvdcve-2.0-modified.xml",
}

// Sources tells a Cache where each feed lives on disk. Empty directories
// disable the corresponding feed.
type Sources struct {
	FeedDir         string
	NVDFeeds        []string
	GLSADir         string
	GLSAYearPattern string
	CSAFDir         string
}

// Cache holds the advisory lists for the lifetime of a run. Each list is read
// on first use and never reloaded.
type Cache struct {
	fs      afero.Fs
	sources Sources

	cves  []Entry
	glsas []Entry
	csafs []Entry

	cvesLoaded  bool
	glsasLoaded bool
	csafsLoaded bool
}

func NewCache(fs afero.Fs, sources Sources) *Cache {
	if sources.GLSAYearPattern == "" {
		sources.GLSAYearPattern = DefaultGLSAYearPattern
	}
	return &Cache{
		fs:      fs,
		sources: sources,
	}
}

// CVEs concatenates the configured NVD feeds in order. A feed that is missing
// or unreadable is reported and skipped.
func (c *Cache) CVEs() []Entry {
	if c.cvesLoaded {
		return c.cves
	}

	var entries []Entry
	for _, name := range c.sources.NVDFeeds {
		path := filepath.Join(c.sources.FeedDir, name)
		feed, err := LoadNVD(c.fs, path)
		if err != nil {
			log.Warnf("skipping NVD feed: %s", err)
			continue
		}
		entries = append(entries, feed...)
	}

	c.cves, c.cvesLoaded = entries, true
	return c.cves
}

func (c *Cache) GLSAs() ([]Entry, error) {
	if c.glsasLoaded {
		return c.glsas, nil
	}
	if c.sources.GLSADir == "" {
		return nil, xerrors.New("GLSA directory is not configured")
	}

	entries, err := LoadGLSA(c.fs, c.sources.GLSADir, c.sources.GLSAYearPattern)
	if err != nil {
		return nil, xerrors.Errorf("failed to load GLSA list: %w", err)
	}

	c.glsas, c.glsasLoaded = entries, true
	return c.glsas, nil
}

// CSAFs returns nothing when no CSAF directory is configured.
func (c *Cache) CSAFs() ([]Entry, error) {
	if c.csafsLoaded {
		return c.csafs, nil
	}

	var entries []Entry
	if c.sources.CSAFDir != "" {
		var err error
		if entries, err = LoadCSAF(c.fs, c.sources.CSAFDir); err != nil {
			return nil, xerrors.Errorf("failed to load CSAF advisories: %w", err)
		}
	}

	c.csafs, c.csafsLoaded = entries, true
	return c.csafs, nil
}
