package advisory

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/utils"
)

const (
	glsaPrefix    = "GLSA-"
	glsaIndexFile = "index.xml"

	DefaultGLSASource      = "git::https://anongit.gentoo.org/git/data/glsa.git"
	DefaultGLSAYearPattern = `201[01234]`
)

type glsaDocument struct {
	XMLName  xml.Name `xml:"glsa"`
	ID       string   `xml:"id,attr"`
	Packages []struct {
		Name string `xml:"name,attr"`
	} `xml:"affected>package"`
}

// LoadGLSA parses every GLSA document in dir whose file name matches
// yearPattern. Documents that cannot be read are reported and skipped.
func LoadGLSA(fs afero.Fs, dir, yearPattern string) ([]Entry, error) {
	yearRegexp, err := regexp.Compile(yearPattern)
	if err != nil {
		return nil, xerrors.Errorf("invalid GLSA year pattern %q: %w", yearPattern, err)
	}

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, xerrors.Errorf("unable to read GLSA directory: %w", err)
	}

	var entries []Entry
	for _, info := range infos {
		name := info.Name()
		if !info.Mode().IsRegular() || !strings.HasSuffix(name, ".xml") || name == glsaIndexFile {
			continue
		}
		if !yearRegexp.MatchString(name) {
			continue
		}

		path := filepath.Join(dir, name)
		entry, err := parseGLSA(fs, path)
		if err != nil {
			log.Warnf("skipping %s: %s", path, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseGLSA(fs afero.Fs, path string) (Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Entry{}, xerrors.Errorf("unable to open: %w", err)
	}
	defer f.Close()

	d := xml.NewDecoder(f)
	d.CharsetReader = charset.NewReaderLabel
	// Tolerate entities declared in the external GLSA DTD.
	d.Strict = false

	var doc glsaDocument
	if err = d.Decode(&doc); err != nil {
		return Entry{}, xerrors.Errorf("failed to decode GLSA XML: %w", err)
	}
	if doc.ID == "" {
		return Entry{}, xerrors.New("glsa id is missing")
	}

	var packages []string
	for _, pkg := range doc.Packages {
		packages = append(packages, strings.ToLower(pkg.Name))
	}
	return newEntry(glsaPrefix+doc.ID, packages), nil
}

// SyncGLSA replaces dir with a fresh copy of the GLSA tree fetched from src,
// any source go-getter understands.
func SyncGLSA(ctx context.Context, src, dir string) error {
	log.Infof("Fetching GLSA tree from %s", src)
	if err := utils.DownloadToDir(ctx, src, dir); err != nil {
		return xerrors.Errorf("failed to sync GLSA tree: %w", err)
	}

	infos, err := os.ReadDir(dir)
	if err != nil {
		return xerrors.Errorf("unable to read GLSA directory: %w", err)
	}
	log.Infof("GLSA tree has %d files", len(infos))
	return nil
}
