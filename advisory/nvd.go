package advisory

import (
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/cpe"
)

type nvdEntry struct {
	ID       string   `xml:"id,attr"`
	Products []string `xml:"vulnerable-software-list>product"`
}

// LoadNVD reads an NVD 2.0 XML feed, optionally gzip-compressed. Product
// strings that are not CPE URIs are reported and left out of their entry.
func LoadNVD(fs afero.Fs, path string) ([]Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, xerrors.Errorf("failed to decompress %s: %w", path, err)
		}
		defer gr.Close()
		r = gr
	}

	entries, err := decodeNVD(r)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode NVD XML %s: %w", path, err)
	}
	log.Debugf("loaded %d entries from %s", len(entries), path)
	return entries, nil
}

func decodeNVD(r io.Reader) ([]Entry, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	var entries []Entry
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "entry" {
			continue
		}

		var e nvdEntry
		if err = d.DecodeElement(&e, &se); err != nil {
			return nil, err
		}

		var products []string
		for _, p := range e.Products {
			p = strings.TrimSpace(p)
			if _, ok := cpe.Parse(p); !ok {
				log.WithFields(log.Fields{
					"advisory": e.ID,
					"supplier": supplierHint(p),
				}).Warnf("failed to parse %s", p)
				continue
			}
			products = append(products, p)
		}
		entries = append(entries, newEntry(e.ID, products))
	}
	return entries, nil
}

// supplierHint returns whatever sits in the supplier position of a malformed
// CPE string, for diagnostics only.
func supplierHint(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
