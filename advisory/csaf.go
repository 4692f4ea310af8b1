package advisory

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/csaf-poc/csaf_distribution/v3/csaf"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/cpe"
)

// LoadCSAF walks dir for CSAF documents and turns every CVE they describe into
// an entry citing the CPEs of its affected products. A CVE described by several
// documents becomes a single entry.
func LoadCSAF(fs afero.Fs, dir string) ([]Entry, error) {
	var ids []string
	products := map[string][]string{}
	seen := map[string]map[string]struct{}{}

	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return xerrors.Errorf("file walk error: %w", err)
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		adv, err := loadCSAFDocument(fs, path)
		if err != nil {
			log.Warnf("skipping %s: %s", path, err)
			return nil
		}

		for _, vuln := range adv.Vulnerabilities {
			if vuln == nil || vuln.CVE == nil {
				continue
			}
			id := string(*vuln.CVE)
			if _, ok := seen[id]; !ok {
				ids = append(ids, id)
				seen[id] = map[string]struct{}{}
			}
			for _, uri := range affectedCPEs(adv, vuln) {
				if _, ok := seen[id][uri]; ok {
					continue
				}
				seen[id][uri] = struct{}{}
				products[id] = append(products[id], uri)
			}
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("walk error: %w", err)
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, newEntry(id, products[id]))
	}
	return entries, nil
}

func loadCSAFDocument(fs afero.Fs, path string) (*csaf.Advisory, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("file open error: %w", err)
	}
	defer f.Close()

	var adv csaf.Advisory
	if err = json.NewDecoder(f).Decode(&adv); err != nil {
		return nil, xerrors.Errorf("json decode error: %w", err)
	}
	if err = adv.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid advisory: %w", err)
	}
	return &adv, nil
}

func affectedCPEs(adv *csaf.Advisory, vuln *csaf.Vulnerability) []string {
	if adv.ProductTree == nil || vuln.ProductStatus == nil {
		return nil
	}

	var uris []string
	for _, products := range []*csaf.Products{
		vuln.ProductStatus.FirstAffected,
		vuln.ProductStatus.KnownAffected,
		vuln.ProductStatus.LastAffected,
	} {
		if products == nil {
			continue
		}
		for _, id := range *products {
			if id == nil {
				continue
			}
			for _, helper := range adv.ProductTree.CollectProductIdentificationHelpers(*id) {
				if helper == nil || helper.CPE == nil {
					continue
				}
				raw := string(*helper.CPE)
				uri, ok := cpe.FromFormatted(raw)
				if !ok {
					uri = raw
				}
				if _, ok = cpe.Parse(uri); !ok {
					log.WithField("advisory", *vuln.CVE).Warnf("failed to parse %s", raw)
					continue
				}
				uris = append(uris, uri)
			}
		}
	}
	return uris
}
