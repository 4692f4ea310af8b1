package match

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nixpkgs-monitor/updatetool/advisory"
	"github.com/nixpkgs-monitor/updatetool/corpus"
)

// Ecosystem prefixes tried in order when the bare GLSA name is not packaged.
var ecosystemPrefixes = []string{"ruby-", "python-", "perl-"}

// atomRegexp finds the first "category/name" pair of a package atom.
var atomRegexp = regexp.MustCompile(`([^/]+)/([^/]+)`)

// DefaultKnownSafe lists GLSA ids reviewed as not applicable.
var DefaultKnownSafe = []string{
	"GLSA-201210-02",
}

// MatchGLSA looks up the package named by the entry's first affected atom.
func MatchGLSA(entry advisory.Entry, c *corpus.Corpus) (corpus.Package, bool) {
	products := entry.Products()
	if len(products) == 0 {
		return corpus.Package{}, false
	}

	m := atomRegexp.FindStringSubmatch(products[0])
	if m == nil {
		return corpus.Package{}, false
	}
	name := m[2]

	if pkg, ok := c.ByName(name); ok {
		return pkg, true
	}
	for _, prefix := range ecosystemPrefixes {
		if pkg, ok := c.ByName(prefix + name); ok {
			return pkg, true
		}
	}
	return corpus.Package{}, false
}

// FindUnmatched returns the entries that neither match a package nor are
// known to be safe.
func FindUnmatched(entries []advisory.Entry, c *corpus.Corpus, knownSafe []string) []advisory.Entry {
	safe := map[string]struct{}{}
	for _, id := range knownSafe {
		safe[id] = struct{}{}
	}

	var unmatched []advisory.Entry
	for _, entry := range entries {
		if pkg, ok := MatchGLSA(entry, c); ok {
			log.Infof("matched %s to %s", entry.ID(), pkg)
			continue
		}
		if _, ok := safe[entry.ID()]; ok {
			log.Infof("%s is known to be safe", entry.ID())
			continue
		}
		log.Warnf("failed to match %s %s", entry.ID(), strings.Join(entry.Products(), ", "))
		unmatched = append(unmatched, entry)
	}
	return unmatched
}
