package match

import (
	"strings"

	"github.com/samber/lo"

	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/token"
)

const (
	// Tokens found in more packages than this are too generic to count fully.
	selectivityCutoff = 20
	genericDiscount   = 0.51

	candidateScore   = 1.0
	singleTokenScore = 0.3
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "in": {}, "on": {}, "of": {}, "for": {},
}

// DefaultBlacklist lists products known to match the wrong packages.
var DefaultBlacklist = []string{
	".net_framework",
	"iphone_os",
	"nx-os",
	"unified_computing_system_infrastructure_and_unified_computing_system_software",
	// should be renamed instead of blocked
	"bouncycastle:legion-of-the-bouncy-castle-c%23-crytography-api",
}

// FilterTokens returns the tokens of product that carry evidence: single
// characters and stop words are dropped.
func FilterTokens(product string) []string {
	return lo.Filter(token.Tokenize(product), func(t string, _ int) bool {
		if len(t) == 1 {
			return false
		}
		_, stop := stopWords[t]
		return !stop
	})
}

// Matcher scores corpus packages against advisory product names.
type Matcher struct {
	stats     *token.Stats
	packages  []corpus.Package
	blacklist map[string]struct{}
}

// NewMatcher returns a Matcher that never yields candidates for blacklisted
// products.
func NewMatcher(stats *token.Stats, packages []corpus.Package, blacklist []string) *Matcher {
	m := &Matcher{
		stats:     stats,
		packages:  packages,
		blacklist: map[string]struct{}{},
	}
	for _, b := range blacklist {
		m.blacklist[b] = struct{}{}
	}
	return m
}

// Score sums one point per token found in the package's internal name or
// name, discounting tokens that appear in too many packages.
func (m *Matcher) Score(tokens []string, pkg corpus.Package) float64 {
	var score float64
	for _, t := range tokens {
		if !strings.Contains(pkg.InternalName, t) && !strings.Contains(pkg.Name, t) {
			continue
		}
		if m.stats.Selectivity[t] > selectivityCutoff {
			score += genericDiscount
		} else {
			score += 1
		}
	}
	return score
}

// Candidates returns the packages that may be the product, in corpus order.
func (m *Matcher) Candidates(product string) []corpus.Package {
	if _, ok := m.blacklist[product]; ok {
		return nil
	}

	tokens := FilterTokens(product)
	return lo.Filter(m.packages, func(pkg corpus.Package, _ int) bool {
		score := m.Score(tokens, pkg)
		return score >= candidateScore || (len(tokens) == 1 && score >= singleTokenScore)
	})
}
