package token

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

var tokenRegexp = regexp.MustCompile(`[a-zA-Z]+|[0-9]+`)

// Tokenize splits s into maximal runs of letters and of digits, in order.
func Tokenize(s string) []string {
	return tokenRegexp.FindAllString(s, -1)
}

// Stats are the token statistics of one run: how many advisory products use a
// token and how many corpus packages it appears in.
type Stats struct {
	Occurrences map[string]int
	Selectivity map[string]int
}

// NewStats computes statistics over the distinct product names and the whole
// corpus. Duplicate product names are counted once.
func NewStats(products []string, pkgs []corpus.Package) *Stats {
	occurrences := map[string]int{}
	for _, product := range lo.Uniq(products) {
		for _, t := range lo.Uniq(Tokenize(product)) {
			occurrences[t]++
		}
	}

	selectivity := make(map[string]int, len(occurrences))
	for t := range occurrences {
		selectivity[t] = lo.CountBy(pkgs, func(pkg corpus.Package) bool {
			return strings.Contains(pkg.InternalName, t) || strings.Contains(pkg.Name, t)
		})
	}

	return &Stats{
		Occurrences: occurrences,
		Selectivity: selectivity,
	}
}

// FalsePositiveImpact is occurrences times selectivity. It is a diagnostic
// only.
func (s *Stats) FalsePositiveImpact() map[string]int {
	impact := make(map[string]int, len(s.Occurrences))
	for t, n := range s.Occurrences {
		impact[t] = n * s.Selectivity[t]
	}
	return impact
}

// Log writes the occurrence, selectivity and impact tables at Info level.
func (s *Stats) Log() {
	if !log.IsLevelEnabled(log.InfoLevel) {
		return
	}
	log.Infof("token counts \n%s\n", sortedString(s.Occurrences))
	log.Infof("token selectivity \n%s\n", sortedString(s.Selectivity))
	log.Infof("false positive impact \n%s\n", sortedString(s.FalsePositiveImpact()))
}

// sortedString renders m one "token: value" per line, ascending by value.
func sortedString(m map[string]int) string {
	keys := maps.Keys(m)
	slices.SortFunc(keys, func(a, b string) int {
		if m[a] != m[b] {
			return m[a] - m[b]
		}
		return strings.Compare(a, b)
	})

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s: %d", k, m[k])
	}
	return sb.String()
}
