package parser

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

const (
	fuzzyMinAliasLen   = 5
	fuzzyMaxWords      = 3
	fuzzyMinSimilarity = 0.93
	fuzzyMaxDistance   = 2
)

// FuzzyResolve looks for a misspelt alias ("bahria twon") in text. Each alias
// of at least five characters is compared with every window of the same
// number of words; a window must score at least 0.93 Jaro-Winkler and sit
// within edit distance 2. Placeholder aliases take no part.
func (d *SocietyDictionary) FuzzyResolve(text string) (SocietyMatch, bool) {
	if d == nil {
		return SocietyMatch{}, false
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
	if len(words) == 0 {
		return SocietyMatch{}, false
	}

	var best SocietyMatch
	bestScore := 0.0
	for _, e := range d.entries {
		for _, a := range e.aliases {
			if a.capture != captureNone || len(a.alias) < fuzzyMinAliasLen {
				continue
			}
			alias := strings.ToLower(a.alias)
			n := len(strings.Fields(alias))
			if n > fuzzyMaxWords || n > len(words) {
				continue
			}
			for i := 0; i+n <= len(words); i++ {
				window := strings.Join(words[i:i+n], " ")
				score := smetrics.JaroWinkler(window, alias, 0.7, 4)
				if score < fuzzyMinSimilarity || score <= bestScore {
					continue
				}
				if levenshtein.ComputeDistance(window, alias) > fuzzyMaxDistance {
					continue
				}
				bestScore = score
				best = SocietyMatch{Society: e.canonical, Alias: a.alias}
			}
		}
	}
	return best, bestScore > 0
}
