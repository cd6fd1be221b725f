package parser

import "strings"

// scan holds the match positions several extractors share for one call: the
// price and phone resolvers use them directly and the plot fallback turns them
// into exclusion zones.
type scan struct {
	text  string
	lower string

	phones       []span
	priceMatches [][]int // rePrice submatch indices
	plotMentions [][]int // rePlot submatch indices
}

func newScan(text string) *scan {
	return &scan{
		text:         text,
		lower:        strings.ToLower(text),
		phones:       findPhones(text),
		priceMatches: rePrice.FindAllStringSubmatchIndex(text, -1),
		plotMentions: rePlot.FindAllStringSubmatchIndex(text, -1),
	}
}

func (s *scan) overlapsPhone(sp span) bool {
	for _, p := range s.phones {
		if p.overlaps(sp) {
			return true
		}
	}
	return false
}

// nearPlotMention reports whether pos falls inside a "plot <digits>" mention or
// within plotPriceGap bytes after it.
func (s *scan) nearPlotMention(pos int) bool {
	for _, m := range s.plotMentions {
		if pos >= m[0] && pos < m[1]+plotPriceGap {
			return true
		}
	}
	return false
}
