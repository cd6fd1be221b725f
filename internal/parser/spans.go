package parser

import "regexp"

// span is a half-open byte range [Start, End) of the cleaned text.
type span struct {
	Start, End int
}

func (s span) overlaps(o span) bool {
	return s.Start < o.End && o.Start < s.End
}

// spanSet is the set of ranges already claimed by higher-priority matches.
// Built once per call and only read afterwards.
type spanSet struct {
	spans []span
}

func (z *spanSet) add(start, end int) {
	if end > start {
		z.spans = append(z.spans, span{Start: start, End: end})
	}
}

// addMatches claims every match of re (group 0) in text.
func (z *spanSet) addMatches(re *regexp.Regexp, text string) {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		z.add(loc[0], loc[1])
	}
}

func (z *spanSet) overlaps(s span) bool {
	for _, claimed := range z.spans {
		if claimed.overlaps(s) {
			return true
		}
	}
	return false
}
