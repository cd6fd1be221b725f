package parser

// plotStrategy returns a plot number or "".
type plotStrategy func(s *scan) string

// plotStrategies run in priority order; the first non-empty result wins.
var plotStrategies = []plotStrategy{
	plotSeries,
	plotKeyword,
	plotHash,
	plotBareNumber,
}

// ExtractPlotNumber returns the plot number mentioned in text, or "".
func ExtractPlotNumber(text string) string {
	return extractPlot(newScan(text))
}

func extractPlot(s *scan) string {
	for _, strategy := range plotStrategies {
		if plot := strategy(s); plot != "" {
			return plot
		}
	}
	return ""
}

// plotSeries handles file numbers quoted by series, e.g. "1200 series".
func plotSeries(s *scan) string {
	if m := reSeries.FindStringSubmatch(s.text); m != nil {
		return m[1] + " series"
	}
	return ""
}

// plotKeyword handles "plot 12", "plot # 12a", "plot no. 12".
func plotKeyword(s *scan) string {
	if len(s.plotMentions) == 0 {
		return ""
	}
	m := s.plotMentions[0]
	return s.text[m[2]:m[3]]
}

// plotHash handles "#12" at a line start or after whitespace.
func plotHash(s *scan) string {
	if m := reHashPlot.FindStringSubmatch(s.text); m != nil {
		return m[1]
	}
	return ""
}

// plotBareNumber picks the first standalone 2-4 digit number that no other
// interpretation has claimed and that is not sitting next to a unit or street word.
func plotBareNumber(s *scan) string {
	zones := s.exclusionZones()
	for _, loc := range reDigits.FindAllStringIndex(s.text, -1) {
		start, end := loc[0], loc[1]
		if n := end - start; n < 2 || n > 4 {
			continue
		}
		if !standaloneNumber(s.text, start, end) {
			continue
		}
		if zones.overlaps(span{Start: start, End: end}) {
			continue
		}
		if unitInContext(s.lower, start, end) {
			continue
		}
		return s.text[start:end]
	}
	return ""
}

// exclusionZones collects the ranges claimed by phones, dimensions, plot and
// hash mentions, priced amounts and street numbers.
func (s *scan) exclusionZones() *spanSet {
	zones := &spanSet{}
	for _, p := range s.phones {
		zones.add(p.Start, p.End)
	}
	zones.addMatches(reDimension, s.text)
	for _, m := range s.plotMentions {
		zones.add(m[0], m[1])
	}
	zones.addMatches(reHashPlot, s.text)
	for _, m := range s.priceMatches {
		// A bare number also matches the price grammar; only amounts carrying a
		// keyword or a unit claim their range.
		if m[2] >= 0 || m[6] >= 0 {
			zones.add(m[0], m[1])
		}
	}
	zones.addMatches(reStreet, s.text)
	return zones
}

// standaloneNumber rejects digits glued to letters or part of a decimal/grouped number.
func standaloneNumber(text string, start, end int) bool {
	if start > 0 {
		prev := text[start-1]
		if isLetter(prev) {
			return false
		}
		if (prev == '.' || prev == ',') && start > 1 && isDigit(text[start-2]) {
			return false
		}
	}
	if end < len(text) {
		next := text[end]
		if isLetter(next) {
			return false
		}
		if (next == '.' || next == ',') && end+1 < len(text) && isDigit(text[end+1]) {
			return false
		}
	}
	return true
}

func unitInContext(lower string, start, end int) bool {
	left := lower[max(0, start-contextWindow):start]
	right := lower[end:min(len(lower), end+contextWindow)]
	return reUnitNear.MatchString(left) || reUnitNear.MatchString(right)
}

func isLetter(c byte) bool {
	c |= 0x20
	return c >= 'a' && c <= 'z'
}
