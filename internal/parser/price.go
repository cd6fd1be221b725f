package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Price is the resolved demand of a listing.
type Price struct {
	Amount float64 // rupees
	Text   string  // number and unit as written, e.g. "85 Lac"
}

type priceCandidate struct {
	amount   float64
	text     string
	start    int
	end      int
	explicit bool
	digits   int
	score    float64
}

// priceContext records which magnitude words appear anywhere in the listing.
// Unitless numbers are only read as prices when one of them is present.
type priceContext struct {
	crore  bool
	lakh   bool
	demand bool

	demandAt []span
	priceAt  []span
}

func newPriceContext(text string) priceContext {
	return priceContext{
		crore:    reCroreWord.MatchString(text),
		lakh:     reLakhWord.MatchString(text),
		demand:   reDemandWord.MatchString(text),
		demandAt: matchSpans(reDemandOnly, text),
		priceAt:  matchSpans(rePriceOnly, text),
	}
}

// keywordNear reports whether "demand" or "price" lies within bytes of sp.
func (ctx priceContext) keywordNear(sp span, within int) bool {
	for _, keywords := range [][]span{ctx.demandAt, ctx.priceAt} {
		for _, k := range keywords {
			if gap(sp, k) <= within {
				return true
			}
		}
	}
	return false
}

// ExtractPrice returns the most plausible demand in text.
func ExtractPrice(text string) (Price, bool) {
	return resolvePrice(newScan(text))
}

func resolvePrice(s *scan) (Price, bool) {
	ctx := newPriceContext(s.text)
	var best *priceCandidate
	for _, m := range s.priceMatches {
		c, ok := buildCandidate(s, ctx, m)
		if !ok {
			continue
		}
		if best == nil || c.beats(best) {
			best = &c
		}
	}
	if best == nil {
		return Price{}, false
	}
	return Price{Amount: best.amount, Text: best.text}, true
}

func buildCandidate(s *scan, ctx priceContext, m []int) (priceCandidate, bool) {
	numStart, numEnd := m[4], m[5]
	keywordLed := m[2] >= 0
	// "Plot 12 price 85 lac": a keyword-led price is never part of the plot number
	if !keywordLed && s.nearPlotMention(m[0]) {
		return priceCandidate{}, false
	}
	if s.overlapsPhone(span{Start: numStart, End: numEnd}) {
		return priceCandidate{}, false
	}

	raw := strings.ReplaceAll(s.text[numStart:numEnd], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return priceCandidate{}, false
	}

	c := priceCandidate{start: numStart, end: numEnd, digits: countDigits(raw)}
	if m[6] >= 0 {
		unit := strings.ToLower(s.text[m[6]:m[7]])
		// a bare "10m" is a size unless a price keyword is close by
		if unit == "m" && !keywordLed && !ctx.keywordNear(span{Start: numStart, End: m[7]}, shorthandPriceGap) {
			return priceCandidate{}, false
		}
		c.explicit = true
		c.end = m[7]
		c.amount = value * unitMultiplier(unit)
	} else {
		amount, ok := bandAmount(value, ctx)
		if !ok {
			return priceCandidate{}, false
		}
		c.amount = amount
	}
	c.text = s.text[c.start:c.end]
	c.score = c.computeScore(ctx)
	return c, true
}

func unitMultiplier(unit string) float64 {
	switch unit {
	case "cr", "crore", "crores":
		return 1e7
	case "lac", "lacs", "lakh", "lakhs":
		return 1e5
	case "million", "m":
		return 1e6
	case "k":
		return 1e3
	}
	return 1
}

// bandAmount interprets a unitless number using the magnitude words elsewhere
// in the listing: "demand 1.5 ... crore" or "85 ... lac".
func bandAmount(v float64, ctx priceContext) (float64, bool) {
	switch {
	case v >= 1e6:
		return v, true
	case ctx.crore && v >= 0.8 && v <= 10:
		return v * 1e7, true
	case ctx.lakh && v >= 10 && v <= 500:
		return v * 1e5, true
	case ctx.demand && v >= 80 && v <= 500:
		return v * 1e5, true
	}
	return 0, false
}

func (c priceCandidate) computeScore(ctx priceContext) float64 {
	var score float64
	if c.explicit {
		score += 3
	}
	sp := span{Start: c.start, End: c.end}
	score += proximityBonus(sp, ctx.demandAt)
	score += proximityBonus(sp, ctx.priceAt)
	if !c.explicit && c.digits >= 4 {
		score -= 0.5
	}
	return score
}

// beats orders candidates by score, then larger amount, then earlier position.
func (c priceCandidate) beats(o *priceCandidate) bool {
	if math.Abs(c.score-o.score) > 1e-9 {
		return c.score > o.score
	}
	if c.amount != o.amount {
		return c.amount > o.amount
	}
	return c.start < o.start
}

func proximityBonus(sp span, keywords []span) float64 {
	if len(keywords) == 0 {
		return 0
	}
	nearest := math.MaxInt
	for _, k := range keywords {
		nearest = min(nearest, gap(sp, k))
	}
	return math.Min(2, 10/float64(nearest+1))
}

func gap(a, b span) int {
	switch {
	case b.End <= a.Start:
		return a.Start - b.End
	case a.End <= b.Start:
		return b.Start - a.End
	}
	return 0
}

func matchSpans(re *regexp.Regexp, text string) []span {
	var out []span
	for _, loc := range re.FindAllStringIndex(text, -1) {
		out = append(out, span{Start: loc[0], End: loc[1]})
	}
	return out
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			n++
		}
	}
	return n
}
