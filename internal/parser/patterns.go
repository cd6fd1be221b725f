package parser

import (
	"regexp"
	"strings"
)

// Pattern library. Compiled once at package init and only ever read, so the
// matchers are shared by every concurrent Extract call. Go regexps are RE2 and
// run in time linear in the input, which together with the input cap bounds
// the cost of a call on hostile text.
var (
	rePhone = regexp.MustCompile(`(\+92|92|0)?(3\d{2})[ \-]?(\d{7})`)

	rePrice = regexp.MustCompile(`(?i)(?:\b(demand|price|asking)\b[\s:=\-]*(?:(?:rs|pkr)\.?\s*)?)?\b(\d{1,3}(?:,\d{2,3})+(?:\.\d+)?|\d+(?:\.\d+)?)(?:\s*(crores?|cr|lakhs|lakh|lacs|lac|million|m|k)\b|\b)`)
	reCroreWord  = regexp.MustCompile(`(?i)\b(?:cr|crores?)\b`)
	reLakhWord   = regexp.MustCompile(`(?i)\b(?:lac|lacs|lakh|lakhs)\b`)
	reDemandWord = regexp.MustCompile(`(?i)\b(?:demand|asking)\b`)
	reDemandOnly = regexp.MustCompile(`(?i)\bdemand\b`)
	rePriceOnly  = regexp.MustCompile(`(?i)\bprice\b`)

	reShorthandSize = regexp.MustCompile(`(?i)(?:^|[^\w.,])(\d{1,2})(m|k)\b`)
	reDimension     = regexp.MustCompile(`(?i)\b(\d{2,3})\s*[x×*/]\s*(\d{2,3})\b`)
	reWordedSize    = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(kanals?|marlas?|sq\.?\s*(?:ft|feet|foot|yds?|yards?)|square\s+(?:feet|foot|yards?)|gaz|yards?|yds?|feet|ft)\b`)

	reSeries   = regexp.MustCompile(`(?i)\b(\d{2,4})[ \-]?series\b`)
	rePlot     = regexp.MustCompile(`(?i)\bplot\s*(?:#|no\.?|num(?:ber)?\.?)?\s*[:\-]?\s*(\d{1,6}[a-z]?)\b`)
	reHashPlot = regexp.MustCompile(`(?im)(?:^|\s)#\s?(\d{1,6}[a-z]?)\b`)
	reStreet   = regexp.MustCompile(`(?i)\b(?:street|st)\b\.?\s*(?:no\.?|#)?\s*\d{1,4}`)
	reDigits   = regexp.MustCompile(`\d+`)
	reUnitNear = regexp.MustCompile(`marla|kanal|sq|yard|yds|feet|ft|street|st|series`)

	reBlockRight  = regexp.MustCompile(`\b(?:block|blk)\b\.?[\s\-:#]*([a-z0-9]+)\b`)
	reBlockLeft   = regexp.MustCompile(`\b([a-z0-9]+)[\s\-]+(?:block|blk)\b`)
	rePhaseRight  = regexp.MustCompile(`\bphase\s*[\-#:]?\s*(\d{1,2}|[ivx]{1,4})\b`)
	rePhaseLeft   = regexp.MustCompile(`\b(\d{1,2}|[ivx]{1,4})(?:st|nd|rd|th)?\s+phase\b`)
	reWhitespaces = regexp.MustCompile(`\s+`)
)

// contextWindow is how far around a bare number the unit/street keywords are looked for.
const contextWindow = 8

// plotPriceGap is how far after a plot mention a number is still read as part of it.
const plotPriceGap = 8

// shorthandPriceGap is how close a "demand"/"price" keyword must be for a bare
// "10m" to be read as 10 million.
const shorthandPriceGap = 12

// dimensionAreas maps a normalized "WxH" plot dimension in feet to its customary area.
var dimensionAreas = map[string]sizeArea{
	"25x50":  {Value: 5, Unit: UnitMarla},
	"30x60":  {Value: 7, Unit: UnitMarla},
	"35x70":  {Value: 10, Unit: UnitMarla},
	"50x90":  {Value: 20, Unit: UnitMarla},
	"100x90": {Value: 40, Unit: UnitMarla},
}

type sizeArea struct {
	Value float64
	Unit  string
}

// Canonical size unit labels.
const (
	UnitKanal = "Kanal"
	UnitMarla = "Marla"
	UnitSqFt  = "SqFt"
	UnitSqYd  = "SqYd"
)

// namedBlocks are block names written as words rather than letters.
var namedBlocks = map[string]bool{
	"executive": true,
	"overseas":  true,
	"safari":    true,
	"hills":     true,
	"extension": true,
	"ext":       true,
}

// blockFillers can sit next to "block" in a listing but never name one.
var blockFillers = map[string]bool{
	"size":      true,
	"plot":      true,
	"plots":     true,
	"for":       true,
	"sale":      true,
	"no":        true,
	"number":    true,
	"is":        true,
	"in":        true,
	"of":        true,
	"available": true,
}

// lookupDimension normalizes "25 X 50" / "25*50" / "25/50" to "25x50" and looks it up.
func lookupDimension(w, h string) (sizeArea, bool) {
	key := strings.TrimLeft(w, "0") + "x" + strings.TrimLeft(h, "0")
	area, ok := dimensionAreas[key]
	return area, ok
}
