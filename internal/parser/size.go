package parser

import (
	"strconv"
	"strings"
)

// Size is the resolved plot area. Value is nil when the area could not be
// computed, e.g. an unknown dimension such as "40x80".
type Size struct {
	Value      *float64
	Unit       string
	Dimensions string
}

type sizeStrategy func(text string) (Size, bool)

var sizeStrategies = []sizeStrategy{
	shorthandSize,
	dimensionSize,
	wordedSize,
}

// ExtractSize resolves the plot size written in text.
func ExtractSize(text string) Size {
	for _, strategy := range sizeStrategies {
		if size, ok := strategy(text); ok {
			return size
		}
	}
	return Size{}
}

// shorthandSize reads "10m" / "1k". The digits must stand alone ("1.5m" is a
// price, not 5 Marla) and a token inside a keyword-led price ("asking 10m")
// belongs to the price.
func shorthandSize(text string) (Size, bool) {
	var priced []span
	for i, m := range reShorthandSize.FindAllStringSubmatchIndex(text, -1) {
		if i == 0 {
			priced = keywordPriceSpans(text)
		}
		if overlapsAny(span{Start: m[2], End: m[5]}, priced) {
			continue
		}
		v, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		unit := UnitMarla
		if strings.EqualFold(text[m[4]:m[5]], "k") {
			unit = UnitKanal
		}
		return Size{Value: float64Ptr(v), Unit: unit}, true
	}
	return Size{}, false
}

// keywordPriceSpans returns the price matches led by demand/price/asking.
func keywordPriceSpans(text string) []span {
	var out []span
	for _, m := range rePrice.FindAllStringSubmatchIndex(text, -1) {
		if m[2] >= 0 {
			out = append(out, span{Start: m[0], End: m[1]})
		}
	}
	return out
}

func overlapsAny(sp span, spans []span) bool {
	for _, o := range spans {
		if o.overlaps(sp) {
			return true
		}
	}
	return false
}

// dimensionSize reads "25x50"; unknown dimensions keep the raw text as the unit.
func dimensionSize(text string) (Size, bool) {
	m := reDimension.FindStringSubmatch(text)
	if m == nil {
		return Size{}, false
	}
	raw := m[0]
	area, ok := lookupDimension(m[1], m[2])
	if !ok {
		return Size{Unit: raw, Dimensions: raw}, true
	}
	return Size{Value: float64Ptr(area.Value), Unit: area.Unit, Dimensions: raw}, true
}

// wordedSize reads "10 Marla", "1 kanal", "120 sq yd", "2250 sq ft".
func wordedSize(text string) (Size, bool) {
	m := reWordedSize.FindStringSubmatch(text)
	if m == nil {
		return Size{}, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Size{}, false
	}
	unit := canonicalUnit(m[2])
	if unit == "" {
		return Size{}, false
	}
	return Size{Value: float64Ptr(v), Unit: unit}, true
}

func canonicalUnit(word string) string {
	w := strings.ToLower(word)
	switch {
	case strings.HasPrefix(w, "kanal"):
		return UnitKanal
	case strings.HasPrefix(w, "marla"):
		return UnitMarla
	case strings.HasPrefix(w, "sq") || strings.HasPrefix(w, "square"):
		if strings.Contains(w, "f") {
			return UnitSqFt
		}
		return UnitSqYd
	case w == "gaz" || strings.HasPrefix(w, "yard") || strings.HasPrefix(w, "yd"):
		return UnitSqYd
	case w == "feet" || w == "ft":
		return UnitSqFt
	}
	return ""
}
