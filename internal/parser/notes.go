package parser

import (
	"regexp"
	"strings"
)

// Feature keywords, matched against lowercased text.
var (
	reCornerKw     = regexp.MustCompile(`\bcorner\b`)
	reParkKw       = regexp.MustCompile(`\bpark\s*-?\s*(?:fac(?:e|ing)|side)\b|\b(?:facing|near|opposite)\s+(?:the\s+)?park\b`)
	rePossessionKw = regexp.MustCompile(`\bpossession\b`)
)

type noteRule struct {
	label string
	re    *regexp.Regexp
}

// noteRules are emitted in this order.
var noteRules = []noteRule{
	{"NDC Open", regexp.MustCompile(`\bndc\b`)},
	{"Possession", rePossessionKw},
	{"Sun Facing", regexp.MustCompile(`\bsun\s*-?\s*fac(?:e|ing)\b|\bsouth\s*-?\s*open\b`)},
	{"Corner", reCornerKw},
	{"Park Facing", reParkKw},
	{"Boulevard", regexp.MustCompile(`\b(?:boulevard|blvd)\b`)},
	{"Near Commercial", regexp.MustCompile(`\bnear\s+(?:to\s+)?(?:the\s+)?(?:commercial|markaz)\b|\bmarkaz\b|\bback\s*-?\s*open\b`)},
}

// ExtractNotes returns the feature labels found in text joined by ", ",
// followed by "Dimensions <raw>" when dimensions is set.
func ExtractNotes(text, dimensions string) string {
	lower := strings.ToLower(text)
	var labels []string
	seen := make(map[string]bool, len(noteRules))
	for _, rule := range noteRules {
		if seen[rule.label] || !rule.re.MatchString(lower) {
			continue
		}
		seen[rule.label] = true
		labels = append(labels, rule.label)
	}
	if dimensions != "" {
		labels = append(labels, "Dimensions "+dimensions)
	}
	return strings.Join(labels, ", ")
}

// ExtractFlags detects the boolean features independently of the notes.
func ExtractFlags(text string) Flags {
	lower := strings.ToLower(text)
	return Flags{
		Corner:     reCornerKw.MatchString(lower),
		Park:       reParkKw.MatchString(lower),
		Possession: rePossessionKw.MatchString(lower),
	}
}
