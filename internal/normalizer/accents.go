package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks and leaves the base letters.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// FoldASCII maps compatibility forms (fullwidth digits, styled letters pasted
// from chat apps) to their plain form, then transliterates whatever is left to ASCII.
// "25×50" becomes "25x50", "𝐃𝐞𝐦𝐚𝐧𝐝" becomes "Demand".
func FoldASCII(s string) string {
	s = norm.NFKC.String(StripDiacritics(s))
	if isASCII(s) {
		return s
	}
	return unidecode.Unidecode(s)
}

// RemoveAccentsAndLowercase folds to ASCII and lowercases.
func RemoveAccentsAndLowercase(s string) string {
	return strings.ToLower(FoldASCII(s))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
