package parser

import "strings"

// findPhones returns the byte ranges of Pakistani mobile numbers in text that
// are not embedded in a longer run of digits.
func findPhones(text string) []span {
	var out []span
	for _, loc := range rePhone.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isDigit(text[start-1]) {
			continue
		}
		if end < len(text) && isDigit(text[end]) {
			continue
		}
		out = append(out, span{Start: start, End: end})
	}
	return out
}

// ExtractPhone returns the first mobile number in text in E.164 form, or "".
func ExtractPhone(text string) string {
	phones := findPhones(text)
	if len(phones) == 0 {
		return ""
	}
	return NormalizePhone(text[phones[0].Start:phones[0].End])
}

// NormalizePhone rewrites a Pakistani mobile number to "+92XXXXXXXXXX".
// Non-digits are dropped; "92..." gets a "+", a leading "0" becomes "+92",
// a bare 10-digit "3..." gets "+92", and anything else just gets a "+".
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "92"):
		return "+" + digits
	case strings.HasPrefix(digits, "0"):
		return "+92" + digits[1:]
	case strings.HasPrefix(digits, "3") && len(digits) == 10:
		return "+92" + digits
	default:
		return "+" + digits
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
