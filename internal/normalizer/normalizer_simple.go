// Package normalizer cleans pasted classified text before pattern matching.
package normalizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputBytes caps how much of a message is scanned. Classified posts
// are a few hundred bytes; anything longer is a paste accident.
const DefaultMaxInputBytes = 16 * 1024

var reSpaces = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
var reBlankLines = regexp.MustCompile(`\n{2,}`)
var reLineEdges = regexp.MustCompile(`(?m)^ | $`)

// Clean truncates raw to maxBytes (on a rune boundary), folds it to ASCII and
// collapses horizontal whitespace. Line breaks survive so that line-anchored
// patterns still see segment starts. maxBytes <= 0 selects DefaultMaxInputBytes.
func Clean(raw string, maxBytes int) string {
	if raw == "" {
		return ""
	}
	s := Truncate(raw, maxBytes)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = FoldASCII(s)
	s = reSpaces.ReplaceAllString(s, " ")
	s = reLineEdges.ReplaceAllString(s, "")
	s = reBlankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Truncate returns the longest prefix of s that is at most maxBytes long and
// does not split a UTF-8 sequence.
func Truncate(s string, maxBytes int) string {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Fingerprint is the lowercased, whitespace-collapsed form of raw. Re-pastes
// differing only in spacing or case share one fingerprint.
func Fingerprint(raw string) string {
	s := RemoveAccentsAndLowercase(raw)
	return strings.Join(strings.Fields(s), " ")
}
