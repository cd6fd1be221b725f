package parser

import (
	"fmt"
	"strings"

	"github.com/listing-parser/internal/normalizer"
)

// BlockStyle controls how a block letter captured from the society dictionary is rendered.
type BlockStyle string

const (
	// BlockStyleTitle renders "Block F".
	BlockStyleTitle BlockStyle = "title"
	// BlockStyleLetter renders "F block", keeping the letter as written.
	BlockStyleLetter BlockStyle = "letter"
)

// Options configures one extraction. The zero value selects every default.
type Options struct {
	BlockStyle BlockStyle
	// SocietyDictionary is dictionary source text ("Canonical : alias, alias").
	// Empty selects the embedded dictionary.
	SocietyDictionary string
	// AliasTable nil selects the embedded table; a non-nil empty table disables the matcher.
	AliasTable *AliasTable
	// FuzzySocieties enables the approximate alias fallback.
	FuzzySocieties bool
	MaxInputBytes  int
}

// Validate rejects option values the engine cannot honour.
func (o Options) Validate() error {
	switch BlockStyle(strings.ToLower(strings.TrimSpace(string(o.BlockStyle)))) {
	case "", BlockStyleTitle, BlockStyleLetter:
	default:
		return fmt.Errorf("unknown block style %q (want %q or %q)", o.BlockStyle, BlockStyleTitle, BlockStyleLetter)
	}
	if o.MaxInputBytes < 0 {
		return fmt.Errorf("max input bytes must not be negative, got %d", o.MaxInputBytes)
	}
	return nil
}

// WithDefaults fills absent values. Invalid block styles fall back to title so
// that Extract never fails on bad options; callers wanting an error use Validate.
func (o Options) WithDefaults() Options {
	o.BlockStyle = BlockStyle(strings.ToLower(strings.TrimSpace(string(o.BlockStyle))))
	if o.BlockStyle != BlockStyleLetter {
		o.BlockStyle = BlockStyleTitle
	}
	if o.MaxInputBytes <= 0 {
		o.MaxInputBytes = normalizer.DefaultMaxInputBytes
	}
	return o
}

// FormatBlock renders a block letter in the given style.
func FormatBlock(letter string, style BlockStyle) string {
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return ""
	}
	if style == BlockStyleLetter {
		return letter + " block"
	}
	return "Block " + strings.ToUpper(letter)
}
