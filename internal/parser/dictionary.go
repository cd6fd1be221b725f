package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	placeholderBlock = "{block}"
	placeholderName  = "{name}"
)

type captureKind int

const (
	captureNone captureKind = iota
	captureBlock
	captureName
)

// SocietyDictionary maps canonical society names to their aliases, in source
// order. It is immutable once parsed and safe for concurrent use.
type SocietyDictionary struct {
	entries []societyEntry
}

type societyEntry struct {
	canonical string
	aliases   []aliasMatcher
}

type aliasMatcher struct {
	alias   string
	re      *regexp.Regexp
	capture captureKind
}

// SocietyMatch is the result of a dictionary lookup.
type SocietyMatch struct {
	Society    string
	PhaseBlock string
	Alias      string
}

// ParseSocietyDictionary reads "Canonical : alias1, alias2" lines. Blank lines,
// "#" comments, lines without ":" and lines with an empty canonical name are
// skipped. The canonical name is always its own first alias. Repeated canonical
// names extend the first entry.
func ParseSocietyDictionary(text string) *SocietyDictionary {
	d := &SocietyDictionary{}
	index := make(map[string]int)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sep := strings.Index(line, ":")
		if sep < 0 {
			continue
		}
		canonical := strings.TrimSpace(line[:sep])
		if canonical == "" {
			continue
		}

		key := strings.ToLower(canonical)
		pos, ok := index[key]
		if !ok {
			pos = len(d.entries)
			index[key] = pos
			d.entries = append(d.entries, societyEntry{canonical: canonical})
			d.entries[pos].addAlias(canonical)
		}
		for _, alias := range strings.Split(line[sep+1:], ",") {
			d.entries[pos].addAlias(alias)
		}
	}
	return d
}

func (e *societyEntry) addAlias(alias string) {
	alias = strings.Join(strings.Fields(alias), " ")
	if alias == "" {
		return
	}
	for _, existing := range e.aliases {
		if strings.EqualFold(existing.alias, alias) {
			return
		}
	}
	m, ok := compileAlias(alias)
	if !ok {
		return
	}
	e.aliases = append(e.aliases, m)
}

// compileAlias builds a case-insensitive whole-word matcher. For placeholder
// aliases the text before the placeholder is the anchor and the placeholder
// becomes a capture group.
func compileAlias(alias string) (aliasMatcher, bool) {
	lower := strings.ToLower(alias)
	literal, kind := alias, captureNone
	if i := strings.Index(lower, placeholderBlock); i >= 0 {
		literal, kind = alias[:i], captureBlock
	} else if i := strings.Index(lower, placeholderName); i >= 0 {
		literal, kind = alias[:i], captureName
	}
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return aliasMatcher{}, false
	}

	words := strings.Fields(literal)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	var b strings.Builder
	b.WriteString(`(?i)`)
	if isWordByte(literal[0]) {
		b.WriteString(`\b`)
	}
	b.WriteString(strings.Join(words, `\s+`))
	last := literal[len(literal)-1]
	if isWordByte(last) {
		b.WriteString(`\b`)
	}
	switch kind {
	case captureBlock:
		b.WriteString(`[\s\-]*([a-z])\b`)
	case captureName:
		b.WriteString(`\s+([a-z0-9]+)\b`)
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return aliasMatcher{}, false
	}
	return aliasMatcher{alias: alias, re: re, capture: kind}, true
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Resolve returns the first society whose alias occurs in text, walking
// societies and aliases in source order. No scoring: the first hit wins.
func (d *SocietyDictionary) Resolve(text string, style BlockStyle) (SocietyMatch, bool) {
	if d == nil {
		return SocietyMatch{}, false
	}
	for _, e := range d.entries {
		for _, a := range e.aliases {
			m := a.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			out := SocietyMatch{Society: e.canonical, Alias: a.alias}
			switch a.capture {
			case captureBlock:
				out.PhaseBlock = FormatBlock(m[1], style)
			case captureName:
				out.PhaseBlock = titleWord(m[1])
			}
			return out, true
		}
	}
	return SocietyMatch{}, false
}

// Len is the number of canonical societies.
func (d *SocietyDictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Canonicals lists canonical names in source order.
func (d *SocietyDictionary) Canonicals() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.canonical
	}
	return out
}

// Aliases returns the alias set of a canonical society (case-insensitive
// lookup), canonical name first.
func (d *SocietyDictionary) Aliases(canonical string) []string {
	if d == nil {
		return nil
	}
	for _, e := range d.entries {
		if !strings.EqualFold(e.canonical, canonical) {
			continue
		}
		out := make([]string, len(e.aliases))
		for i, a := range e.aliases {
			out[i] = a.alias
		}
		return out
	}
	return nil
}

func titleWord(s string) string {
	return cases.Title(language.Und).String(strings.ToLower(s))
}
