package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// phaseBlockStrategy inspects lowercased text and returns a label or "".
type phaseBlockStrategy func(lower string) string

// phaseBlockStrategies run in order; the first non-empty label wins.
var phaseBlockStrategies = []phaseBlockStrategy{
	blockRightOfKeyword,
	blockLeftOfKeyword,
	phaseNumber,
}

// DetectPhaseBlock guesses a phase/block label from free text when the
// dictionaries could not. Output is always title style.
func DetectPhaseBlock(text string) string {
	lower := strings.ToLower(text)
	for _, strategy := range phaseBlockStrategies {
		if label := strategy(lower); label != "" {
			return label
		}
	}
	return ""
}

func blockRightOfKeyword(lower string) string {
	for _, m := range reBlockRight.FindAllStringSubmatch(lower, -1) {
		if label := classifyBlockToken(m[1]); label != "" {
			return label
		}
	}
	return ""
}

func blockLeftOfKeyword(lower string) string {
	for _, m := range reBlockLeft.FindAllStringSubmatch(lower, -1) {
		if label := classifyBlockToken(m[1]); label != "" {
			return label
		}
	}
	return ""
}

// classifyBlockToken turns the word next to "block" into a label:
// "f" -> "Block F", "executive" -> "Executive", "tulip" -> "Tulip Block".
func classifyBlockToken(token string) string {
	if token == "" || token == "block" || token == "blk" || blockFillers[token] {
		return ""
	}
	// "block 10 marla": a number next to "block" is a size or plot, not a name
	if isDigit(token[0]) {
		return ""
	}
	if len(token) == 1 && token[0] >= 'a' && token[0] <= 'z' {
		return "Block " + strings.ToUpper(token)
	}
	if namedBlocks[token] {
		return titleWord(token)
	}
	return titleWord(token) + " Block"
}

func phaseNumber(lower string) string {
	for _, re := range []*regexp.Regexp{rePhaseRight, rePhaseLeft} {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if n, ok := parsePhaseNumber(m[1]); ok {
				return "Phase " + strconv.Itoa(n)
			}
		}
	}
	return ""
}

// parsePhaseNumber accepts a decimal number or a roman numeral in I..X.
func parsePhaseNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	n := romanToInt(s)
	return n, n >= 1 && n <= 10
}

var romanValues = map[byte]int{'i': 1, 'v': 5, 'x': 10}

// romanToInt does basic additive/subtractive parsing; 0 means not a numeral.
func romanToInt(s string) int {
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0
		}
		if i+1 < len(s) && romanValues[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}
