package parser

import (
	_ "embed"
	"fmt"
)

//go:embed data/societies.txt
var defaultSocietiesText string

//go:embed data/alias_table.yaml
var defaultAliasTableYAML []byte

// DefaultSocietyDictionaryText returns the built-in society dictionary source.
func DefaultSocietyDictionaryText() string {
	return defaultSocietiesText
}

// DefaultAliasTableSource returns the built-in alias table as YAML.
func DefaultAliasTableSource() []byte {
	out := make([]byte, len(defaultAliasTableYAML))
	copy(out, defaultAliasTableYAML)
	return out
}

// loadDefaults parses the embedded rule data once at extractor construction.
func loadDefaults() (*SocietyDictionary, *AliasTable, error) {
	dict := ParseSocietyDictionary(defaultSocietiesText)
	if dict.Len() == 0 {
		return nil, nil, fmt.Errorf("embedded society dictionary is empty")
	}
	table, err := ParseAliasTable(defaultAliasTableYAML)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded alias table: %w", err)
	}
	return dict, table, nil
}
