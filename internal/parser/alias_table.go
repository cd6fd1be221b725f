package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable is the fallback society -> phase/block -> patterns mapping. Order
// is significant (first matching society wins), so it is kept as slices rather
// than maps.
type AliasTable struct {
	Societies []AliasSociety `json:"societies"`
}

// AliasSociety is one society in the alias table.
type AliasSociety struct {
	Name   string       `json:"name"`
	Phases []AliasPhase `json:"phases"`
}

// AliasPhase is one phase/block label and the substrings that identify it.
type AliasPhase struct {
	Label    string   `json:"label"`
	Patterns []string `json:"patterns"`
}

// ParseAliasTable decodes a YAML (or JSON, which is valid YAML) mapping of
// society -> label -> []pattern while preserving document order. Pattern values
// that are not lists are treated as empty; non-scalar list items are dropped.
// An empty source gives an empty table.
func ParseAliasTable(src []byte) (*AliasTable, error) {
	table := &AliasTable{}
	if len(strings.TrimSpace(string(src))) == 0 {
		return table, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return table, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("alias table must be a mapping of society to phases, got %s", kindName(root.Kind))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := strings.TrimSpace(root.Content[i].Value)
		if name == "" {
			continue
		}
		society := AliasSociety{Name: name}
		phases := root.Content[i+1]
		if phases.Kind == yaml.MappingNode {
			for j := 0; j+1 < len(phases.Content); j += 2 {
				society.Phases = append(society.Phases, AliasPhase{
					Label:    strings.TrimSpace(phases.Content[j].Value),
					Patterns: scalarList(phases.Content[j+1]),
				})
			}
		}
		table.Societies = append(table.Societies, society)
	}
	return table, nil
}

func scalarList(n *yaml.Node) []string {
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			continue
		}
		if v := strings.TrimSpace(item.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

// Match returns the first society with a phase pattern contained in text
// (case-insensitive). Failing that, a society whose name is contained in text
// is returned with an empty phase/block.
func (t *AliasTable) Match(text string) (SocietyMatch, bool) {
	if t == nil {
		return SocietyMatch{}, false
	}
	lower := strings.ToLower(text)
	for _, s := range t.Societies {
		for _, p := range s.Phases {
			for _, pattern := range p.Patterns {
				if strings.Contains(lower, strings.ToLower(pattern)) {
					return SocietyMatch{Society: s.Name, PhaseBlock: p.Label, Alias: pattern}, true
				}
			}
		}
		if strings.Contains(lower, strings.ToLower(s.Name)) {
			return SocietyMatch{Society: s.Name, Alias: s.Name}, true
		}
	}
	return SocietyMatch{}, false
}

// Len is the number of societies in the table.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Societies)
}

// MarshalYAML writes the table back in its source shape, keeping order.
func (t *AliasTable) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range t.Societies {
		phases := &yaml.Node{Kind: yaml.MappingNode}
		for _, p := range s.Phases {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, pattern := range p.Patterns {
				seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: pattern})
			}
			phases.Content = append(phases.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: p.Label}, seq)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.Name}, phases)
	}
	return root, nil
}
