package db

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one row of a relation table: a parent and their children, or a
// person and their spouses.
type Entry struct {
	Name  string
	Names []string
}

// Table keeps the key order of the yaml mapping it was read from.
type Table []Entry

func (t *Table) UnmarshalYAML(value *yaml.Node) error {
	*t = nil
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			return nil
		}
		return fmt.Errorf("line %d: expected a mapping, got %q", value.Line, value.Value)
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		entry := Entry{Name: key.Value}
		switch val.Kind {
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: %s: expected names", item.Line, key.Value)
				}
				if item.Tag == "!!null" {
					continue
				}
				entry.Names = append(entry.Names, item.Value)
			}
		case yaml.ScalarNode:
			if val.Tag != "!!null" && val.Value != "" {
				entry.Names = []string{val.Value}
			}
		default:
			return fmt.Errorf("line %d: %s: expected a list of names", val.Line, key.Value)
		}
		*t = append(*t, entry)
	}
	return nil
}

func (t Table) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range t {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, n := range e.Names {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			seq,
		)
	}
	return node, nil
}
