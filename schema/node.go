package schema

import (
	"encoding/xml"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Node is a schema data node.
type Node struct {
	Name     xml.Name
	Children Nodes
}

// Nodes is an ordered list of schema nodes.
type Nodes []*Node

func (ns Nodes) find(name xml.Name) *Node {
	for _, n := range ns {
		if n.Name == name {
			return n
		}
	}
	return nil
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// UnmarshalYAML decodes a node tree from a mapping of node names to
// children, a sequence of names or single entry mappings, or null.
func (ns *Nodes) UnmarshalYAML(value *yaml.Node) error {
	out, err := decodeNodes(value)
	if err != nil {
		return err
	}
	*ns = out
	return nil
}

func decodeNodes(value *yaml.Node) (Nodes, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil, nil
		}
		return Nodes{{Name: xml.Name{Local: value.Value}}}, nil
	case yaml.MappingNode:
		var out Nodes
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if key.Kind != yaml.ScalarNode || key.Value == "" {
				return nil, errors.Errorf("line %d: schema node name must be a non-empty string", key.Line)
			}
			children, err := decodeNodes(value.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, &Node{Name: xml.Name{Local: key.Value}, Children: children})
		}
		return out, nil
	case yaml.SequenceNode:
		var out Nodes
		for _, item := range value.Content {
			nodes, err := decodeNodes(item)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
		return out, nil
	case yaml.AliasNode:
		return decodeNodes(value.Alias)
	}
	return nil, errors.Errorf("line %d: invalid schema node", value.Line)
}

// MarshalYAML encodes the node tree in the mapping form UnmarshalYAML
// accepts.
func (ns Nodes) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, n := range ns {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: n.Name.Local}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
		if len(n.Children) > 0 {
			v, err := n.Children.MarshalYAML()
			if err != nil {
				return nil, err
			}
			val = v.(*yaml.Node)
		}
		m.Content = append(m.Content, key, val)
	}
	return m, nil
}
