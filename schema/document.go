package schema

import (
	"encoding/xml"
	"strings"

	"github.com/antchfx/xmlquery"
)

// FromDocument derives a Context from sample data, with one module per
// element namespace named after the namespace. Elements without a
// namespace, such as a <data> wrapper, are not part of any module; their
// children are taken as children of their parent.
func FromDocument(doc *xmlquery.Node) (*Context, error) {
	b := &docBuilder{byNamespace: map[string]*Module{}}
	if doc != nil && doc.Type == xmlquery.ElementNode {
		b.add(nil, nil, doc)
	} else if doc != nil {
		for e := doc.FirstChild; e != nil; e = e.NextSibling {
			if e.Type == xmlquery.ElementNode {
				b.add(nil, nil, e)
			}
		}
	}
	return NewContext(b.modules...)
}

type docBuilder struct {
	modules     []*Module
	byNamespace map[string]*Module
}

func (b *docBuilder) module(namespace string) *Module {
	m := b.byNamespace[namespace]
	if m == nil {
		m = &Module{Name: namespace, Namespace: namespace}
		b.byNamespace[namespace] = m
		b.modules = append(b.modules, m)
	}
	return m
}

func (b *docBuilder) add(parent *Node, path []xml.Name, e *xmlquery.Node) {
	name := xml.Name{Space: e.NamespaceURI, Local: e.Data}
	if name.Space == "" {
		for c := e.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode {
				b.add(parent, path, c)
			}
		}
		return
	}
	m := b.module(name.Space)
	var siblings *Nodes
	switch {
	case parent == nil:
		siblings = &m.Nodes
	case parent.Name.Space == name.Space:
		siblings = &parent.Children
	default:
		siblings = b.augment(m, path)
	}
	n := siblings.find(name)
	if n == nil {
		n = &Node{Name: name}
		*siblings = append(*siblings, n)
	}
	path = append(path[:len(path):len(path)], name)
	for c := e.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			b.add(n, path, c)
		}
	}
}

// augment returns the node list of m's augment of path.
func (b *docBuilder) augment(m *Module, path []xml.Name) *Nodes {
	steps := make([]string, len(path))
	for i, name := range path {
		steps[i] = b.module(name.Space).Name + ":" + name.Local
	}
	target := "/" + strings.Join(steps, "/")
	for i := range m.Augments {
		if m.Augments[i].Target == target {
			return &m.Augments[i].Nodes
		}
	}
	m.Augments = append(m.Augments, Augment{Target: target})
	return &m.Augments[len(m.Augments)-1].Nodes
}
