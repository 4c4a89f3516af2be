package xmlutil

import (
	"encoding/xml"
	"strings"

	"github.com/antchfx/xmlquery"
)

// NodeName returns the qualified name of an xmlquery element node.
func NodeName(n *xmlquery.Node) xml.Name {
	return xml.Name{Space: n.NamespaceURI, Local: n.Data}
}

// AttrName returns the qualified name of an xmlquery attribute. Namespace
// declarations are named as the xml.Decoder names them, with a Space of
// "xmlns" for prefix declarations.
func AttrName(a xmlquery.Attr) xml.Name {
	switch {
	case a.Name.Space == "xmlns", a.NamespaceURI == "xmlns":
		return xml.Name{Space: "xmlns", Local: a.Name.Local}
	case a.NamespaceURI != "":
		return xml.Name{Space: a.NamespaceURI, Local: a.Name.Local}
	}
	return a.Name
}

// Elements returns the element children of n.
func Elements(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElement returns the first element child of n, or nil.
func FirstElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// LeafValue returns the whitespace trimmed text of the element n, and
// false if n has element children.
func LeafValue(n *xmlquery.Node) (string, bool) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			return "", false
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String()), true
}

// LookupPrefix returns the namespace bound to prefix in scope at the
// element n.
func LookupPrefix(n *xmlquery.Node, prefix string) (string, bool) {
	for e := n; e != nil; e = e.Parent {
		if e.Type != xmlquery.ElementNode {
			continue
		}
		for _, a := range e.Attr {
			name := AttrName(a)
			if prefix != "" && name.Space == "xmlns" && name.Local == prefix {
				return a.Value, true
			}
			if prefix == "" && name.Space == "" && name.Local == "xmlns" {
				return a.Value, true
			}
		}
		if e.Prefix == prefix && e.NamespaceURI != "" {
			return e.NamespaceURI, true
		}
	}
	return "", false
}

// CopyNode returns a copy of n detached from its tree. A deep copy includes
// every descendant, a shallow copy none.
func CopyNode(n *xmlquery.Node, deep bool) *xmlquery.Node {
	cp := &xmlquery.Node{
		Type:         n.Type,
		Data:         n.Data,
		Prefix:       n.Prefix,
		NamespaceURI: n.NamespaceURI,
		Attr:         append([]xmlquery.Attr(nil), n.Attr...),
	}
	if deep {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			AppendChild(cp, CopyNode(c, true))
		}
	}
	return cp
}

// AppendChild appends the detached node n to the children of parent.
func AppendChild(parent, n *xmlquery.Node) {
	n.Parent = parent
	n.NextSibling = nil
	n.PrevSibling = parent.LastChild
	if parent.LastChild != nil {
		parent.LastChild.NextSibling = n
	} else {
		parent.FirstChild = n
	}
	parent.LastChild = n
}

// RemoveChild detaches n from its parent.
func RemoveChild(n *xmlquery.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	} else {
		parent.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	} else {
		parent.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

// Attr returns the value of the attribute of the element n named name.
func Attr(n *xmlquery.Node, name xml.Name) (string, bool) {
	for _, a := range n.Attr {
		if AttrName(a) == name {
			return a.Value, true
		}
	}
	return "", false
}

// NewElement returns a detached element named local in namespace, written
// with prefix.
func NewElement(prefix, namespace, local string, attrs ...xmlquery.Attr) *xmlquery.Node {
	return &xmlquery.Node{
		Type:         xmlquery.ElementNode,
		Data:         local,
		Prefix:       prefix,
		NamespaceURI: namespace,
		Attr:         attrs,
	}
}
