package subtree

import (
	"github.com/antchfx/xmlquery"

	"github.com/andaru/netconf-core/xmlutil"
)

// Matches reports whether any top level node of f matches the data
// element n. An empty or nil filter matches nothing.
//
// Matches only reads n and may be called concurrently with a shared f.
func Matches(f *Filter, n *xmlquery.Node) bool {
	if f == nil || n == nil {
		return false
	}
	for _, fn := range f.nodes {
		if MatchNode(fn, n) {
			return true
		}
	}
	return false
}

// MatchNode reports whether the filter node fn matches the data element
// n. A selection node matches on name and attributes. A content match
// node additionally requires n to be a leaf with the node's value. A
// containment node matches on name and attributes when every child node
// matches at least one child element of n.
func MatchNode(fn Node, n *xmlquery.Node) bool {
	if fn == nil || n == nil || n.Type != xmlquery.ElementNode || !selects(fn, n) {
		return false
	}
	switch fn := fn.(type) {
	case *SelectionNode:
		return true
	case *ContentMatchNode:
		return valueMatches(fn, n)
	case *ContainmentNode:
		children := xmlutil.Elements(n)
	next:
		for _, c := range fn.children {
			for _, dc := range children {
				if MatchNode(c, dc) {
					continue next
				}
			}
			return false
		}
		return true
	}
	return false
}

// selects reports whether the element n satisfies fn's namespace
// selection and attribute matches.
func selects(fn Node, n *xmlquery.Node) bool {
	if !fn.Selection().Matches(xmlutil.NodeName(n)) {
		return false
	}
	for _, m := range fn.Attributes() {
		if !attrMatches(m, n) {
			return false
		}
	}
	return true
}

func attrMatches(m AttributeMatch, n *xmlquery.Node) bool {
	for _, a := range n.Attr {
		name := xmlutil.AttrName(a)
		if name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns") {
			continue
		}
		if m.Selection.Matches(name) && a.Value == m.Value {
			return true
		}
	}
	return false
}

// valueMatches reports whether the leaf element n carries fn's value. A
// qualified value matches when n's value resolves to the same namespace
// and local name, whatever prefix it uses.
func valueMatches(fn *ContentMatchNode, n *xmlquery.Node) bool {
	v, leaf := xmlutil.LeafValue(n)
	if !leaf {
		return false
	}
	if fn.space == "" {
		return v == fn.value
	}
	_, want, _ := splitQualified(fn.value)
	prefix, local, ok := splitQualified(v)
	if !ok || local != want {
		return false
	}
	ns, ok := xmlutil.LookupPrefix(n, prefix)
	return ok && ns == fn.space
}
