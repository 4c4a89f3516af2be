package subtree

import (
	"github.com/antchfx/xmlquery"

	"github.com/andaru/netconf-core/xmlutil"
)

// NotificationNamespace is the RFC5277 notification namespace.
const NotificationNamespace = "urn:ietf:params:xml:ns:netconf:notification:1.0"

// Apply returns a copy of the data container data, such as a <data>
// element, holding only the parts of its children that f selects:
//
//   - a selection node returns the selected element and its subtree
//   - a containment node returns the element with the output of its
//     children, or the whole element when its children are all content
//     match nodes
//   - sibling content match nodes must all hold for their parent to be
//     returned, and are returned themselves
//
// data is never modified. A nil or empty filter selects nothing.
func Apply(f *Filter, data *xmlquery.Node) *xmlquery.Node {
	if data == nil {
		return nil
	}
	m := marker{}
	for _, c := range xmlutil.Elements(data) {
		for _, fn := range f.Nodes() {
			if selects(fn, c) {
				m.apply(fn, c)
			}
		}
	}
	return m.build(data, false)
}

// ApplyNotification filters the content of an RFC5277 <notification>
// element, the one child element other than eventTime. It returns a copy
// of the filtered content, or nil if f selects nothing from it.
func ApplyNotification(f *Filter, notification *xmlquery.Node) *xmlquery.Node {
	if notification == nil {
		return nil
	}
	var content *xmlquery.Node
	for _, c := range xmlutil.Elements(notification) {
		if c.Data == "eventTime" && c.NamespaceURI == NotificationNamespace {
			continue
		}
		content = c
		break
	}
	if content == nil {
		return nil
	}
	m := marker{}
	for _, fn := range f.Nodes() {
		if selects(fn, content) {
			m.apply(fn, content)
		}
	}
	if _, ok := m[content]; !ok {
		return nil
	}
	return m.build(content, true)
}

// marker records the data elements that appear in the output: true for
// an element copied with its whole subtree, false for one copied with
// only its marked children.
type marker map[*xmlquery.Node]bool

func (m marker) full(n *xmlquery.Node) { m[n] = true }

func (m marker) partial(n *xmlquery.Node) {
	if _, ok := m[n]; !ok {
		m[n] = false
	}
}

// apply marks the output fn produces for the element n, which fn
// selects, and reports whether there was any. Nothing is marked when it
// reports false.
func (m marker) apply(fn Node, n *xmlquery.Node) bool {
	switch fn := fn.(type) {
	case *SelectionNode:
		m.full(n)
		return true
	case *ContentMatchNode:
		if !valueMatches(fn, n) {
			return false
		}
		m.full(n)
		return true
	case *ContainmentNode:
		return m.containment(fn, n)
	}
	return false
}

func (m marker) containment(fn *ContainmentNode, n *xmlquery.Node) bool {
	children := xmlutil.Elements(n)
	var (
		matched []*xmlquery.Node
		others  []Node
	)
	for _, c := range fn.children {
		cm, ok := c.(*ContentMatchNode)
		if !ok {
			others = append(others, c)
			continue
		}
		found := false
		for _, dc := range children {
			if selects(cm, dc) && valueMatches(cm, dc) {
				matched = append(matched, dc)
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if len(others) == 0 {
		m.full(n)
		return true
	}

	var out bool
	for _, dc := range children {
		for _, c := range others {
			if selects(c, dc) && m.apply(c, dc) {
				out = true
			}
		}
	}
	if !out && len(matched) == 0 {
		return false
	}
	for _, dc := range matched {
		m.full(dc)
	}
	m.partial(n)
	return true
}

// build returns a detached copy of n holding its marked descendants. The
// root n is copied whole when it is marked so and whole is set.
func (m marker) build(n *xmlquery.Node, whole bool) *xmlquery.Node {
	if whole && m[n] {
		return xmlutil.CopyNode(n, true)
	}
	out := xmlutil.CopyNode(n, false)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if _, ok := m[c]; ok {
			xmlutil.AppendChild(out, m.build(c, true))
		}
	}
	return out
}
