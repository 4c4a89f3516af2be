package subtree

import (
	"fmt"
)

// ConstructionError reports an invalid filter construction: an empty
// containment node, a repeated sibling, or a constraint placed on the wrong
// kind of node.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string { return "subtree filter: " + e.Reason }

func constructionError(format string, args ...interface{}) *ConstructionError {
	return &ConstructionError{Reason: fmt.Sprintf(format, args...)}
}

// AttributeMatch requires the selected element to carry an attribute
// selected by Selection with value Value.
type AttributeMatch struct {
	Selection NamespaceSelection
	Value     string
}

func (a AttributeMatch) equal(o AttributeMatch) bool {
	return a.Value == o.Value && a.Selection.equal(o.Selection)
}

// Node is a subtree filter node: a *SelectionNode, *ContainmentNode or
// *ContentMatchNode.
type Node interface {
	// Selection returns the node's namespace selection.
	Selection() NamespaceSelection
	// Attributes returns the node's attribute matches.
	Attributes() []AttributeMatch

	isNode()
}

// SelectionNode selects an element and its whole subtree.
type SelectionNode struct {
	sel   NamespaceSelection
	attrs []AttributeMatch
}

func (n *SelectionNode) Selection() NamespaceSelection { return n.sel }

func (n *SelectionNode) Attributes() []AttributeMatch { return copyAttrs(n.attrs) }

func (*SelectionNode) isNode() {}

// ContainmentNode selects an element to descend into and the child nodes
// to apply beneath it.
type ContainmentNode struct {
	sel      NamespaceSelection
	attrs    []AttributeMatch
	children []Node
}

func (n *ContainmentNode) Selection() NamespaceSelection { return n.sel }

func (n *ContainmentNode) Attributes() []AttributeMatch { return copyAttrs(n.attrs) }

// Children returns the node's child filter nodes, in order.
func (n *ContainmentNode) Children() []Node { return append([]Node(nil), n.children...) }

func (*ContainmentNode) isNode() {}

// ContentMatchNode selects a leaf element whose value equals Value.
type ContentMatchNode struct {
	sel   NamespaceSelection
	value string
	space string
}

func (n *ContentMatchNode) Selection() NamespaceSelection { return n.sel }

// Attributes returns nil; content match nodes carry no attribute matches.
func (n *ContentMatchNode) Attributes() []AttributeMatch { return nil }

// Value returns the value the selected element must carry.
func (n *ContentMatchNode) Value() string { return n.value }

// ValueNamespace returns the namespace the prefix of a "prefix:name"
// value is bound to, or "" for an unqualified value.
func (n *ContentMatchNode) ValueNamespace() string { return n.space }

func (*ContentMatchNode) isNode() {}

// valueEqual compares values. Qualified values are equal when their
// namespaces and local names are, whatever their prefixes.
func (n *ContentMatchNode) valueEqual(o *ContentMatchNode) bool {
	if n.space != o.space {
		return false
	}
	if n.space == "" {
		return n.value == o.value
	}
	_, a, _ := splitQualified(n.value)
	_, b, _ := splitQualified(o.value)
	return a == b
}

// Filter is a subtree filter.
type Filter struct {
	nodes []Node
}

// Nodes returns the filter's top level nodes, in order.
func (f *Filter) Nodes() []Node {
	if f == nil {
		return nil
	}
	return append([]Node(nil), f.nodes...)
}

// Len returns the number of top level nodes.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.nodes)
}

func copyAttrs(attrs []AttributeMatch) []AttributeMatch {
	if len(attrs) == 0 {
		return nil
	}
	return append([]AttributeMatch(nil), attrs...)
}

// Equal reports whether filters a and b have equal nodes in the same order.
func Equal(a, b *Filter) bool { return nodesEqual(a.Nodes(), b.Nodes()) }

// NodeEqual reports whether nodes a and b are equal: of the same kind,
// with equal selections, attribute matches, values and children.
func NodeEqual(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !a.Selection().equal(b.Selection()) || !attrsEqual(a.Attributes(), b.Attributes()) {
		return false
	}
	switch a := a.(type) {
	case *SelectionNode:
		_, ok := b.(*SelectionNode)
		return ok
	case *ContainmentNode:
		b, ok := b.(*ContainmentNode)
		return ok && nodesEqual(a.children, b.children)
	case *ContentMatchNode:
		b, ok := b.(*ContentMatchNode)
		return ok && a.valueEqual(b)
	}
	return false
}

func nodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !NodeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b []AttributeMatch) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}
