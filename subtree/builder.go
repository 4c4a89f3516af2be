package subtree

import "strings"

// SelectionBuilder builds a SelectionNode.
type SelectionBuilder struct {
	sel   NamespaceSelection
	attrs []AttributeMatch
	err   error
}

// NewSelection returns a builder of a selection node of sel.
func NewSelection(sel NamespaceSelection) *SelectionBuilder {
	return &SelectionBuilder{sel: sel, err: checkSelection(sel)}
}

// Attr adds an attribute match.
func (b *SelectionBuilder) Attr(m AttributeMatch) *SelectionBuilder {
	b.attrs, b.err = addAttr(b.attrs, m, b.err)
	return b
}

// Build returns the node, or the first construction error encountered.
func (b *SelectionBuilder) Build() (*SelectionNode, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &SelectionNode{sel: b.sel, attrs: copyAttrs(b.attrs)}, nil
}

// ContainmentBuilder builds a ContainmentNode.
type ContainmentBuilder struct {
	sel      NamespaceSelection
	attrs    []AttributeMatch
	children []Node
	err      error
}

// NewContainment returns a builder of a containment node of sel.
func NewContainment(sel NamespaceSelection) *ContainmentBuilder {
	return &ContainmentBuilder{sel: sel, err: checkSelection(sel)}
}

// Attr adds an attribute match.
func (b *ContainmentBuilder) Attr(m AttributeMatch) *ContainmentBuilder {
	b.attrs, b.err = addAttr(b.attrs, m, b.err)
	return b
}

// Add appends a child node. A child equal to an existing child is a
// construction error.
func (b *ContainmentBuilder) Add(n Node) *ContainmentBuilder {
	b.children, b.err = addNode(b.children, n, b.err)
	return b
}

// Build returns the node, or the first construction error encountered. A
// containment node must have at least one child.
func (b *ContainmentBuilder) Build() (*ContainmentNode, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.children) == 0 {
		return nil, constructionError("containment node %s has no children", b.sel)
	}
	return &ContainmentNode{
		sel:      b.sel,
		attrs:    copyAttrs(b.attrs),
		children: append([]Node(nil), b.children...),
	}, nil
}

// NewContentMatch returns a content match node requiring elements selected
// by sel to have the value value. Leading and trailing whitespace is not
// significant and is removed.
func NewContentMatch(sel NamespaceSelection, value string) (*ContentMatchNode, error) {
	value, err := contentValue(sel, value)
	if err != nil {
		return nil, err
	}
	return &ContentMatchNode{sel: sel, value: value}, nil
}

// NewQualifiedContentMatch returns a content match node whose value is a
// qualified name, such as an identity "if:ethernetCsmacd", with the
// prefix bound to namespace. Elements match when their value resolves to
// the same namespace and local name, whatever prefix they use.
func NewQualifiedContentMatch(sel NamespaceSelection, value, namespace string) (*ContentMatchNode, error) {
	value, err := contentValue(sel, value)
	if err != nil {
		return nil, err
	}
	if _, _, ok := splitQualified(value); !ok {
		return nil, constructionError("content match value %q is not a qualified name", value)
	}
	if namespace == "" {
		return nil, constructionError("content match value %q has no namespace", value)
	}
	return &ContentMatchNode{sel: sel, value: value, space: namespace}, nil
}

// contentValue returns the trimmed content match value, which must not be
// empty.
func contentValue(sel NamespaceSelection, value string) (string, error) {
	if err := checkSelection(sel); err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", constructionError("content match %s has an empty value", sel)
	}
	return value, nil
}

// FilterBuilder builds a Filter.
type FilterBuilder struct {
	nodes []Node
	err   error
}

// NewFilter returns a builder of a filter.
func NewFilter() *FilterBuilder { return &FilterBuilder{} }

// Add appends a top level node. A node equal to an existing node is a
// construction error.
func (b *FilterBuilder) Add(n Node) *FilterBuilder {
	b.nodes, b.err = addNode(b.nodes, n, b.err)
	return b
}

// Build returns the filter, or the first construction error encountered.
// A filter without nodes selects nothing.
func (b *FilterBuilder) Build() (*Filter, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Filter{nodes: append([]Node(nil), b.nodes...)}, nil
}

func addAttr(attrs []AttributeMatch, m AttributeMatch, err error) ([]AttributeMatch, error) {
	if err != nil {
		return attrs, err
	}
	if cerr := checkSelection(m.Selection); cerr != nil {
		return attrs, cerr
	}
	for _, a := range attrs {
		if a.Selection.equal(m.Selection) {
			return attrs, constructionError("attribute %s is matched more than once", m.Selection)
		}
	}
	return append(attrs, m), nil
}

func addNode(nodes []Node, n Node, err error) ([]Node, error) {
	if err != nil {
		return nodes, err
	}
	if isNilNode(n) {
		return nodes, constructionError("node is nil")
	}
	for _, sibling := range nodes {
		if NodeEqual(sibling, n) {
			return nodes, constructionError("node %s is repeated", n.Selection())
		}
	}
	return append(nodes, n), nil
}

func isNilNode(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *SelectionNode:
		return n == nil
	case *ContainmentNode:
		return n == nil
	case *ContentMatchNode:
		return n == nil
	}
	return false
}
