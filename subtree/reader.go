package subtree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/andaru/netconf-core/ncerr"
	"github.com/andaru/netconf-core/schema"
	"github.com/andaru/netconf-core/xmlutil"
)

const baseNamespace = "urn:ietf:params:xml:ns:netconf:base:1.0"

// element is a filter element as read, before node roles are assigned.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	text     strings.Builder
	parent   *element
	children []*element
	loc      *ncerr.Location
}

// lookupPrefix returns the namespace bound to prefix in scope at e.
func (e *element) lookupPrefix(prefix string) (string, bool) {
	for ; e != nil; e = e.parent {
		for _, a := range e.attrs {
			if a.Name.Space == "xmlns" && a.Name.Local == prefix {
				return a.Value, true
			}
		}
	}
	return "", false
}

// Read reads a <filter> element from d and returns the subtree filter it
// describes. Elements without a namespace are resolved against sc; a nil
// sc yields wildcard selections matching any namespace.
//
// Errors are *ncerr.Error values: malformed-message for XML that is not
// well-formed, and bad-element, bad-attribute or unknown-element for
// well-formed XML that is not a valid subtree filter.
func Read(sc *schema.Context, d *xml.Decoder) (*Filter, error) {
	root, err := decode(d)
	if err != nil {
		return nil, err
	}
	return build(sc, root)
}

// ReadBytes reads a <filter> element from b.
func ReadBytes(sc *schema.Context, b []byte) (*Filter, error) {
	return Read(sc, xml.NewDecoder(bytes.NewReader(b)))
}

// ReadNode returns the subtree filter described by the <filter> element n
// of a parsed document.
func ReadNode(sc *schema.Context, n *xmlquery.Node) (*Filter, error) {
	if n == nil || n.Type != xmlquery.ElementNode {
		return nil, ncerr.MissingElement("filter")
	}
	return build(sc, fromNode(n, nil))
}

func fromNode(n *xmlquery.Node, parent *element) *element {
	e := &element{name: xmlutil.NodeName(n), parent: parent}
	for _, a := range n.Attr {
		e.attrs = append(e.attrs, xml.Attr{Name: xmlutil.AttrName(a), Value: a.Value})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			e.children = append(e.children, fromNode(c, e))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			e.text.WriteString(c.Data)
		}
	}
	return e
}

func decode(d *xml.Decoder) (*element, error) {
	var (
		root *element
		cur  *element
	)
	for {
		loc := ncerr.DecoderLocation(d)
		tok, err := d.Token()
		if err == io.EOF {
			if root == nil {
				return nil, ncerr.MissingElement("filter", ncerr.WithLocation(loc))
			}
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, ncerr.MalformedMessage(
				ncerr.WithCause(err),
				ncerr.WithLocation(ncerr.DecoderLocation(d)),
			)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			e := &element{name: tok.Name, attrs: tok.Copy().Attr, parent: cur, loc: &loc}
			if cur == nil {
				root = e
			} else {
				cur.children = append(cur.children, e)
			}
			cur = e
		case xml.EndElement:
			if cur = cur.parent; cur == nil {
				return root, nil
			}
		case xml.CharData:
			if cur != nil {
				cur.text.Write(tok)
			} else if len(bytes.TrimSpace(tok)) > 0 {
				return nil, ncerr.MalformedMessage(
					ncerr.WithMessage("character data outside the filter element"),
					ncerr.WithLocation(loc),
				)
			}
		}
	}
}

type reader struct {
	sc *schema.Context
}

func build(sc *schema.Context, root *element) (*Filter, error) {
	if root.name.Local != "filter" {
		return nil, elementError(ncerr.BadElement, root, "expected a filter element, got %s", xmlutil.Clark(root.name))
	}
	for _, a := range root.attrs {
		if a.Name.Local == "type" && (a.Name.Space == "" || a.Name.Space == root.name.Space || a.Name.Space == baseNamespace) && a.Value != "subtree" {
			return nil, ncerr.BadAttribute("type", "filter",
				ncerr.WithMessage("unsupported filter type "+a.Value), withLocation(root))
		}
	}
	if strings.TrimSpace(root.text.String()) != "" {
		return nil, elementError(ncerr.BadElement, root, "filter element has character data")
	}
	r := reader{sc: sc}
	fb := NewFilter()
	for _, e := range root.children {
		n, err := r.node(e, nil, true)
		if err != nil {
			return nil, err
		}
		if fb.Add(n); fb.err != nil {
			return nil, constructionFailure(e, fb.err)
		}
	}
	return fb.Build()
}

// node returns the filter node for e. parents are the schema nodes e's
// parent element resolved to; top is set for children of <filter>.
func (r reader) node(e *element, parents schema.Nodes, top bool) (Node, error) {
	sel, scope, err := r.selection(e, parents, top)
	if err != nil {
		return nil, err
	}
	var attrs []AttributeMatch
	for _, a := range e.attrs {
		if xmlutil.IsNamespaceDecl(a) {
			continue
		}
		attrs = append(attrs, AttributeMatch{Selection: Exact{Name: a.Name}, Value: a.Value})
	}
	value := strings.TrimSpace(e.text.String())

	switch {
	case len(e.children) > 0:
		if value != "" {
			return nil, elementError(ncerr.BadElement, e, "element %s has both child elements and character data", e.name.Local)
		}
		cb := NewContainment(sel)
		for _, a := range attrs {
			cb.Attr(a)
		}
		for _, c := range e.children {
			child, err := r.node(c, scope, false)
			if err != nil {
				return nil, err
			}
			if cb.Add(child); cb.err != nil {
				return nil, constructionFailure(c, cb.err)
			}
		}
		n, err := cb.Build()
		if err != nil {
			return nil, constructionFailure(e, err)
		}
		return n, nil
	case value != "":
		if len(attrs) > 0 {
			return nil, constructionFailure(e, constructionError("content match node %s cannot carry attribute matches", sel))
		}
		var (
			n   *ContentMatchNode
			err error
		)
		if prefix, _, ok := splitQualified(value); ok {
			if ns, found := e.lookupPrefix(prefix); found {
				n, err = NewQualifiedContentMatch(sel, value, ns)
			}
		}
		if n == nil && err == nil {
			n, err = NewContentMatch(sel, value)
		}
		if err != nil {
			return nil, constructionFailure(e, err)
		}
		return n, nil
	}
	sb := NewSelection(sel)
	for _, a := range attrs {
		sb.Attr(a)
	}
	n, err := sb.Build()
	if err != nil {
		return nil, constructionFailure(e, err)
	}
	return n, nil
}

// selection returns the namespace selection of e and the schema nodes it
// resolves to.
func (r reader) selection(e *element, parents schema.Nodes, top bool) (NamespaceSelection, schema.Nodes, error) {
	local := e.name.Local
	if r.sc == nil {
		if e.name.Space != "" {
			return Exact{Name: e.name}, nil, nil
		}
		return Wildcard{Local: local}, nil, nil
	}

	var nodes schema.Nodes
	if top || len(parents) > 0 {
		if top {
			parents = nil
		}
		nodes = r.sc.Children(parents, local)
	}

	if e.name.Space != "" {
		var exact schema.Nodes
		for _, n := range nodes {
			if n.Name == e.name {
				exact = append(exact, n)
			}
		}
		if len(exact) == 0 {
			exact = r.sc.Find(e.name)
		}
		return Exact{Name: e.name}, exact, nil
	}

	var candidates []xml.Name
	if len(nodes) > 0 {
		seen := map[xml.Name]bool{}
		for _, n := range nodes {
			if !seen[n.Name] {
				seen[n.Name] = true
				candidates = append(candidates, n.Name)
			}
		}
	} else {
		candidates = r.sc.Candidates(local)
		for _, c := range candidates {
			nodes = append(nodes, r.sc.Find(c)...)
		}
	}
	if len(candidates) == 0 {
		return nil, nil, ncerr.UnknownElement(local,
			ncerr.WithMessage("no schema node named "+local), withLocation(e))
	}
	return Wildcard{Local: local, Candidates: candidates}, nodes, nil
}

func withLocation(e *element) ncerr.Option {
	return func(err *ncerr.Error) {
		if e.loc != nil {
			ncerr.WithLocation(*e.loc)(err)
		}
	}
}

func elementError(fn func(string, ...ncerr.Option) *ncerr.Error, e *element, format string, args ...interface{}) error {
	return fn(e.name.Local, ncerr.WithMessage(fmt.Sprintf(format, args...)), withLocation(e))
}

// constructionFailure reports a construction error for the filter element e.
func constructionFailure(e *element, err error) error {
	return ncerr.BadElement(e.name.Local, ncerr.WithCause(err), withLocation(e))
}

// splitQualified splits a "prefix:local" value.
func splitQualified(v string) (prefix, local string, ok bool) {
	i := strings.IndexByte(v, ':')
	if i <= 0 || i == len(v)-1 || strings.ContainsAny(v, " \t\r\n/") || strings.IndexByte(v[i+1:], ':') >= 0 {
		return "", "", false
	}
	return v[:i], v[i+1:], true
}
