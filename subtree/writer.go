package subtree

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/andaru/netconf-core/xmlutil"
)

// WriterOption configures Write and Marshal.
type WriterOption func(*writer)

// WithDefaultNamespace declares that the <filter> element is written in a
// scope whose default namespace is ns, as it is inside an <rpc> in the
// NETCONF base namespace. Wildcard elements then reset the default
// namespace with xmlns="".
func WithDefaultNamespace(ns string) WriterOption {
	return func(w *writer) { w.defaultNS = ns }
}

// writer serializes one filter. Prefixes are allocated across the whole
// filter and declared on the outermost element using them in each branch.
type writer struct {
	buf       bytes.Buffer
	prefixes  xmlutil.PrefixAllocator
	defaultNS string
}

// scope is the namespace context of an element being written.
type scope struct {
	parent    *scope
	declared  []string
	defaultNS string
}

func (s *scope) inScope(ns string) bool {
	for ; s != nil; s = s.parent {
		for _, d := range s.declared {
			if d == ns {
				return true
			}
		}
	}
	return false
}

// Write writes f to w as a <filter type="subtree"> element. Exact
// selections are written with generated prefixes "a", "b", ... allocated
// in first-use order. Wildcard selections are written unprefixed.
func Write(w io.Writer, f *Filter, opts ...WriterOption) error {
	b, err := Marshal(f, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return errors.WithStack(err)
}

// Marshal returns the <filter type="subtree"> encoding of f.
func Marshal(f *Filter, opts ...WriterOption) ([]byte, error) {
	if f == nil {
		return nil, errors.New("subtree filter: cannot write a nil filter")
	}
	w := &writer{}
	for _, opt := range opts {
		opt(w)
	}
	w.buf.WriteString(`<filter type="subtree"`)
	if f.Len() == 0 {
		w.buf.WriteString("/>")
		return w.buf.Bytes(), nil
	}
	w.buf.WriteByte('>')
	root := &scope{defaultNS: w.defaultNS}
	for _, n := range f.nodes {
		w.node(n, root)
	}
	w.buf.WriteString("</filter>")
	return w.buf.Bytes(), nil
}

// MarshalString returns the <filter type="subtree"> encoding of f as a
// string.
func MarshalString(f *Filter, opts ...WriterOption) (string, error) {
	b, err := Marshal(f, opts...)
	return string(b), err
}

func (w *writer) node(n Node, parent *scope) {
	sc := &scope{parent: parent, defaultNS: parent.defaultNS}
	var decls []string

	declare := func(ns string) string {
		pfx := w.prefixes.Prefix(ns)
		if !sc.inScope(ns) {
			sc.declared = append(sc.declared, ns)
			decls = append(decls, pfx, ns)
		}
		return pfx
	}

	var tag string
	resetDefault := false
	switch sel := n.Selection().(type) {
	case Exact:
		if sel.Name.Space == "" {
			tag = sel.Name.Local
			resetDefault = sc.defaultNS != ""
		} else {
			tag = declare(sel.Name.Space) + ":" + sel.Name.Local
		}
	default:
		tag = sel.LocalName()
		resetDefault = sc.defaultNS != ""
	}
	if resetDefault {
		sc.defaultNS = ""
	}

	type attr struct{ name, value string }
	var attrs []attr
	for _, a := range n.Attributes() {
		name := a.Selection.LocalName()
		if e, ok := a.Selection.(Exact); ok && e.Name.Space != "" {
			name = declare(e.Name.Space) + ":" + name
		}
		attrs = append(attrs, attr{name, a.Value})
	}

	var value string
	if cm, ok := n.(*ContentMatchNode); ok {
		value = cm.value
		if cm.space != "" {
			_, local, _ := splitQualified(cm.value)
			value = declare(cm.space) + ":" + local
		}
	}

	w.buf.WriteByte('<')
	w.buf.WriteString(tag)
	if resetDefault {
		w.buf.WriteString(` xmlns=""`)
	}
	for i := 0; i < len(decls); i += 2 {
		w.attr("xmlns:"+decls[i], decls[i+1])
	}
	for _, a := range attrs {
		w.attr(a.name, a.value)
	}

	switch n := n.(type) {
	case *ContainmentNode:
		w.buf.WriteByte('>')
		for _, c := range n.children {
			w.node(c, sc)
		}
	case *ContentMatchNode:
		w.buf.WriteByte('>')
		w.buf.WriteString(xmlutil.EscapeText(value))
	default:
		w.buf.WriteString("/>")
		return
	}
	w.buf.WriteString("</")
	w.buf.WriteString(tag)
	w.buf.WriteByte('>')
}

func (w *writer) attr(name, value string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString(`="`)
	w.buf.WriteString(xmlutil.EscapeAttr(value))
	w.buf.WriteByte('"')
}
