package subtree

import (
	"sort"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/require"

	"github.com/andaru/netconf-core/schema"
	"github.com/andaru/netconf-core/xmlutil"
)

const (
	ns1 = "http://example.com/schema/1.2/config"
	ns2 = "http://example.com/schema/1.2/config2"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ex(local string) Exact  { return ExactName(ns1, local) }
func ex2(local string) Exact { return ExactName(ns2, local) }

func wild(local string, spaces ...string) Wildcard {
	w := Wildcard{Local: local}
	for _, s := range spaces {
		w.Candidates = append(w.Candidates, xmlutil.XMLName(local, s))
	}
	return w
}

func sel(s NamespaceSelection, attrs ...AttributeMatch) *SelectionNode {
	b := NewSelection(s)
	for _, a := range attrs {
		b.Attr(a)
	}
	return must(b.Build())
}

func cont(s NamespaceSelection, children ...Node) *ContainmentNode {
	b := NewContainment(s)
	for _, c := range children {
		b.Add(c)
	}
	return must(b.Build())
}

func match(s NamespaceSelection, value string) *ContentMatchNode {
	return must(NewContentMatch(s, value))
}

func filter(nodes ...Node) *Filter {
	b := NewFilter()
	for _, n := range nodes {
		b.Add(n)
	}
	return must(b.Build())
}

func loadSchema(t *testing.T) *schema.Context {
	sc, err := schema.LoadFile("../schema/testdata/example.yaml")
	require.NoError(t, err)
	return sc
}

func parse(t *testing.T, doc string) *xmlquery.Node {
	n, err := xmlquery.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	root := xmlutil.FirstElement(n)
	require.NotNil(t, root)
	return root
}

// dump renders an element tree compactly: qualified names in Clark
// notation, attributes sorted and trimmed text content.
func dump(n *xmlquery.Node) string {
	if n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	dumpTo(&sb, n)
	return sb.String()
}

func dumpTo(sb *strings.Builder, n *xmlquery.Node) {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		sb.WriteString(strings.TrimSpace(n.Data))
		return
	case xmlquery.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			dumpTo(sb, c)
		}
		return
	}
	sb.WriteString("<" + xmlutil.Clark(xmlutil.NodeName(n)))
	var attrs []string
	for _, a := range n.Attr {
		name := xmlutil.AttrName(a)
		if name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns") {
			continue
		}
		attrs = append(attrs, " "+xmlutil.Clark(name)+"="+a.Value)
	}
	sort.Strings(attrs)
	sb.WriteString(strings.Join(attrs, ""))
	sb.WriteString(">")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dumpTo(sb, c)
	}
	sb.WriteString("</>")
}
