package subtree

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func() (Node, error)
	}{
		{"empty containment", func() (Node, error) { return NewContainment(ex("top")).Build() }},
		{"nil selection", func() (Node, error) { return NewSelection(nil).Build() }},
		{"empty local name", func() (Node, error) { return NewSelection(ExactName(ns1, "")).Build() }},
		{"empty wildcard", func() (Node, error) { return NewSelection(Wildcard{}).Build() }},
		{"candidate with another local name", func() (Node, error) {
			return NewSelection(Wildcard{Local: "top", Candidates: []xml.Name{{Space: ns1, Local: "users"}}}).Build()
		}},
		{"repeated candidate", func() (Node, error) { return NewSelection(wild("top", ns1, ns1)).Build() }},
		{"repeated attribute", func() (Node, error) {
			return NewSelection(ex("interface")).
				Attr(AttributeMatch{Selection: ex("ifName"), Value: "eth0"}).
				Attr(AttributeMatch{Selection: ex("ifName"), Value: "eth1"}).
				Build()
		}},
		{"attribute with no selection", func() (Node, error) {
			return NewSelection(ex("interface")).Attr(AttributeMatch{Value: "eth0"}).Build()
		}},
		{"repeated child", func() (Node, error) {
			return NewContainment(ex("top")).Add(sel(ex("users"))).Add(sel(ex("users"))).Build()
		}},
		{"nil child", func() (Node, error) { return NewContainment(ex("top")).Add(nil).Build() }},
		{"typed nil child", func() (Node, error) {
			var n *SelectionNode
			return NewContainment(ex("top")).Add(n).Build()
		}},
		{"content match with no selection", func() (Node, error) { return NewContentMatch(nil, "fred") }},
		{"empty content value", func() (Node, error) { return NewContentMatch(ex("name"), "") }},
		{"blank content value", func() (Node, error) { return NewContentMatch(ex("name"), " \n\t") }},
		{"blank qualified value", func() (Node, error) { return NewQualifiedContentMatch(ex("type"), "  ", "urn:x") }},
		{"unqualified value", func() (Node, error) { return NewQualifiedContentMatch(ex("type"), "ethernet", "urn:x") }},
		{"qualified value without a namespace", func() (Node, error) { return NewQualifiedContentMatch(ex("type"), "if:ethernet", "") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			var cerr *ConstructionError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, cerr.Error(), "subtree filter: ")
		})
	}
}

func TestBuilderFirstErrorWins(t *testing.T) {
	b := NewContainment(nil).Add(nil)
	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace selection is nil")
}

func TestFilterBuilder(t *testing.T) {
	ck := assert.New(t)
	f, err := NewFilter().Add(sel(ex("top"))).Add(sel(ex2("top"))).Build()
	require.NoError(t, err)
	ck.Equal(2, f.Len())

	_, err = NewFilter().Add(sel(ex("top"))).Add(sel(ex("top"))).Build()
	ck.Error(err)

	empty, err := NewFilter().Build()
	require.NoError(t, err)
	ck.Zero(empty.Len())

	var nilFilter *Filter
	ck.Zero(nilFilter.Len())
	ck.Nil(nilFilter.Nodes())
}

func TestRepeatedContainmentWithDistinctChildren(t *testing.T) {
	_, err := NewContainment(ex("users")).
		Add(cont(ex("user"), match(ex("name"), "fred"))).
		Add(cont(ex("user"), match(ex("name"), "barney"))).
		Build()
	assert.NoError(t, err)
}

func TestNodesAreImmutable(t *testing.T) {
	ck := assert.New(t)
	attr := AttributeMatch{Selection: ex("ifName"), Value: "eth0"}
	n := sel(ex("interface"), attr)
	attrs := n.Attributes()
	attrs[0].Value = "eth1"
	ck.Equal("eth0", n.Attributes()[0].Value)

	c := cont(ex("top"), sel(ex("users")))
	children := c.Children()
	children[0] = sel(ex("other"))
	ck.True(NodeEqual(sel(ex("users")), c.Children()[0]))

	f := filter(sel(ex("top")))
	nodes := f.Nodes()
	nodes[0] = nil
	ck.NotNil(f.Nodes()[0])
}

func TestNodeEqual(t *testing.T) {
	for _, tc := range []struct {
		name  string
		a, b  Node
		equal bool
	}{
		{"same selection", sel(ex("top")), sel(ex("top")), true},
		{"different namespace", sel(ex("top")), sel(ex2("top")), false},
		{"exact and wildcard", sel(ex("top")), sel(wild("top", ns1)), false},
		{"wildcard candidates", sel(wild("top", ns1)), sel(wild("top", ns1, ns2)), false},
		{"candidate order", sel(wild("top", ns2, ns1)), sel(wild("top", ns1, ns2)), false},
		{"different kind", sel(ex("name")), match(ex("name"), "fred"), false},
		{"different value", match(ex("name"), "fred"), match(ex("name"), "barney"), false},
		{
			"attributes",
			sel(ex("interface"), AttributeMatch{Selection: ex("ifName"), Value: "eth0"}),
			sel(ex("interface"), AttributeMatch{Selection: ex("ifName"), Value: "eth1"}),
			false,
		},
		{"children", cont(ex("top"), sel(ex("users"))), cont(ex("top"), sel(ex("interfaces"))), false},
		{"child order", cont(ex("top"), sel(ex("a")), sel(ex("b"))), cont(ex("top"), sel(ex("b")), sel(ex("a"))), false},
		{
			"qualified values with different prefixes",
			must(NewQualifiedContentMatch(ex("type"), "a:eth", "urn:x")),
			must(NewQualifiedContentMatch(ex("type"), "b:eth", "urn:x")),
			true,
		},
		{
			"qualified and unqualified value",
			must(NewQualifiedContentMatch(ex("type"), "a:eth", "urn:x")),
			match(ex("type"), "a:eth"),
			false,
		},
		{"nil", sel(ex("top")), nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, NodeEqual(tc.a, tc.b))
			assert.Equal(t, tc.equal, NodeEqual(tc.b, tc.a))
		})
	}
}

func TestSelectionMatches(t *testing.T) {
	ck := assert.New(t)
	ck.True(ex("top").Matches(xml.Name{Space: ns1, Local: "top"}))
	ck.False(ex("top").Matches(xml.Name{Space: ns2, Local: "top"}))
	ck.False(ex("top").Matches(xml.Name{Local: "top"}))

	ck.True(wild("top").Matches(xml.Name{Space: "urn:any", Local: "top"}))
	ck.True(wild("top").Matches(xml.Name{Local: "top"}))
	ck.False(wild("top").Matches(xml.Name{Local: "users"}))
	ck.True(wild("users", ns1, ns2).Matches(xml.Name{Space: ns2, Local: "users"}))
	ck.False(wild("users", ns1).Matches(xml.Name{Space: ns2, Local: "users"}))

	ck.Equal("{"+ns1+"}top", ex("top").String())
	ck.Equal("*:users[{"+ns1+"}users {"+ns2+"}users]", wild("users", ns1, ns2).String())
	ck.Equal("users", wild("users").LocalName())
}

func TestContentMatchValueTrimmed(t *testing.T) {
	ck := assert.New(t)
	ck.Equal("fred", match(ex("name"), "  fred\n").Value())
	ck.True(NodeEqual(match(ex("name"), "fred"), match(ex("name"), "\tfred ")))
	q := must(NewQualifiedContentMatch(ex("type"), " if:eth ", "urn:x"))
	ck.Equal("if:eth", q.Value())

	b, err := Marshal(filter(cont(ex("top"), match(ex("name"), " fred "))))
	require.NoError(t, err)
	ck.Contains(string(b), ">fred</")
}
