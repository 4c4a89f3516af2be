package subtree

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andaru/netconf-core/ncerr"
)

func TestReadExamples(t *testing.T) {
	sc := loadSchema(t)
	for _, tc := range []struct {
		name string
		xml  string
		want *Filter
	}{
		{
			name: "rfc6241 6.2.1 namespace selection",
			xml: `<filter type="subtree">
  <top xmlns="http://example.com/schema/1.2/config"/>
</filter>`,
			want: filter(sel(ex("top"))),
		},
		{
			name: "rfc6241 6.2.2 attribute match expressions",
			xml: `<filter type="subtree">
  <t:top xmlns:t="http://example.com/schema/1.2/config">
    <t:interfaces>
      <t:interface t:ifName="eth0"/>
    </t:interfaces>
  </t:top>
</filter>`,
			want: filter(cont(ex("top"), cont(ex("interfaces"),
				sel(ex("interface"), AttributeMatch{Selection: ex("ifName"), Value: "eth0"})))),
		},
		{
			name: "rfc6241 6.2.3 containment nodes",
			xml: `<filter type="subtree">
  <top xmlns="http://example.com/schema/1.2/config">
    <users/>
  </top>
</filter>`,
			want: filter(cont(ex("top"), sel(ex("users")))),
		},
		{
			name: "rfc6241 6.2.5 content match nodes",
			xml: `<filter type="subtree">
  <top xmlns="http://example.com/schema/1.2/config">
    <users>
      <user>
        <name>fred</name>
      </user>
    </users>
  </top>
</filter>`,
			want: filter(cont(ex("top"), cont(ex("users"), cont(ex("user"), match(ex("name"), "fred"))))),
		},
		{
			name: "rfc6241 6.2.7 repeated containment siblings",
			xml: `<filter type="subtree">
  <top xmlns="http://example.com/schema/1.2/config">
    <users>
      <user>
        <name>root</name>
        <company-info/>
      </user>
      <user>
        <name>fred</name>
        <company-info>
          <id/>
        </company-info>
      </user>
      <user>
        <name>barney</name>
        <type>superuser</type>
        <company-info>
          <dept/>
        </company-info>
      </user>
    </users>
  </top>
</filter>`,
			want: filter(cont(ex("top"), cont(ex("users"),
				cont(ex("user"), match(ex("name"), "root"), sel(ex("company-info"))),
				cont(ex("user"), match(ex("name"), "fred"), cont(ex("company-info"), sel(ex("id")))),
				cont(ex("user"), match(ex("name"), "barney"), match(ex("type"), "superuser"),
					cont(ex("company-info"), sel(ex("dept"))))))),
		},
		{
			name: "wildcard elements",
			xml: `<filter type="subtree">
  <top xmlns="">
    <users>
      <user>
        <id>123</id>
      </user>
    </users>
  </top>
</filter>`,
			want: filter(cont(wild("top", ns1), cont(wild("users", ns1, ns2),
				cont(wild("user", ns1, ns2), match(wild("id", ns1, ns2), "123"))))),
		},
		{
			name: "wildcard beneath an exact element",
			xml: `<filter type="subtree">
  <top xmlns="http://example.com/schema/1.2/config">
    <users xmlns=""/>
  </top>
</filter>`,
			want: filter(cont(ex("top"), sel(wild("users", ns1, ns2)))),
		},
		{
			name: "multiple namespaces",
			xml: `<filter type="subtree">
  <a:top xmlns:a="http://example.com/schema/1.2/config"
         xmlns:b="http://example.com/schema/1.2/config2">
    <b:users/>
  </a:top>
</filter>`,
			want: filter(cont(ex("top"), sel(ex2("users")))),
		},
		{
			name: "wildcard scoped by an augmented parent",
			xml: `<filter type="subtree">
  <t:top xmlns:t="http://example.com/schema/1.2/config"
         xmlns:y="http://example.com/schema/1.2/config2">
    <y:users>
      <y:user>
        <id>123</id>
      </y:user>
    </y:users>
    <t:interfaces>
      <t:interface t:ifName="eth0"/>
    </t:interfaces>
  </t:top>
</filter>`,
			want: filter(cont(ex("top"),
				cont(ex2("users"), cont(ex2("user"), match(wild("id", ns2), "123"))),
				cont(ex("interfaces"), sel(ex("interface"), AttributeMatch{Selection: ex("ifName"), Value: "eth0"})))),
		},
		{
			name: "wildcard choice",
			xml: `<filter type="subtree">
  <top xmlns="">
    <choice>
      <cont/>
    </choice>
  </top>
</filter>`,
			want: filter(cont(wild("top", ns1), cont(wild("choice", ns1), sel(wild("cont", ns1))))),
		},
		{
			name: "notification",
			xml: `<filter type="subtree">
  <topNotif xmlns="http://example.com/schema/1.2/config">
    <noti-cont>
      <noti-leaf/>
    </noti-cont>
  </topNotif>
</filter>`,
			want: filter(cont(ex("topNotif"), cont(ex("noti-cont"), sel(ex("noti-leaf"))))),
		},
		{
			name: "unprefixed attribute",
			xml:  `<filter><top xmlns="http://example.com/schema/1.2/config"><interfaces><interface ifName="eth0"/></interfaces></top></filter>`,
			want: filter(cont(ex("top"), cont(ex("interfaces"),
				sel(ex("interface"), AttributeMatch{Selection: ExactName("", "ifName"), Value: "eth0"})))),
		},
		{
			name: "empty filter",
			xml:  `<filter type="subtree"/>`,
			want: filter(),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadBytes(sc, []byte(tc.xml))
			require.NoError(t, err)
			assert.True(t, Equal(tc.want, got), "want %v, got %v", tc.want.Nodes(), got.Nodes())
		})
	}
}

func TestReadWithoutSchema(t *testing.T) {
	ck := assert.New(t)
	got, err := ReadBytes(nil, []byte(`<filter type="subtree"><top><users xmlns="urn:x"/></top></filter>`))
	require.NoError(t, err)
	ck.True(Equal(filter(cont(wild("top"), sel(ExactName("urn:x", "users")))), got))
}

func TestReadQualifiedValue(t *testing.T) {
	ck := assert.New(t)
	got, err := ReadBytes(nil, []byte(`<filter xmlns:ianaift="urn:ianaift">
<interface xmlns="urn:if"><type>ianaift:ethernetCsmacd</type><mtu>10:30</mtu></interface>
</filter>`))
	require.NoError(t, err)

	c := got.Nodes()[0].(*ContainmentNode)
	typ := c.Children()[0].(*ContentMatchNode)
	ck.Equal("ianaift:ethernetCsmacd", typ.Value())
	ck.Equal("urn:ianaift", typ.ValueNamespace())
	mtu := c.Children()[1].(*ContentMatchNode)
	ck.Equal("10:30", mtu.Value())
	ck.Empty(mtu.ValueNamespace())
}

func TestReadErrors(t *testing.T) {
	sc := loadSchema(t)
	for _, tc := range []struct {
		name    string
		xml     string
		tag     string
		element string
		// construction is set when the cause is a construction error
		construction bool
	}{
		{name: "no input", xml: "", tag: "missing-element", element: "filter"},
		{name: "not well formed", xml: `<filter><top></filter>`, tag: "malformed-message"},
		{name: "truncated", xml: `<filter><top>`, tag: "malformed-message"},
		{name: "not a filter", xml: `<get/>`, tag: "bad-element", element: "get"},
		{name: "xpath filter", xml: `<filter type="xpath" select="/top"/>`, tag: "bad-attribute", element: "filter"},
		{name: "text in filter", xml: `<filter>top</filter>`, tag: "bad-element", element: "filter"},
		{name: "unknown wildcard", xml: `<filter><bogus/></filter>`, tag: "unknown-element", element: "bogus"},
		{
			name:    "mixed content",
			xml:     `<filter><top xmlns="http://example.com/schema/1.2/config">text<users/></top></filter>`,
			tag:     "bad-element",
			element: "top",
		},
		{
			name:         "content match with an attribute",
			xml:          `<filter><top xmlns="http://example.com/schema/1.2/config"><users><user><name a="b">fred</name></user></users></top></filter>`,
			tag:          "bad-element",
			element:      "name",
			construction: true,
		},
		{
			name:         "repeated sibling",
			xml:          `<filter><top xmlns="http://example.com/schema/1.2/config"><users/><users/></top></filter>`,
			tag:          "bad-element",
			element:      "users",
			construction: true,
		},
		{
			name:         "repeated top level node",
			xml:          `<filter xmlns:t="http://example.com/schema/1.2/config"><t:top t:a="1" b="2"><t:users/></t:top><t:top t:a="1" b="2"><t:users/></t:top></filter>`,
			tag:          "bad-element",
			element:      "top",
			construction: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			_, err := Read(sc, xml.NewDecoder(strings.NewReader(tc.xml)))
			require.Error(t, err)
			nerr, ok := ncerr.As(err)
			require.True(t, ok, "%v is not an *ncerr.Error", err)
			ck.Equal(tc.tag, nerr.Tag)
			if tc.element != "" {
				require.NotNil(t, nerr.Info)
				ck.Equal(tc.element, nerr.Info.BadElement)
			}
			if tc.construction {
				var cerr *ConstructionError
				ck.ErrorAs(err, &cerr)
			}
		})
	}
}

func TestReadErrorLocation(t *testing.T) {
	ck := assert.New(t)
	_, err := ReadBytes(nil, []byte("<filter>\n  <a>x<b/></a>\n</filter>"))
	nerr, ok := ncerr.As(err)
	require.True(t, ok)
	require.NotNil(t, nerr.Location)
	ck.Equal(2, nerr.Location.Line)
	ck.Equal("bad-element", nerr.Tag)

	_, err = ReadBytes(nil, []byte("<filter><a></filter>"))
	nerr, ok = ncerr.As(err)
	require.True(t, ok)
	ck.Equal(ncerr.TypeRPC, nerr.Type)
	ck.NotNil(nerr.Cause)
}

func TestReadNode(t *testing.T) {
	ck := assert.New(t)
	sc := loadSchema(t)
	rpc := parse(t, `<rpc xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="1">
  <get>
    <filter type="subtree">
      <t:top xmlns:t="http://example.com/schema/1.2/config">
        <t:interfaces>
          <t:interface t:ifName="eth0"/>
        </t:interfaces>
        <users xmlns=""/>
      </t:top>
    </filter>
  </get>
</rpc>`)
	f := rpc.SelectElement("get/filter")
	require.NotNil(t, f)
	got, err := ReadNode(sc, f)
	require.NoError(t, err)
	ck.True(Equal(filter(cont(ex("top"),
		cont(ex("interfaces"), sel(ex("interface"), AttributeMatch{Selection: ex("ifName"), Value: "eth0"})),
		sel(wild("users", ns1, ns2)))), got))

	_, err = ReadNode(sc, nil)
	ck.Error(err)
}
