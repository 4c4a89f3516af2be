package xmlutil

import "encoding/xml"

// XMLName is a shortcut for creating xml.Name, where typically you want at least
// a local name, and perhaps a namespace value as well.
func XMLName(local string, spaces ...string) xml.Name {
	n := xml.Name{Local: local}
	if len(spaces) > 0 {
		n.Space = spaces[0]
	}
	return n
}

// Clark returns n in James Clark notation, "{namespace}local", or just the
// local name when n has no namespace.
func Clark(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// IsNamespaceDecl reports whether attr declares a namespace, either the
// default namespace (xmlns="...") or a prefix (xmlns:p="...").
func IsNamespaceDecl(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns")
}
