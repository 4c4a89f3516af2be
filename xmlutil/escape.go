package xmlutil

import (
	"io"
	"strings"
)

// Escaped text and attribute values replace the five XML special
// characters. Attribute values additionally encode tab, newline and
// carriage return, which attribute-value normalization would otherwise
// turn into spaces.
var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// EscapeText returns s escaped for use as element character data.
func EscapeText(s string) string { return textEscaper.Replace(s) }

// EscapeAttr returns s escaped for use within a quoted attribute value.
func EscapeAttr(s string) string { return attrEscaper.Replace(s) }

// WriteText writes s to w escaped as element character data.
func WriteText(w io.Writer, s string) error {
	_, err := textEscaper.WriteString(w, s)
	return err
}

// WriteAttr writes s to w escaped as an attribute value.
func WriteAttr(w io.Writer, s string) error {
	_, err := attrEscaper.WriteString(w, s)
	return err
}
