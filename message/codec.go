package message

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/pkg/errors"

	"github.com/andaru/netconf-core/framing"
	"github.com/andaru/netconf-core/ncerr"
	"github.com/andaru/netconf-core/xmlutil"
)

const (
	// DefaultIndent is the pretty printing indent.
	DefaultIndent = "  "

	declaration = `<?xml version="1.0" encoding="UTF-8"?>`
)

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithPretty enables pretty printed output: one element per line, each
// indented by its depth. Whitespace-only text between elements is
// dropped on output.
func WithPretty(pretty bool) CodecOption { return func(c *Codec) { c.pretty = pretty } }

// WithIndent sets the pretty printing indent.
func WithIndent(indent string) CodecOption { return func(c *Codec) { c.indent = indent } }

// WithDeclaration enables the XML declaration on output.
func WithDeclaration(decl bool) CodecOption { return func(c *Codec) { c.declaration = decl } }

// WithCodecTrace sets the trace hooks. Missing hooks do nothing.
func WithCodecTrace(trace *Trace) CodecOption { return func(c *Codec) { c.trace = trace } }

// WithBufferSize sets the output buffer size of each serializer.
func WithBufferSize(size int) CodecOption { return func(c *Codec) { c.bufferSize = size } }

// Codec decodes and encodes messages. A Codec is safe for concurrent use.
type Codec struct {
	pretty      bool
	indent      string
	declaration bool
	bufferSize  int
	trace       *Trace

	serializers sync.Pool
}

// NewCodec returns a new Codec. Output is compact unless WithPretty is
// given.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{indent: DefaultIndent, bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(c)
	}
	c.trace = resolveTrace(c.trace)
	c.serializers.New = func() interface{} {
		return &serializer{w: NewBufferedWriter(io.Discard, c.bufferSize)}
	}
	return c
}

// Pretty reports whether the codec pretty prints.
func (c *Codec) Pretty() bool { return c.pretty }

// Decode parses a message. XML that is not well-formed, or has no root
// element, is a malformed-message error.
func (c *Codec) Decode(b []byte) (*Message, error) {
	m, err := parse(b)
	if err != nil {
		c.trace.Error("decode", err)
		return nil, err
	}
	c.trace.Decoded(m.Name(), len(b))
	return m, nil
}

// DecodeFrame parses the message of a decoded frame.
func (c *Codec) DecodeFrame(f framing.Frame) (*Message, error) { return c.Decode(f) }

func parse(b []byte) (*Message, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(b))
	if err != nil {
		opts := []ncerr.Option{ncerr.WithCause(err)}
		var syntax *xml.SyntaxError
		if errors.As(err, &syntax) {
			opts = append(opts, ncerr.WithLocation(syntaxLocation(b, syntax.Line)))
		}
		return nil, ncerr.MalformedMessage(opts...)
	}
	return New(doc)
}

// syntaxLocation finds the column and offset of the syntax error on line
// in b by re-reading b up to the error.
func syntaxLocation(b []byte, line int) ncerr.Location {
	d := xml.NewDecoder(bytes.NewReader(b))
	for {
		_, err := d.Token()
		if err == nil {
			continue
		}
		var syntax *xml.SyntaxError
		if errors.As(err, &syntax) && syntax.Line == line {
			return ncerr.DecoderLocation(d)
		}
		return ncerr.Location{Line: line}
	}
}

// Encode returns the encoding of m.
func (c *Codec) Encode(m *Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodeTo(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the encoding of m to w.
func (c *Codec) EncodeTo(w io.Writer, m *Message) error {
	if m == nil {
		return errors.New("cannot encode a nil message")
	}
	cw := &countingWriter{w: w}
	if err := c.EncodeNode(cw, m.doc); err != nil {
		return err
	}
	c.trace.Encoded(m.Name(), cw.n)
	return nil
}

// EncodeNode writes the encoding of the document or element n to w.
func (c *Codec) EncodeNode(w io.Writer, n *xmlquery.Node) error {
	if n == nil {
		return errors.New("cannot encode a nil node")
	}
	s := c.serializers.Get().(*serializer)
	defer c.serializers.Put(s)
	s.reset(c, w)
	if c.declaration {
		s.w.WriteString(declaration)
		if c.pretty {
			s.w.WriteByte('\n')
		}
	}
	s.node(n, 0)
	err := s.w.Flush()
	s.w.Reset(io.Discard)
	if err != nil {
		c.trace.Error("encode", err)
	}
	return err
}

type countingWriter struct {
	w io.Writer
	n int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += n
	return n, err
}

// serializer writes xmlquery trees. Write errors are sticky in the
// BufferedWriter and reported by Flush.
type serializer struct {
	w      *BufferedWriter
	pretty bool
	indent string
	first  bool
}

func (s *serializer) reset(c *Codec, w io.Writer) {
	s.w.Reset(w)
	s.pretty, s.indent, s.first = c.pretty, c.indent, true
}

func (s *serializer) newline(depth int) {
	if !s.pretty {
		return
	}
	if s.first {
		s.first = false
		return
	}
	s.w.WriteByte('\n')
	for i := 0; i < depth; i++ {
		s.w.WriteString(s.indent)
	}
}

func (s *serializer) node(n *xmlquery.Node, depth int) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isSpace(c) {
				continue
			}
			s.node(c, depth)
		}
	case xmlquery.ElementNode:
		s.element(n, depth)
	case xmlquery.TextNode:
		if s.pretty && depth > 0 && n.Parent != nil && hasElements(n.Parent) {
			s.newline(depth)
			s.w.WriteString(xmlutil.EscapeText(strings.TrimSpace(n.Data)))
			return
		}
		s.w.WriteString(xmlutil.EscapeText(n.Data))
	case xmlquery.CharDataNode:
		s.w.WriteString("<![CDATA[")
		s.w.WriteString(n.Data)
		s.w.WriteString("]]>")
	case xmlquery.CommentNode:
		s.newline(depth)
		s.w.WriteString("<!--")
		s.w.WriteString(n.Data)
		s.w.WriteString("-->")
	}
}

func (s *serializer) element(n *xmlquery.Node, depth int) {
	name := n.Data
	if n.Prefix != "" {
		name = n.Prefix + ":" + n.Data
	}
	s.newline(depth)
	s.w.WriteByte('<')
	s.w.WriteString(name)
	for _, a := range n.Attr {
		s.w.WriteByte(' ')
		if a.Name.Space != "" {
			s.w.WriteString(a.Name.Space)
			s.w.WriteByte(':')
		}
		s.w.WriteString(a.Name.Local)
		s.w.WriteString(`="`)
		s.w.WriteString(xmlutil.EscapeAttr(a.Value))
		s.w.WriteByte('"')
	}
	if n.FirstChild == nil {
		s.w.WriteString("/>")
		return
	}
	s.w.WriteByte('>')
	// whitespace-only text between child elements is layout, not data
	parent := hasElements(n)
	nested := s.pretty && parent
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if parent && isSpace(c) {
			continue
		}
		s.node(c, depth+1)
	}
	if nested {
		s.newline(depth)
	}
	s.w.WriteString("</")
	s.w.WriteString(name)
	s.w.WriteByte('>')
}

func hasElements(n *xmlquery.Node) bool { return xmlutil.FirstElement(n) != nil }

func isSpace(n *xmlquery.Node) bool {
	return n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) == ""
}
