package message

import (
	"bytes"
	"encoding/xml"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/andaru/netconf-core/ncerr"
	"github.com/andaru/netconf-core/schema"
	"github.com/andaru/netconf-core/subtree"
	"github.com/andaru/netconf-core/xmlutil"
)

// NewMessageID returns a new random message-id.
func NewMessageID() string { return uuid.New().String() }

// NewGet returns a <get> request with a new message-id, filtered by f
// unless f is nil.
func NewGet(f *subtree.Filter) (*Message, error) {
	return newRPC("get", nil, f)
}

// NewGetConfig returns a <get-config> request of the source datastore,
// "running", "candidate" or "startup", filtered by f unless f is nil.
func NewGetConfig(source string, f *subtree.Filter) (*Message, error) {
	switch source {
	case "running", "candidate", "startup":
	default:
		return nil, errors.Errorf("unknown datastore %q", source)
	}
	return newRPC("get-config", []byte("<source><"+source+"/></source>"), f)
}

func newRPC(op string, params []byte, f *subtree.Filter) (*Message, error) {
	var buf bytes.Buffer
	buf.WriteString(`<rpc xmlns="` + NamespaceBase + `" message-id="` + NewMessageID() + `"><` + op + `>`)
	buf.Write(params)
	if f != nil {
		if err := subtree.Write(&buf, f, subtree.WithDefaultNamespace(NamespaceBase)); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`</` + op + `></rpc>`)
	return parse(buf.Bytes())
}

// NewReply returns the <rpc-reply> to request carrying copies of body, or
// <ok/> when body is empty. The reply carries every attribute of the
// request, including its message-id.
func NewReply(request *Message, body ...*xmlquery.Node) (*Message, error) {
	if request == nil || !request.IsRPC() {
		name := "message"
		if request != nil {
			name = request.Root().Data
		}
		return nil, ncerr.BadElement(name, ncerr.WithMessage("reply requested for a message that is not an rpc"))
	}
	rpc := request.Root()
	reply := xmlutil.NewElement(rpc.Prefix, NamespaceBase, "rpc-reply", append([]xmlquery.Attr(nil), rpc.Attr...)...)
	if len(body) == 0 {
		xmlutil.AppendChild(reply, xmlutil.NewElement(rpc.Prefix, NamespaceBase, "ok"))
	}
	for _, b := range body {
		if b != nil {
			xmlutil.AppendChild(reply, xmlutil.CopyNode(b, true))
		}
	}
	return New(reply)
}

// FilterReply answers the <get> or <get-config> request with the data
// beneath the container data, such as a datastore's root, filtered by
// the request's subtree filter. The reply's <data> element holds the
// filtered children of data. Any other operation is an
// operation-not-supported error.
func FilterReply(request *Message, sc *schema.Context, data *xmlquery.Node) (*Message, error) {
	if request == nil || !request.IsRPC() {
		return NewReply(request)
	}
	if op := request.Operation(); op == nil || op.NamespaceURI != NamespaceBase ||
		(op.Data != "get" && op.Data != "get-config") {
		return nil, ncerr.OperationNotSupported(ncerr.WithType(ncerr.TypeProtocol),
			ncerr.WithMessage("only get and get-config can be filtered"))
	}
	f, err := request.Filter(sc)
	if err != nil {
		return nil, err
	}
	var filtered *xmlquery.Node
	switch {
	case data == nil:
	case f == nil:
		filtered = xmlutil.CopyNode(data, true)
	default:
		filtered = subtree.Apply(f, data)
	}

	rpc := request.Root()
	out := xmlutil.NewElement(rpc.Prefix, NamespaceBase, "data")
	if filtered != nil {
		if filtered.Type == xmlquery.ElementNode {
			for _, a := range filtered.Attr {
				if name := xmlutil.AttrName(a); name.Space == "xmlns" && name.Local != rpc.Prefix {
					out.Attr = append(out.Attr, a)
				}
			}
		}
		for _, c := range xmlutil.Elements(filtered) {
			xmlutil.RemoveChild(c)
			declareDefault(c, rpc.Prefix)
			xmlutil.AppendChild(out, c)
		}
	}
	return NewReply(request, out)
}

// declareDefault declares the namespace of the unprefixed element n when
// it would otherwise inherit the default namespace of a parent written
// with prefix.
func declareDefault(n *xmlquery.Node, prefix string) {
	if n.Prefix != "" || (prefix == "" && n.NamespaceURI == NamespaceBase) {
		return
	}
	for _, a := range n.Attr {
		if name := xmlutil.AttrName(a); name.Space == "" && name.Local == "xmlns" {
			return
		}
	}
	n.Attr = append([]xmlquery.Attr{{Name: xml.Name{Local: "xmlns"}, Value: n.NamespaceURI}}, n.Attr...)
}
