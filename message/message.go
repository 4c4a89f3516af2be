package message

import (
	"encoding/xml"

	"github.com/antchfx/xmlquery"

	"github.com/andaru/netconf-core/ncerr"
	"github.com/andaru/netconf-core/schema"
	"github.com/andaru/netconf-core/subtree"
	"github.com/andaru/netconf-core/xmlutil"
)

// Message is a decoded NETCONF message.
type Message struct {
	doc  *xmlquery.Node
	root *xmlquery.Node
}

// New returns the message held by the xmlquery document doc. The document
// must have a root element.
func New(doc *xmlquery.Node) (*Message, error) {
	if doc == nil {
		return nil, ncerr.MalformedMessage(ncerr.WithMessage("no document"))
	}
	if doc.Type == xmlquery.ElementNode {
		d := &xmlquery.Node{Type: xmlquery.DocumentNode}
		xmlutil.AppendChild(d, doc)
		doc = d
	}
	root := xmlutil.FirstElement(doc)
	if root == nil {
		return nil, ncerr.MalformedMessage(ncerr.WithMessage("message has no root element"))
	}
	return &Message{doc: doc, root: root}, nil
}

// Document returns the message's document node.
func (m *Message) Document() *xmlquery.Node { return m.doc }

// Root returns the message's root element.
func (m *Message) Root() *xmlquery.Node { return m.root }

// Name returns the qualified name of the root element.
func (m *Message) Name() xml.Name { return xmlutil.NodeName(m.root) }

// IsRPC reports whether the message is an <rpc>.
func (m *Message) IsRPC() bool { return m.Name() == nameRPC }

// IsReply reports whether the message is an <rpc-reply>.
func (m *Message) IsReply() bool { return m.Name() == nameRPCReply }

// IsNotification reports whether the message is a <notification>.
func (m *Message) IsNotification() bool { return m.Name() == nameNotification }

// MessageID returns the message-id attribute of an <rpc> or <rpc-reply>.
func (m *Message) MessageID() string {
	id, _ := xmlutil.Attr(m.root, nameMessageID)
	return id
}

// Operation returns the operation element of an <rpc>, such as <get>, or
// nil for other messages.
func (m *Message) Operation() *xmlquery.Node {
	if !m.IsRPC() {
		return nil
	}
	return xmlutil.FirstElement(m.root)
}

// Data returns the <data> element of an <rpc-reply>, or nil.
func (m *Message) Data() *xmlquery.Node {
	if !m.IsReply() {
		return nil
	}
	for _, c := range xmlutil.Elements(m.root) {
		if xmlutil.NodeName(c) == nameData {
			return c
		}
	}
	return nil
}

// FilterElement returns the <filter> element of the message's operation,
// or of a <notification> subscription, or nil.
func (m *Message) FilterElement() *xmlquery.Node {
	op := m.Operation()
	if op == nil {
		return nil
	}
	for _, c := range xmlutil.Elements(op) {
		if c.Data == "filter" && (c.NamespaceURI == NamespaceBase || c.NamespaceURI == NamespaceNotification) {
			return c
		}
	}
	return nil
}

// Filter returns the subtree filter of the message's operation, read with
// the schema context sc. It returns nil, nil for a request without a
// filter. A filter of another type is a bad-attribute error.
func (m *Message) Filter(sc *schema.Context) (*subtree.Filter, error) {
	fe := m.FilterElement()
	if fe == nil {
		return nil, nil
	}
	return subtree.ReadNode(sc, fe)
}
