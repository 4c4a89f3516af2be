package message

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/pkg/errors"

	"github.com/andaru/netconf-core/framing"
)

// Capabilities is a slice of strings denoting NETCONF capability URIs
type Capabilities []string

// Has returns true if uri is in the capabilities set. Capability
// parameters following a '?' are ignored.
func (c Capabilities) Has(uri string) bool {
	uri = strings.SplitN(uri, "?", 2)[0]
	for _, cap := range c {
		if uri == strings.SplitN(cap, "?", 2)[0] {
			return true
		}
	}
	return false
}

// Hello is the content of a <hello> message.
type Hello struct {
	Capabilities Capabilities
	// SessionID is sent by servers only, and is zero in a client's hello.
	SessionID uint32
}

// Mechanism returns the framing mechanism a session advertising local
// capabilities uses after exchanging hellos with the sender of h.
func (h *Hello) Mechanism(local Capabilities) (framing.Mechanism, error) {
	return framing.MechanismFor(local, h.Capabilities)
}

// Hello returns the content of a <hello> message. At least one capability
// is required, and a session-id must be a valid non-zero 32 bit value.
func (m *Message) Hello() (*Hello, error) {
	if xmlquery.QuerySelector(m.doc, xpNSetHello) == nil {
		return nil, errors.New("missing <hello> element")
	}
	h := &Hello{}
	for _, capability := range xmlquery.QuerySelectorAll(m.doc, xpNSetCapability) {
		if x := strings.TrimSpace(capability.InnerText()); x != "" {
			h.Capabilities = append(h.Capabilities, x)
		}
	}
	// the peer must offer at least :base:1.0 or :base:1.1
	if len(h.Capabilities) == 0 {
		return nil, errors.New("missing non-empty <capability> element(s)")
	}
	if sid := xmlquery.QuerySelector(m.doc, xpNSetSessionID); sid != nil {
		idVal := strings.TrimSpace(sid.InnerText())
		if idVal == "" {
			return nil, errors.New("missing session-id value")
		}
		v, err := strconv.ParseUint(idVal, 10, 32)
		if err != nil || v == 0 {
			return nil, errors.Errorf("invalid session-id value %q", idVal)
		}
		h.SessionID = uint32(v)
	}
	return h, nil
}

var (
	seHello        = xml.StartElement{Name: xml.Name{Space: NamespaceBase, Local: "hello"}}
	seCapabilities = xml.StartElement{Name: xml.Name{Local: "capabilities"}}
	seCapability   = xml.StartElement{Name: xml.Name{Local: "capability"}}
	seSessionID    = xml.StartElement{Name: xml.Name{Local: "session-id"}}
)

// NewHello returns a <hello> message carrying h.
func NewHello(h Hello) (*Message, error) {
	if len(h.Capabilities) == 0 {
		return nil, errors.New("hello requires at least one capability")
	}
	var buf bytes.Buffer
	xe := xml.NewEncoder(&buf)
	err := xe.EncodeToken(seHello)
	if err == nil {
		err = xe.EncodeToken(seCapabilities)
	}
	for _, cap := range h.Capabilities {
		if err != nil {
			break
		}
		if err = xe.EncodeToken(seCapability); err == nil {
			err = xe.EncodeToken(xml.CharData(cap))
		}
		if err == nil {
			err = xe.EncodeToken(seCapability.End())
		}
	}
	if err == nil {
		err = xe.EncodeToken(seCapabilities.End())
	}
	if err == nil && h.SessionID != 0 {
		if err = xe.EncodeToken(seSessionID); err == nil {
			err = xe.EncodeToken(xml.CharData(strconv.FormatUint(uint64(h.SessionID), 10)))
		}
		if err == nil {
			err = xe.EncodeToken(seSessionID.End())
		}
	}
	if err == nil {
		err = xe.EncodeToken(seHello.End())
	}
	if err == nil {
		err = xe.Flush()
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return parse(buf.Bytes())
}
