package message

import (
	"encoding/xml"

	"github.com/antchfx/xpath"

	"github.com/andaru/netconf-core/xmlutil"
)

const (
	// NamespaceBase is the NETCONF base namespace.
	NamespaceBase = "urn:ietf:params:xml:ns:netconf:base:1.0"
	// NamespaceNotification is the RFC5277 event notification namespace.
	NamespaceNotification = "urn:ietf:params:xml:ns:netconf:notification:1.0"
)

var (
	nameHello        = xmlutil.XMLName("hello", NamespaceBase)
	nameRPC          = xmlutil.XMLName("rpc", NamespaceBase)
	nameRPCReply     = xmlutil.XMLName("rpc-reply", NamespaceBase)
	nameNotification = xmlutil.XMLName("notification", NamespaceNotification)
	nameData         = xmlutil.XMLName("data", NamespaceBase)
	nameMessageID    = xml.Name{Local: "message-id"}

	xpNSetHello      = xpath.MustCompile(`/hello[namespace-uri()='urn:ietf:params:xml:ns:netconf:base:1.0']`)
	xpNSetCapability = xpath.MustCompile(`/hello[namespace-uri()='urn:ietf:params:xml:ns:netconf:base:1.0']/capabilities/capability`)
	xpNSetSessionID  = xpath.MustCompile(`/hello[namespace-uri()='urn:ietf:params:xml:ns:netconf:base:1.0']/session-id`)
)
