/*
Package netconf is a set of NETCONF (RFC6241, RFC6242) support libraries.

The framing package decodes and encodes both NETCONF 1.0 (end of message)
and 1.1 (chunked) framing. The transport package pairs a frame reader and
encoder over a connection, with the one-way switch to chunked framing
after the <hello> exchange that the session package performs.

The message package is the XML message codec, and builds <hello>, <rpc>
and <rpc-reply> messages. The subtree package models RFC6241 subtree
filters: it reads them from <filter> elements, writes them back out,
matches them against data trees and builds filtered results. Element
names without a namespace are resolved with a schema context from the
schema package.

See cmd/ncfilter for a command line tool using these libraries.
*/
package netconf
