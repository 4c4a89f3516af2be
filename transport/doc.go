/*
Package transport provides the NETCONF transport layer.

A Conn pairs a frame reader and a frame encoder over the byte streams of
an underlying transport connection (an SSH channel or a TLS connection)
and offers whole-message ReadFrame and WriteFrame operations to the
message layer. The connection begins in end-of-message framing; after
the <hello> exchange the session calls Upgrade when both peers
advertised :base:1.1.
*/
package transport
