/*
Package session offers a NETCONF Session implementation.

NETCONF client and server applications implement the Handler
(session event) interface, most importantly being its
OnMessage method.

Sessions are created using the New function, providing the
input (src) and output (dst) along with a session Config.
Server sessions are those which have a non-zero Config.ID
value, while client sessions have a zero value in this field.

The Session handles the initial <hello> and <capabilities>
exchange, then switches both directions of the transport to
chunked framing when both peers offer :base:1.1. After that,
Receive returns each decoded message from the peer and Send
frames a message to it. Receive returns ErrEndOfStream once
the peer's input ends cleanly.
*/
package session
