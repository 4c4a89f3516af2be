/*
Package message decodes and encodes NETCONF messages.

A Message is a parsed XML document: an <rpc>, <rpc-reply>, <hello> or
<notification>. A Codec turns framed bytes into Messages and Messages back
into bytes, compactly or pretty printed. Codecs are safe for concurrent
use; each encoding borrows a serializer from a pool, so a serializer is
never shared by two goroutines.

The rpc helpers build <get> and <get-config> requests carrying subtree
filters, and replies answering them with filtered data.
*/
package message
