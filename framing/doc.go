/*
Package framing offers RFC6242 end-of-message and chunked framing decoders
and encoders.

A Decoder is a push-style state machine: the connection's I/O goroutine
hands it bytes in whatever increments the transport delivers and it
returns every Frame those bytes complete. Trailing partial frames are
retained between calls and no input byte is examined more than a bounded
number of times, so feeding a stream one byte at a time costs the same as
feeding it whole.

An Encoder wraps outgoing messages with the delimiters of the configured
mechanism. In chunked mode message bodies are split into chunks no larger
than the configured chunk size.

FrameReader adapts a Decoder to an io.Reader, and supports the single
end-of-message to chunked upgrade RFC6242 section 4.1 allows after the
<hello> exchange.

Decoders, Encoders and FrameReaders are not safe for concurrent use.
Framing errors reported by them are fatal for the connection, see IsFatal.
*/
package framing
